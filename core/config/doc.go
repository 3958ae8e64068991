// Package config provides configuration management.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file (loaded with godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Storage: blob account, container, key or connection string, timeouts
//   - Source: S3/MinIO credentials for imports
//   - Log: Logging level and format
//   - Database: optional transfer journal database
//   - Server: HTTP server settings (host, port, API key)
//
// Keys map to environment variables by upper-casing and replacing dots with
// underscores (storage.account -> STORAGE_ACCOUNT). CONN and CONTAINER are also
// accepted for storage.connection_string and storage.container.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Storage.Container)
package config
