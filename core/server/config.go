package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Host is the interface the server binds to.
	Host string `mapstructure:"host" default:""`
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
}

// ListenAddr returns the address passed to the listener.
func (c Config) ListenAddr() string {
	port := c.Port
	if port == "" {
		port = "8080"
	}
	return c.Host + ":" + port
}
