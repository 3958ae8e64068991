// Package database handles the optional database connection used by the transfer journal.
//
// It provides a wrapper around GORM to configure MySQL (or SQLite, for local use and
// tests) connections from the application's configuration.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("Optional database connection failed", zap.Error(err))
//	}
package database
