// Package server holds the HTTP server configuration for the serve command.
//
// The Config struct defines the bind host, port and the API key required by the
// auth middleware.
package server
