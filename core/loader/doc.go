// Package loader provides the plugin-like feature loading system used by the serve command.
//
// Each feature implements the Feature interface, which reports whether it is enabled
// and registers its routes.
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager holds the registry of features. Register adds one; LoadAll loads every
// enabled feature in registration order and returns the names it loaded. The journal
// feature, for instance, disables itself when no database is configured.
package loader
