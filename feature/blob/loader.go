package blob

import (
	"github.com/gofiber/fiber/v2"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	client  *Client
	handler *Handler
}

// NewFeature creates the blob feature over client.
func NewFeature(client *Client) *Feature {
	return &Feature{client: client, handler: NewHandler(client)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "blob"
}

// IsEnabled reports whether a client is configured.
func (f *Feature) IsEnabled() bool {
	return f.client != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
