package history

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	reader  Reader
	handler *Handler
}

// NewFeature creates the history feature. A nil reader disables it.
func NewFeature(reader Reader, logger *zap.Logger) *Feature {
	return &Feature{reader: reader, handler: NewHandler(reader, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "history"
}

// IsEnabled reports whether a journal is configured.
func (f *Feature) IsEnabled() bool {
	return f.reader != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
