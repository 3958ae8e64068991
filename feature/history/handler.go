package history

import (
	"context"
	"strconv"

	"github.com/cdalton713/easier-blob-storage/core/journal"
	"github.com/cdalton713/easier-blob-storage/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const defaultLimit = 50

// Reader returns recent journal entries.
type Reader interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// Handler handles HTTP requests for the transfer journal.
type Handler struct {
	reader Reader
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(reader Reader, logger *zap.Logger) *Handler {
	return &Handler{reader: reader, logger: logger}
}

// RegisterRoutes registers the journal routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/journal", h.HandleRecent)
}

// HandleRecent returns the newest journal entries, up to ?limit= (default 50).
func (h *Handler) HandleRecent(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a positive integer"})
	}

	entries, err := h.reader.Recent(c.Context(), limit)
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Journal read failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	return c.JSON(fiber.Map{"entries": entries})
}
