package integrity

import (
	"errors"

	"github.com/cdalton713/easier-blob-storage/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/container", h.HandleContainerCheck)
	group.Get("/journal", h.HandleJournalCheck)
	group.Get("/source", h.HandleSourceCheck)
}

// HandleIntegrityCheck runs every check and returns a combined report. Disabled
// checks are reported as skipped.
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.Context()
	report := make(map[string]any)

	containerReport, err := h.service.CheckContainer(ctx)
	report["container"] = section(containerReport, err)

	journalReport, err := h.service.CheckJournal()
	report["journal"] = section(journalReport, err)

	sourceReport, err := h.service.CheckSource(ctx)
	report["source"] = section(sourceReport, err)

	return c.JSON(report)
}

// HandleContainerCheck checks the container is reachable.
func (h *Handler) HandleContainerCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckContainer(c.Context())
	if err != nil {
		return h.fail(c, "Container check failed", err)
	}
	return c.JSON(report)
}

// HandleJournalCheck checks the journal table schema.
func (h *Handler) HandleJournalCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckJournal()
	if err != nil {
		return h.fail(c, "Journal check failed", err)
	}
	if !report.Matched {
		logger.WithRayID(h.service.logger, c).Warn("Journal table is missing columns",
			zap.Strings("missing", report.MissingColumns))
	}
	return c.JSON(report)
}

// HandleSourceCheck checks the default import bucket exists.
func (h *Handler) HandleSourceCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckSource(c.Context())
	if err != nil {
		return h.fail(c, "Source check failed", err)
	}
	return c.JSON(report)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	if errors.Is(err, ErrNotConfigured) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func section(report any, err error) any {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return fiber.Map{"status": "skipped"}
	case err != nil:
		return fiber.Map{"status": "error", "error": err.Error()}
	default:
		return report
	}
}
