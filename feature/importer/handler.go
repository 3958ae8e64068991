package importer

import (
	"errors"

	"github.com/cdalton713/easier-blob-storage/core/logger"
	"github.com/cdalton713/easier-blob-storage/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for imports.
type Handler struct {
	service       *Service
	defaultBucket string
}

// NewHandler creates a new HTTP handler. defaultBucket is used when a request names none.
func NewHandler(service *Service, defaultBucket string) *Handler {
	return &Handler{service: service, defaultBucket: defaultBucket}
}

// RegisterRoutes registers the import routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/import")
	group.Post("/", h.HandleImport)
	group.Get("/plan", h.HandlePlan)
	group.Post("/sync", h.HandleSync)
}

// ImportRequest is the body of POST /import and POST /import/sync.
type ImportRequest struct {
	Bucket     string `json:"bucket"`
	Prefix     string `json:"prefix"`
	DestPrefix string `json:"dest_prefix"`
	Purge      bool   `json:"purge"`
	DryRun     bool   `json:"dry_run"`
}

// HandleImport copies every object under a prefix into the container.
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	var req ImportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	report, err := h.service.Import(c.Context(), h.bucket(req.Bucket), req.Prefix, req.DestPrefix)
	if err != nil {
		return h.fail(c, "Import failed", err)
	}
	return c.JSON(report)
}

// HandlePlan returns what a sync would do without changing anything.
func (h *Handler) HandlePlan(c *fiber.Ctx) error {
	opts := reconcile.Options{DoUpload: true, DoPurge: c.QueryBool("purge")}

	plan, err := h.service.Plan(c.Context(), h.bucket(c.Query("bucket")), c.Query("prefix"), c.Query("dest_prefix"), opts)
	if err != nil {
		return h.fail(c, "Import plan failed", err)
	}
	return c.JSON(plan)
}

// HandleSync uploads missing and changed objects, and optionally purges blobs
// whose source object is gone.
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	var req ImportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	opts := reconcile.Options{DoUpload: true, DoPurge: req.Purge, DryRun: req.DryRun, Confirmed: true}
	plan, executed, err := h.service.Sync(c.Context(), h.bucket(req.Bucket), req.Prefix, req.DestPrefix, opts)
	if err != nil {
		return h.fail(c, "Import sync failed", err)
	}
	return c.JSON(fiber.Map{"executed": executed, "plan": plan})
}

func (h *Handler) bucket(requested string) string {
	if requested != "" {
		return requested
	}
	return h.defaultBucket
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	l := logger.WithRayID(h.service.logger, c)
	status := fiber.StatusInternalServerError
	if errors.Is(err, ErrBucketNotFound) {
		status = fiber.StatusNotFound
	}
	l.Error(msg, zap.Error(err))
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
