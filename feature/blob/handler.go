package blob

import (
	"errors"
	"net/url"

	"github.com/cdalton713/easier-blob-storage/core/logger"
	"github.com/cdalton713/easier-blob-storage/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests against the container.
type Handler struct {
	client *Client
}

// NewHandler creates a new HTTP handler.
func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// RegisterRoutes registers the blob routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	blobs := app.Group("/blobs")
	blobs.Get("/", h.HandleList)
	blobs.Delete("/*", h.HandleDelete)

	metadata := app.Group("/metadata")
	metadata.Get("/*", h.HandleGetMetadata)
	metadata.Put("/*", h.HandleSetMetadata)
	metadata.Delete("/*", h.HandleClearMetadata)

	app.Post("/sas", h.HandleCreateSAS)
	app.Post("/transfer", h.HandleTransfer)
}

// SASRequest is the body of POST /sas. Omitted permissions default to granted.
type SASRequest struct {
	Path   string  `json:"path"`
	Hours  float64 `json:"hours"`
	Read   *bool   `json:"read"`
	Write  *bool   `json:"write"`
	Delete *bool   `json:"delete"`
	Add    *bool   `json:"add"`
	Create *bool   `json:"create"`
}

// TransferRequest is the body of POST /transfer.
type TransferRequest struct {
	Action      Action `json:"action"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Container   string `json:"container"`
}

// HandleList lists blobs, optionally under a prefix and with metadata.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	opts := storage.ListOptions{
		Prefix:  c.Query("prefix"),
		Include: storage.Include{Metadata: c.QueryBool("metadata")},
	}

	items, err := h.client.ListAll(c.Context(), opts)
	if err != nil {
		return h.fail(c, "List failed", err)
	}
	if items == nil {
		items = []storage.BlobItem{}
	}
	return c.JSON(fiber.Map{"container": h.client.Container(), "blobs": items})
}

// HandleDelete deletes the blob named by the wildcard path.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	name, err := blobParam(c)
	if err != nil {
		return badRequest(c, err)
	}
	if err := h.client.Delete(c.Context(), Path(name)); err != nil {
		return h.fail(c, "Delete failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetMetadata returns the properties of a blob.
func (h *Handler) HandleGetMetadata(c *fiber.Ctx) error {
	name, err := blobParam(c)
	if err != nil {
		return badRequest(c, err)
	}
	props, err := h.client.GetMetadata(c.Context(), Path(name))
	if err != nil {
		return h.fail(c, "Get metadata failed", err)
	}
	return c.JSON(props)
}

// HandleSetMetadata replaces the metadata of a blob with the JSON object in the body.
func (h *Handler) HandleSetMetadata(c *fiber.Ctx) error {
	name, err := blobParam(c)
	if err != nil {
		return badRequest(c, err)
	}
	var metadata map[string]string
	if err := c.BodyParser(&metadata); err != nil {
		return badRequest(c, err)
	}
	if err := h.client.SetMetadata(c.Context(), Path(name), metadata); err != nil {
		return h.fail(c, "Set metadata failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleClearMetadata removes all metadata from a blob.
func (h *Handler) HandleClearMetadata(c *fiber.Ctx) error {
	name, err := blobParam(c)
	if err != nil {
		return badRequest(c, err)
	}
	if err := h.client.ClearMetadata(c.Context(), Path(name)); err != nil {
		return h.fail(c, "Clear metadata failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleCreateSAS issues a signed URL for one blob.
func (h *Handler) HandleCreateSAS(c *fiber.Ctx) error {
	var req SASRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	perms := storage.Permissions{
		Read:   granted(req.Read),
		Write:  granted(req.Write),
		Delete: granted(req.Delete),
		Add:    granted(req.Add),
		Create: granted(req.Create),
	}
	grant, err := h.client.CreateSAS(req.Path, req.Hours, WithPermissions(perms))
	if err != nil {
		return h.fail(c, "SAS creation failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(grant)
}

// HandleTransfer copies or moves a blob server-side.
func (h *Handler) HandleTransfer(c *fiber.Ctx) error {
	var req TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	opts := TransferOptions{DestContainer: req.Container}
	if err := h.client.Transfer(c.Context(), req.Action, req.Source, req.Destination, opts); err != nil {
		return h.fail(c, "Transfer failed", err)
	}
	return c.JSON(fiber.Map{
		"status":      "ok",
		"action":      req.Action,
		"source":      req.Source,
		"destination": req.Destination,
	})
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := statusFor(err)
	l := logger.WithRayID(h.client.logger, c)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Int("status", status), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrMissingReference),
		errors.Is(err, ErrInvalidAction),
		errors.Is(err, ErrSelfCopy):
		return fiber.StatusBadRequest
	case storage.IsNotFound(err):
		return fiber.StatusNotFound
	case errors.Is(err, ErrCopyFailed):
		return fiber.StatusBadGateway
	default:
		if code := storage.StatusCode(err); code >= 400 && code < 600 {
			return code
		}
		return fiber.StatusInternalServerError
	}
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

// blobParam returns the unescaped wildcard segment of the route.
func blobParam(c *fiber.Ctx) (string, error) {
	name, err := url.PathUnescape(c.Params("*"))
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", ErrMissingReference
	}
	return name, nil
}

func granted(b *bool) bool {
	return b == nil || *b
}
