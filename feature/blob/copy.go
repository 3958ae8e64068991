package blob

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cdalton713/easier-blob-storage/core/journal"
	"github.com/cdalton713/easier-blob-storage/core/storage"

	"go.uber.org/zap"
)

// Action is the kind of server-side transfer.
type Action string

const (
	ActionCopy Action = "copy"
	ActionMove Action = "move"
)

// copySASHours is the lifetime of the read grant attached to an unsigned copy source.
const copySASHours = 1

// TransferOptions tunes Transfer.
type TransferOptions struct {
	// DestContainer is the destination container. Defaults to the client's container.
	DestContainer string
	// Source overrides the source handle. When empty the source is resolved from the
	// source path (or the bound handle).
	Source Ref
}

// Copy copies src to dst server-side.
func (c *Client) Copy(ctx context.Context, src, dst string, opts TransferOptions) error {
	return c.Transfer(ctx, ActionCopy, src, dst, opts)
}

// Move copies src to dst server-side and deletes src once the copy succeeded.
func (c *Client) Move(ctx context.Context, src, dst string, opts TransferOptions) error {
	return c.Transfer(ctx, ActionMove, src, dst, opts)
}

// Transfer copies or moves src to dst. The call blocks until the service reports the
// copy finished, failed or was aborted, or ctx is done.
func (c *Client) Transfer(ctx context.Context, action Action, src, dst string, opts TransferOptions) error {
	if action != ActionCopy && action != ActionMove {
		return fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	destContainer := opts.DestContainer
	if destContainer == "" {
		destContainer = c.container
	}
	if destContainer == c.container && src == dst {
		return ErrSelfCopy
	}

	srcRef := opts.Source
	if srcRef.isZero() {
		srcRef = Path(src)
	}
	srcClient, err := c.resolve(srcRef)
	if err != nil {
		return err
	}

	sourceURL := c.copySourceURL(srcClient, src)
	dstClient := c.containerFor(destContainer).NewBlobClient(dst)
	target := destContainer + "/" + dst

	err = c.copy(ctx, dstClient, sourceURL)
	if err != nil {
		c.record(ctx, journal.Action(action), src, target, journal.StatusFailed, err)
		return fmt.Errorf("failed to %s %s to %s: %w", action, src, target, err)
	}

	if action == ActionMove {
		if err := srcClient.Delete(ctx); err != nil {
			err = fmt.Errorf("failed to delete %s after copy: %w", src, err)
			c.record(ctx, journal.ActionMove, src, target, journal.StatusFailed, err)
			return err
		}
	}

	c.record(ctx, journal.Action(action), src, target, journal.StatusOK, nil)
	c.logger.Info("Transferred blob",
		zap.String("action", string(action)),
		zap.String("blob", src),
		zap.String("target", target),
	)
	return nil
}

func (c *Client) copy(ctx context.Context, dstClient storage.BlobClient, sourceURL string) error {
	state, err := dstClient.StartCopyFromURL(ctx, sourceURL)
	if err != nil {
		return err
	}
	if !state.Status.Terminal() {
		state, err = c.waitForCopy(ctx, dstClient, state.ID)
		if err != nil {
			return err
		}
	}
	if state.Status != storage.CopyStatusSuccess {
		return fmt.Errorf("%w: status %s: %s", ErrCopyFailed, state.Status, state.Description)
	}
	return nil
}

// copySourceURL returns a URL the service can read src from. Unsigned URLs get a
// short read-only grant; if signing fails the bare URL is used as is.
func (c *Client) copySourceURL(srcClient storage.BlobClient, src string) string {
	u := srcClient.URL()
	if storage.HasSignature(u) {
		return u
	}

	name := src
	if derived, err := storage.BlobNameFromURL(u, c.container); err == nil && derived != "" {
		name = derived
	}
	grant, err := c.CreateSAS(name, copySASHours, ReadOnly())
	if err != nil {
		c.logger.Debug("Copying from unsigned url", zap.String("blob", name), zap.Error(err))
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + grant.Token
}

// waitForCopy polls the destination until its copy reaches a terminal state.
func (c *Client) waitForCopy(ctx context.Context, dstClient storage.BlobClient, copyID string) (*storage.CopyState, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to wait for copy %s: %w", copyID, ctx.Err())
		case <-ticker.C:
		}

		props, err := dstClient.GetProperties(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to poll copy %s: %w", copyID, err)
		}
		if props.Copy.Status == "" {
			return nil, fmt.Errorf("%w: copy %s: no copy state on destination", ErrCopyFailed, copyID)
		}
		if props.Copy.Status.Terminal() {
			return &props.Copy, nil
		}
		c.logger.Debug("Copy pending", zap.String("copy_id", copyID))
	}
}

func (c *Client) containerFor(name string) storage.ContainerClient {
	if name == "" || name == c.container {
		return c.containerClient
	}
	return c.service.NewContainerClient(name)
}
