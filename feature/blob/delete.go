package blob

import (
	"context"
	"fmt"

	"github.com/cdalton713/easier-blob-storage/core/journal"

	"go.uber.org/zap"
)

// Delete removes the blob behind ref.
func (c *Client) Delete(ctx context.Context, ref Ref) error {
	bc, name, err := c.target(ref)
	if err != nil {
		return err
	}

	err = bc.Delete(ctx)
	c.record(ctx, journal.ActionDelete, name, "", statusOf(err), err)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	c.logger.Info("Deleted blob", zap.String("container", c.container), zap.String("blob", name))
	return nil
}
