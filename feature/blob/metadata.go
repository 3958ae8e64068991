package blob

import (
	"context"
	"fmt"

	"github.com/cdalton713/easier-blob-storage/core/journal"
	"github.com/cdalton713/easier-blob-storage/core/storage"

	"go.uber.org/zap"
)

// SetMetadata replaces the metadata of the blob behind ref.
func (c *Client) SetMetadata(ctx context.Context, ref Ref, metadata map[string]string) error {
	bc, name, err := c.target(ref)
	if err != nil {
		return err
	}

	if metadata == nil {
		metadata = map[string]string{}
	}
	err = bc.SetMetadata(ctx, metadata)
	c.record(ctx, journal.ActionMetadata, name, "", statusOf(err), err)
	if err != nil {
		return fmt.Errorf("failed to set metadata on %s: %w", name, err)
	}
	c.logger.Debug("Set blob metadata", zap.String("blob", name), zap.Int("keys", len(metadata)))
	return nil
}

// ClearMetadata removes all metadata from the blob behind ref.
func (c *Client) ClearMetadata(ctx context.Context, ref Ref) error {
	return c.SetMetadata(ctx, ref, map[string]string{})
}

// GetMetadata returns the properties, metadata included, of the blob behind ref.
func (c *Client) GetMetadata(ctx context.Context, ref Ref) (*storage.Properties, error) {
	bc, name, err := c.target(ref)
	if err != nil {
		return nil, err
	}
	props, err := bc.GetProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get properties of %s: %w", name, err)
	}
	return props, nil
}
