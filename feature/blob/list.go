package blob

import (
	"context"
	"iter"

	"github.com/cdalton713/easier-blob-storage/core/storage"
)

// List yields the blobs in the container. Nothing is fetched until the sequence is
// ranged over, and every range starts a fresh listing.
func (c *Client) List(ctx context.Context, opts storage.ListOptions) iter.Seq2[storage.BlobItem, error] {
	return c.containerClient.ListBlobs(ctx, opts)
}

// ListAll collects List into a slice, stopping at the first error.
func (c *Client) ListAll(ctx context.Context, opts storage.ListOptions) ([]storage.BlobItem, error) {
	var items []storage.BlobItem
	for item, err := range c.List(ctx, opts) {
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}
