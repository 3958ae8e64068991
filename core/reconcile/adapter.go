package reconcile

import "context"

// Adapter loads the two indices being reconciled.
type Adapter interface {
	// Name identifies the adapter in cache keys.
	Name() string

	// LoadSourceIndex lists the source bucket under prefix and returns the objects
	// keyed by their name relative to prefix. Folder markers are skipped.
	LoadSourceIndex(ctx context.Context, bucket, prefix string) (map[string]Entry, error)

	// LoadContainerIndex lists the container under prefix and returns the blobs
	// keyed by their name relative to prefix.
	LoadContainerIndex(ctx context.Context, prefix string) (map[string]Entry, error)
}

// Mutator applies planned actions. Adapters that can only report need not implement it.
type Mutator interface {
	// UploadKey copies the source object for key into the container.
	UploadKey(ctx context.Context, spec *Spec, key string) error

	// DeleteKey deletes the blob for key from the container.
	DeleteKey(ctx context.Context, spec *Spec, key string) error
}
