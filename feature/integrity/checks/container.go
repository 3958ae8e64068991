package checks

import (
	"context"
	"fmt"
	"iter"

	"github.com/cdalton713/easier-blob-storage/core/storage"
)

// ContainerReport is the result of a container reachability check.
type ContainerReport struct {
	Container string `json:"container"`
	Reachable bool   `json:"reachable"`
	Empty     bool   `json:"empty"`
}

// Lister lists blobs of one container.
type Lister interface {
	Container() string
	List(ctx context.Context, opts storage.ListOptions) iter.Seq2[storage.BlobItem, error]
}

// CheckContainer lists at most one blob to prove the container is reachable with
// the configured credentials.
func CheckContainer(ctx context.Context, lister Lister) (*ContainerReport, error) {
	report := &ContainerReport{Container: lister.Container(), Empty: true}

	for _, err := range lister.List(ctx, storage.ListOptions{}) {
		if err != nil {
			return report, fmt.Errorf("failed to list container %s: %w", report.Container, err)
		}
		report.Empty = false
		break
	}

	report.Reachable = true
	return report, nil
}
