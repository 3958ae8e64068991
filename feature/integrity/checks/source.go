package checks

import (
	"context"
	"fmt"

	"github.com/cdalton713/easier-blob-storage/core/source"
)

// SourceReport is the result of an import source check.
type SourceReport struct {
	Bucket string `json:"bucket"`
	Exists bool   `json:"exists"`
}

// CheckSource verifies the default import bucket exists.
func CheckSource(ctx context.Context, client source.Client, bucket string) (*SourceReport, error) {
	if bucket == "" {
		return nil, fmt.Errorf("no default source bucket configured")
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	return &SourceReport{Bucket: bucket, Exists: exists}, nil
}
