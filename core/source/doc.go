// Package source provides read access to S3-compatible object stores (AWS S3, MinIO)
// for bulk imports into the blob container.
//
// It wraps the MinIO Go client with strict transport timeouts and exposes only the
// operations an import needs: BucketExists, ListObjects and GetObject. A testify
// mock lives in core/source/mocks.
//
// # Usage
//
//	client, err := source.NewClient(cfg.Source)
//	for obj := range client.ListObjects(ctx, "legacy", minio.ListObjectsOptions{Recursive: true}) {
//	    ...
//	}
package source
