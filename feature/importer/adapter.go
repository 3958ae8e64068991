package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/cdalton713/easier-blob-storage/core/reconcile"
	"github.com/cdalton713/easier-blob-storage/core/storage"
	"github.com/cdalton713/easier-blob-storage/feature/blob"

	"github.com/minio/minio-go/v7"
)

// adapter indexes the source bucket and the container for reconcile.
type adapter struct {
	svc *Service
}

func (a *adapter) Name() string {
	return "importer:" + a.svc.container.Container()
}

func (a *adapter) LoadSourceIndex(ctx context.Context, bucket, prefix string) (map[string]reconcile.Entry, error) {
	index := make(map[string]reconcile.Entry)
	opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: true}

	for obj := range a.svc.source.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list source objects: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		key := strings.TrimPrefix(obj.Key, prefix)
		index[key] = reconcile.Entry{Key: key, Size: obj.Size}
	}
	return index, nil
}

func (a *adapter) LoadContainerIndex(ctx context.Context, prefix string) (map[string]reconcile.Entry, error) {
	index := make(map[string]reconcile.Entry)

	for item, err := range a.svc.container.List(ctx, storage.ListOptions{Prefix: prefix}) {
		if err != nil {
			return nil, fmt.Errorf("failed to list container: %w", err)
		}
		key := strings.TrimPrefix(item.Name, prefix)
		index[key] = reconcile.Entry{Key: key, Size: item.Size}
	}
	return index, nil
}

func (a *adapter) UploadKey(ctx context.Context, spec *reconcile.Spec, key string) error {
	return a.svc.importObject(ctx, spec.Bucket, spec.SourcePrefix+key, spec.ContainerPrefix+key)
}

func (a *adapter) DeleteKey(ctx context.Context, spec *reconcile.Spec, key string) error {
	return a.svc.container.Delete(ctx, blob.Path(spec.ContainerPrefix+key))
}
