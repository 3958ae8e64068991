package mocks

import (
	"context"
	"io"
	"iter"

	"github.com/cdalton713/easier-blob-storage/core/storage"

	"github.com/stretchr/testify/mock"
)

// ServiceClient is a mock implementation of storage.ServiceClient
type ServiceClient struct {
	mock.Mock
}

func (m *ServiceClient) AccountName() string {
	args := m.Called()
	return args.String(0)
}

func (m *ServiceClient) NewContainerClient(containerName string) storage.ContainerClient {
	args := m.Called(containerName)
	return args.Get(0).(storage.ContainerClient)
}

func (m *ServiceClient) NewBlobClientFromURL(blobURL string) (storage.BlobClient, error) {
	args := m.Called(blobURL)
	if c, ok := args.Get(0).(storage.BlobClient); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ServiceClient) SignBlob(values storage.SASValues) (string, error) {
	args := m.Called(values)
	return args.String(0), args.Error(1)
}

// ContainerClient is a mock implementation of storage.ContainerClient
type ContainerClient struct {
	mock.Mock
}

func (m *ContainerClient) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *ContainerClient) URL() string {
	args := m.Called()
	return args.String(0)
}

func (m *ContainerClient) NewBlobClient(blobName string) storage.BlobClient {
	args := m.Called(blobName)
	return args.Get(0).(storage.BlobClient)
}

// ListBlobs returns the configured items as a sequence. A trailing error, if
// configured, is yielded after the items.
func (m *ContainerClient) ListBlobs(ctx context.Context, opts storage.ListOptions) iter.Seq2[storage.BlobItem, error] {
	args := m.Called(ctx, opts)
	items, _ := args.Get(0).([]storage.BlobItem)
	err := args.Error(1)
	return func(yield func(storage.BlobItem, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
		if err != nil {
			yield(storage.BlobItem{}, err)
		}
	}
}

// BlobClient is a mock implementation of storage.BlobClient
type BlobClient struct {
	mock.Mock
}

func (m *BlobClient) URL() string {
	args := m.Called()
	return args.String(0)
}

func (m *BlobClient) Upload(ctx context.Context, body io.ReadSeeker) error {
	args := m.Called(ctx, body)
	return args.Error(0)
}

func (m *BlobClient) Download(ctx context.Context) (io.ReadCloser, error) {
	args := m.Called(ctx)
	if rc, ok := args.Get(0).(io.ReadCloser); ok {
		return rc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BlobClient) Delete(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *BlobClient) SetMetadata(ctx context.Context, metadata map[string]string) error {
	args := m.Called(ctx, metadata)
	return args.Error(0)
}

func (m *BlobClient) GetProperties(ctx context.Context) (*storage.Properties, error) {
	args := m.Called(ctx)
	if p, ok := args.Get(0).(*storage.Properties); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BlobClient) StartCopyFromURL(ctx context.Context, sourceURL string) (*storage.CopyState, error) {
	args := m.Called(ctx, sourceURL)
	if s, ok := args.Get(0).(*storage.CopyState); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
