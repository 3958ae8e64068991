package storage

import (
	"context"
	"io"
	"iter"
	"time"
)

// ServiceClient is the account-scoped handle.
type ServiceClient interface {
	// AccountName returns the storage account the handle is bound to.
	AccountName() string
	// NewContainerClient returns a handle for a container in the account.
	NewContainerClient(containerName string) ContainerClient
	// NewBlobClientFromURL returns a handle for a blob addressed by a (usually signed) URL.
	NewBlobClientFromURL(blobURL string) (BlobClient, error)
	// SignBlob produces a SAS token (query string without '?') for a single blob.
	SignBlob(values SASValues) (string, error)
}

// ContainerClient is the container-scoped handle.
type ContainerClient interface {
	// Name returns the container name.
	Name() string
	// URL returns the container URL as reported by the SDK.
	URL() string
	// NewBlobClient returns a handle for a blob in the container.
	NewBlobClient(blobName string) BlobClient
	// ListBlobs lazily lists the container. Each range issues a fresh listing.
	ListBlobs(ctx context.Context, opts ListOptions) iter.Seq2[BlobItem, error]
}

// BlobClient is the blob-scoped handle.
type BlobClient interface {
	// URL returns the blob URL, including the SAS query when built from one.
	URL() string
	// Upload writes body in full, replacing any existing blob.
	Upload(ctx context.Context, body io.ReadSeeker) error
	// Download returns the blob content. The caller closes the reader.
	Download(ctx context.Context) (io.ReadCloser, error)
	// Delete removes the blob.
	Delete(ctx context.Context) error
	// SetMetadata replaces the blob metadata with metadata.
	SetMetadata(ctx context.Context, metadata map[string]string) error
	// GetProperties returns the blob properties including metadata and copy state.
	GetProperties(ctx context.Context) (*Properties, error)
	// StartCopyFromURL starts a server-side copy from sourceURL into this blob.
	StartCopyFromURL(ctx context.Context, sourceURL string) (*CopyState, error)
}

// CopyStatus is the state of a server-side copy.
type CopyStatus string

const (
	CopyStatusPending CopyStatus = "pending"
	CopyStatusSuccess CopyStatus = "success"
	CopyStatusAborted CopyStatus = "aborted"
	CopyStatusFailed  CopyStatus = "failed"
)

// Terminal reports whether the copy will not progress any further.
func (s CopyStatus) Terminal() bool {
	switch s {
	case CopyStatusSuccess, CopyStatusAborted, CopyStatusFailed:
		return true
	default:
		return false
	}
}

// CopyState describes a server-side copy.
type CopyState struct {
	ID          string     `json:"id,omitempty"`
	Status      CopyStatus `json:"status,omitempty"`
	Description string     `json:"description,omitempty"`
}

// Properties is the property set of a blob.
type Properties struct {
	Size         int64             `json:"size"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata"`
	Copy         CopyState         `json:"copy"`
}

// BlobItem is a summary record produced by a listing.
type BlobItem struct {
	Name         string            `json:"name"`
	Size         int64             `json:"size"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Include selects extra property categories returned by a listing.
type Include struct {
	Metadata         bool
	Snapshots        bool
	Versions         bool
	Deleted          bool
	Tags             bool
	Copy             bool
	UncommittedBlobs bool
}

// ListOptions filters a listing.
type ListOptions struct {
	Prefix  string
	Include Include
}

// Permissions is the permission set of a blob SAS.
type Permissions struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Delete bool `json:"delete"`
	Add    bool `json:"add"`
	Create bool `json:"create"`
}

// AllPermissions grants read, write, delete, add and create.
func AllPermissions() Permissions {
	return Permissions{Read: true, Write: true, Delete: true, Add: true, Create: true}
}

// String renders the permissions in the service's canonical order.
func (p Permissions) String() string {
	var b []byte
	if p.Read {
		b = append(b, 'r')
	}
	if p.Add {
		b = append(b, 'a')
	}
	if p.Create {
		b = append(b, 'c')
	}
	if p.Write {
		b = append(b, 'w')
	}
	if p.Delete {
		b = append(b, 'd')
	}
	return string(b)
}

// SASValues are the inputs of a blob SAS.
type SASValues struct {
	Container   string
	Blob        string
	Permissions Permissions
	StartsOn    time.Time
	ExpiresOn   time.Time
}
