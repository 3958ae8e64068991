package storage

import (
	"context"
	"fmt"
	"io"
	"iter"
	"net"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/streaming"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"
)

// Open creates the account-scoped handle from a connection string.
// No request is sent, so a rejected key only surfaces on first use.
func Open(connectionString string, timeout time.Duration) (ServiceClient, error) {
	cs, err := ParseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}

	opts := newClientOptions(timeout)

	client, err := service.NewClientFromConnectionString(connectionString, &service.ClientOptions{ClientOptions: opts})
	if err != nil {
		return nil, fmt.Errorf("failed to create blob service client: %w", err)
	}

	svc := &azureService{client: client, conn: cs, opts: opts}
	if cs.AccountKey != "" {
		cred, err := azblob.NewSharedKeyCredential(cs.AccountName, cs.AccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		svc.credential = cred
	}
	return svc, nil
}

// newClientOptions disables SDK retries and bounds the transport the same way
// for every handle the service creates.
func newClientOptions(timeout time.Duration) azcore.ClientOptions {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	return azcore.ClientOptions{
		Transport: &http.Client{Transport: transport},
		Retry:     policy.RetryOptions{MaxRetries: -1},
	}
}

type azureService struct {
	client     *service.Client
	credential *azblob.SharedKeyCredential
	conn       ConnectionString
	opts       azcore.ClientOptions
}

func (s *azureService) AccountName() string {
	return s.conn.AccountName
}

func (s *azureService) NewContainerClient(containerName string) ContainerClient {
	return &azureContainer{name: containerName, client: s.client.NewContainerClient(containerName)}
}

func (s *azureService) NewBlobClientFromURL(blobURL string) (BlobClient, error) {
	client, err := blockblob.NewClientWithNoCredential(blobURL, &blockblob.ClientOptions{ClientOptions: s.opts})
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client from url: %w", err)
	}
	return &azureBlob{client: client}, nil
}

func (s *azureService) SignBlob(values SASValues) (string, error) {
	if s.credential == nil {
		return "", ErrNoSharedKey
	}

	protocol := sas.ProtocolHTTPS
	if s.conn.Protocol == "http" {
		protocol = sas.ProtocolHTTPSandHTTP
	}

	perms := toBlobPermissions(values.Permissions)
	signature := sas.BlobSignatureValues{
		Protocol:      protocol,
		StartTime:     values.StartsOn,
		ExpiryTime:    values.ExpiresOn,
		Permissions:   perms.String(),
		ContainerName: values.Container,
		BlobName:      values.Blob,
	}

	params, err := signature.SignWithSharedKey(s.credential)
	if err != nil {
		return "", fmt.Errorf("failed to sign blob sas: %w", err)
	}
	return params.Encode(), nil
}

func toBlobPermissions(p Permissions) sas.BlobPermissions {
	return sas.BlobPermissions{
		Read:   p.Read,
		Add:    p.Add,
		Create: p.Create,
		Write:  p.Write,
		Delete: p.Delete,
	}
}

type azureContainer struct {
	name   string
	client *container.Client
}

func (c *azureContainer) Name() string {
	return c.name
}

func (c *azureContainer) URL() string {
	return c.client.URL()
}

func (c *azureContainer) NewBlobClient(blobName string) BlobClient {
	return &azureBlob{client: c.client.NewBlockBlobClient(blobName)}
}

func (c *azureContainer) ListBlobs(ctx context.Context, opts ListOptions) iter.Seq2[BlobItem, error] {
	return func(yield func(BlobItem, error) bool) {
		listOpts := &container.ListBlobsFlatOptions{
			Include: container.ListBlobsInclude{
				Copy:             opts.Include.Copy,
				Deleted:          opts.Include.Deleted,
				Metadata:         opts.Include.Metadata,
				Snapshots:        opts.Include.Snapshots,
				Tags:             opts.Include.Tags,
				UncommittedBlobs: opts.Include.UncommittedBlobs,
				Versions:         opts.Include.Versions,
			},
		}
		if opts.Prefix != "" {
			listOpts.Prefix = to.Ptr(opts.Prefix)
		}

		pager := c.client.NewListBlobsFlatPager(listOpts)
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				yield(BlobItem{}, fmt.Errorf("failed to list blobs: %w", err))
				return
			}
			if page.Segment == nil {
				continue
			}
			for _, item := range page.Segment.BlobItems {
				if item == nil {
					continue
				}
				if !yield(toBlobItem(item), nil) {
					return
				}
			}
		}
	}
}

func toBlobItem(item *container.BlobItem) BlobItem {
	out := BlobItem{
		Name:     deref(item.Name),
		Metadata: fromPtrMap(item.Metadata),
	}
	if p := item.Properties; p != nil {
		out.Size = deref(p.ContentLength)
		out.ContentType = deref(p.ContentType)
		out.LastModified = deref(p.LastModified)
		if p.ETag != nil {
			out.ETag = string(*p.ETag)
		}
	}
	return out
}

type azureBlob struct {
	client *blockblob.Client
}

func (b *azureBlob) URL() string {
	return b.client.URL()
}

func (b *azureBlob) Upload(ctx context.Context, body io.ReadSeeker) error {
	_, err := b.client.Upload(ctx, streaming.NopCloser(body), nil)
	return err
}

func (b *azureBlob) Download(ctx context.Context) (io.ReadCloser, error) {
	resp, err := b.client.DownloadStream(ctx, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (b *azureBlob) Delete(ctx context.Context) error {
	_, err := b.client.Delete(ctx, nil)
	return err
}

func (b *azureBlob) SetMetadata(ctx context.Context, metadata map[string]string) error {
	_, err := b.client.SetMetadata(ctx, toPtrMap(metadata), nil)
	return err
}

func (b *azureBlob) GetProperties(ctx context.Context) (*Properties, error) {
	resp, err := b.client.GetProperties(ctx, nil)
	if err != nil {
		return nil, err
	}

	props := &Properties{
		Size:         deref(resp.ContentLength),
		ContentType:  deref(resp.ContentType),
		LastModified: deref(resp.LastModified),
		Metadata:     fromPtrMap(resp.Metadata),
		Copy: CopyState{
			ID:          deref(resp.CopyID),
			Description: deref(resp.CopyStatusDescription),
		},
	}
	if resp.ETag != nil {
		props.ETag = string(*resp.ETag)
	}
	if resp.CopyStatus != nil {
		props.Copy.Status = fromCopyStatus(*resp.CopyStatus)
	}
	return props, nil
}

func (b *azureBlob) StartCopyFromURL(ctx context.Context, sourceURL string) (*CopyState, error) {
	resp, err := b.client.StartCopyFromURL(ctx, sourceURL, nil)
	if err != nil {
		return nil, err
	}
	state := &CopyState{ID: deref(resp.CopyID), Status: CopyStatusPending}
	if resp.CopyStatus != nil {
		state.Status = fromCopyStatus(*resp.CopyStatus)
	}
	return state, nil
}

func fromCopyStatus(s blob.CopyStatusType) CopyStatus {
	switch s {
	case blob.CopyStatusTypeSuccess:
		return CopyStatusSuccess
	case blob.CopyStatusTypeAborted:
		return CopyStatusAborted
	case blob.CopyStatusTypeFailed:
		return CopyStatusFailed
	default:
		return CopyStatusPending
	}
}

func toPtrMap(m map[string]string) map[string]*string {
	out := make(map[string]*string, len(m))
	for k, v := range m {
		out[k] = to.Ptr(v)
	}
	return out
}

func fromPtrMap(m map[string]*string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if v != nil {
			out[k] = *v
		}
	}
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
