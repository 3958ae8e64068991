package blob

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cdalton713/easier-blob-storage/core/journal"
	"github.com/cdalton713/easier-blob-storage/core/storage"

	"go.uber.org/zap"
)

const defaultCopyPollInterval = 500 * time.Millisecond

// Recorder receives an entry for every mutating operation.
type Recorder interface {
	Record(ctx context.Context, entry journal.Entry) error
}

// Client is a facade over one storage container.
//
// A Client may hold a bound blob handle (see Bind). While bound, every operation
// that takes a Ref without an explicit handle targets the bound blob.
type Client struct {
	account          string
	container        string
	protocol         string
	endpointSuffix   string
	connectionString string
	containerURL     string

	service         storage.ServiceClient
	containerClient storage.ContainerClient

	mu    sync.RWMutex
	bound storage.BlobClient

	logger       *zap.Logger
	journal      Recorder
	pollInterval time.Duration
	timeout      time.Duration
	now          func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithProtocol overrides the endpoint protocol (default https).
func WithProtocol(protocol string) Option {
	return func(c *Client) { c.protocol = protocol }
}

// WithEndpointSuffix overrides the endpoint suffix (default core.windows.net).
func WithEndpointSuffix(suffix string) Option {
	return func(c *Client) { c.endpointSuffix = suffix }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithJournal records mutating operations in r.
func WithJournal(r Recorder) Option {
	return func(c *Client) { c.journal = r }
}

// WithCopyPollInterval sets how often a pending server-side copy is checked.
func WithCopyPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// WithTimeout bounds connection setup and the wait for response headers.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithClock replaces time.Now, used for SAS start and expiry times.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithServiceClient uses svc instead of opening one from the connection string.
func WithServiceClient(svc storage.ServiceClient) Option {
	return func(c *Client) { c.service = svc }
}

// New creates a Client for a container from an account name and shared key.
// No request is sent, but the key must be valid base64: the shared-key credential
// decodes it up front, so a malformed key fails here rather than on first use.
func New(account, container, key string, opts ...Option) (*Client, error) {
	c := newClient(container, opts)
	c.account = account
	c.connectionString = storage.BuildConnectionString(c.protocol, account, key, c.endpointSuffix)
	c.containerURL = storage.ConnectionString{
		Protocol:       c.protocol,
		AccountName:    account,
		EndpointSuffix: c.endpointSuffix,
	}.ContainerURL(container)

	if err := c.open(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromConnectionString creates a Client from a connection string. Protocol,
// suffix and a custom BlobEndpoint are all taken from the string, which is kept verbatim.
func NewFromConnectionString(connectionString, container string, opts ...Option) (*Client, error) {
	cs, err := storage.ParseConnectionString(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	c := newClient(container, opts)
	c.account = cs.AccountName
	c.protocol = cs.Protocol
	c.endpointSuffix = cs.EndpointSuffix
	c.connectionString = connectionString
	c.containerURL = cs.ContainerURL(container)

	if err := c.open(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromConfig picks the constructor matching cfg.
func NewFromConfig(cfg storage.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := []Option{WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)}
	if cfg.CopyPollMillis > 0 {
		base = append(base, WithCopyPollInterval(time.Duration(cfg.CopyPollMillis)*time.Millisecond))
	}
	opts = append(base, opts...)

	if cfg.ConnectionString != "" {
		return NewFromConnectionString(cfg.ConnectionString, cfg.Container, opts...)
	}
	if cfg.Protocol != "" {
		opts = append([]Option{WithProtocol(cfg.Protocol)}, opts...)
	}
	if cfg.EndpointSuffix != "" {
		opts = append([]Option{WithEndpointSuffix(cfg.EndpointSuffix)}, opts...)
	}
	return New(cfg.Account, cfg.Container, cfg.AccessKey, opts...)
}

func newClient(container string, opts []Option) *Client {
	c := &Client{
		container:      container,
		protocol:       storage.DefaultProtocol,
		endpointSuffix: storage.DefaultEndpointSuffix,
		logger:         zap.NewNop(),
		pollInterval:   defaultCopyPollInterval,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) open() error {
	if c.service == nil {
		svc, err := storage.Open(c.connectionString, c.timeout)
		if err != nil {
			return err
		}
		c.service = svc
	}
	c.containerClient = c.service.NewContainerClient(c.container)
	return nil
}

// Account returns the storage account name.
func (c *Client) Account() string { return c.account }

// Container returns the container name.
func (c *Client) Container() string { return c.container }

// Protocol returns the endpoint protocol.
func (c *Client) Protocol() string { return c.protocol }

// EndpointSuffix returns the endpoint suffix.
func (c *Client) EndpointSuffix() string { return c.endpointSuffix }

// ConnectionString returns the connection string the client was opened with.
func (c *Client) ConnectionString() string { return c.connectionString }

// ContainerURL returns the base URL used for signed URLs.
func (c *Client) ContainerURL() string { return c.containerURL }

// Ref identifies the blob an operation targets. Set at most one of the fields;
// when several are set, Client wins over SASURL, which wins over Path.
type Ref struct {
	// Client is a previously resolved handle.
	Client storage.BlobClient
	// Path is the blob name relative to the container.
	Path string
	// SASURL is a signed URL granting direct access to the blob.
	SASURL string
}

// Path is shorthand for Ref{Path: p}.
func Path(p string) Ref {
	return Ref{Path: p}
}

// SASURL is shorthand for Ref{SASURL: u}.
func SASURL(u string) Ref {
	return Ref{SASURL: u}
}

func (r Ref) isZero() bool {
	return r.Client == nil && r.Path == "" && r.SASURL == ""
}

// NewBlobClient builds a handle from a signed URL or, failing that, a blob path.
func (c *Client) NewBlobClient(blobPath, sasURL string) (storage.BlobClient, error) {
	switch {
	case sasURL != "":
		return c.service.NewBlobClientFromURL(sasURL)
	case blobPath != "":
		return c.containerClient.NewBlobClient(blobPath), nil
	default:
		return nil, ErrMissingReference
	}
}

// Bind resolves ref and keeps the handle. Later operations reuse it unless they
// pass an explicit handle.
func (c *Client) Bind(ref Ref) (storage.BlobClient, error) {
	bc, err := c.resolve(ref)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.bound = bc
	c.mu.Unlock()
	return bc, nil
}

// Unbind drops the bound handle.
func (c *Client) Unbind() {
	c.mu.Lock()
	c.bound = nil
	c.mu.Unlock()
}

// Bound returns the bound handle, or nil.
func (c *Client) Bound() storage.BlobClient {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bound
}

// origin says which part of a Ref produced a handle.
type origin int

const (
	fromHandle origin = iota
	fromBound
	fromURL
	fromPath
)

// resolve applies the resolution order: explicit handle, bound handle, URL, path.
func (c *Client) resolve(ref Ref) (storage.BlobClient, error) {
	bc, _, err := c.pick(ref)
	return bc, err
}

func (c *Client) pick(ref Ref) (storage.BlobClient, origin, error) {
	if ref.Client != nil {
		return ref.Client, fromHandle, nil
	}
	if bound := c.Bound(); bound != nil {
		return bound, fromBound, nil
	}
	bc, err := c.NewBlobClient(ref.Path, ref.SASURL)
	if err != nil {
		return nil, 0, err
	}
	if ref.SASURL != "" {
		return bc, fromURL, nil
	}
	return bc, fromPath, nil
}

// target resolves ref and names the blob behind the chosen handle. ref.Path is the
// name only when the handle was built from it or passed alongside it; a bound or
// URL handle is named from its own URL.
func (c *Client) target(ref Ref) (storage.BlobClient, string, error) {
	bc, from, err := c.pick(ref)
	if err != nil {
		return nil, "", err
	}
	if ref.Path != "" && (from == fromPath || from == fromHandle) {
		return bc, ref.Path, nil
	}
	return bc, c.nameFromURL(bc), nil
}

// nameFromURL is the container-relative name of bc, or "" when its URL does not
// point into this container.
func (c *Client) nameFromURL(bc storage.BlobClient) string {
	name, err := storage.BlobNameFromURL(bc.URL(), c.container)
	if err != nil {
		c.logger.Debug("Could not derive blob name from url", zap.Error(err))
		return ""
	}
	return name
}

func (c *Client) record(ctx context.Context, action journal.Action, blobPath, target string, status journal.Status, opErr error) {
	if c.journal == nil {
		return
	}
	entry := journal.Entry{
		Action:    action,
		Container: c.container,
		BlobPath:  blobPath,
		Target:    target,
		Status:    status,
	}
	if opErr != nil {
		entry.Status = journal.StatusFailed
		entry.Error = opErr.Error()
	}
	if err := c.journal.Record(ctx, entry); err != nil {
		c.logger.Warn("Failed to record journal entry", zap.String("action", string(action)), zap.Error(err))
	}
}

func statusOf(err error) journal.Status {
	if err != nil {
		return journal.StatusFailed
	}
	return journal.StatusOK
}
