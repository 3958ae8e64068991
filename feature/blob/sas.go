package blob

import (
	"fmt"
	"time"

	"github.com/cdalton713/easier-blob-storage/core/storage"
)

// clockSkew is subtracted from the SAS start time.
const clockSkew = time.Minute

// SASGrant is a signed URL for one blob.
type SASGrant struct {
	URL         string              `json:"url"`
	Token       string              `json:"token"`
	Path        string              `json:"path"`
	Permissions storage.Permissions `json:"permissions"`
	StartsOn    time.Time           `json:"starts_on"`
	ExpiresOn   time.Time           `json:"expires_on"`
}

// SASOption narrows the default (all) permissions of a grant.
type SASOption func(*storage.Permissions)

// DenyRead removes read permission.
func DenyRead() SASOption { return func(p *storage.Permissions) { p.Read = false } }

// DenyWrite removes write permission.
func DenyWrite() SASOption { return func(p *storage.Permissions) { p.Write = false } }

// DenyDelete removes delete permission.
func DenyDelete() SASOption { return func(p *storage.Permissions) { p.Delete = false } }

// DenyAdd removes add permission.
func DenyAdd() SASOption { return func(p *storage.Permissions) { p.Add = false } }

// DenyCreate removes create permission.
func DenyCreate() SASOption { return func(p *storage.Permissions) { p.Create = false } }

// ReadOnly keeps only read permission.
func ReadOnly() SASOption {
	return func(p *storage.Permissions) { *p = storage.Permissions{Read: true} }
}

// WithPermissions replaces the permission set.
func WithPermissions(perms storage.Permissions) SASOption {
	return func(p *storage.Permissions) { *p = perms }
}

// CreateSAS signs a URL for blobPath valid from one minute ago until hours from now.
// A negative hours value yields a grant that has already expired.
//
// The URL is <container-url>/<escaped blob path>?<token>. The token is the raw query
// string, not a sas_token=<token> parameter, so the URL can be fetched directly.
func (c *Client) CreateSAS(blobPath string, hours float64, opts ...SASOption) (*SASGrant, error) {
	if blobPath == "" {
		return nil, ErrMissingReference
	}

	perms := storage.AllPermissions()
	for _, opt := range opts {
		opt(&perms)
	}

	now := c.now().UTC()
	grant := &SASGrant{
		Path:        blobPath,
		Permissions: perms,
		StartsOn:    now.Add(-clockSkew),
		ExpiresOn:   now.Add(time.Duration(hours * float64(time.Hour))),
	}

	token, err := c.service.SignBlob(storage.SASValues{
		Container:   c.container,
		Blob:        blobPath,
		Permissions: perms,
		StartsOn:    grant.StartsOn,
		ExpiresOn:   grant.ExpiresOn,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sas for %s: %w", blobPath, err)
	}

	grant.Token = token
	grant.URL = storage.BlobURL(c.containerURL, blobPath) + "?" + token
	return grant, nil
}
