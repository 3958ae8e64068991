package storage

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultProtocol is used when a connection string omits DefaultEndpointsProtocol.
	DefaultProtocol = "https"
	// DefaultEndpointSuffix is the public cloud endpoint suffix.
	DefaultEndpointSuffix = "core.windows.net"
)

// ConnectionString holds the fields of a storage account connection string.
type ConnectionString struct {
	Protocol              string
	AccountName           string
	AccountKey            string
	EndpointSuffix        string
	BlobEndpoint          string
	SharedAccessSignature string
}

// BuildConnectionString renders the account fields in the fixed order the service expects.
func BuildConnectionString(protocol, account, key, suffix string) string {
	return fmt.Sprintf("DefaultEndpointsProtocol=%s;AccountName=%s;AccountKey=%s;EndpointSuffix=%s",
		protocol, account, key, suffix)
}

// String renders the connection string. BlobEndpoint and SharedAccessSignature
// are appended only when set.
func (cs ConnectionString) String() string {
	s := BuildConnectionString(cs.Protocol, cs.AccountName, cs.AccountKey, cs.EndpointSuffix)
	if cs.BlobEndpoint != "" {
		s += ";BlobEndpoint=" + cs.BlobEndpoint
	}
	if cs.SharedAccessSignature != "" {
		s += ";SharedAccessSignature=" + cs.SharedAccessSignature
	}
	return s
}

// ParseConnectionString splits a connection string into its fields.
// Missing protocol and suffix fall back to DefaultProtocol and DefaultEndpointSuffix.
func ParseConnectionString(s string) (ConnectionString, error) {
	cs := ConnectionString{}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		// Values (keys, signatures) may contain '=', so split on the first one only.
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return ConnectionString{}, fmt.Errorf("malformed connection string segment %q", part)
		}
		switch strings.ToLower(key) {
		case "defaultendpointsprotocol":
			cs.Protocol = value
		case "accountname":
			cs.AccountName = value
		case "accountkey":
			cs.AccountKey = value
		case "endpointsuffix":
			cs.EndpointSuffix = value
		case "blobendpoint":
			cs.BlobEndpoint = value
		case "sharedaccesssignature":
			cs.SharedAccessSignature = value
		}
	}

	if cs.AccountName == "" && cs.BlobEndpoint == "" {
		return ConnectionString{}, fmt.Errorf("connection string has no AccountName or BlobEndpoint")
	}
	if cs.Protocol == "" {
		cs.Protocol = DefaultProtocol
		if cs.BlobEndpoint != "" {
			if u, err := url.Parse(cs.BlobEndpoint); err == nil && u.Scheme != "" {
				cs.Protocol = u.Scheme
			}
		}
	}
	if cs.EndpointSuffix == "" {
		cs.EndpointSuffix = DefaultEndpointSuffix
	}
	return cs, nil
}

// ServiceURL returns the blob service root, honouring a custom BlobEndpoint.
func (cs ConnectionString) ServiceURL() string {
	if cs.BlobEndpoint != "" {
		return strings.TrimSuffix(cs.BlobEndpoint, "/")
	}
	return fmt.Sprintf("%s://%s.blob.%s", cs.Protocol, cs.AccountName, cs.EndpointSuffix)
}

// ContainerURL joins the service root with the container name.
func (cs ConnectionString) ContainerURL(container string) string {
	return cs.ServiceURL() + "/" + url.PathEscape(container)
}

// EscapeBlobPath percent-encodes every segment of a blob path, keeping '/' separators.
func EscapeBlobPath(blobPath string) string {
	segments := strings.Split(blobPath, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// BlobURL returns the URL of a blob under containerURL.
func BlobURL(containerURL, blobPath string) string {
	return strings.TrimSuffix(containerURL, "/") + "/" + EscapeBlobPath(strings.TrimPrefix(blobPath, "/"))
}

// BlobNameFromURL extracts the blob name from a blob URL. Both host-style
// (https://acct.blob.core.windows.net/container/name) and path-style
// (http://127.0.0.1:10000/acct/container/name) URLs are understood.
func BlobNameFromURL(rawURL, container string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse blob url: %w", err)
	}
	segments := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
	switch {
	case len(segments) >= 2 && segments[0] == container:
		return strings.Join(segments[1:], "/"), nil
	case len(segments) >= 3 && segments[1] == container:
		return strings.Join(segments[2:], "/"), nil
	case len(segments) >= 2:
		return strings.Join(segments[1:], "/"), nil
	default:
		return "", fmt.Errorf("blob url %q has no blob name", rawURL)
	}
}

// HasSignature reports whether a URL already carries a SAS signature.
func HasSignature(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Query().Get("sig") != ""
}
