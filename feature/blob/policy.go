package blob

import (
	"maps"
	"path"
	"slices"
	"strings"
)

// IgnoredMetadataKey is set on the blob metadata when a deny-list skips a download.
const (
	IgnoredMetadataKey   = "DOWNLOAD"
	IgnoredMetadataValue = "IGNORED DUE TO FILETYPE"
)

// DownloadPolicy controls what Download fetches and what happens afterwards.
type DownloadPolicy struct {
	// SubFolders are joined between the destination root and the blob path.
	SubFolders []string
	// OnlyTypes, when set, is an allow-list of extensions (without the dot, any case).
	OnlyTypes []string
	// IgnoredTypes, when set and OnlyTypes is not, is a deny-list of extensions.
	IgnoredTypes []string
	// DeleteAfter deletes the blob once the download (or skip) completes.
	DeleteAfter bool
	// MoveAfter moves the blob to this path once the download completes. Ignored
	// when DeleteAfter is set.
	MoveAfter string
	// MoveContainer is the destination container for MoveAfter. Defaults to the
	// client's container.
	MoveContainer string
	// Metadata, when non-empty, replaces the blob metadata after the transfer.
	Metadata map[string]string
}

// decision is the outcome of evaluating a policy against one blob.
type decision struct {
	download bool
	reason   string
	metadata map[string]string
}

// evaluate applies the allow-list, then the deny-list. The policy is not modified.
func (p DownloadPolicy) evaluate(blobName string) decision {
	ext := extension(blobName)
	d := decision{download: true, metadata: p.Metadata}

	switch {
	case len(p.OnlyTypes) > 0:
		if !containsType(p.OnlyTypes, ext) {
			d.download = false
			d.reason = "extension not in allow-list"
		}
	case len(p.IgnoredTypes) > 0:
		if containsType(p.IgnoredTypes, ext) {
			d.download = false
			d.reason = "extension in deny-list"
			if p.Metadata != nil {
				d.metadata = maps.Clone(p.Metadata)
				d.metadata[IgnoredMetadataKey] = IgnoredMetadataValue
			}
		}
	}
	return d
}

// extension returns the upper-cased extension of name without the leading dot.
func extension(name string) string {
	return strings.ToUpper(strings.TrimPrefix(path.Ext(name), "."))
}

func containsType(types []string, ext string) bool {
	return slices.ContainsFunc(types, func(t string) bool {
		return strings.EqualFold(strings.TrimPrefix(t, "."), ext)
	})
}
