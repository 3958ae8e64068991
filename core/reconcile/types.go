package reconcile

import (
	"fmt"
	"time"
)

// Entry is one object as seen by a single side of the reconciliation.
type Entry struct {
	// Key is the object name relative to the side's prefix.
	Key string `json:"key"`

	// Size is the object size in bytes.
	Size int64 `json:"size"`
}

// Result represents the reconciliation output for a single key.
type Result struct {
	// Key is the object name relative to both prefixes.
	Key string `json:"key"`

	// SourcePresent indicates whether the object exists in the source bucket.
	SourcePresent bool `json:"source_present"`

	// ContainerPresent indicates whether the blob exists in the container.
	ContainerPresent bool `json:"container_present"`

	// SourceSize is the object size in the source, zero when absent.
	SourceSize int64 `json:"source_size,omitempty"`

	// ContainerSize is the blob size in the container, zero when absent.
	ContainerSize int64 `json:"container_size,omitempty"`

	// Mismatch describes differences between both copies, e.g. "size: source=3 container=4".
	Mismatch []string `json:"mismatch"`
}

// Spec defines the two sides of a reconciliation.
type Spec struct {
	// Adapter loads both indices.
	Adapter Adapter

	// Bucket is the source bucket.
	Bucket string

	// SourcePrefix limits the source listing. Keys are reported without it.
	SourcePrefix string

	// ContainerPrefix limits the container listing. Keys are reported without it.
	ContainerPrefix string

	// CacheTTL is how long built indices are reused. Zero disables caching.
	CacheTTL time.Duration
}

// CacheKey identifies the indices a spec builds.
func (s *Spec) CacheKey() string {
	return fmt.Sprintf("%s|%s|%s|%s", s.Adapter.Name(), s.Bucket, s.SourcePrefix, s.ContainerPrefix)
}

// ActionType is the type of a planned mutation.
type ActionType string

const (
	// ActionUpload copies a source object into the container.
	ActionUpload ActionType = "upload"
	// ActionDeleteBlob deletes a blob that has no source object.
	ActionDeleteBlob ActionType = "delete_blob"
)

// Action represents a planned mutation.
type Action struct {
	Type   ActionType `json:"type"`
	Key    string     `json:"key"`
	Reason string     `json:"reason"`
}

// Plan contains reconciliation results and planned actions.
type Plan struct {
	Results []Result    `json:"results"`
	Actions []Action    `json:"actions"`
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate counts for a plan.
type PlanSummary struct {
	// TotalItems is the number of distinct keys on either side.
	TotalItems int `json:"total_items"`

	// MissingContainer counts source objects with no blob.
	MissingContainer int `json:"missing_container"`

	// MissingSource counts blobs with no source object.
	MissingSource int `json:"missing_source"`

	// Mismatches counts keys present on both sides that differ.
	Mismatches int `json:"mismatches"`

	// UploadActions counts planned uploads.
	UploadActions int `json:"upload_actions"`

	// PurgeActions counts planned blob deletions.
	PurgeActions int `json:"purge_actions"`
}

// Options controls planning and execution.
type Options struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// DoUpload plans uploads for missing and mismatched keys.
	DoUpload bool

	// DoPurge plans deletion of blobs whose source object is gone.
	DoPurge bool

	// Confirmed must be set for any mutation to execute.
	Confirmed bool
}
