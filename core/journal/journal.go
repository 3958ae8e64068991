package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Action names a journaled operation.
type Action string

const (
	ActionUpload   Action = "upload"
	ActionDownload Action = "download"
	ActionDelete   Action = "delete"
	ActionCopy     Action = "copy"
	ActionMove     Action = "move"
	ActionMetadata Action = "metadata"
	ActionImport   Action = "import"
)

// Status is the outcome of a journaled operation.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Entry is one row of the transfer journal.
type Entry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Action    Action    `gorm:"size:16;index" json:"action"`
	Container string    `gorm:"size:63" json:"container"`
	BlobPath  string    `gorm:"size:1024" json:"blob_path"`
	Target    string    `gorm:"size:1024" json:"target,omitempty"`
	Status    Status    `gorm:"size:16" json:"status"`
	Error     string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName overrides the table name used by Entry.
func (Entry) TableName() string {
	return "transfer_journal"
}

// Journal records blob operations in a database.
type Journal struct {
	db *gorm.DB
}

// New creates the journal and migrates its table.
func New(db *gorm.DB) (*Journal, error) {
	if db == nil {
		return nil, errors.New("journal requires a database connection")
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate transfer journal: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record inserts an entry. CreatedAt is filled in when zero.
func (j *Journal) Record(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := j.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record %s of %s: %w", entry.Action, entry.BlobPath, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []Entry
	err := j.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read transfer journal: %w", err)
	}
	return entries, nil
}
