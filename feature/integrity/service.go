package integrity

import (
	"context"
	"errors"

	"github.com/cdalton713/easier-blob-storage/core/source"
	"github.com/cdalton713/easier-blob-storage/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotConfigured is returned by checks whose dependency is disabled.
var ErrNotConfigured = errors.New("not configured")

// Service runs the health checks. db and src may be nil.
type Service struct {
	container checks.Lister
	db        *gorm.DB
	source    source.Client
	bucket    string
	logger    *zap.Logger
}

// NewService creates a new integrity service.
func NewService(container checks.Lister, db *gorm.DB, src source.Client, bucket string, logger *zap.Logger) *Service {
	return &Service{
		container: container,
		db:        db,
		source:    src,
		bucket:    bucket,
		logger:    logger,
	}
}

// CheckContainer verifies the container can be listed.
func (s *Service) CheckContainer(ctx context.Context) (*checks.ContainerReport, error) {
	return checks.CheckContainer(ctx, s.container)
}

// CheckJournal verifies the journal table schema.
func (s *Service) CheckJournal() (*checks.JournalReport, error) {
	if s.db == nil {
		return nil, ErrNotConfigured
	}
	return checks.CheckJournal(s.db)
}

// CheckSource verifies the default import bucket.
func (s *Service) CheckSource(ctx context.Context) (*checks.SourceReport, error) {
	if s.source == nil {
		return nil, ErrNotConfigured
	}
	return checks.CheckSource(ctx, s.source, s.bucket)
}
