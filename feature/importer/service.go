package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"time"

	"github.com/cdalton713/easier-blob-storage/core/journal"
	"github.com/cdalton713/easier-blob-storage/core/reconcile"
	"github.com/cdalton713/easier-blob-storage/core/source"
	"github.com/cdalton713/easier-blob-storage/core/storage"
	"github.com/cdalton713/easier-blob-storage/feature/blob"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrBucketNotFound is returned when the source bucket does not exist.
var ErrBucketNotFound = errors.New("source bucket not found")

// Container is the part of blob.Client the importer writes through.
type Container interface {
	Container() string
	UploadReader(ctx context.Context, body io.ReadSeeker, ref blob.Ref) error
	Delete(ctx context.Context, ref blob.Ref) error
	List(ctx context.Context, opts storage.ListOptions) iter.Seq2[storage.BlobItem, error]
}

// Report summarises one import run.
type Report struct {
	Bucket   string    `json:"bucket"`
	Imported []string  `json:"imported"`
	Failed   []Failure `json:"failed"`
}

// Failure is an object that could not be imported.
type Failure struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

// Service copies objects from an S3-compatible bucket into the container.
type Service struct {
	source    source.Client
	container Container
	logger    *zap.Logger
	journal   blob.Recorder
	cacheTTL  time.Duration
}

// NewService creates a new import service. journal may be nil.
func NewService(src source.Client, container Container, logger *zap.Logger, journal blob.Recorder, cacheTTL time.Duration) *Service {
	return &Service{
		source:    src,
		container: container,
		logger:    logger,
		journal:   journal,
		cacheTTL:  cacheTTL,
	}
}

// Import copies every object under prefix in bucket to destPrefix + (key without prefix).
// Individual failures are collected in the report; only a missing bucket, a listing
// error or a cancelled context abort the run.
func (s *Service) Import(ctx context.Context, bucket, prefix, destPrefix string) (*Report, error) {
	if err := s.checkBucket(ctx, bucket); err != nil {
		return nil, err
	}

	report := &Report{Bucket: bucket, Imported: []string{}, Failed: []Failure{}}
	opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: true}

	for obj := range s.source.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return report, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		dest := destinationFor(obj.Key, prefix, destPrefix)
		if err := s.importObject(ctx, bucket, obj.Key, dest); err != nil {
			s.logger.Warn("Import failed", zap.String("key", obj.Key), zap.Error(err))
			report.Failed = append(report.Failed, Failure{Key: obj.Key, Error: err.Error()})
			continue
		}
		report.Imported = append(report.Imported, obj.Key)
	}

	s.logger.Info("Import finished",
		zap.String("bucket", bucket),
		zap.Int("imported", len(report.Imported)),
		zap.Int("failed", len(report.Failed)),
	)
	return report, nil
}

// Plan reconciles bucket/prefix against the container under destPrefix.
func (s *Service) Plan(ctx context.Context, bucket, prefix, destPrefix string, opts reconcile.Options) (*reconcile.Plan, error) {
	if err := s.checkBucket(ctx, bucket); err != nil {
		return nil, err
	}
	return reconcile.ReconcileWithPlan(ctx, s.spec(bucket, prefix, destPrefix), opts)
}

// Sync plans and, when opts confirm it, applies uploads and purges so the container
// mirrors the source.
func (s *Service) Sync(ctx context.Context, bucket, prefix, destPrefix string, opts reconcile.Options) (*reconcile.Plan, int, error) {
	if err := s.checkBucket(ctx, bucket); err != nil {
		return nil, 0, err
	}
	return reconcile.ReconcileAndApply(ctx, s.spec(bucket, prefix, destPrefix), opts)
}

func (s *Service) spec(bucket, prefix, destPrefix string) *reconcile.Spec {
	return &reconcile.Spec{
		Adapter:         &adapter{svc: s},
		Bucket:          bucket,
		SourcePrefix:    prefix,
		ContainerPrefix: destPrefix,
		CacheTTL:        s.cacheTTL,
	}
}

func (s *Service) checkBucket(ctx context.Context, bucket string) error {
	exists, err := s.source.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}
	return nil
}

func (s *Service) importObject(ctx context.Context, bucket, key, dest string) error {
	err := s.copyObject(ctx, bucket, key, dest)
	s.record(ctx, key, dest, err)
	return err
}

func (s *Service) copyObject(ctx context.Context, bucket, key, dest string) error {
	obj, err := s.source.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer obj.Close()

	body, ok := obj.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(obj)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}
		body = bytes.NewReader(data)
	}

	return s.container.UploadReader(ctx, body, blob.Path(dest))
}

func (s *Service) record(ctx context.Context, key, dest string, opErr error) {
	if s.journal == nil {
		return
	}
	entry := journal.Entry{
		Action:    journal.ActionImport,
		Container: s.container.Container(),
		BlobPath:  key,
		Target:    dest,
		Status:    journal.StatusOK,
	}
	if opErr != nil {
		entry.Status = journal.StatusFailed
		entry.Error = opErr.Error()
	}
	if err := s.journal.Record(ctx, entry); err != nil {
		s.logger.Warn("Failed to record journal entry", zap.String("key", key), zap.Error(err))
	}
}

// destinationFor maps a source key under prefix to its blob name under destPrefix.
func destinationFor(key, prefix, destPrefix string) string {
	return destPrefix + strings.TrimPrefix(key, prefix)
}
