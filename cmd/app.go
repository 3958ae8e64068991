package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cdalton713/easier-blob-storage/core/config"
	"github.com/cdalton713/easier-blob-storage/core/database"
	"github.com/cdalton713/easier-blob-storage/core/journal"
	"github.com/cdalton713/easier-blob-storage/core/logger"
	"github.com/cdalton713/easier-blob-storage/core/source"
	"github.com/cdalton713/easier-blob-storage/feature/blob"
	"github.com/cdalton713/easier-blob-storage/feature/importer"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	journal *journal.Journal
	blob    *blob.Client
	source  source.Client
}

// newApp loads configuration, builds the logger, opens the optional journal and
// the container client. A journal that cannot be opened is logged and skipped.
func newApp() (*app, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logg}

	if cfg.Database.Enabled {
		if db, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			a.db = db
			if j, err := journal.New(db); err != nil {
				logg.Warn("Transfer journal unavailable", zap.Error(err))
			} else {
				a.journal = j
			}
		}
	}

	opts := []blob.Option{blob.WithLogger(logg)}
	if a.journal != nil {
		opts = append(opts, blob.WithJournal(a.journal))
	}

	client, err := blob.NewFromConfig(cfg.Storage, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	a.blob = client

	return a, nil
}

// importer builds the import service, or returns nil when no source is enabled.
func (a *app) importer() (*importer.Service, error) {
	if !a.cfg.Source.Enabled {
		return nil, nil
	}
	if a.source == nil {
		src, err := source.NewClient(a.cfg.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to create source client: %w", err)
		}
		a.source = src
	}

	var rec blob.Recorder
	if a.journal != nil {
		rec = a.journal
	}
	ttl := time.Duration(a.cfg.Source.PlanCacheSeconds) * time.Second
	return importer.NewService(a.source, a.blob, a.logger, rec, ttl), nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
