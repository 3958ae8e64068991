package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cdalton713/easier-blob-storage/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importBucket     string
	importPrefix     string
	importDestPrefix string
	importSync       bool
	importPurge      bool
	importDryRun     bool
	yesConfirm       bool
)

// importCmd copies objects from the S3-compatible source into the container.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import objects from the S3-compatible source",
	Long: `Copies every object under --prefix from the source bucket into the container,
placing each under --dest-prefix.

With --sync the command compares both sides first and uploads only what is missing
or differs in size. --purge additionally deletes blobs that no longer exist in the source.

Examples:
  # Plain import
  import --bucket exports --prefix daily/ --dest-prefix imported/

  # Report what a sync would do
  import --sync --dry-run

  # Mirror the source, deleting stale blobs, without prompting
  import --sync --purge --yes`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importBucket, "bucket", "", "Source bucket (defaults to SOURCE_BUCKET)")
	importCmd.Flags().StringVar(&importPrefix, "prefix", "", "Only import objects under this prefix")
	importCmd.Flags().StringVar(&importDestPrefix, "dest-prefix", "", "Prefix for the imported blob names")
	importCmd.Flags().BoolVar(&importSync, "sync", false, "Only upload missing or changed objects")
	importCmd.Flags().BoolVar(&importPurge, "purge", false, "With --sync, delete blobs missing in the source")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Report only (no mutations even with --yes)")
	importCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	svc, err := a.importer()
	if err != nil {
		return err
	}
	if svc == nil {
		return errors.New("import source is not enabled (set SOURCE_ENABLED=true)")
	}

	bucket := importBucket
	if bucket == "" {
		bucket = a.cfg.Source.Bucket
	}
	if bucket == "" {
		return errors.New("no source bucket given")
	}

	if !importSync {
		if importPurge {
			return errors.New("--purge requires --sync")
		}
		report, err := svc.Import(ctx, bucket, importPrefix, importDestPrefix)
		if err != nil {
			return fmt.Errorf("failed to import: %w", err)
		}
		for _, f := range report.Failed {
			a.logger.Warn("Object not imported", zap.String("key", f.Key), zap.String("error", f.Error))
		}
		if len(report.Failed) > 0 {
			return fmt.Errorf("%d of %d objects failed to import", len(report.Failed), len(report.Failed)+len(report.Imported))
		}
		return nil
	}

	opts := reconcile.Options{
		DoUpload: true,
		DoPurge:  importPurge,
		DryRun:   importDryRun,
	}

	a.logger.Info("Planning sync...", zap.String("bucket", bucket), zap.String("prefix", importPrefix))
	plan, err := svc.Plan(ctx, bucket, importPrefix, importDestPrefix, opts)
	if err != nil {
		return fmt.Errorf("failed to plan sync: %w", err)
	}

	printSyncReport(a.logger, plan)

	if importDryRun {
		a.logger.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if len(plan.Actions) == 0 {
		a.logger.Info("Container already matches the source.")
		return nil
	}

	if plan.Summary.PurgeActions > 0 && !confirmDestructiveAction() {
		a.logger.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	opts.Confirmed = true

	a.logger.Info("Applying actions...")
	_, executed, err := svc.Sync(ctx, bucket, importPrefix, importDestPrefix, opts)
	if err != nil {
		return fmt.Errorf("failed to apply plan: %w", err)
	}

	a.logger.Info("Successfully executed actions", zap.Int("count", executed))
	return nil
}

// printSyncReport logs plan totals and a few sample actions.
func printSyncReport(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary

	l.Info("Sync report",
		zap.Int("total_items", s.TotalItems),
		zap.Int("missing_container", s.MissingContainer),
		zap.Int("missing_source", s.MissingSource),
		zap.Int("mismatches", s.Mismatches),
	)

	if len(plan.Actions) == 0 {
		return
	}

	l.Info("Planned actions",
		zap.Int("upload_actions", s.UploadActions),
		zap.Int("purge_actions", s.PurgeActions),
		zap.Int("total_actions", len(plan.Actions)),
	)

	maxShow := min(5, len(plan.Actions))
	for _, action := range plan.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key),
			zap.String("reason", action.Reason),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\nAuto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\nType 'yes' to confirm deleting blobs: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
