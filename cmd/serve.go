package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cdalton713/easier-blob-storage/core/loader"
	"github.com/cdalton713/easier-blob-storage/core/logger"
	"github.com/cdalton713/easier-blob-storage/core/middleware/auth"
	"github.com/cdalton713/easier-blob-storage/core/middleware/rayid"
	"github.com/cdalton713/easier-blob-storage/feature/blob"
	"github.com/cdalton713/easier-blob-storage/feature/history"
	"github.com/cdalton713/easier-blob-storage/feature/importer"
	"github.com/cdalton713/easier-blob-storage/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Starts the HTTP server and loads every enabled feature.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp()
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		logg := a.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager()
		mgr.Register(blob.NewFeature(a.blob))

		svc, err := a.importer()
		if err != nil {
			logg.Warn("Optional import source unavailable", zap.Error(err))
		}
		mgr.Register(importer.NewFeature(svc, a.cfg.Source.Bucket))

		var reader history.Reader
		if a.journal != nil {
			reader = a.journal
		}
		mgr.Register(history.NewFeature(reader, logg))
		mgr.Register(integrity.NewFeature(integrity.NewService(a.blob, a.db, a.source, a.cfg.Source.Bucket, logg)))

		// RayID first so every later log line carries it.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))

		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		addr := a.cfg.Server.ListenAddr()
		go func() {
			logg.Info("Starting server",
				zap.String("addr", addr),
				zap.String("container", a.blob.Container()),
			)
			if err := app.Listen(addr); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
