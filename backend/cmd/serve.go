package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lms/backend/routes"
	"lms/backend/services"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	cfg, logger, db, err := setup(cmd)
	if err != nil {
		return err
	}

	if cfg.ReconcileInterval > 0 {
		tracker := services.NewTracker(db, cfg.PassThreshold, cfg.EntranceModuleID, logger)
		reconciler := services.NewReconciler(db, tracker, logger)
		if err := reconciler.Start(cfg.ReconcileInterval); err != nil {
			return err
		}
		defer reconciler.Stop()
		logger.Info("progress reconciliation scheduled", "interval", cfg.ReconcileInterval)
	}

	app := routes.NewApp(db, cfg, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.ServerPort, "db_driver", cfg.DBDriver)
		errc <- app.Listen(":" + cfg.ServerPort)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
