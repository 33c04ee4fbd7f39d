package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"factagent/internal/config"
	"factagent/internal/server"
	"factagent/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fact-check web UI and API",
	Long: `Starts the HTTP server with the browser chat UI and JSON API.

The .env file that supplied the credential is watched; rotating the key
in the file takes effect on the next request without a restart.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	client := buildClient(cfg)
	p := buildPipeline(cfg, client, store)

	tracker, err := session.NewTracker(filepath.Dir(cfg.Memory.DatabasePath), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Watch the credential file so a rotated key reaches KeySource.
	watchPath := envFile
	if watchPath == "" {
		if found, _ := config.LoadDotenv(config.DefaultEnvPaths(filepath.Dir(cfgPath)), false); found != "" {
			watchPath = found
		}
	}
	if watchPath != "" {
		if err := config.WatchEnvFile(ctx, watchPath, logger, nil); err != nil {
			logger.Warn("credential watcher unavailable", zap.Error(err))
		}
	}

	srv := server.New(cfg.Server, p, store, tracker, logger)
	logger.Info("starting factagent",
		zap.String("addr", cfg.Server.Addr),
		zap.String("model", cfg.LLM.Model),
		zap.String("db", cfg.Memory.DatabasePath),
		zap.String("session", srv.SessionID()))
	return srv.Run(ctx)
}
