package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/faizahmd2/realtime-editor/internal/config"
	"github.com/faizahmd2/realtime-editor/internal/janitor"
	"github.com/faizahmd2/realtime-editor/internal/logger"
	"github.com/faizahmd2/realtime-editor/internal/observability"
	"github.com/faizahmd2/realtime-editor/pkg/cache"
	"github.com/faizahmd2/realtime-editor/pkg/document"
	"github.com/faizahmd2/realtime-editor/pkg/persist"
	"github.com/faizahmd2/realtime-editor/pkg/server"
	"github.com/faizahmd2/realtime-editor/pkg/store"
	memorystore "github.com/faizahmd2/realtime-editor/pkg/store/memory"
	sqlitestore "github.com/faizahmd2/realtime-editor/pkg/store/sqlite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the editor server",
	Long: `Run the editor server in the foreground. The process serves the
editing UI, websocket connections and the load/save/delete endpoints until
it receives SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(cfgFile)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := logger.New(logger.Config{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
		Pretty:  cfg.Logging.Pretty,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Close()
	log := appLogger.Get()

	observability.EnsureRegistered()

	codec, err := store.NewCodec(cfg.Storage.EncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to create codec: %w", err)
	}

	var st store.Store
	switch cfg.Storage.Driver {
	case "sqlite":
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		st, err = sqlitestore.New(cfg.Storage.Path, log)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
	case "memory":
		st = memorystore.New()
		log.Warn().Msg("Using in-memory store, documents will not survive a restart")
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	contentCache, err := cache.New(ctx, cache.Config{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})
	cancel()
	if err != nil {
		// The cache is best-effort; run without it rather than fail.
		log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		contentCache = nil
	} else if contentCache != nil {
		log.Info().Str("addr", cfg.Cache.Addr).Msg("Cache connected")
		defer contentCache.Close()
	}

	gateway := persist.New(st, contentCache, codec, cfg.Cache.TTL, log)
	manager := document.NewManager(gateway, cfg.Document.SaveInterval, log)

	srv, err := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Manager:        manager,
		Gateway:        gateway,
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	sweeper := janitor.New(manager, cfg.Document.IdleTimeout, log)
	if err := sweeper.Start(); err != nil {
		return fmt.Errorf("failed to start janitor: %w", err)
	}

	// Apply logging changes from config file edits without a restart.
	loader.Watch(func(updated *config.Config) {
		appLogger.SetLevel(updated.Logging.Level)
		log.Info().Str("level", updated.Logging.Level).Msg("Config reloaded")
	})

	srv.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	sweeper.Stop()
	if err := srv.Stop(); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}

	return nil
}
