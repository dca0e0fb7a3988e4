package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-points-backend/internal/config"
	"photo-points-backend/internal/handlers"
	"photo-points-backend/internal/repository"
	"photo-points-backend/internal/scheduler"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Execute runs the command line
func Execute() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "photo-points",
		Short:         "Geotagged photo sharing with brand loyalty points",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), configPath, serve)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the configuration file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the API, realtime channel and scheduled jobs",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), configPath, serve)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create the relational tables and document indexes",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), configPath, migrate)
			},
		},
		&cobra.Command{
			Use:   "enrich",
			Short: "Run location enrichment once",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), configPath, func(ctx context.Context, a *app) error {
					_, err := a.enrichment.Run(ctx)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "reindex",
			Short: "Upload every photo record to the search index",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), configPath, func(ctx context.Context, a *app) error {
					n, err := a.indexer.Reindex(ctx)
					log.Info().Int("photos", n).Msg("Reindex finished")
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "clear-index",
			Short: "Delete every document from the search index",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), configPath, func(ctx context.Context, a *app) error {
					n, err := a.indexer.ClearIndex(ctx)
					log.Info().Int("documents", n).Msg("Index cleared")
					return err
				})
			},
		},
	)
	return root
}

// withApp loads configuration, connects the stores and runs fn until SIGINT or SIGTERM
func withApp(parent context.Context, configPath string, fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	setupLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to start")
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		a.close(closeCtx)
	}()

	if err := fn(ctx, a); err != nil {
		log.Error().Err(err).Msg("Command failed")
		return err
	}
	return nil
}

func migrate(ctx context.Context, a *app) error {
	if err := repository.Migrate(ctx, a.db); err != nil {
		return err
	}
	if err := a.mongo.EnsureIndexes(ctx); err != nil {
		return err
	}
	log.Info().Msg("Migrations applied")
	return nil
}

func serve(ctx context.Context, a *app) error {
	cfg := a.cfg

	go a.views.Run(ctx)

	jobs := scheduler.NewScheduler()
	err := jobs.Add(scheduler.Job{
		Name:    "location-enrichment",
		Spec:    cfg.Jobs.EnrichmentSchedule,
		Timeout: cfg.Jobs.EnrichmentTimeout,
		Run: func(ctx context.Context) error {
			_, err := a.enrichment.Run(ctx)
			return err
		},
	})
	if err != nil {
		return err
	}
	err = jobs.Add(scheduler.Job{
		Name:    "session-purge",
		Spec:    cfg.Jobs.SessionPurgeSchedule,
		Timeout: time.Minute,
		Run: func(ctx context.Context) error {
			n, err := a.users.PurgeInactiveSessions(ctx)
			if err == nil && n > 0 {
				log.Info().Int64("users", n).Msg("Inactive sessions purged")
			}
			return err
		},
	})
	if err != nil {
		return err
	}
	jobs.Start()
	defer jobs.Stop()

	router := handlers.NewRouter(handlers.Dependencies{
		Users:              a.users,
		Photos:             a.photos,
		Search:             a.search,
		Ledger:             a.ledger,
		Redemptions:        a.redemptions,
		Petitions:          a.petitions,
		Hub:                a.hub,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		Ready:              a.ready,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	a.hub.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}

// setupLogger configures zerolog logger
func setupLogger(cfg config.LogConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if cfg.File != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	switch cfg.Level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
