package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/ashureev/talentscout/internal/api"
	"github.com/ashureev/talentscout/internal/config"
	"github.com/ashureev/talentscout/internal/engine"
	"github.com/ashureev/talentscout/internal/intake"
	"github.com/ashureev/talentscout/internal/interview"
	"github.com/ashureev/talentscout/internal/middleware"
	"github.com/ashureev/talentscout/internal/notify"
	"github.com/ashureev/talentscout/internal/questions"
	"github.com/ashureev/talentscout/internal/sentiment"
	"github.com/ashureev/talentscout/internal/store"
)

func newServeCmd() *cobra.Command {
	var port, dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("db-path") {
				cfg.DB.Path = dbPath
			}
			return runServer(cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "8080", "listen port (overrides PORT)")
	cmd.Flags().StringVar(&dbPath, "db-path", "./data/talentscout.db", "SQLite database path (overrides DB_PATH)")
	return cmd
}

//nolint:gocyclo // Startup wires every dependency in order.
func runServer(cfg *config.Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting server", "port", cfg.Port, "db_driver", cfg.DB.Driver)

	repo, err := store.Open(cfg.DB.Driver, cfg.DBTarget())
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	slog.Info("Database connected")

	checks := map[string]api.CheckFunc{"database": repo.Ping}

	// Remote sentiment scorer (optional); the built-in lexicon is the fallback.
	var scorer sentiment.Scorer
	if cfg.Sentiment.Addr != "" {
		remoteCfg := sentiment.DefaultRemoteConfig(cfg.Sentiment.Addr)
		remoteCfg.RequestTimeout = cfg.Sentiment.Timeout
		remote, err := sentiment.NewRemoteScorer(remoteCfg, logger)
		if err != nil {
			slog.Warn("Failed to connect to sentiment service, using built-in lexicon", "error", err)
		} else {
			defer remote.Close()
			scorer = remote
			checks["sentiment"] = remote.Health
		}
	}
	if scorer == nil {
		slog.Info("Sentiment scoring uses the built-in lexicon")
	}

	eng := engine.New(
		intake.DefaultSchema(),
		questions.Default(),
		sentiment.NewAnnotator(scorer, logger),
		engine.WithExitKeyword(cfg.Session.ExitKeyword),
		engine.WithLogger(logger),
	)

	publisher := buildPublisher(cfg, logger)
	defer func() {
		if closeErr := publisher.Close(); closeErr != nil {
			slog.Warn("Failed to close publishers", "error", closeErr)
		}
	}()

	conversationLogger, err := interview.NewConversationLogger(interview.ConversationLogConfig{
		Enabled:   cfg.ConversationLog.Enabled,
		Dir:       cfg.ConversationLog.Dir,
		QueueSize: cfg.ConversationLog.QueueSize,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize conversation logger: %w", err)
	}
	defer func() {
		if closeErr := conversationLogger.Close(); closeErr != nil {
			slog.Warn("Failed to close conversation logger", "error", closeErr)
		}
	}()

	svc := interview.NewService(eng, repo, publisher, conversationLogger, logger)

	rateLimiter := interview.NewRateLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.WindowDuration)
	defer rateLimiter.Stop()

	conns := interview.NewConnRegistry()
	sessionHandler := interview.NewHandler(svc, rateLimiter, conns, interview.HandlerConfig{
		MaxRequestBodySize: cfg.HTTP.MaxRequestBodySize,
		AllowedOrigins:     cfg.HTTP.AllowedOrigins,
	})
	healthHandler := api.NewHealthHandler(checks, cfg.HTTP.HealthCheckTimeout)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(cfg.HTTP.AllowedOrigins))

	healthHandler.RegisterHealth(r)
	sessionHandler.RegisterRoutes(r)

	// WebSocket connections are long-lived, so there is no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interview.StartSweeper(ctx, svc, cfg.Session.TTL, cfg.Session.SweepInterval, func(sessionID string) {
		if closed := conns.CloseSession(sessionID); closed > 0 {
			slog.Info("Closed chat sockets of expired session", "session_id", sessionID, "count", closed)
		}
		rateLimiter.Forget(sessionID)
	})

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server stopped successfully")
	return nil
}

// buildPublisher assembles the configured hand-off targets. Targets that
// fail to initialize are skipped with a warning.
func buildPublisher(cfg *config.Config, logger *slog.Logger) notify.Publisher {
	var targets notify.Multi

	if cfg.AMQP.URL != "" {
		pub, err := notify.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue, logger)
		if err != nil {
			slog.Warn("Submission queue disabled", "error", err)
		} else {
			targets = append(targets, pub)
		}
	}

	if cfg.S3.Bucket != "" {
		archiver, err := notify.NewS3Archiver(context.Background(), notify.S3Config{
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
		if err != nil {
			slog.Warn("Transcript archive disabled", "error", err)
		} else {
			slog.Info("Transcript archive enabled", "bucket", cfg.S3.Bucket, "prefix", cfg.S3.Prefix)
			targets = append(targets, archiver)
		}
	}

	if len(targets) == 0 {
		slog.Info("No hand-off targets configured; finished interviews stay in the session store")
		return notify.Noop{}
	}
	return targets
}
