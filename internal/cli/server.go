package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/config"
	"quizmaster-service/internal/idgen"
	"quizmaster-service/internal/infra/memory"
	pgseed "quizmaster-service/internal/infra/postgres"
	rediscache "quizmaster-service/internal/infra/redis"
	"quizmaster-service/internal/logging"
	"quizmaster-service/internal/seed"
	transport "quizmaster-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func bootstrap(configPath string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, logger, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var cache app.ParticipantViewCache
	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 10*time.Minute)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		cache = rediscache.NewViewCache(client, cacheTTL)
		logger.Info("participant view cache: redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		cache = memory.NewViewCache(cacheTTL)
		logger.Info("participant view cache: memory")
	}

	store := memory.NewQuizStore(idgen.NewUUIDGenerator())
	service := app.NewQuizService(store, app.WithViewCache(cache), app.WithLogger(logger))

	if err := seedCatalog(ctx, cfg, service, logger); err != nil {
		return err
	}

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(service, transport.RouterConfig{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Logger:         logger,
		}),
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting quiz service", zap.String("addr", server.Addr), zap.String("version", transport.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case err := <-serveErr:
		logger.Error("server failed", zap.Error(err))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// seedCatalog imports the configured seed file and, when Postgres is configured,
// the quiz_seeds table. The file is applied first.
func seedCatalog(ctx context.Context, cfg config.Config, service *app.QuizService, logger *zap.Logger) error {
	var loaders []seed.Loader
	if cfg.Seed.File != "" {
		loaders = append(loaders, seed.NewFileLoader(cfg.Seed.File))
	}
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, logger); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		// the catalog is read once at startup
		defer pool.Close()
		loaders = append(loaders, pgseed.NewSeedLoader(pool))
	}
	if len(loaders) == 0 {
		return nil
	}

	stats, err := seed.Run(ctx, service, logger, loaders...)
	if err != nil {
		return err
	}
	logger.Info("seed catalog applied",
		zap.Int("quizzes", stats.Quizzes),
		zap.Int("questions", stats.Questions),
		zap.Int("skipped", stats.Skipped),
	)
	return nil
}
