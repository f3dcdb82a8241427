package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizhunt-service/internal/app"
	"quizhunt-service/internal/auth"
	"quizhunt-service/internal/config"
	"quizhunt-service/internal/domain"
	"quizhunt-service/internal/infra/memory"
	"quizhunt-service/internal/infra/postgres"
	redisinfra "quizhunt-service/internal/infra/redis"
	transport "quizhunt-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// stores groups the persistence the services run on.
type stores struct {
	events    app.EventRepository
	questions app.QuestionRepository
	rules     app.RuleRepository
	scores    app.ScoreLedger
	loader    memory.QuestionLoader
	close     func()
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log.Level)

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 10*time.Minute)
	var cache app.QuestionSource = memory.NewQuestionCache(st.loader, cacheTTL)
	var mirror app.LeaderboardMirror
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}
		cache = redisinfra.NewQuestionCache(client, st.loader, cacheTTL)
		mirror = redisinfra.NewLeaderboardMirror(client, config.TTLDuration(cfg.Redis.TTL, 24*time.Hour))
		logger.Info("redis enabled", "addr", cfg.Redis.Addr)
	}

	catalogOpts := []app.CatalogOption{
		app.WithCatalogLogger(logger),
		app.WithWindowBounds(
			config.Date(cfg.Events.PastFloor, domain.DefaultWindowFloor),
			config.Date(cfg.Events.FutureCeiling, domain.DefaultWindowCeiling),
		),
	}
	playOpts := []app.PlayOption{
		app.WithPlayLogger(logger),
		app.WithInitialLevel(cfg.Play.InitialLevel),
	}
	if mirror != nil {
		catalogOpts = append(catalogOpts, app.WithCatalogMirror(mirror))
		playOpts = append(playOpts, app.WithLeaderboardMirror(mirror))
	}
	catalog := app.NewCatalogService(st.events, st.questions, st.rules, cache, catalogOpts...)
	play := app.NewPlayService(st.events, cache, st.scores, playOpts...)

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT secret not configured, using the development secret")
	}
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
	handler := transport.NewHandler(catalog, play, tokens, logger)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(handler, cfg.Server.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting quizhunt service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStores picks Postgres when a URL is configured, otherwise the in-memory stores.
func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (stores, error) {
	if cfg.Postgres.URL == "" {
		logger.Warn("postgres url not configured, data is kept in memory")
		catalog := memory.NewCatalogStore()
		ledger := memory.NewScoreLedger()
		catalog.CascadeTo(ledger)
		return stores{
			events:    catalog,
			questions: catalog,
			rules:     catalog,
			scores:    ledger,
			loader:    catalog,
			close:     func() {},
		}, nil
	}

	if err := runMigrations(ctx, cfg, logger); err != nil {
		return stores{}, err
	}
	db := postgres.Open(cfg.Postgres.URL)
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		db.Close()
		return stores{}, err
	}
	catalog := postgres.NewCatalogStore(db)
	return stores{
		events:    catalog,
		questions: catalog,
		rules:     catalog,
		scores:    postgres.NewScoreLedger(db),
		loader:    postgres.NewQuestionLoader(pool),
		close: func() {
			pool.Close()
			db.Close()
		},
	}, nil
}
