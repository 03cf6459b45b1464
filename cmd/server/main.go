package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AnshRaj112/serenify-journal/internal/config"
	"github.com/AnshRaj112/serenify-journal/internal/database"
	"github.com/AnshRaj112/serenify-journal/internal/handlers"
	"github.com/AnshRaj112/serenify-journal/internal/metrics"
	"github.com/AnshRaj112/serenify-journal/internal/middleware"
	"github.com/AnshRaj112/serenify-journal/internal/routes"
	"github.com/AnshRaj112/serenify-journal/internal/services"
	"github.com/AnshRaj112/serenify-journal/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Info("no .env file found, using process environment")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := database.ConnectPostgres(ctx, cfg.PostgresURI, logger)
	if err != nil {
		return err
	}
	defer pg.Close()
	if err := database.InitPostgresTables(ctx, pg); err != nil {
		return err
	}

	rdb, err := database.ConnectRedis(ctx, cfg.RedisURI, logger)
	if err != nil {
		return err
	}
	defer rdb.Close()

	mongoClient, mongoDB, err := database.ConnectMongo(ctx, cfg.MongoURI, logger)
	if err != nil {
		return err
	}
	defer database.DisconnectMongo(mongoClient)

	// Encryption at rest is optional; a malformed key is fatal.
	var sealer services.FieldSealer
	if cfg.EncryptionKey != "" {
		c, err := utils.NewCipher(cfg.EncryptionKey)
		if err != nil {
			return err
		}
		sealer = c
		logger.Info("journal encryption at rest enabled")
	} else {
		logger.Warn("ENCRYPTION_KEY not set, journal entries are stored in plain text")
	}

	entries := services.NewMongoEntryStore(mongoDB, sealer)
	if err := entries.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure journal indexes", zap.Error(err))
	}

	users := services.NewCachedUserStore(services.NewPostgresUserStore(pg), services.NewCacheService(rdb), logger)
	sessions := services.NewSessionService(rdb, cfg.JWTSecret, cfg.JWTTTL)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	opts := []services.JournalOption{
		services.WithMetrics(collector),
		services.WithMaxEntries(cfg.JournalMaxEntries),
	}
	responder, err := services.NewGeminiResponder(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AITimeout)
	switch {
	case err == nil:
		opts = append(opts, services.WithResponder(responder))
		logger.Info("AI replies enabled", zap.String("model", cfg.GeminiModel))
	case errors.Is(err, services.ErrNoResponder):
		logger.Warn("GEMINI_API_KEY not set, entries are saved without AI replies")
	default:
		logger.Warn("AI replies disabled", zap.Error(err))
	}
	journals := services.NewJournalService(entries, logger, opts...)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(logger, collector))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → GlobalRateLimit → LoginRateLimit
	// Non-production: Redis-based rate limit only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		logger.Info("production security enabled")
	} else {
		r.Use(middleware.RateLimit(rdb, logger))
	}

	deps := routes.Deps{
		Auth:    handlers.NewAuthHandler(users, sessions, logger),
		Journal: handlers.NewJournalHandler(journals, logger),
		AI:      handlers.NewAIHandler(journals, logger),
		Tokens:  sessions,
		Logger:  logger,
	}
	if cfg.MetricsEnabled {
		deps.Metrics = metrics.Handler(reg)
	}
	routes.SetupRoutes(r, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serenify journal running", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
