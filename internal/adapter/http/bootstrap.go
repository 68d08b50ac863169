package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"todoapi/internal/adapter/database"
	"todoapi/internal/adapter/http/helper"
	"todoapi/internal/adapter/http/routes"
	"todoapi/internal/core/port"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg/config"
	"todoapi/pkg/logger"
	"todoapi/pkg/middlewares"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the container into a gin engine with the full middleware
// stack configured by cfg.
func NewRouter(cfg *config.AppConfig, container *Container, metrics *telemetry.AppMetrics, log *logger.LokiLogger, store config.RateLimitStore) *gin.Engine {
	helper.SetDebug(cfg.Debug)

	return routes.NewEngine(cfg.APIPrefix, container.Handlers, func(router *gin.Engine) {
		// Forwarding headers are ignored unless the peer is listed.
		if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Logger.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
			router.SetTrustedProxies(nil)
		}

		middlewares.SetupGinMiddlewareWithConfig(router, cfg, metrics, log, store)
	})
}

// rateLimitStore picks Redis when REDIS_URL is configured.
func rateLimitStore(cfg *config.AppConfig) (config.RateLimitStore, func(), error) {
	if cfg.RedisURL == "" {
		return config.NewMemoryStore(), func() {}, nil
	}

	store, err := config.NewRedisStoreFromURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}

	return store, func() { store.Close() }, nil
}

// StartServerWithConfig serves the API until ctx is cancelled, then shuts the
// server down gracefully.
func StartServerWithConfig(ctx context.Context, cfg *config.AppConfig, db *database.DB, metrics *telemetry.AppMetrics, log *logger.LokiLogger, probe port.Telemetry) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, closeStore, err := rateLimitStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	container := NewContainer(db, log, probe)
	router := NewRouter(cfg, container, metrics, log, store)

	log.Logger.Info("Server starting",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("api_prefix", cfg.APIPrefix),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("rate_limit_store", store.Name()),
		zap.Bool("rate_limit_enabled", cfg.RateLimitEnabled),
		zap.Bool("cache_enabled", cfg.CacheEnabled),
		zap.Bool("https_enforced", cfg.EnforceHTTPS))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		log.Logger.Error("Server failed to start", zap.Error(err))
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Logger.Info("Server shutting down")

	return srv.Shutdown(shutdownCtx)
}
