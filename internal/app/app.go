// Package app assembles the server process: logging, database, bootstrap,
// login throttling, routes, and graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charana-seva/charana-backend/internal/audit"
	"github.com/charana-seva/charana-backend/internal/bootstrap"
	"github.com/charana-seva/charana-backend/internal/config"
	"github.com/charana-seva/charana-backend/internal/db"
	adminapi "github.com/charana-seva/charana-backend/internal/http/api/admin"
	publicapi "github.com/charana-seva/charana-backend/internal/http/api/public"
	"github.com/charana-seva/charana-backend/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const shutdownTimeout = 10 * time.Second

// Run boots the server and blocks until ctx is canceled or the listener
// fails.
func Run(ctx context.Context, cfg config.Config) error {
	setupLogging(cfg)

	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return fmt.Errorf("open database: %w", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return fmt.Errorf("migrate database: %w", errMigrate)
	}

	if errBootstrap := bootstrap.EnsureMasterAdmin(ctx, conn, bootstrap.Defaults{
		Username: cfg.Bootstrap.Username,
		Password: cfg.Bootstrap.Password,
		FullName: cfg.Bootstrap.FullName,
	}); errBootstrap != nil {
		return fmt.Errorf("bootstrap master admin: %w", errBootstrap)
	}

	limiter := buildLimiter(cfg.RateLimit)
	limiter.StartSweep(ctx)

	auditLogger := audit.NewLogger(conn, cfg.Server.Development)

	if !cfg.Server.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	publicapi.Register(router, conn)
	adminapi.Register(router, adminapi.Dependencies{
		DB:        conn,
		JWTSecret: cfg.JWT.Secret,
		JWTExpiry: cfg.JWT.Expiry,
		Limiter:   limiter,
		Audit:     auditLogger,
	})

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s (%s)", cfg.Server.Addr, db.DialectName(conn))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return fmt.Errorf("shutdown: %w", errShutdown)
		}
		log.Info("server stopped")
		return nil
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", errServe)
	}
}

// buildLimiter constructs the login limiter. A configured Redis address
// switches to the shared store so the failure budget spans all replicas.
func buildLimiter(cfg config.RateLimitConfig) *ratelimit.LoginLimiter {
	var store ratelimit.Store = ratelimit.NewMemoryStore()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		store = ratelimit.NewRedisStore(client)
		log.Infof("login limiter backed by redis at %s", cfg.RedisAddr)
	}
	return ratelimit.NewLoginLimiter(store,
		ratelimit.WithMaxAttempts(cfg.MaxAttempts),
		ratelimit.WithWindow(cfg.Window),
		ratelimit.WithSweepInterval(cfg.SweepInterval),
	)
}

// setupLogging configures logrus output, optionally teeing into a rotating
// file.
func setupLogging(cfg config.Config) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if cfg.Server.Development {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	if cfg.Log.File == "" {
		return
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
}
