package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/opencivic/govcontacts/internal/config"
	"github.com/opencivic/govcontacts/internal/domain/agency"
	"github.com/opencivic/govcontacts/internal/domain/contact"
	"github.com/opencivic/govcontacts/internal/quota"
	redisstore "github.com/opencivic/govcontacts/internal/redis"
	"github.com/opencivic/govcontacts/internal/sqlite"
	"github.com/opencivic/govcontacts/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	quotaStore, err := newQuotaStore(cfg, db, logger)
	if err != nil {
		logger.Error("failed to initialize quota store", "error", err)
		os.Exit(1)
	}

	agencyRepo := sqlite.NewAgencyRepository(db)
	contactRepo := sqlite.NewContactRepository(db)

	engine := quota.NewEngine(quotaStore, cfg.Quota.DailyLimit, logger)
	agencySvc := agency.NewService(agencyRepo, logger)
	contactSvc := contact.NewService(contactRepo, engine, logger)

	resolver := &apiKeyResolver{db: db}
	throttle := transport.NewThrottle(cfg.Server.RequestsPerMinute)
	router := transport.NewServer(contactSvc, agencySvc, logger, transport.AuthMiddleware(resolver), throttle)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "quota_backend", cfg.Quota.Backend, "daily_limit", cfg.Quota.DailyLimit)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func newQuotaStore(cfg config.Config, db *sqlite.DB, logger *slog.Logger) (quota.Store, error) {
	switch cfg.Quota.Backend {
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("using redis quota store", "addr", cfg.Redis.Addr)
		return redisstore.NewQuotaStore(client), nil
	default:
		return sqlite.NewQuotaStore(db), nil
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type apiKeyResolver struct {
	db *sqlite.DB
}

func (r *apiKeyResolver) ResolveUser(ctx context.Context, token string) (string, error) {
	hash := hashToken(token)
	var userID string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM api_keys WHERE key_hash = ?`, hash).Scan(&userID)
	if err != nil || userID == "" {
		return "", fmt.Errorf("unauthorized: invalid token")
	}
	return userID, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
