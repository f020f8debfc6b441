package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/marcel-receptionist/internal/config"
	"github.com/wolfman30/marcel-receptionist/internal/directory"
	"github.com/wolfman30/marcel-receptionist/internal/session"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore picks the session backend. The returned Redis client,
// when not nil, must be closed by the caller.
func BuildSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (session.Store, *redis.Client, error) {
	opts := session.Options{MaxTurns: cfg.SessionMaxTurns, MaxAge: cfg.SessionMaxAge}
	switch cfg.SessionBackend {
	case "", "memory":
		logger.Info("session store: memory", "max_turns", opts.MaxTurns, "max_age", opts.MaxAge.String())
		return session.NewMemoryStore(opts), nil, nil
	case "redis":
		client := BuildRedisClient(ctx, cfg, logger, true)
		if client == nil {
			return nil, nil, fmt.Errorf("bootstrap: redis session backend unavailable at %q", cfg.RedisAddr)
		}
		logger.Info("session store: redis", "addr", cfg.RedisAddr, "max_turns", opts.MaxTurns)
		return session.NewRedisStore(client, opts), client, nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown session backend %q", cfg.SessionBackend)
	}
}

// BuildDirectory loads the client directory from DIRECTORY_FILE, else from
// DATABASE_URL, else falls back to the built-in salons.
func BuildDirectory(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*directory.Directory, error) {
	switch {
	case cfg.DirectoryFile != "":
		dir, err := directory.LoadFile(cfg.DirectoryFile)
		if err != nil {
			return nil, err
		}
		logger.Info("directory loaded from file", "path", cfg.DirectoryFile, "salons", len(dir.Salons()))
		return dir, nil
	case cfg.DatabaseURL != "":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: connect directory database: %w", err)
		}
		defer pool.Close()
		dir, err := directory.LoadPostgres(ctx, pool)
		if err != nil {
			return nil, err
		}
		logger.Info("directory loaded from postgres", "salons", len(dir.Salons()))
		return dir, nil
	default:
		logger.Info("directory: using built-in salons")
		return directory.Seed(), nil
	}
}
