// Package db owns the Postgres pool shared by the template, user and resume repositories.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx as the database/sql driver
	"github.com/spf13/viper"

	"resume-builder/internal/shared/telemetry"
)

// Profile selects pool defaults for the kind of process that owns the pool.
type Profile string

const (
	ProfileServer  Profile = "server"
	ProfileLambda  Profile = "lambda"
	ProfileMigrate Profile = "migrate"
)

// PoolConfig sizes the connection pool.
type PoolConfig struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
	PingTimeout time.Duration
}

var openDB = sql.Open

// InLambda reports whether the process runs inside AWS Lambda.
func InLambda() bool {
	return strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != ""
}

// Defaults returns the pool sizing for a profile. Lambda keeps the pool tiny because
// every concurrent invocation holds its own.
func Defaults(p Profile) PoolConfig {
	switch p {
	case ProfileLambda:
		return PoolConfig{MaxOpen: 2, MaxIdle: 1, MaxLifetime: 15 * time.Minute, MaxIdleTime: 30 * time.Second, PingTimeout: 3 * time.Second}
	case ProfileMigrate:
		return PoolConfig{MaxOpen: 1, MaxIdle: 1, MaxLifetime: time.Hour, MaxIdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second}
	default:
		return PoolConfig{MaxOpen: 10, MaxIdle: 5, MaxLifetime: time.Hour, MaxIdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second}
	}
}

// PoolFromEnv starts from the profile defaults and applies any DB_* overrides.
func PoolFromEnv(p Profile) PoolConfig {
	v := viper.New()
	v.AutomaticEnv()

	pc := Defaults(p)
	if v.IsSet("DB_MAX_OPEN_CONNS") {
		pc.MaxOpen = v.GetInt("DB_MAX_OPEN_CONNS")
	}
	if v.IsSet("DB_MAX_IDLE_CONNS") {
		pc.MaxIdle = v.GetInt("DB_MAX_IDLE_CONNS")
	}
	if v.IsSet("DB_CONN_MAX_LIFETIME") {
		pc.MaxLifetime = v.GetDuration("DB_CONN_MAX_LIFETIME")
	}
	if v.IsSet("DB_CONN_MAX_IDLE_TIME") {
		pc.MaxIdleTime = v.GetDuration("DB_CONN_MAX_IDLE_TIME")
	}
	if v.IsSet("DB_PING_TIMEOUT") {
		pc.PingTimeout = v.GetDuration("DB_PING_TIMEOUT")
	}
	return pc
}

// Open connects to Postgres, sizes the pool and pings it.
func Open(ctx context.Context, databaseURL string, pc PoolConfig) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	pool, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pc.apply(pool)

	timeout := pc.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	stats := pool.Stats()
	telemetry.Info("db.connected", map[string]any{
		"max_open": stats.MaxOpenConnections,
		"open":     stats.OpenConnections,
	})
	return pool, nil
}

var shared struct {
	mu   sync.Mutex
	pool *sql.DB
}

// Shared returns the pool kept for the lifetime of a warm Lambda container. A failed
// connect is not cached, so the next invocation tries again.
func Shared(ctx context.Context, databaseURL string, pc PoolConfig) (*sql.DB, error) {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.pool != nil {
		return shared.pool, nil
	}
	pool, err := Open(ctx, databaseURL, pc)
	if err != nil {
		return nil, err
	}
	shared.pool = pool
	return pool, nil
}

func (pc PoolConfig) apply(pool *sql.DB) {
	maxOpen, maxIdle, lifetime := pc.MaxOpen, pc.MaxIdle, pc.MaxLifetime
	if maxOpen <= 0 {
		maxOpen = 10
	}
	if maxIdle <= 0 {
		maxIdle = 5
	}
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	pool.SetMaxOpenConns(maxOpen)
	pool.SetMaxIdleConns(maxIdle)
	pool.SetConnMaxLifetime(lifetime)
	if pc.MaxIdleTime > 0 {
		pool.SetConnMaxIdleTime(pc.MaxIdleTime)
	}
}
