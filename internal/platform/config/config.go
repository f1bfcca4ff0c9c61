package config

import (
	"os"
	"time"
)

// Store selects the storage engine backing lists and the audit log.
type Store string

const (
	StoreMemory   Store = "memory"
	StoreSQLite   Store = "sqlite"
	StorePostgres Store = "postgres"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	Store       Store
	SQLitePath  string
	PostgresDSN string
	// RedisURL enables the snapshot cache when non-empty.
	RedisURL         string
	SnapshotCacheTTL time.Duration
	ShutdownTimeout  time.Duration
}

// FromEnv builds a Server config from environment variables so main stays
// lean. SQLite is the default engine, matching the single-node deployment.
func FromEnv() Server {
	cfg := Server{
		Addr:             envOr("CARTLOG_ADDR", ":8080"),
		Store:            Store(envOr("CARTLOG_STORE", string(StoreSQLite))),
		SQLitePath:       envOr("CARTLOG_SQLITE_PATH", "cartlog.db"),
		PostgresDSN:      os.Getenv("CARTLOG_POSTGRES_DSN"),
		RedisURL:         os.Getenv("CARTLOG_REDIS_URL"),
		SnapshotCacheTTL: 5 * time.Minute,
		ShutdownTimeout:  10 * time.Second,
	}
	if ttl := os.Getenv("CARTLOG_SNAPSHOT_CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.SnapshotCacheTTL = d
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
