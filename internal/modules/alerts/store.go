package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/dgnsrekt/market-clock/internal/database"
	"github.com/rs/zerolog"
)

// Store is a key/value store with per-entry TTL, partitioned into namespaces.
// Implementations must be safe for concurrent use.
type Store interface {
	// Set writes value, replacing any entry and resetting its TTL.
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	// SetIfAbsent writes value only if no unexpired entry exists and reports whether it did.
	SetIfAbsent(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) (bool, error)
	// Get returns the unexpired entry, if any.
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	// Exists reports whether an unexpired entry exists.
	Exists(ctx context.Context, namespace, key string) (bool, error)
	// Delete removes the entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, namespace, key string) error
	Close() error
}

// Backend names accepted by NewStore.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

func checkNamespace(namespace string) error {
	for _, k := range Kinds {
		if k.namespace() == namespace {
			return nil
		}
	}
	return fmt.Errorf("unknown namespace %q", namespace)
}

// StoreConfig selects and configures a dedup store backend.
type StoreConfig struct {
	Backend string
	Redis   RedisConfig
	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string
	// CleanupInterval is how often the memory backend drops expired entries.
	CleanupInterval time.Duration
}

// NewStore opens the configured backend.
func NewStore(ctx context.Context, cfg StoreConfig, log zerolog.Logger) (Store, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		interval := cfg.CleanupInterval
		if interval <= 0 {
			interval = time.Minute
		}
		return NewMemoryStore(interval), nil

	case BackendRedis:
		return NewRedisStore(ctx, cfg.Redis, log)

	case BackendSQLite:
		db, err := database.New(database.Config{
			Path:    cfg.SQLitePath,
			Profile: database.ProfileCache,
			Name:    "alerts",
		})
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate alerts database: %w", err)
		}
		return NewSQLiteStore(db), nil

	default:
		return nil, fmt.Errorf("%q: %w", cfg.Backend, ErrUnknownBackend)
	}
}
