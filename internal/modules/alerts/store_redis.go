package alerts

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisConfig holds the connection settings for RedisStore.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	// ConnectAttempts bounds the startup ping retries (default 5).
	ConnectAttempts uint
}

// redisDB maps each namespace to its own logical database.
var redisDB = map[string]int{
	Opening.namespace(): 0,
	Closing.namespace(): 1,
}

// RedisStore keeps markers in Redis, one logical database per namespace.
// Clients are pooled and long-lived.
type RedisStore struct {
	clients map[string]*redis.Client
	log     zerolog.Logger
}

// NewRedisStore connects to Redis, retrying the initial ping with backoff.
func NewRedisStore(ctx context.Context, cfg RedisConfig, log zerolog.Logger) (*RedisStore, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	s := &RedisStore{
		clients: make(map[string]*redis.Client, len(redisDB)),
		log:     log.With().Str("store", "redis").Str("addr", addr).Logger(),
	}
	for ns, db := range redisDB {
		s.clients[ns] = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Password,
			DB:       db,
		})
	}

	attempts := cfg.ConnectAttempts
	if attempts == 0 {
		attempts = 5
	}

	err := retry.Do(
		func() error {
			for ns, c := range s.clients {
				if err := c.Ping(ctx).Err(); err != nil {
					return fmt.Errorf("ping %s database: %w", ns, err)
				}
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(200*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.log.Warn().Err(err).Uint("attempt", n+1).Msg("Redis not reachable, retrying")
		}),
	)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	s.log.Info().Msg("Connected to redis")
	return s, nil
}

func (s *RedisStore) client(namespace string) (*redis.Client, error) {
	c, ok := s.clients[namespace]
	if !ok {
		return nil, checkNamespace(namespace)
	}
	return c, nil
}

// Set stores value with SET EX
func (s *RedisStore) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	c, err := s.client(namespace)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, value, ttl).Err()
}

// SetIfAbsent stores value with SET NX EX
func (s *RedisStore) SetIfAbsent(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) (bool, error) {
	c, err := s.client(namespace)
	if err != nil {
		return false, err
	}
	return c.SetNX(ctx, key, value, ttl).Result()
}

// Get returns the stored value
func (s *RedisStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	c, err := s.client(namespace)
	if err != nil {
		return nil, false, err
	}
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Exists reports whether key is present
func (s *RedisStore) Exists(ctx context.Context, namespace, key string) (bool, error) {
	c, err := s.client(namespace)
	if err != nil {
		return false, err
	}
	n, err := c.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes key
func (s *RedisStore) Delete(ctx context.Context, namespace, key string) error {
	c, err := s.client(namespace)
	if err != nil {
		return err
	}
	return c.Del(ctx, key).Err()
}

// Close closes every client
func (s *RedisStore) Close() error {
	var errs []error
	for _, c := range s.clients {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
