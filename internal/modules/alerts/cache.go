package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Cache remembers which (region, kind) alerts were delivered recently.
// Keys are upper-cased region names; entries expire after twice the alert threshold.
type Cache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger
}

// NewCache creates a dedup cache over store for the given alert threshold.
func NewCache(store Store, threshold time.Duration, log zerolog.Logger) *Cache {
	return &Cache{
		store: store,
		ttl:   2 * threshold,
		now:   time.Now,
		log:   log.With().Str("component", "dedup_cache").Logger(),
	}
}

// TTL returns how long a marker lives.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

func (c *Cache) marker(region string, kind TransitionKind, message string) ([]byte, error) {
	return encodeMarker(Marker{
		Region:  region,
		Kind:    kind.String(),
		Message: message,
		SentAt:  c.now().UTC(),
	})
}

// RecordSent marks (region, kind) as notified, resetting the TTL of an existing marker.
func (c *Cache) RecordSent(ctx context.Context, region string, kind TransitionKind, message string) error {
	data, err := c.marker(region, kind, message)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, kind.namespace(), region, data, c.ttl); err != nil {
		return fmt.Errorf("record %s %s: %w", kind, region, err)
	}
	return nil
}

// WasSent reports whether an unexpired marker exists for (region, kind).
func (c *Cache) WasSent(ctx context.Context, region string, kind TransitionKind) (bool, error) {
	ok, err := c.store.Exists(ctx, kind.namespace(), region)
	if err != nil {
		return false, fmt.Errorf("check %s %s: %w", kind, region, err)
	}
	return ok, nil
}

// Claim atomically records a marker unless one exists. It returns true when
// the caller now owns the alert and should deliver it.
func (c *Cache) Claim(ctx context.Context, region string, kind TransitionKind, message string) (bool, error) {
	data, err := c.marker(region, kind, message)
	if err != nil {
		return false, err
	}
	claimed, err := c.store.SetIfAbsent(ctx, kind.namespace(), region, data, c.ttl)
	if err != nil {
		return false, fmt.Errorf("claim %s %s: %w", kind, region, err)
	}
	return claimed, nil
}

// Release drops a claim so the alert is retried by the next cycle.
func (c *Cache) Release(ctx context.Context, region string, kind TransitionKind) error {
	if err := c.store.Delete(ctx, kind.namespace(), region); err != nil {
		return fmt.Errorf("release %s %s: %w", kind, region, err)
	}
	return nil
}

// Lookup returns the stored marker for (region, kind), or nil when none exists.
func (c *Cache) Lookup(ctx context.Context, region string, kind TransitionKind) (*Marker, error) {
	data, ok, err := c.store.Get(ctx, kind.namespace(), region)
	if err != nil {
		return nil, fmt.Errorf("lookup %s %s: %w", kind, region, err)
	}
	if !ok {
		return nil, nil
	}
	m, err := decodeMarker(data)
	if err != nil {
		c.log.Warn().Err(err).Str("region", region).Str("kind", kind.String()).Msg("Unreadable marker")
		return nil, err
	}
	return &m, nil
}
