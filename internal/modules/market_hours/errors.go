package market_hours

import (
	"errors"
	"fmt"
)

var (
	// ErrRegionNotFound is returned when a lookup names no known region.
	ErrRegionNotFound = errors.New("region not found")
	// ErrNoTradingDay is returned when no trading day exists within the lookahead window.
	ErrNoTradingDay = errors.New("no trading day within lookahead window")
)

// ConfigError reports calendar rules that cannot be constructed.
type ConfigError struct {
	Region string
	Field  string
	Value  string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("region %s: invalid %s: %v", e.Region, e.Field, e.Err)
	}
	return fmt.Sprintf("region %s: invalid %s %q: %v", e.Region, e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
