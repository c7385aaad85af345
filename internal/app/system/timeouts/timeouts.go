// Package timeouts holds the per-request deadlines handlers put on database
// and storage calls.
//
//   - Ping: health checks
//   - Short: single-document reads and writes
//   - Medium: list queries and report aggregation
//   - Long: artifact storage plus several collections
package timeouts

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

// Config is a full set of deadlines. Zero fields mean "keep the current value"
// when passed to Configure.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Defaults returns the built-in deadlines.
func Defaults() Config {
	return Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong}
}

var current atomic.Pointer[Config]

func init() { Reset() }

func Ping() time.Duration   { return current.Load().Ping }
func Short() time.Duration  { return current.Load().Short }
func Medium() time.Duration { return current.Load().Medium }
func Long() time.Duration   { return current.Load().Long }

// Current returns the deadlines in effect.
func Current() Config { return *current.Load() }

// Configure overlays the non-zero fields of cfg on the current deadlines.
func Configure(cfg Config) {
	next := Current()
	for _, f := range []struct {
		dst *time.Duration
		src time.Duration
	}{
		{&next.Ping, cfg.Ping},
		{&next.Short, cfg.Short},
		{&next.Medium, cfg.Medium},
		{&next.Long, cfg.Long},
	} {
		if f.src > 0 {
			*f.dst = f.src
		}
	}
	current.Store(&next)
}

// Reset restores the defaults.
func Reset() {
	d := Defaults()
	current.Store(&d)
}

// WithTimeout is context.WithTimeout whose cancel logs when the deadline,
// rather than the caller, ended the operation.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "credential upload")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if log != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout))
		}
		cancel()
	}
}
