// Package flight deduplicates concurrent sequence runs and keeps a hot
// in-process snapshot of each sequence's last assembled pages. It wraps
// sturdyc so that at most one run per sequence identity is in flight and
// frequently read sequences can be refreshed in the background before
// their snapshot goes stale.
package flight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viccon/sturdyc"
)

// Config controls the in-flight dedup layer.
type Config struct {
	// Capacity is the maximum number of sequence snapshots held in memory.
	Capacity int

	// NumShards is the number of shards the snapshot cache is split into.
	NumShards int

	// TTL is how long an assembled snapshot stays fresh.
	TTL time.Duration

	// EvictionPercentage is the share of entries (1-100) evicted when the
	// cache hits capacity.
	EvictionPercentage int

	// EarlyRefresh enables background refreshes of frequently read
	// sequences before their snapshot expires. Nil disables it.
	EarlyRefresh *EarlyRefreshConfig

	// EvictionInterval overrides how often expired snapshots are scanned
	// for. Zero keeps sturdyc's default.
	EvictionInterval time.Duration
}

// EarlyRefreshConfig mirrors sturdyc's early refresh knobs.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns defaults suitable for a handful of paginated
// sequences per process.
func DefaultConfig() Config {
	return Config{
		Capacity:           1024,
		NumShards:          64,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
		EarlyRefresh: &EarlyRefreshConfig{
			MinAsyncRefreshTime: 10 * time.Second,
			MaxAsyncRefreshTime: 20 * time.Second,
			SyncRefreshTime:     30 * time.Second,
			RetryBaseDelay:      100 * time.Millisecond,
		},
	}
}

// Validate reports the first invalid field, if any.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return errors.New("flight: Capacity must be > 0")
	}
	if c.NumShards <= 0 {
		return errors.New("flight: NumShards must be > 0")
	}
	if c.TTL <= 0 {
		return errors.New("flight: TTL must be > 0")
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return fmt.Errorf("flight: EvictionPercentage must be in [1,100], got %d", c.EvictionPercentage)
	}
	if er := c.EarlyRefresh; er != nil {
		if er.MinAsyncRefreshTime <= 0 || er.MaxAsyncRefreshTime <= 0 || er.SyncRefreshTime <= 0 {
			return errors.New("flight: EarlyRefresh durations must be > 0")
		}
		if er.MinAsyncRefreshTime > er.MaxAsyncRefreshTime {
			return errors.New("flight: EarlyRefresh MinAsyncRefreshTime must be <= MaxAsyncRefreshTime")
		}
	}
	return nil
}

func (c Config) options() []sturdyc.Option {
	var opts []sturdyc.Option
	if er := c.EarlyRefresh; er != nil {
		opts = append(opts, sturdyc.WithEarlyRefreshes(
			er.MinAsyncRefreshTime,
			er.MaxAsyncRefreshTime,
			er.SyncRefreshTime,
			er.RetryBaseDelay,
		))
	}
	if c.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return opts
}

// Runner deduplicates runs keyed by sequence identity.
type Runner[T any] struct {
	client *sturdyc.Client[T]
}

// New builds a Runner from cfg. cfg must be valid (see Validate).
func New[T any](cfg Config) (*Runner[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := sturdyc.New[T](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage, cfg.options()...)
	return &Runner[T]{client: client}, nil
}

// Do returns the cached snapshot for key, or runs fn to produce it.
// Concurrent callers with the same key share one invocation of fn.
func (r *Runner[T]) Do(ctx context.Context, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	return r.client.GetOrFetch(ctx, key, fn)
}

// Put replaces the snapshot for key without running a fetch.
func (r *Runner[T]) Put(key string, v T) {
	r.client.Set(key, v)
}

// Forget drops the snapshot for key so the next Do runs fn again.
func (r *Runner[T]) Forget(key string) {
	r.client.Delete(key)
}
