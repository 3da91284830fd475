// Package cache memoizes provider queries for a per-kind time-to-live.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"DrawdownSentinel/internal/common"
)

// Kind identifies a class of provider query with its own TTL.
type Kind string

const (
	KindRealtime      Kind = "realtime"
	KindPreviousClose Kind = "previous_close"
	KindIntraday      Kind = "intraday"
	KindReferenceHigh Kind = "reference_high"
)

// Key is a (query kind, instrument set) pair. Variant separates queries of
// one kind that differ in a parameter, such as the reference-high convention.
type Key struct {
	Kind        Kind
	Variant     string
	Instruments []string
}

// NewKey builds a key for kind over the given instruments.
func NewKey(kind Kind, instruments ...string) Key {
	return Key{Kind: kind, Instruments: instruments}
}

// WithVariant returns a copy of k tagged with variant.
func (k Key) WithVariant(variant string) Key {
	k.Variant = variant
	return k
}

func (k Key) String() string {
	kind := string(k.Kind)
	if k.Variant != "" {
		kind += "/" + k.Variant
	}
	return kind + ":" + strings.Join(k.Instruments, ",")
}

// TTLs holds the time-to-live per query kind.
type TTLs struct {
	Realtime      time.Duration `yaml:"realtime"`
	PreviousClose time.Duration `yaml:"previous_close"`
	Intraday      time.Duration `yaml:"intraday"`
	ReferenceHigh time.Duration `yaml:"reference_high"`
}

// DefaultTTLs matches how quickly each kind goes stale.
func DefaultTTLs() TTLs {
	return TTLs{
		Realtime:      2 * time.Second,
		PreviousClose: 10 * time.Minute,
		Intraday:      30 * time.Second,
		ReferenceHigh: 6 * time.Hour,
	}
}

func (t TTLs) forKind(k Kind) time.Duration {
	switch k {
	case KindRealtime:
		return t.Realtime
	case KindPreviousClose:
		return t.PreviousClose
	case KindIntraday:
		return t.Intraday
	case KindReferenceHigh:
		return t.ReferenceHigh
	default:
		return 0
	}
}

// Stats counts cache outcomes.
type Stats struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Failures uint64 `json:"failures"`
}

// Cache is safe for concurrent use. Concurrent misses on one key share a
// single provider call.
type Cache struct {
	store  Store
	ttls   TTLs
	now    func() time.Time
	group  singleflight.Group
	logger *common.Logger
	// bounds one shared provider call; zero means no bound
	fetchTimeout time.Duration

	hits, misses, failures atomic.Uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithStore replaces the default in-memory store.
func WithStore(s Store) Option {
	return func(c *Cache) { c.store = s }
}

// WithLogger sets the logger used for swallowed provider failures.
func WithLogger(l *common.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithFetchTimeout bounds each provider call made on a miss.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) { c.fetchTimeout = d }
}

// New creates a cache with the given TTLs.
func New(ttls TTLs, opts ...Option) *Cache {
	c := &Cache{
		store:  NewMemoryStore(),
		ttls:   ttls,
		now:    time.Now,
		logger: common.NewSilentLogger(),

		fetchTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stats returns a copy of the hit/miss counters.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Failures: c.failures.Load()}
}

func (c *Cache) fresh(e Entry, ttl time.Duration) bool {
	return c.now().Sub(e.StoredAt) < ttl
}

func load[V any](ctx context.Context, c *Cache, key string, ttl time.Duration) (V, bool) {
	var v V
	e, ok := c.store.Load(ctx, key)
	if !ok || !c.fresh(e, ttl) {
		return v, false
	}
	if err := json.Unmarshal(e.Value, &v); err != nil {
		return v, false
	}
	return v, true
}

// Fetch returns the memoized value for key, calling fn on a miss. Errors
// from fn are logged and reported as ok == false; they are never cached, so
// the next call queries again.
func Fetch[V any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (V, error)) (V, bool) {
	var zero V
	ttl := c.ttls.forKind(key.Kind)
	k := key.String()

	if v, ok := load[V](ctx, c, k, ttl); ok {
		c.hits.Add(1)
		return v, true
	}

	res, err, _ := c.group.Do(k, func() (any, error) {
		// a concurrent flight may have just stored it
		if v, ok := load[V](ctx, c, k, ttl); ok {
			c.hits.Add(1)
			return v, nil
		}
		c.misses.Add(1)
		// the flight is shared, so one caller's cancellation must not fail the rest
		flightCtx := context.WithoutCancel(ctx)
		if c.fetchTimeout > 0 {
			var cancel context.CancelFunc
			flightCtx, cancel = context.WithTimeout(flightCtx, c.fetchTimeout)
			defer cancel()
		}
		v, err := fn(flightCtx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if err := c.store.Save(flightCtx, k, Entry{Value: raw, StoredAt: c.now()}, ttl); err != nil {
			c.logger.Warn().Err(err).Str("key", k).Msg("cache store save failed")
		}
		return v, nil
	})
	if err != nil {
		c.failures.Add(1)
		c.logger.Warn().Err(err).Str("key", k).Msg("provider query failed, value absent")
		return zero, false
	}
	return res.(V), true
}
