package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type countingProvider struct {
	calls atomic.Int32
	price atomic.Value
	err   error
}

func (p *countingProvider) fetch(context.Context) (float64, error) {
	p.calls.Add(1)
	if p.err != nil {
		return 0, p.err
	}
	return p.price.Load().(float64), nil
}

func TestFetch_WithinTTLReturnsCached(t *testing.T) {
	clock := newFakeClock()
	c := New(DefaultTTLs(), WithClock(clock.Now))
	p := &countingProvider{}
	p.price.Store(100.0)
	key := NewKey(KindRealtime, "QQQ")

	v, ok := Fetch(context.Background(), c, key, p.fetch)
	require.True(t, ok)
	assert.Equal(t, 100.0, v)

	p.price.Store(101.0)
	clock.Advance(1500 * time.Millisecond)
	v, ok = Fetch(context.Background(), c, key, p.fetch)
	require.True(t, ok)
	assert.Equal(t, 100.0, v, "within TTL the prior value is returned")
	assert.Equal(t, int32(1), p.calls.Load())

	clock.Advance(time.Second)
	v, ok = Fetch(context.Background(), c, key, p.fetch)
	require.True(t, ok)
	assert.Equal(t, 101.0, v, "after TTL the provider is queried again")
	assert.Equal(t, int32(2), p.calls.Load())

	st := c.Stats()
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(2), st.Misses)
}

func TestFetch_PerKindTTL(t *testing.T) {
	clock := newFakeClock()
	c := New(DefaultTTLs(), WithClock(clock.Now))
	p := &countingProvider{}
	p.price.Store(50.0)

	Fetch(context.Background(), c, NewKey(KindReferenceHigh, "SMH"), p.fetch)
	clock.Advance(5 * time.Hour)
	Fetch(context.Background(), c, NewKey(KindReferenceHigh, "SMH"), p.fetch)
	assert.Equal(t, int32(1), p.calls.Load())

	clock.Advance(time.Hour)
	Fetch(context.Background(), c, NewKey(KindReferenceHigh, "SMH"), p.fetch)
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestFetch_FailureNotCached(t *testing.T) {
	clock := newFakeClock()
	c := New(DefaultTTLs(), WithClock(clock.Now))
	p := &countingProvider{err: errors.New("rate limited")}
	key := NewKey(KindPreviousClose, "VGT")

	v, ok := Fetch(context.Background(), c, key, p.fetch)
	assert.False(t, ok)
	assert.Zero(t, v)

	p.err = nil
	p.price.Store(42.0)
	v, ok = Fetch(context.Background(), c, key, p.fetch)
	assert.True(t, ok, "a failure is retried on the next call")
	assert.Equal(t, 42.0, v)
	assert.Equal(t, int32(2), p.calls.Load())
	assert.Equal(t, uint64(1), c.Stats().Failures)
}

func TestFetch_KeysAreIndependent(t *testing.T) {
	c := New(DefaultTTLs())
	p := &countingProvider{}
	p.price.Store(1.0)

	Fetch(context.Background(), c, NewKey(KindRealtime, "QQQ"), p.fetch)
	Fetch(context.Background(), c, NewKey(KindRealtime, "SMH"), p.fetch)
	Fetch(context.Background(), c, NewKey(KindIntraday, "QQQ"), p.fetch)
	assert.Equal(t, int32(3), p.calls.Load())
}

func TestFetch_ConcurrentCallersShareOneCall(t *testing.T) {
	c := New(DefaultTTLs())
	release := make(chan struct{})
	var calls atomic.Int32
	fn := func(context.Context) (float64, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}

	var wg sync.WaitGroup
	results := make([]float64, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _ := Fetch(context.Background(), c, NewKey(KindIntraday, "IYW"), fn)
			results[i] = v
		}(i)
	}
	// let the goroutines pile up on the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, 7.0, v)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_CancelledCallerDoesNotFailSharedCall(t *testing.T) {
	c := New(DefaultTTLs())
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	fn := func(ctx context.Context) (float64, error) {
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 7, nil
	}
	key := NewKey(KindRealtime, "QQQ")

	first, cancel := context.WithCancel(context.Background())
	type result struct {
		v  float64
		ok bool
	}
	firstDone := make(chan result, 1)
	go func() {
		v, ok := Fetch(first, c, key, fn)
		firstDone <- result{v, ok}
	}()
	<-started

	secondDone := make(chan result, 1)
	go func() {
		v, ok := Fetch(context.Background(), c, key, fn)
		secondDone <- result{v, ok}
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(release)

	for _, ch := range []chan result{firstDone, secondDone} {
		r := <-ch
		assert.True(t, r.ok)
		assert.Equal(t, 7.0, r.v)
	}
	assert.Zero(t, c.Stats().Failures)
}

func TestFetch_TimeoutBoundsProviderCall(t *testing.T) {
	c := New(DefaultTTLs(), WithFetchTimeout(10*time.Millisecond))
	fn := func(ctx context.Context) (float64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}

	_, ok := Fetch(context.Background(), c, NewKey(KindIntraday, "SMH"), fn)
	assert.False(t, ok)
	assert.EqualValues(t, 1, c.Stats().Failures)
}

func TestFetch_StructValues(t *testing.T) {
	type series struct {
		Bars     []float64
		Interval string
	}
	c := New(DefaultTTLs())
	fn := func(context.Context) (series, error) {
		return series{Bars: []float64{1, 2}, Interval: "2m"}, nil
	}
	Fetch(context.Background(), c, NewKey(KindIntraday, "QQQ"), fn)
	v, ok := Fetch(context.Background(), c, NewKey(KindIntraday, "QQQ"), func(context.Context) (series, error) {
		t.Fatal("should be served from cache")
		return series{}, nil
	})
	require.True(t, ok)
	assert.Equal(t, "2m", v.Interval)
	assert.Equal(t, []float64{1, 2}, v.Bars)
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "realtime:QQQ,SMH", NewKey(KindRealtime, "QQQ", "SMH").String())
	assert.Equal(t, "reference_high/adjusted:QQQ", NewKey(KindReferenceHigh, "QQQ").WithVariant("adjusted").String())
}
