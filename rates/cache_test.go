package rates

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-trade-game"
)

type mock struct {
	count int32
	err   error
	delay time.Duration
}

func (m *mock) ExchangeRates(_ context.Context, _ time.Time) (game.Rates, error) {
	atomic.AddInt32(&m.count, 1)
	time.Sleep(m.delay)
	if m.err != nil {
		return nil, m.err
	}
	return game.Rates{"USD": 1400}, nil
}

func newCache(ttl time.Duration, next Service) (*cachingService, *time.Time) {
	now := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	s := NewCachingService(ttl, log.NewNopLogger(), next).(*cachingService)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestCachingService_ServesCached(t *testing.T) {
	var underlying mock
	s, _ := newCache(time.Hour, &underlying)

	_, _ = s.ExchangeRates(context.Background(), searchDate)
	rates, err := s.ExchangeRates(context.Background(), searchDate)

	require.NoError(t, err)
	assert.Equal(t, game.Rates{"USD": 1400}, rates)
	assert.Equal(t, int32(1), atomic.LoadInt32(&underlying.count))
}

func TestCachingService_Expiry(t *testing.T) {
	var underlying mock
	s, now := newCache(time.Hour, &underlying)

	_, _ = s.ExchangeRates(context.Background(), searchDate)
	*now = now.Add(59 * time.Minute)
	_, _ = s.ExchangeRates(context.Background(), searchDate)
	assert.Equal(t, int32(1), atomic.LoadInt32(&underlying.count))

	*now = now.Add(time.Minute)
	_, _ = s.ExchangeRates(context.Background(), searchDate)
	assert.Equal(t, int32(2), atomic.LoadInt32(&underlying.count))
}

func TestCachingService_DoesNotCacheFailures(t *testing.T) {
	underlying := mock{err: game.ErrRateSourceUnavailable}
	s, _ := newCache(time.Hour, &underlying)

	_, err := s.ExchangeRates(context.Background(), searchDate)
	assert.ErrorIs(t, err, game.ErrRateSourceUnavailable)
	_, err = s.ExchangeRates(context.Background(), searchDate)
	assert.ErrorIs(t, err, game.ErrRateSourceUnavailable)

	assert.Equal(t, int32(2), atomic.LoadInt32(&underlying.count))
}

func TestCachingService_ReturnsCopies(t *testing.T) {
	var underlying mock
	s, _ := newCache(time.Hour, &underlying)

	rates, _ := s.ExchangeRates(context.Background(), searchDate)
	rates["USD"] = 1

	again, _ := s.ExchangeRates(context.Background(), searchDate)
	assert.Equal(t, game.Rate(1400), again["USD"])
}

func TestCachingService_CollapsesConcurrentFetches(t *testing.T) {
	underlying := mock{delay: 20 * time.Millisecond}
	s, _ := newCache(time.Hour, &underlying)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ExchangeRates(context.Background(), searchDate)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&underlying.count), int32(10))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&underlying.count), int32(1))
}

// gated blocks until release is closed and fails if its context was cancelled by then
type gated struct {
	started chan struct{}
	release chan struct{}
	count   int32
}

func (g *gated) ExchangeRates(ctx context.Context, _ time.Time) (game.Rates, error) {
	if atomic.AddInt32(&g.count, 1) == 1 {
		close(g.started)
	}
	<-g.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return game.Rates{"USD": 1400}, nil
}

func TestCachingService_FetchSurvivesCallerCancel(t *testing.T) {
	underlying := &gated{started: make(chan struct{}), release: make(chan struct{})}
	s, _ := newCache(time.Hour, underlying)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.ExchangeRates(ctx, searchDate)
		done <- err
	}()

	<-underlying.started
	cancel()
	close(underlying.release)
	require.NoError(t, <-done)

	rates, err := s.ExchangeRates(context.Background(), searchDate)
	require.NoError(t, err)
	assert.Equal(t, game.Rates{"USD": 1400}, rates)
	assert.Equal(t, int32(1), atomic.LoadInt32(&underlying.count))
}

func TestLoadOrDefault(t *testing.T) {
	defaults := game.Rates{"KRW": 1, "USD": 1400, "JPY": 9, "CNY": 195}
	complete := game.Rates{"USD": 1391.6, "JPY": 9.023, "CNY": 191.5, "EUR": 1490}

	tests := []struct {
		name       string
		source     Service
		want       game.Rates
		wantOrigin Origin
	}{
		{
			"live",
			fixed{rates: complete},
			game.Rates{"KRW": 1, "USD": 1391.6, "JPY": 9.023, "CNY": 191.5},
			OriginLive,
		},
		{
			"unavailable",
			fixed{err: game.ErrRateSourceUnavailable},
			defaults,
			OriginDefault,
		},
		{
			"malformed",
			fixed{err: errors.New("decoding json: " + game.ErrRateSourceMalformed.Error())},
			defaults,
			OriginDefault,
		},
		{
			"missing currency",
			fixed{rates: game.Rates{"USD": 1391.6}},
			defaults,
			OriginDefault,
		},
		{
			"no source",
			nil,
			defaults,
			OriginDefault,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LoadOrDefault(context.Background(), tt.source, searchDate, "KRW", defaults, log.NewNopLogger())

			assert.Equal(t, tt.want, got.Rates)
			assert.Equal(t, tt.wantOrigin, got.Origin)
			if tt.wantOrigin == OriginLive {
				assert.Empty(t, got.Warning)
			} else {
				assert.NotEmpty(t, got.Warning)
			}
		})
	}
}

func TestLoadOrDefault_DefaultsNotAliased(t *testing.T) {
	defaults := game.Rates{"USD": 1400}
	got := LoadOrDefault(context.Background(), nil, searchDate, "KRW", defaults, log.NewNopLogger())
	got.Rates["USD"] = 1

	assert.Equal(t, game.Rates{"USD": 1400}, defaults)
}

type fixed struct {
	rates game.Rates
	err   error
}

func (f fixed) ExchangeRates(_ context.Context, _ time.Time) (game.Rates, error) {
	return f.rates, f.err
}
