package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ratewatch/ratewatch/pkg/ttlcache"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls atomic.Int64
	quote Quote
	err   error
}

func (p *countingProvider) Latest(ctx context.Context, base string) (Quote, error) {
	p.calls.Add(1)
	if p.err != nil {
		return Quote{}, p.err
	}
	return p.quote, nil
}

func TestCachedProviderHitsUpstreamOnce(t *testing.T) {
	t.Parallel()

	upstream := &countingProvider{quote: Quote{Base: "USD", Rates: map[string]float64{"EUR": 0.92}}}
	cached := &CachedProvider{
		Upstream: upstream,
		Cache:    ttlcache.New[Quote]("", time.Hour, nil),
	}

	for range 5 {
		quote, err := cached.Latest(context.Background(), "usd")
		require.NoError(t, err)
		require.Equal(t, 0.92, quote.Rates["EUR"])
	}

	require.EqualValues(t, 1, upstream.calls.Load())
}

func TestCachedProviderRefetchesAfterTTL(t *testing.T) {
	t.Parallel()

	upstream := &countingProvider{quote: Quote{Base: "USD"}}
	cached := &CachedProvider{
		Upstream: upstream,
		Cache:    ttlcache.New[Quote]("", time.Nanosecond, nil),
	}

	_, err := cached.Latest(context.Background(), "USD")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	_, err = cached.Latest(context.Background(), "USD")
	require.NoError(t, err)
	require.EqualValues(t, 2, upstream.calls.Load())
}

func TestCachedProviderPropagatesUpstreamError(t *testing.T) {
	t.Parallel()

	upstream := &countingProvider{err: ErrUnavailable}
	cached := &CachedProvider{
		Upstream: upstream,
		Cache:    ttlcache.New[Quote]("", time.Hour, nil),
	}

	_, err := cached.Latest(context.Background(), "USD")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPProviderParsesUpstream(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "USD", r.URL.Query().Get("base"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"EUR":0.92,"GBP":0.79}}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, time.Second)
	quote, err := p.Latest(context.Background(), "usd")
	require.NoError(t, err)
	require.Equal(t, "USD", quote.Base)
	require.Equal(t, 0.79, quote.Rates["GBP"])
}

func TestHTTPProviderUpstreamFailureIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, time.Second)
	_, err := p.Latest(context.Background(), "USD")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPProviderMalformedBodyIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, time.Second)
	_, err := p.Latest(context.Background(), "USD")
	require.ErrorIs(t, err, ErrUnavailable)
}
