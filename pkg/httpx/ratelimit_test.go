package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitAllowsWithinBudget(t *testing.T) {
	t.Parallel()

	h := Chain(okHandler(), RateLimitByIP(RateLimitConfig{
		RequestsPerWindow: 3,
		Window:            time.Minute,
		Burst:             3,
	}))

	for i := range 3 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}
}

func TestRateLimitBlocksOverBudget(t *testing.T) {
	t.Parallel()

	h := Chain(okHandler(), RateLimitByIP(RateLimitConfig{
		RequestsPerWindow: 2,
		Window:            time.Minute,
		Burst:             2,
	}))

	for range 2 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimitKeysAreIndependent(t *testing.T) {
	t.Parallel()

	h := Chain(okHandler(), RateLimitByIP(RateLimitConfig{
		RequestsPerWindow: 1,
		Window:            time.Minute,
		Burst:             1,
	}))

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.3:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	// A different IP is a different bucket.
	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "10.0.0.4:1234"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, second)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestJSONFieldKeyExtractorReadsJSONBody(t *testing.T) {
	t.Parallel()

	body := `{"email":" User@X.com ","code":"123456"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.1:1234"

	key := CompositeKeyExtractor(":", IPKeyExtractor, JSONFieldKeyExtractor("email"))(req)
	require.Equal(t, "10.0.0.1:user@x.com", key)

	// The body survives the peek and decodes downstream.
	var decoded struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(req.Body).Decode(&decoded))
	require.Equal(t, " User@X.com ", decoded.Email)
	require.Equal(t, "123456", decoded.Code)
}

func TestJSONFieldKeyExtractorToleratesBadBodies(t *testing.T) {
	t.Parallel()

	extract := JSONFieldKeyExtractor("email")

	for name, body := range map[string]string{
		"empty":         "",
		"not json":      "{oops",
		"missing field": `{"code":"123456"}`,
		"wrong type":    `{"email":42}`,
		"null field":    `{"email":null}`,
		"non-object":    `[1,2,3]`,
		"blank value":   `{"email":"   "}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		require.Empty(t, extract(req), "body %s", name)
	}
}

func TestRateLimitKeyedByJSONEmail(t *testing.T) {
	t.Parallel()

	h := Chain(okHandler(), RateLimitByIPAndJSONField(RateLimitConfig{
		RequestsPerWindow: 1,
		Window:            time.Minute,
		Burst:             1,
	}, "email"))

	send := func(email string) int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/",
			strings.NewReader(`{"email":"`+email+`","code":"000000"}`))
		req.RemoteAddr = "10.0.0.6:1234"
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	// Same IP, distinct emails: distinct buckets.
	require.Equal(t, http.StatusOK, send("a@x.com"))
	require.Equal(t, http.StatusOK, send("b@x.com"))

	// Same IP and email: bucket exhausted.
	require.Equal(t, http.StatusTooManyRequests, send("a@x.com"))
}

func TestIPKeyExtractorPrefersForwardedFor(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.5")
	require.Equal(t, "203.0.113.7", IPKeyExtractor(req))

	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-IP", "203.0.113.8")
	require.Equal(t, "203.0.113.8", IPKeyExtractor(req))

	req.Header.Del("X-Real-IP")
	require.Equal(t, "10.0.0.5", IPKeyExtractor(req))
}
