package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPProvider fetches quotes from an upstream JSON API. A slow upstream is
// bounded by the client timeout so it can only fail this lookup, never
// stall the caller indefinitely.
type HTTPProvider struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) Latest(ctx context.Context, base string) (Quote, error) {
	base = NormalizeBase(base)

	endpoint := fmt.Sprintf("%s/latest?base=%s", p.BaseURL, url.QueryEscape(base))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("rates: failed to build request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("%w: upstream status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload struct {
		Base  string             `json:"base"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Quote{}, fmt.Errorf("%w: malformed upstream response: %w", ErrUnavailable, err)
	}

	return Quote{
		Base:      base,
		Rates:     payload.Rates,
		FetchedAt: time.Now().UTC(),
	}, nil
}
