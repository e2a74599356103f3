// Package rates fetches currency exchange quotes from an upstream provider.
// The provider itself is an external collaborator; this package only pins
// down the interface boundary and a caching decorator in front of it.
package rates

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrUnavailable = errors.New("rates: provider unavailable")

// Quote is one base currency's rates snapshot.
type Quote struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// Provider looks up the latest rates for a base currency.
type Provider interface {
	Latest(ctx context.Context, base string) (Quote, error)
}

// NormalizeBase canonicalizes a base currency code for cache keying.
func NormalizeBase(base string) string {
	return strings.ToUpper(strings.TrimSpace(base))
}
