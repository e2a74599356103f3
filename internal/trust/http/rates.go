package http

import (
	"net/http"

	"github.com/ratewatch/ratewatch/internal/rates"
	"github.com/ratewatch/ratewatch/pkg/httpx"
	"github.com/ratewatch/ratewatch/pkg/slogx"
)

// RatesHandler serves cached exchange-rate lookups.
type RatesHandler struct {
	Provider rates.Provider
}

// ServeHTTP handles GET /v1/rates?base=XXX.
func (h *RatesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	base := rates.NormalizeBase(r.URL.Query().Get("base"))
	if base == "" {
		base = "USD"
	}

	quote, err := h.Provider.Latest(ctx, base)
	if err != nil {
		log.Warn("rates lookup failed", "base", base, "err", err)
		httpx.WriteJSON(w, http.StatusBadGateway, ErrorResponse{Message: "rates provider unavailable"})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, quote)
}
