package http

import (
	"net/http"

	"github.com/ratewatch/ratewatch/pkg/httpx"
)

// ConfigHandler exposes non-secret configuration flags to authenticated
// administrators. AuthnMiddleware guards the route; nothing here re-checks
// the token.
type ConfigHandler struct {
	Config ConfigResponse
}

func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.Config)
}
