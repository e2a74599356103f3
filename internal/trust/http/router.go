package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ratewatch/ratewatch/internal/rates"
	"github.com/ratewatch/ratewatch/internal/trust/service"
	"github.com/ratewatch/ratewatch/internal/trust/store"
	"github.com/ratewatch/ratewatch/pkg/httpx"
	"github.com/ratewatch/ratewatch/pkg/jwtx"
	"github.com/ratewatch/ratewatch/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	CredentialService   *service.CredentialService
	SessionService      *service.SessionService
	VerificationService *service.VerificationService
	RatesProvider       rates.Provider
	AdminConfig         ConfigResponse
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAdmin()
	r.registerVerification()
	r.registerRates()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAdmin() {
	adminHandler := &AdminHandler{
		Credentials: r.CredentialService,
		Sessions:    r.SessionService,
	}

	// POST /v1/admin/login - strict rate limit by IP (authentication attempts)
	r.Mux.Handle("POST /v1/admin/login",
		httpx.Chain(http.HandlerFunc(adminHandler.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /v1/admin/config - requires an admin session token
	configHandler := &ConfigHandler{Config: r.AdminConfig}
	r.Mux.Handle("GET /v1/admin/config",
		httpx.Chain(configHandler,
			httpx.AuthnMiddleware(r.verifier, service.AdminRole),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerVerification() {
	h := &VerifyHandler{Verification: r.VerificationService}

	// POST /v1/verify - strict rate limit by IP + submitted email
	r.Mux.Handle("POST /v1/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	// POST /v1/verify/issue - admin operation
	r.Mux.Handle("POST /v1/verify/issue",
		httpx.Chain(http.HandlerFunc(h.HandleIssue),
			httpx.AuthnMiddleware(r.verifier, service.AdminRole),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerRates() {
	h := &RatesHandler{Provider: r.RatesProvider}

	r.Mux.Handle("GET /v1/rates",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
