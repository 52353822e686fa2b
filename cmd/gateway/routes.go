package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/vertexpay/onramp-gateway/internal/content"
	"github.com/vertexpay/onramp-gateway/internal/errlog"
	"github.com/vertexpay/onramp-gateway/internal/httputil"
	"github.com/vertexpay/onramp-gateway/internal/middleware"
	"github.com/vertexpay/onramp-gateway/internal/onramp"
)

// router builds the full route table with its middleware chains.
func (a *app) router() *mux.Router {
	auth := middleware.NewSupabaseAuthMiddleware(a.cfg.Supabase, a.logger)
	cors := middleware.NewCORSMiddleware(a.cfg.CORS.AllowedOrigins)
	tracing := middleware.NewTracingMiddleware(a.logger)
	limiter := middleware.NewRateLimiter(a.cfg.RateLimit.RequestsPerSecond, a.cfg.RateLimit.Burst, a.logger)
	limiter.StartCleanup(10 * time.Minute)
	contentHandler := content.NewHandler(a.store, a.logger)

	r := mux.NewRouter()
	r.Use(tracing.Handler)
	r.Use(middleware.MetricsMiddleware(a.metrics))
	r.Use(cors.Handler)
	r.Use(middleware.RecoveryMiddleware(a.pipeline, a.logger))
	r.Use(auth.Middleware)

	r.HandleFunc("/health", a.healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", a.metrics.Handler()).Methods(http.MethodGet)

	// Client error capture. Ingest is open to the public site; the recent
	// view is admin-only.
	logs := r.PathPrefix("/api/v1/client-logs").Subrouter()
	logs.HandleFunc("", errlog.IngestHandler(a.pipeline, a.logger)).Methods(http.MethodPost)
	logs.Handle("/recent", auth.RequireRole("admin")(errlog.RecentHandler(a.pipeline))).Methods(http.MethodGet)

	// Onramp session issuance. All variants share the rate limiter; the
	// Stripe variant additionally requires an authenticated caller.
	sessions := r.PathPrefix("/api/v1/onramp").Subrouter()
	sessions.Use(limiter.Handler)
	sessions.HandleFunc("/coinbase/session",
		onramp.CoinbaseSessionHandler(a.coinbase, a.logger, a.metrics)).Methods(http.MethodPost)
	sessions.Handle("/stripe/session",
		auth.RequireAuth(onramp.StripeSessionHandler(a.stripe, a.logger, a.metrics))).Methods(http.MethodPost)
	sessions.HandleFunc("/moonpay/sign",
		onramp.MoonPaySignHandler(a.moonpay, a.logger, a.metrics)).Methods(http.MethodPost)

	// Site copy: public reads, admin writes.
	requireAdmin := auth.RequireRole("admin")
	r.HandleFunc("/api/v1/content/{slug}", contentHandler.GetPage).Methods(http.MethodGet)
	r.Handle("/api/v1/content/{slug}",
		requireAdmin(http.HandlerFunc(contentHandler.PutPage))).Methods(http.MethodPut)

	// Provider catalogue: the public list carries enabled providers only,
	// the dashboard list includes disabled entries.
	r.HandleFunc("/api/v1/providers", contentHandler.ListProviders).Methods(http.MethodGet)
	r.Handle("/api/v1/providers/all",
		requireAdmin(http.HandlerFunc(contentHandler.ListAllProviders))).Methods(http.MethodGet)
	r.Handle("/api/v1/providers/{id}",
		requireAdmin(http.HandlerFunc(contentHandler.PutProvider))).Methods(http.MethodPut)

	// Preflight requests for any route terminate in the CORS middleware.
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	return r
}

func (a *app) healthHandler(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "onramp-gateway",
	})
}
