package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"ai-kitchen/internal/metrics"
	"ai-kitchen/internal/middleware"
)

// RouterDeps holds everything NewRouter wires.
type RouterDeps struct {
	Actions Actions
	Logger  *slog.Logger

	JWTSecret         []byte
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// DataPath is the directory reported by /healthz.
	DataPath string
	// TelegramWebhook is mounted at /telegram/webhook when set.
	TelegramWebhook http.Handler
}

// NewRouter builds the HTTP API.
//
// Middleware order:
//
//	Recovery → Logging → SecurityHeaders → CORS → Auth → RateLimit(General)
//
// Model-backed endpoints add RateLimit(Generation). /healthz, /metrics and
// the Telegram webhook sit outside auth.
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetSysHealth(deps.DataPath))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}
	if deps.TelegramWebhook != nil {
		r.Method(http.MethodPost, "/telegram/webhook", deps.TelegramWebhook)
	}

	plans := NewMealPlanHandler(deps.Actions)
	recipes := NewRecipeHandler(deps.Actions)
	prefs := NewPreferencesHandler(deps.Actions)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.JWTSecret))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		generation := deps.RateLimiter.GenerationMiddleware()

		r.Route("/meal-plans", func(r chi.Router) {
			r.With(generation).Post("/", plans.Generate)
			r.Get("/", plans.List)
			r.Get("/{id}", plans.Get)
			r.Get("/{id}/shopping-list", plans.ShoppingList)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.With(generation).Post("/from-ingredients", recipes.FromIngredients)
			r.With(generation).Post("/help", recipes.Help)
		})
		r.With(generation).Post("/ingredients/extract", recipes.ExtractIngredients)
		r.With(generation).Post("/voice", recipes.Narrate)

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", prefs.Get)
			r.Put("/", prefs.Save)
			r.Get("/exists", prefs.Exists)
		})
	})

	return r
}
