// Package router assembles the HTTP routing table and middleware chain.
package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/wallboard/wallboard-server/internal/api/http/handler"
	"github.com/wallboard/wallboard-server/internal/api/http/middleware"
	"github.com/wallboard/wallboard-server/internal/logger"
	"github.com/wallboard/wallboard-server/internal/model"
)

// Deps are the assembled handlers and middleware the router wires up.
type Deps struct {
	Auth    *handler.Auth
	History *handler.History
	Files   *handler.Files
	Health  *handler.Health

	Authenticate *middleware.Authenticate
	AuthLimiter  *middleware.RateLimit
	APILimiter   *middleware.RateLimit

	CORSOrigins []string
	Logger      *logger.Logger
}

const rateLimitWindow = time.Minute

// NewLimiters builds the two rate limiter tiers: tight on the auth
// endpoints, normal on the rest of the API.
func NewLimiters(store model.KeyValue, authPerMinute, apiPerMinute int, log *logger.Logger) (auth, api *middleware.RateLimit) {
	auth = middleware.NewRateLimit(store, "auth", authPerMinute, rateLimitWindow, log)
	api = middleware.NewRateLimit(store, "api", apiPerMinute, rateLimitWindow, log)
	return auth, api
}

func New(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLogging(deps.Logger).Handler)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Cache"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(handler.NotFound)

	r.Route("/auth", func(r chi.Router) {
		r.Use(deps.AuthLimiter.Handler)

		r.Post("/register", deps.Auth.Register)
		r.Post("/login", deps.Auth.Login)
		r.Post("/refresh", deps.Auth.Refresh)
		r.Post("/logout", deps.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(deps.Authenticate.Handler)
			r.Use(deps.Authenticate.RequireRole(model.RoleAdmin))
			r.Post("/logout-all", deps.Auth.LogoutAll)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.APILimiter.Handler)

		r.Get("/health", deps.Health.Check)
		r.Get("/history", deps.History.List)

		r.Group(func(r chi.Router) {
			r.Use(deps.Authenticate.Handler)
			r.Post("/submit", deps.History.Submit)
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.Authenticate.Handler)
			r.Use(deps.Authenticate.RequireRole(model.RoleAdmin))
			r.Delete("/history", deps.History.Clear)
		})
	})

	r.Route("/file", func(r chi.Router) {
		r.Use(deps.APILimiter.Handler)
		r.Use(deps.Authenticate.Handler)
		r.Post("/presign", deps.Files.Presign)
	})

	return r
}
