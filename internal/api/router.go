package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/isdelr/devlink/internal/api/handlers"
	"github.com/isdelr/devlink/internal/auth"
	"github.com/isdelr/devlink/internal/services"
)

// RouterConfig carries the settings the router needs.
type RouterConfig struct {
	AllowedOrigins       []string
	SearchIncludesDomain bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(
	cfg RouterConfig,
	logger zerolog.Logger,
	tokens auth.TokenVerifier,
	userService services.UserServiceProvider,
	developerService services.DeveloperServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	developerHandler := handlers.NewDeveloperHandler(developerService, cfg.SearchIncludesDomain)
	requireAuth := auth.Middleware(tokens)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.With(requireAuth).Get("/me", authHandler.GetMe)
	})

	r.Route("/developers", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", developerHandler.GetAll)
		r.Post("/", developerHandler.Create)
		r.Get("/stats", developerHandler.Stats)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", developerHandler.Get)
			r.Put("/", developerHandler.Update)
			r.Delete("/", developerHandler.Delete)
		})
	})

	return r
}
