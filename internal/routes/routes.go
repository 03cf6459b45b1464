package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AnshRaj112/serenify-journal/internal/handlers"
	"github.com/AnshRaj112/serenify-journal/internal/middleware"
)

// Deps holds what the route table mounts.
type Deps struct {
	Auth    *handlers.AuthHandler
	Journal *handlers.JournalHandler
	AI      *handlers.AIHandler
	Tokens  middleware.TokenValidator
	Metrics http.Handler // nil disables /metrics
	Logger  *zap.Logger
}

func SetupRoutes(r chi.Router, d Deps) {
	r.Get("/health", handlers.Health)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	requireAuth := middleware.RequireAuth(d.Tokens, d.Logger)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", d.Auth.Signup)
		r.Post("/login", d.Auth.Login)

		r.With(requireAuth).Get("/user", d.Auth.Me)
		r.With(requireAuth).Post("/logout", d.Auth.Logout)
	})

	r.Route("/api/journal", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", d.Journal.Create)
		r.Get("/", d.Journal.List)
		r.Get("/streak", d.Journal.Streak)
		r.Get("/moods/{userId}", d.Journal.Moods)
		r.Get("/export", d.Journal.Export)
	})

	r.Route("/api/ai", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/respond", d.AI.Respond)
	})
}
