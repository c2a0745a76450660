// Package server assembles the SwapSpace HTTP API.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/swapspace/internal/auth"
	"github.com/ayush/swapspace/internal/items"
	"github.com/ayush/swapspace/internal/logging"
	"github.com/ayush/swapspace/internal/middleware"
)

// Deps are the collaborators the router wires together.
type Deps struct {
	Users       auth.UserStore
	Items       items.ItemStore
	Owners      items.OwnerResolver
	Tokens      *auth.TokenService
	Log         logging.Logger
	CORSOrigins []string
}

// NewRouter builds the API router.
func NewRouter(d Deps) http.Handler {
	authHandler := auth.NewHandler(auth.NewCredentials(d.Users), d.Tokens, d.Log)
	itemHandler := items.NewHandler(items.NewService(d.Items, d.Owners), d.Log)
	requireAuth := middleware.RequireAuth(d.Tokens, d.Log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth routes (public)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// User routes (protected)
	r.Route("/api/users", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/profile", authHandler.Profile)
		r.Get("/items", itemHandler.Mine)
	})

	// Item routes: reads are public, writes need a token
	r.Route("/api/items", func(r chi.Router) {
		r.Get("/", itemHandler.List)
		r.Get("/categories", itemHandler.Categories)
		r.Get("/{id}", itemHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", itemHandler.Create)
			r.Put("/{id}", itemHandler.Update)
			r.Delete("/{id}", itemHandler.Delete)
		})
	})

	return r
}
