package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"gorm.io/gorm"
)

// app carries the wiring every handler needs: config, database, token
// service and the upload store. Handlers are methods on it; there are no
// package-level singletons.
type app struct {
	cfg    Config
	db     *gorm.DB
	tokens tokenService
	store  fileStore
}

func newApp(cfg Config, db *gorm.DB) *app {
	return &app{
		cfg:    cfg,
		db:     db,
		tokens: newTokenService(cfg.JWTSecret),
		store:  fileStore{dir: cfg.UploadDir},
	}
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()

	// allow comma-separated list of origins
	var origins []string
	for _, p := range strings.Split(a.cfg.CORSOrigin, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorJSON(w, http.StatusNotFound, "Not Found - "+r.URL.Path)
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", a.handleRegister)
		r.Post("/login", a.handleLogin)
		r.Get("/", a.handleGetAuthors)
		r.Get("/{id}", a.handleGetUser)
		r.With(a.requireAuth).Post("/change-avatar", a.handleChangeAvatar)
		r.With(a.requireAuth).Patch("/edit-user", a.handleEditUser)
	})

	r.Route("/posts", func(r chi.Router) {
		r.With(a.requireAuth).Post("/", a.handleCreatePost)
		r.Get("/", a.handleGetPosts)
		r.Get("/{id}", a.handleGetPost)
		r.Get("/categories/{category}", a.handleCategoryPosts)
		r.Get("/users/{id}", a.handleUserPosts)
		r.With(a.requireAuth).Patch("/{id}", a.handleEditPost)
		r.With(a.requireAuth).Delete("/{id}", a.handleDeletePost)
	})

	// Uploaded assets served as static files
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(a.cfg.UploadDir))))

	// Health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	return r
}
