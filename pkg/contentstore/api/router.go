package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/edupath/content-store/pkg/contentstore"
	"github.com/edupath/content-store/pkg/contentstore/catalog"
)

// Server bundles the wired services behind the HTTP surface.
type Server struct {
	Colleges   *contentstore.Service[catalog.College]
	StudyPages *contentstore.Service[catalog.StudyPage]
	Assets     *contentstore.AssetUploader

	AdminToken  string
	Environment string
	Logger      *slog.Logger
}

// Routes builds the full router: unauthenticated reads, token-guarded admin
// writes, and a health check.
func (s *Server) Routes() http.Handler {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS for development
	if s.Environment == "development" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusOK)
					return
				}
				next.ServeHTTP(w, r)
			})
		})
	}

	r.Get("/health", s.handleHealth)

	colleges := NewFamilyHandler(s.Colleges, logger)
	studyPages := NewFamilyHandler(s.StudyPages, logger)
	assets := NewAssetsHandler(s.Assets, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/colleges", colleges.PublicRoutes())
		r.Mount("/study-pages", studyPages.PublicRoutes())

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdminToken(s.AdminToken))
			r.Mount("/colleges", colleges.AdminRoutes())
			r.Mount("/study-pages", studyPages.AdminRoutes())
			r.Mount("/assets", assets.Routes())
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}
