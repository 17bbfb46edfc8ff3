// Package web provides the HTTP API server: routing, request decoding, and
// the translation of service errors into JSON responses.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/statboard/statboard/internal/auth"
	"github.com/statboard/statboard/internal/config"
	"github.com/statboard/statboard/internal/core"
	"github.com/statboard/statboard/internal/logging"
	"github.com/statboard/statboard/internal/web/middleware"
)

// Server is the HTTP front end over the ingestion service.
type Server struct {
	service  *core.Service
	sessions *auth.Store
	verifier auth.Verifier
	validate *validator.Validate
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
}

// NewServer wires routes and middleware. Call Start to begin serving.
func NewServer(service *core.Service, sessions *auth.Store, verifier auth.Verifier, cfg *config.Config) *Server {
	s := &Server{
		service:  service,
		sessions: sessions,
		verifier: verifier,
		validate: validator.New(),
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		s.router.Use(middleware.NewRateLimiter(s.cfg.Rate.RequestsPerMinute).Handler)
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/sessions", s.handleLogin)

		// Everything below requires a valid session token.
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.sessions))

			r.Delete("/auth/sessions", s.handleLogout)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", s.handleListProjects)
				r.Post("/", s.handleCreateProject)
				r.Get("/{projectID}", s.handleGetProject)
				r.Delete("/{projectID}", s.handleDeleteProject)
				r.Get("/{projectID}/datasets", s.handleListDatasets)

				uploadGroup := chi.Router(r)
				if s.cfg.Rate.Enabled {
					// Tighter limit on the upload path.
					uploadGroup = r.With(middleware.NewRateLimiter(s.cfg.Rate.UploadsPerMinute).Handler)
				}
				uploadGroup.Post("/{projectID}/datasets", s.handleUploadDataset)
			})

			r.Route("/datasets/{datasetID}", func(r chi.Router) {
				r.Get("/", s.handleGetDataset)
				r.Delete("/", s.handleDeleteDataset)
				r.Get("/preview", s.handlePreviewDataset)
				r.Get("/download", s.handleDownloadDataset)
				r.Post("/commands", s.handleRunCommand)
			})
		})
	})
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	logging.FromContext(context.Background()).Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router exposes the chi router for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders hardens every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
