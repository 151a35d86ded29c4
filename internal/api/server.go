package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/mdgen/internal/config"
	"github.com/dgallion1/mdgen/internal/store"
	"github.com/dgallion1/mdgen/internal/workspace"
)

// Server is the HTTP API server for mdgen.
type Server struct {
	router chi.Router
	open   *workspace.Registry
	store  *store.Store
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(open *workspace.Registry, st *store.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		open:  open,
		store: st,
		log:   log,
		cfg:   cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/documents", s.handleCreateDocument)
		r.Post("/api/documents/import", s.handleImportStructured)
		r.Get("/api/documents", s.handleListDocuments)
		r.Delete("/api/documents/{docID}", s.handleCloseDocument)

		r.Get("/api/documents/{docID}/structured", s.handleStructured)
		r.Get("/api/documents/{docID}/markdown", s.handleMarkdown)
		r.Get("/api/documents/{docID}/html", s.handleHTML)
		r.Get("/api/documents/{docID}/docx", s.handleDOCX)
		r.Get("/api/documents/{docID}/outline", s.handleOutline)
		r.Get("/api/documents/{docID}/stats", s.handleStats)
		r.Post("/api/documents/{docID}/save", s.handleSaveFiles)

		r.Get("/api/documents/{docID}/sections/*", s.handleGetSection)
		r.Post("/api/documents/{docID}/sections/*", s.handleAddItem)
		r.Post("/api/documents/{docID}/files", s.handleImportFile)
		r.Post("/api/documents/{docID}/files/*", s.handleImportFile)

		r.Put("/api/documents/{docID}/persist", s.handlePersist)
		r.Get("/api/library", s.handleLibrary)
		r.Post("/api/library/{docID}/open", s.handleOpen)
		r.Delete("/api/library/{docID}", s.handleDeleteStored)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
