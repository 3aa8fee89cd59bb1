package api

import (
	"html/template"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/lehagrefabien-commits/fatca-application/internal/catalog"
	"github.com/lehagrefabien-commits/fatca-application/internal/config"
	"github.com/lehagrefabien-commits/fatca-application/internal/pipeline"
)

// Downloads serves previously generated files by token.
type Downloads interface {
	Open(token string) (*os.File, os.FileInfo, error)
}

// Counts reports the total number of generated letters.
type Counts interface {
	Value() (int64, error)
}

// Server is the HTTP front end for the letter generator.
type Server struct {
	router    chi.Router
	generator *pipeline.Generator
	downloads Downloads
	counts    Counts
	catalog   *catalog.Catalog
	pages     map[string]*template.Template
	limiter   *rate.Limiter
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(gen *pipeline.Generator, downloads Downloads, counts Counts, cat *catalog.Catalog, log *slog.Logger, cfg config.Config) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	s := &Server{
		generator: gen,
		downloads: downloads,
		counts:    counts,
		catalog:   cat,
		pages:     pages,
		limiter:   rate.NewLimiter(rate.Limit(cfg.GenerateRate), cfg.GenerateBurst),
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/api/stats", s.handleStats)

	r.Get("/", s.handleLangSelect)
	r.Get("/context/{lang}", s.handleContext)
	r.Get("/fr", s.handleForm)
	r.Get("/nl", s.handleForm)

	r.With(RateLimit(s.limiter, s.log)).Post("/generate", s.handleGenerate)
	r.Get("/download/{token}", s.handleDownload)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
