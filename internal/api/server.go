package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iacdata/codetree/internal/config"
	"github.com/iacdata/codetree/internal/hierarchy"
	"github.com/iacdata/codetree/internal/iacdb"
)

// Server is the HTTP API over the built taxonomies and the IAC database.
type Server struct {
	router   chi.Router
	arc      *hierarchy.Tree
	arcCodes hierarchy.CodeMap
	naics    *hierarchy.Tree
	store    *iacdb.Store
	log      *slog.Logger
	cfg      config.Config
}

// NewServer wires the query endpoints over the given trees and store.
func NewServer(arc *hierarchy.Tree, arcCodes hierarchy.CodeMap, naics *hierarchy.Tree, store *iacdb.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		arc:      arc,
		arcCodes: arcCodes,
		naics:    naics,
		store:    store,
		log:      log,
		cfg:      cfg,
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

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/arc/{code}", s.handleARCSubtree)
		r.Get("/arc/{code}/codes", s.handleARCFlatten)
		r.Get("/arc/compare", s.handleARCCompare)

		r.Get("/recommendations", s.handleTopRecommendations)
		r.Get("/aggregates", s.handleAggregates)
		r.Get("/filter-options", s.handleFilterOptions)
		r.Get("/all", s.handleAllData)
		r.Get("/preview", s.handlePreview)

		r.Get("/naics/sectors", s.handleNAICSSectors)
		r.Get("/naics/search", s.handleNAICSSearch)
		r.Get("/naics/compare", s.handleNAICSCompare)
		r.Get("/naics/{code}", s.handleNAICSInfo)
		r.Get("/naics/{code}/children", s.handleNAICSChildren)
		r.Get("/naics/{code}/descendants", s.handleNAICSDescendants)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
