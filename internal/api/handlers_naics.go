package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// handleNAICSInfo serves detail for one NAICS code: the node, its ancestor
// path and its children.
func (s *Server) handleNAICSInfo(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	node := s.naics.Node(code)
	if node == nil {
		jsonError(w, "NAICS code not found: "+code, http.StatusNotFound)
		return
	}

	info := toNodeInfo(node)
	writeJSON(w, http.StatusOK, map[string]any{
		"code":            info.Code,
		"title":           info.Title,
		"is_range":        info.IsRange,
		"alternate_codes": info.AlternateCodes,
		"path":            toNodeInfos(s.naics.AncestorPath(code)),
		"children":        toNodeInfos(s.naics.ChildrenOf(code)),
	})
}

func (s *Server) handleNAICSChildren(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	writeJSON(w, http.StatusOK, toNodeInfos(s.naics.ChildrenOf(code)))
}

func (s *Server) handleNAICSDescendants(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	maxDepth := -1
	if raw := r.URL.Query().Get("max_depth"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 0 {
			jsonError(w, "max_depth must be a non-negative integer", http.StatusBadRequest)
			return
		}
		maxDepth = d
	}
	writeJSON(w, http.StatusOK, toNodeInfos(s.naics.Descendants(code, maxDepth)))
}

func (s *Server) handleNAICSSectors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toNodeInfos(s.naics.Sectors()))
}

func (s *Server) handleNAICSSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		jsonError(w, "query parameter q is required", http.StatusBadRequest)
		return
	}
	max := s.cfg.SearchResultCap
	if raw := r.URL.Query().Get("max"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < max {
			max = n
		}
	}
	writeJSON(w, http.StatusOK, toNodeInfos(s.naics.Search(query, max)))
}

func (s *Server) handleNAICSCompare(w http.ResponseWriter, r *http.Request) {
	s.compare(w, r, s.naics)
}
