package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/iacdata/codetree/internal/hierarchy"
)

// handleARCSubtree serves the subtree at an ARC code of arbitrary precision.
func (s *Server) handleARCSubtree(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	node := s.arc.SubtreeByPrecision(code)
	if node == nil {
		jsonError(w, "no data found for the given ARC code", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*arcSubtree{code: toARCSubtree(node)})
}

// handleARCFlatten serves the flat code→description map of a subtree, the
// code set an external reporting layer aggregates over.
func (s *Server) handleARCFlatten(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	node := s.arc.SubtreeByPrecision(code)
	if node == nil {
		jsonError(w, "no data found for the given ARC code", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, hierarchy.FlattenCodeDescriptions(node))
}

// handleARCCompare compares two ARC codes.
func (s *Server) handleARCCompare(w http.ResponseWriter, r *http.Request) {
	s.compare(w, r, s.arc)
}

func (s *Server) compare(w http.ResponseWriter, r *http.Request, tree *hierarchy.Tree) {
	a := r.URL.Query().Get("a")
	b := r.URL.Query().Get("b")
	if a == "" || b == "" {
		jsonError(w, "query parameters a and b are required", http.StatusBadRequest)
		return
	}
	cmp, err := tree.Compare(a, b)
	if err != nil {
		if errors.Is(err, hierarchy.ErrCodeNotFound) {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toComparison(cmp))
}

// handleTopRecommendations aggregates recommendations per ARC code within an
// optional precision subtree and fiscal-year set.
func (s *Server) handleTopRecommendations(w http.ResponseWriter, r *http.Request) {
	precision := r.URL.Query().Get("arc_precision")

	var codes hierarchy.CodeMap
	if precision == "" {
		codes = s.arc.Flatten()
	} else {
		node := s.arc.SubtreeByPrecision(precision)
		if node == nil {
			// An unknown precision selects nothing; downstream treats the
			// empty set as zero-value rather than failing.
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{}})
			return
		}
		codes = hierarchy.FlattenCodeDescriptions(node)
	}

	years, err := parseFiscalYears(r.URL.Query().Get("fiscal_year"))
	if err != nil {
		jsonError(w, "invalid parameter: "+err.Error(), http.StatusBadRequest)
		return
	}

	top, err := s.store.TopRecommendations(r.Context(), codes, years)
	if err != nil {
		s.log.Error("top recommendations failed", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": top})
}

// parseFiscalYears parses "2023" or "2022,2023" into a year list.
func parseFiscalYears(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	var years []int
	for _, part := range strings.Split(raw, ",") {
		y, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, nil
}
