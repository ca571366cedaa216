package api

import (
	"net/http"
	"strings"

	"github.com/iacdata/codetree/internal/iacdb"
)

// handleAggregates serves the per-ARC dashboard aggregates, filtered by the
// center, state, fiscal_year and arc query parameters.
func (s *Server) handleAggregates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := iacdb.AggregateFilter{
		Center:     q.Get("center"),
		State:      q.Get("state"),
		FiscalYear: q.Get("fiscal_year"),
		ARCPrefix:  q.Get("arc"),
	}
	if filter.FiscalYear != "" {
		if _, _, err := iacdb.ParseFiscalYear(filter.FiscalYear); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	aggs, err := s.store.AggregatesByARC(r.Context(), filter)
	if err != nil {
		s.log.Error("aggregate query failed", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": aggs})
}

func (s *Server) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.store.FilterOptions(r.Context())
	if err != nil {
		s.log.Error("filter options query failed", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": opts})
}

// payloadEntry is one export row with taxonomy descriptions resolved.
type payloadEntry struct {
	iacdb.PayloadRow
	DescriptionARC   string `json:"description_arc"`
	DescriptionNAICS string `json:"description_naics"`
}

func (s *Server) handleAllData(w http.ResponseWriter, r *http.Request) {
	s.servePayload(w, r, 0)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	s.servePayload(w, r, s.cfg.PreviewRows)
}

func (s *Server) servePayload(w http.ResponseWriter, r *http.Request, limit int) {
	rows, err := s.store.PayloadRows(r.Context(), limit)
	if err != nil {
		s.log.Error("payload query failed", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	entries := make([]payloadEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, payloadEntry{
			PayloadRow:       row,
			DescriptionARC:   s.arcDescription(row.ARC),
			DescriptionNAICS: s.naicsDescription(row.NAICS),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": entries})
}

func (s *Server) arcDescription(code string) string {
	if desc, ok := s.arcCodes[code]; ok {
		return desc
	}
	return "ARC description not found"
}

// naicsDescription resolves a code to its title, falling back to
// progressively shorter prefixes so retired six-digit codes still map to a
// live ancestor.
func (s *Server) naicsDescription(code string) string {
	code = strings.TrimSpace(code)
	for len(code) >= 2 {
		if node := s.naics.Node(code); node != nil {
			return node.Label
		}
		code = code[:len(code)-1]
	}
	return "Unknown"
}
