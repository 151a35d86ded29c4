package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/mdgen/internal/document"
	"github.com/dgallion1/mdgen/internal/export"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var stats document.Stats
	err := s.open.With(chi.URLParam(r, "docID"), func(t *document.Tree) error {
		stats = t.Stats()
		return nil
	})
	if err != nil {
		writeTreeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sections": stats.Sections,
		"items":    stats.Items,
		"total":    stats.Total(),
	})
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	var text string
	err := s.open.With(chi.URLParam(r, "docID"), func(t *document.Tree) error {
		text = t.Render()
		return nil
	})
	if err != nil {
		writeTreeError(w, err)
		return
	}
	headings := export.Outline([]byte(text))
	if headings == nil {
		headings = []export.Heading{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"headings": headings})
}
