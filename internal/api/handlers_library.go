package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/mdgen/internal/document"
	"github.com/dgallion1/mdgen/internal/store"
)

// handlePersist writes an open document to the library under its own ID.
func (s *Server) handlePersist(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	var rec store.Record
	err := s.open.With(docID, func(t *document.Tree) error {
		var err error
		rec, err = s.store.Put(r.Context(), docID, t)
		return err
	})
	if err != nil {
		writeTreeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context())
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": records})
}

// handleOpen loads a stored document into the workspace, replacing any open
// copy.
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	tree, rec, err := s.store.Get(r.Context(), docID, s.treeOptions(docID, "")...)
	if err != nil {
		writeTreeError(w, err)
		return
	}
	s.open.Put(docID, tree)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteStored(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.store.Delete(r.Context(), docID); err != nil {
		writeTreeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": docID})
}
