package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/mdgen/internal/document"
	"github.com/dgallion1/mdgen/internal/importer"
	"github.com/dgallion1/mdgen/internal/section"
	"github.com/dgallion1/mdgen/internal/store"
)

// handleImportStructured opens a document from its structured JSON form.
func (s *Server) handleImportStructured(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	id := store.NewID()
	tree, err := document.Load(r.Body, s.treeOptions(id, r.URL.Query().Get("file_name"))...)
	if err != nil {
		writeTreeError(w, err)
		return
	}
	s.open.Put(id, tree)
	s.log.Info("document imported", "doc_id", id, "sections", tree.Stats().Sections)

	writeJSON(w, http.StatusCreated, map[string]any{"doc_id": id})
}

// handleImportFile reads an uploaded file into the section at the wildcard
// path, or into the document root when no path is given.
func (s *Server) handleImportFile(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !importer.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	// Read file data.
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	imp, err := importer.ForFile(filename, importer.Options{
		FallbackPdftotext: s.cfg.PDFFallbackPdftotext,
		CSVBatchRows:      s.cfg.CSVBatchRows,
	})
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Parse outside the document lock; a failed import changes nothing.
	scratch := section.NewRoot()
	res, err := imp.Import(bytes.NewReader(data), filename, scratch)
	if err != nil {
		jsonError(w, "import failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	path := sectionPath(r)
	err = s.open.With(chi.URLParam(r, "docID"), func(t *document.Tree) error {
		into := t.Root()
		if path != "" {
			node, err := t.GetOrCreate(path)
			if err != nil {
				return err
			}
			into = node
		}
		into.Merge(scratch)
		return nil
	})
	if err != nil {
		writeTreeError(w, err)
		return
	}

	s.log.Info("file imported", "doc_id", chi.URLParam(r, "docID"), "filename", filename,
		"sections", res.Sections, "items", res.Items)
	writeJSON(w, http.StatusOK, map[string]any{
		"filename": filename,
		"result":   res,
	})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
