package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/mdgen/internal/document"
	"github.com/dgallion1/mdgen/internal/export"
	"github.com/dgallion1/mdgen/internal/fsio"
	"github.com/dgallion1/mdgen/internal/section"
	"github.com/dgallion1/mdgen/internal/store"
	"github.com/dgallion1/mdgen/internal/workspace"
)

type createRequest struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	FileName string   `json:"file_name"`
}

// treeOptions places a document's output and figures under OutputDir/<id>.
func (s *Server) treeOptions(id, fileName string) []document.Option {
	return []document.Option{
		document.WithDir(filepath.Join(s.cfg.OutputDir, id)),
		document.WithFileName(fileName),
		document.WithFigureDPI(s.cfg.FigureDPI),
		document.WithLogger(s.log.With("doc_id", id)),
	}
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil && err != io.EOF {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	id := store.NewID()
	opts := append(s.treeOptions(id, req.FileName),
		document.WithTitle(req.Title),
		document.WithAuthors(req.Authors...),
	)
	s.open.Put(id, document.New(opts...))
	s.log.Info("document created", "doc_id", id, "title", req.Title)

	writeJSON(w, http.StatusCreated, map[string]any{"doc_id": id})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"documents": s.open.List()})
}

func (s *Server) handleCloseDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if !s.open.Remove(docID) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"closed": docID})
}

func (s *Server) handleStructured(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := s.open.With(chi.URLParam(r, "docID"), func(t *document.Tree) error {
		return t.SaveStructured(&buf)
	})
	if err != nil {
		writeTreeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(buf.Bytes())
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	opts := document.RenderOptions{FrontMatter: queryBool(r, "front_matter")}
	var text string
	err := s.open.With(chi.URLParam(r, "docID"), func(t *document.Tree) error {
		text = t.RenderWith(opts)
		return nil
	})
	if err != nil {
		writeTreeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, text)
}

func (s *Server) handleHTML(w http.ResponseWriter, r *http.Request) {
	var text, title string
	err := s.open.With(chi.URLParam(r, "docID"), func(t *document.Tree) error {
		text, title = t.Render(), t.Title()
		return nil
	})
	if err != nil {
		writeTreeError(w, err)
		return
	}
	out, err := export.HTML([]byte(text), export.HTMLOptions{Page: queryBool(r, "page"), Title: title})
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(out)
}

func (s *Server) handleDOCX(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	var name string
	err := s.open.With(chi.URLParam(r, "docID"), func(t *document.Tree) error {
		name = t.FileName() + ".docx"
		return export.DOCX(t, &buf, s.log)
	})
	if err != nil {
		writeTreeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Write(buf.Bytes())
}

// handleSaveFiles writes the markdown and structured files to the
// document's output directory.
func (s *Server) handleSaveFiles(w http.ResponseWriter, r *http.Request) {
	var mdPath, jsonPath string
	opts := document.RenderOptions{FrontMatter: queryBool(r, "front_matter")}
	err := s.open.With(chi.URLParam(r, "docID"), func(t *document.Tree) error {
		if err := t.SaveWith(fsio.OS{}, opts); err != nil {
			return err
		}
		if err := t.SaveJSON(fsio.OS{}); err != nil {
			return err
		}
		mdPath, jsonPath = t.MarkdownPath(), t.StructuredPath()
		return nil
	})
	if err != nil {
		writeTreeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"markdown": mdPath, "structured": jsonPath})
}

func (s *Server) handleGetSection(w http.ResponseWriter, r *http.Request) {
	path := sectionPath(r)
	var node section.StructuredNode
	found := false
	err := s.open.With(chi.URLParam(r, "docID"), func(t *document.Tree) error {
		if _, err := section.SplitPath(path); err != nil {
			return err
		}
		n, ok := t.Lookup(path)
		if ok {
			node, found = n.ToStructured(), true
		}
		return nil
	})
	if err != nil {
		writeTreeError(w, err)
		return
	}
	if !found {
		jsonError(w, "section not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// handleAddItem attaches one tagged content item to the section at the
// wildcard path, creating missing sections.
func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var tagged section.TaggedItem
	if err := json.NewDecoder(io.LimitReader(r.Body, s.cfg.MaxUploadBytes)).Decode(&tagged); err != nil {
		jsonError(w, "invalid item: "+err.Error(), http.StatusBadRequest)
		return
	}
	item, err := section.Untag(tagged)
	if err != nil {
		writeTreeError(w, err)
		return
	}

	path := sectionPath(r)
	var resp map[string]any
	err = s.open.With(chi.URLParam(r, "docID"), func(t *document.Tree) error {
		node, err := t.GetOrCreate(path)
		if err != nil {
			return err
		}
		node.Attach(item)
		resp = map[string]any{
			"path":  node.Path(),
			"level": node.Level(),
			"items": len(node.Content()),
		}
		return nil
	})
	if err != nil {
		writeTreeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func sectionPath(r *http.Request) string {
	path := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		if p, err := url.PathUnescape(path); err == nil {
			path = p
		}
	}
	return path
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeTreeError maps document errors to status codes.
func writeTreeError(w http.ResponseWriter, err error) {
	var sfe *section.StructuredFormatError
	switch {
	case errors.As(err, &sfe):
		issues := sfe.Issues
		if len(issues) == 0 {
			issues = []section.Issue{{Location: sfe.Location, Message: sfe.Reason}}
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error(), "issues": issues})
	case errors.Is(err, section.ErrMalformedPath), errors.Is(err, section.ErrUnsupportedContent):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, workspace.ErrNotFound), errors.Is(err, store.ErrNotFound):
		jsonError(w, "document not found", http.StatusNotFound)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
