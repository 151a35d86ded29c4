package document

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dgallion1/mdgen/internal/figure"
	"github.com/dgallion1/mdgen/internal/fsio"
	"github.com/dgallion1/mdgen/internal/section"
)

//go:embed schema.json
var schemaJSON string

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource("document.schema.json", strings.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("load document schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("document.schema.json")
	})
	return compiledSchema, schemaErr
}

// Structured is the persistence form of a whole document.
type Structured struct {
	Title   string                 `json:"title,omitempty"`
	Authors []string               `json:"authors"`
	Root    section.StructuredNode `json:"root"`
}

// ToStructured converts the document to its persistence form.
func (t *Tree) ToStructured() Structured {
	return Structured{
		Title:   t.title,
		Authors: t.Authors(),
		Root:    t.root.ToStructured(),
	}
}

// Encode writes s as indented JSON.
func Encode(w io.Writer, s Structured) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode structured document: %w", err)
	}
	return nil
}

// Decode validates data against the document schema and decodes it. Every
// schema violation is reported in the returned error's Issues.
func Decode(data []byte) (Structured, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Structured{}, &section.StructuredFormatError{Reason: "not valid JSON: " + err.Error()}
	}
	schema, err := documentSchema()
	if err != nil {
		return Structured{}, err
	}
	if err := schema.Validate(raw); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return Structured{}, schemaError(ve)
		}
		return Structured{}, fmt.Errorf("validate structured document: %w", err)
	}

	var s Structured
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&s); err != nil {
		return Structured{}, &section.StructuredFormatError{Reason: err.Error()}
	}
	return s, nil
}

func schemaError(ve *jsonschema.ValidationError) *section.StructuredFormatError {
	var issues []section.Issue
	seen := map[section.Issue]bool{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issue := section.Issue{Location: node.InstanceLocation, Message: node.Message}
			if !seen[issue] {
				seen[issue] = true
				issues = append(issues, issue)
			}
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(ve)
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Location < issues[j].Location })

	err := &section.StructuredFormatError{Issues: issues}
	if len(issues) > 0 {
		err.Location = issues[0].Location
		err.Reason = issues[0].Message
	}
	return err
}

// FromStructured builds a new document from s. opts configure output naming
// and figures the same way they do for New.
func FromStructured(s Structured, opts ...Option) (*Tree, error) {
	t := New(opts...)
	if err := t.replace(s); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) replace(s Structured) error {
	root, err := section.FromStructured(s.Root, section.WithFigureExtractor(t.figures))
	if err != nil {
		return err
	}
	t.title = s.Title
	t.authors = append([]string{}, s.Authors...)
	t.root = root
	t.reserveFigures()
	return nil
}

// reserveFigures keeps new figures from reusing the file names of figures
// that came in with a loaded document.
func (t *Tree) reserveFigures() {
	r, ok := t.figures.(figure.Reserver)
	if !ok {
		return
	}
	t.root.Walk(func(n *section.Node) error {
		for _, item := range n.Content() {
			switch v := item.(type) {
			case section.Figure:
				r.Reserve(v.Path())
			case section.Image:
				r.Reserve(v.Path())
			}
		}
		return nil
	})
}

// SaveStructured writes the structured form as indented JSON.
func (t *Tree) SaveStructured(w io.Writer) error {
	return Encode(w, t.ToStructured())
}

// LoadStructured replaces the document's metadata and sections with the
// structured form read from r. On error the document is left unchanged.
func (t *Tree) LoadStructured(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read structured document: %w", err)
	}
	s, err := Decode(data)
	if err != nil {
		return err
	}
	if err := t.replace(s); err != nil {
		return err
	}
	t.log.Debug("structured document loaded", "sections", t.root.Count()-1)
	return nil
}

// SaveJSON writes the structured form to StructuredPath through w.
func (t *Tree) SaveJSON(w fsio.Writer) error {
	var buf bytes.Buffer
	if err := t.SaveStructured(&buf); err != nil {
		return err
	}
	path := t.StructuredPath()
	if err := w.WriteFile(path, buf.String()); err != nil {
		return err
	}
	t.log.Info("structured document saved", "path", path, "bytes", buf.Len())
	return nil
}

// Load reads a structured document into a new Tree.
func Load(r io.Reader, opts ...Option) (*Tree, error) {
	t := New(opts...)
	if err := t.LoadStructured(r); err != nil {
		return nil, err
	}
	return t, nil
}
