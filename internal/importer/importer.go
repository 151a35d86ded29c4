// Package importer reads existing documents into a section tree.
package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/mdgen/internal/section"
)

// Importer adds the content of one file beneath a section. Headings found
// in the file become child sections; everything else becomes content.
type Importer interface {
	Import(r io.Reader, filename string, into *section.Node) (Result, error)
}

// Result summarizes an import.
type Result struct {
	// Title is the document title found in the file, or the file name
	// without extension.
	Title    string `json:"title"`
	Sections int    `json:"sections"`
	Items    int    `json:"items"`
}

// Options tune individual importers.
type Options struct {
	// FallbackPdftotext runs the pdftotext binary when the PDF library
	// cannot extract text.
	FallbackPdftotext bool
	// CSVBatchRows splits CSV tables into child sections of this many rows.
	// Zero keeps a single table.
	CSVBatchRows int
}

// SupportedExtensions lists file extensions that can be imported.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".csv":  true,
	".html": true,
	".htm":  true,
	".pdf":  true,
	".docx": true,
}

// ForFile returns the importer for a filename.
func ForFile(filename string, opts Options) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextImporter{}, nil
	case ".csv":
		return &CSVImporter{BatchRows: opts.CSVBatchRows}, nil
	case ".html", ".htm":
		return &HTMLImporter{}, nil
	case ".pdf":
		return &PDFImporter{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// SectionName turns a heading into a valid section name. Whitespace is
// collapsed and the path delimiter is replaced. An empty heading yields
// fallback.
func SectionName(heading, fallback string) string {
	name := strings.Join(strings.Fields(heading), " ")
	name = strings.ReplaceAll(name, section.PathDelimiter, "-")
	if name == "" {
		return fallback
	}
	return name
}

func baseTitle(filename string) string {
	name := filepath.Base(filename)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// outline places blocks under the most recent heading. Headings nest by
// level the same way markdown headers do; a heading pops every open
// section at the same or a deeper level.
type outline struct {
	stack  []outlineEntry
	result *Result
}

type outlineEntry struct {
	node  *section.Node
	level int
}

func newOutline(into *section.Node, result *Result) *outline {
	return &outline{stack: []outlineEntry{{node: into, level: 0}}, result: result}
}

func (o *outline) current() *section.Node {
	return o.stack[len(o.stack)-1].node
}

func (o *outline) heading(level int, title string) error {
	for len(o.stack) > 1 && o.stack[len(o.stack)-1].level >= level {
		o.stack = o.stack[:len(o.stack)-1]
	}
	parent := o.current()
	name := SectionName(title, fmt.Sprintf("Section %d", len(parent.Children())+1))
	_, existed := parent.Lookup(name)
	child, err := parent.Child(name)
	if err != nil {
		return err
	}
	o.stack = append(o.stack, outlineEntry{node: child, level: level})
	if !existed {
		o.result.Sections++
	}
	return nil
}

func (o *outline) attach(item section.Item) {
	o.current().Attach(item)
	o.result.Items++
}
