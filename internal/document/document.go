// Package document holds a titled section tree and turns it into markdown
// text or a structured JSON form.
package document

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/mdgen/internal/figure"
	"github.com/dgallion1/mdgen/internal/fsio"
	"github.com/dgallion1/mdgen/internal/mdrender"
	"github.com/dgallion1/mdgen/internal/section"
)

// DefaultFileName is the base name used when none is given.
const DefaultFileName = "GeneratedMD"

// Tree is a document: metadata plus a root section. A Tree is not safe for
// concurrent use.
type Tree struct {
	title    string
	authors  []string
	fileName string
	dir      string
	dpi      int
	figures  figure.Extractor
	log      *slog.Logger
	root     *section.Node
}

// Option configures a Tree.
type Option func(*Tree)

func WithTitle(title string) Option { return func(t *Tree) { t.title = title } }

func WithAuthors(authors ...string) Option {
	return func(t *Tree) { t.authors = append([]string(nil), authors...) }
}

// WithFileName sets the output base name, without extension.
func WithFileName(name string) Option {
	return func(t *Tree) {
		if name != "" {
			t.fileName = strings.TrimSuffix(name, filepath.Ext(name))
		}
	}
}

// WithDir sets the output directory.
func WithDir(dir string) Option { return func(t *Tree) { t.dir = dir } }

// WithTarget sets dir and file name from a single path. A path ending in a
// markdown extension names the file; anything else names the directory.
func WithTarget(target string) Option {
	return func(t *Tree) {
		dir, base := fsio.SplitTarget(target)
		t.dir = dir
		if base != "" {
			t.fileName = base
		}
	}
}

// WithFigureDPI sets the resolution passed to plottable values when the
// default figure extractor is used.
func WithFigureDPI(dpi int) Option { return func(t *Tree) { t.dpi = dpi } }

// WithFigureExtractor replaces the default extractor, which saves figures
// beside the markdown file.
func WithFigureExtractor(x figure.Extractor) Option { return func(t *Tree) { t.figures = x } }

func WithLogger(log *slog.Logger) Option { return func(t *Tree) { t.log = log } }

// New creates an empty document.
func New(opts ...Option) *Tree {
	t := &Tree{fileName: DefaultFileName, dir: "."}
	for _, opt := range opts {
		opt(t)
	}
	if t.authors == nil {
		t.authors = []string{}
	}
	if t.log == nil {
		t.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if t.figures == nil {
		t.figures = figure.NewDirExtractor(t.dir, t.fileName, t.dpi)
	}
	t.root = section.NewRoot(section.WithFigureExtractor(t.figures))
	return t
}

func (t *Tree) Title() string { return t.title }
func (t *Tree) Authors() []string { return append([]string{}, t.authors...) }
func (t *Tree) FileName() string { return t.fileName }
func (t *Tree) Dir() string { return t.dir }
func (t *Tree) Root() *section.Node { return t.root }

// MarkdownPath is where Save writes.
func (t *Tree) MarkdownPath() string {
	return filepath.Join(t.dir, t.fileName+".md")
}

// StructuredPath is where SaveJSON writes.
func (t *Tree) StructuredPath() string {
	return filepath.Join(t.dir, t.fileName+".json")
}

// GetOrCreate returns the section at path, creating missing sections.
func (t *Tree) GetOrCreate(path string) (*section.Node, error) {
	return t.root.Resolve(path)
}

// Lookup returns the section at path without creating anything.
func (t *Tree) Lookup(path string) (*section.Node, bool) {
	return t.root.Lookup(path)
}

// Set attaches value to the section at path. See section.Node.SetDefault.
func (t *Tree) Set(path string, value any) error {
	return t.root.Set(path, value)
}

// RenderOptions change how metadata is written.
type RenderOptions struct {
	// FrontMatter writes title and authors as a YAML block instead of a
	// title header and author line.
	FrontMatter bool
}

// Render returns the markdown text of the whole document.
func (t *Tree) Render() string {
	return t.RenderWith(RenderOptions{})
}

// RenderWith renders with the given options. Output is deterministic:
// metadata first, then every section depth first with its header, its
// content in attachment order and then its children in creation order.
func (t *Tree) RenderWith(opts RenderOptions) string {
	var blocks []string
	if opts.FrontMatter {
		if fm, ok := t.frontMatter(); ok {
			blocks = append(blocks, fm)
		}
	} else {
		blocks = append(blocks, t.metadata()...)
	}

	ropts := mdrender.Options{BaseDir: t.dir}
	t.root.Walk(func(n *section.Node) error {
		if !n.IsRoot() {
			blocks = append(blocks, mdrender.Header(n.Level(), n.Name()))
		}
		var prev section.Item
		for _, item := range n.Content() {
			frag := mdrender.Item(item, ropts)
			if strings.TrimSpace(frag) == "" {
				continue
			}
			if prev != nil && mdrender.Continues(prev, item) {
				blocks = append(blocks, mdrender.ListBreak)
			}
			blocks = append(blocks, frag)
			prev = item
		}
		return nil
	})
	return strings.Join(blocks, "\n")
}

func (t *Tree) metadata() []string {
	var blocks []string
	if strings.TrimSpace(t.title) != "" {
		blocks = append(blocks, mdrender.Title(t.title))
	}
	if len(t.authors) > 0 {
		blocks = append(blocks, mdrender.Authors(t.authors))
	}
	return blocks
}

type frontMatter struct {
	Title   string   `yaml:"title,omitempty"`
	Authors []string `yaml:"authors,omitempty,flow"`
}

func (t *Tree) frontMatter() (string, bool) {
	if t.title == "" && len(t.authors) == 0 {
		return "", false
	}
	out, err := yaml.Marshal(frontMatter{Title: t.title, Authors: t.authors})
	if err != nil {
		t.log.Warn("front matter encode failed, using plain metadata", "error", err)
		return strings.Join(t.metadata(), "\n"), true
	}
	return "---\n" + string(out) + "---\n", true
}

// Save writes Render() to MarkdownPath through w. Errors from w are
// returned as is.
func (t *Tree) Save(w fsio.Writer) error {
	return t.SaveWith(w, RenderOptions{})
}

// SaveWith writes RenderWith(opts) to MarkdownPath through w.
func (t *Tree) SaveWith(w fsio.Writer, opts RenderOptions) error {
	path := t.MarkdownPath()
	text := t.RenderWith(opts)
	if err := w.WriteFile(path, text); err != nil {
		return err
	}
	t.log.Info("markdown saved", "path", path, "bytes", len(text))
	return nil
}

// Stats counts sections and content items by kind.
type Stats struct {
	Sections int
	Items    map[section.Kind]int
}

// Total is the number of content items of every kind.
func (s Stats) Total() int {
	n := 0
	for _, c := range s.Items {
		n += c
	}
	return n
}

// Stats reports the document's size. The root is not counted as a section.
func (t *Tree) Stats() Stats {
	s := Stats{Items: make(map[section.Kind]int, len(section.Kinds))}
	for _, k := range section.Kinds {
		s.Items[k] = 0
	}
	t.root.Walk(func(n *section.Node) error {
		if !n.IsRoot() {
			s.Sections++
		}
		for _, item := range n.Content() {
			s.Items[item.Kind()]++
		}
		return nil
	})
	return s
}
