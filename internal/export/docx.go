package export

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/mdgen/internal/document"
	"github.com/dgallion1/mdgen/internal/section"
)

// HeadingStyle is the paragraph style used for a section at level.
// Levels deeper than six share the sixth style.
func HeadingStyle(level int) string {
	if level > 6 {
		level = 6
	}
	if level < 1 {
		level = 1
	}
	return "Heading" + strconv.Itoa(level)
}

// DOCX writes the document as a Word file. Sections become heading
// paragraphs and content items become body paragraphs. Images that cannot
// be read are written as their alt text.
func DOCX(tree *document.Tree, w io.Writer, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	doc := docx.New().WithDefaultTheme()

	if title := tree.Title(); title != "" {
		doc.AddParagraph().Style("Title").AddText(title).Bold().Size("40")
	}
	if authors := tree.Authors(); len(authors) > 0 {
		doc.AddParagraph().AddText("Author: " + strings.Join(authors, ", ")).Italic()
	}

	dw := docxWriter{doc: doc, dir: tree.Dir(), log: log}
	tree.Root().Walk(func(n *section.Node) error {
		if !n.IsRoot() {
			dw.doc.AddParagraph().Style(HeadingStyle(n.Level())).AddText(n.Name())
		}
		for _, item := range n.Content() {
			dw.item(item)
		}
		return nil
	})

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

type docxWriter struct {
	doc *docx.Docx
	dir string
	log *slog.Logger
}

func (d docxWriter) item(item section.Item) {
	switch v := item.(type) {
	case section.Text:
		for _, para := range strings.Split(strings.Trim(v.Body(), "\n"), "\n\n") {
			if strings.TrimSpace(para) != "" {
				d.doc.AddParagraph().AddText(strings.ReplaceAll(para, "\n", " "))
			}
		}
	case section.Code:
		for _, line := range strings.Split(strings.Trim(v.Body(), "\n"), "\n") {
			d.doc.AddParagraph().AddText(line).Font("Courier New", "Courier New", "Courier New", "default")
		}
	case section.List:
		for _, it := range v.Items() {
			d.doc.AddParagraph().AddText("• " + it)
		}
	case section.Checkbox:
		for _, it := range v.Items() {
			box := "☐ "
			if it.Checked {
				box = "☑ "
			}
			d.doc.AddParagraph().AddText(box + it.Text)
		}
	case section.Table:
		d.table(v)
	case section.Image:
		d.image(v.Path(), v.Alt())
	case section.Figure:
		alt := v.Alt()
		if alt == "" {
			alt = v.Caption()
		}
		d.image(v.Path(), alt)
		if v.Caption() != "" {
			d.doc.AddParagraph().AddText(v.Caption()).Italic()
		}
	case section.Link:
		d.doc.AddParagraph().AddLink(v.Text(), v.URL())
	}
}

func (d docxWriter) table(t section.Table) {
	rows := t.Rows()
	if t.HasHeader() {
		rows = append([][]string{t.Header()}, rows...)
	}
	cols := t.Columns()
	if len(rows) == 0 || cols == 0 {
		return
	}
	tbl := d.doc.AddTable(len(rows), cols, 0, nil)
	for r, cells := range rows {
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(cells) {
				cell = cells[c]
			}
			run := tbl.TableRows[r].TableCells[c].AddParagraph().AddText(cell)
			if r == 0 && t.HasHeader() {
				run.Bold()
			}
		}
	}
}

func (d docxWriter) image(path, alt string) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.dir, path)
	}
	p := d.doc.AddParagraph()
	if _, err := p.AddInlineDrawingFrom(path); err != nil {
		d.log.Warn("docx image skipped", "path", path, "error", err)
		p.AddText("[" + alt + "]")
	}
}
