package importer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/mdgen/internal/section"
)

// DOCXImporter handles .docx files. Paragraphs styled Heading1-6 become
// sections, tables become tables and other paragraphs become text. A
// paragraph styled Title sets the result title.
type DOCXImporter struct{}

func (p *DOCXImporter) Import(r io.Reader, filename string, into *section.Node) (Result, error) {
	// go-docx needs a ReaderAt+size, so write to temp file.
	tmp, err := os.CreateTemp("", "mdgen-docx-*.docx")
	if err != nil {
		return Result{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return Result{}, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return Result{}, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return Result{}, fmt.Errorf("parse docx: %w", err)
	}

	res := Result{Title: baseTitle(filename)}
	out := newOutline(into, &res)
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			if docxStyle(v) == "title" {
				if t := docxParagraphText(v); t != "" {
					res.Title = t
				}
				continue
			}
			level := docxHeadingLevel(v)
			text := docxParagraphText(v)
			if level > 0 && text != "" {
				if err := out.heading(level, text); err != nil {
					return Result{}, err
				}
				continue
			}
			if text != "" {
				out.attach(section.NewText(text))
			}
		case *docx.Table:
			if header, rows := docxTableCells(v); header != nil {
				out.attach(section.NewTable(header, rows))
			}
		}
	}
	return res, nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
}

func docxHeadingLevel(para *docx.Paragraph) int {
	style := docxStyle(para)
	if !strings.HasPrefix(style, "heading") || len(style) != len("heading")+1 {
		return 0
	}
	level := int(style[len(style)-1] - '0')
	if level < 1 || level > 6 {
		return 0
	}
	return level
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeRun(&buf, c)
		case *docx.Hyperlink:
			writeRun(&buf, &c.Run)
		}
	}
	return strings.TrimSpace(buf.String())
}

func writeRun(buf *strings.Builder, run *docx.Run) {
	buf.WriteString(run.InstrText)
	for _, rc := range run.Children {
		switch t := rc.(type) {
		case *docx.Text:
			buf.WriteString(t.Text)
		case *docx.Tab:
			buf.WriteByte('\t')
		}
	}
}

// docxTableCells treats the first row as the header.
func docxTableCells(tbl *docx.Table) (header []string, rows [][]string) {
	for i, tr := range tbl.TableRows {
		cells := make([]string, 0, len(tr.TableCells))
		for _, tc := range tr.TableCells {
			var parts []string
			for _, para := range tc.Paragraphs {
				if t := docxParagraphText(para); t != "" {
					parts = append(parts, t)
				}
			}
			cells = append(cells, strings.Join(parts, " "))
		}
		if i == 0 {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}
	return header, rows
}
