// Package mdrender turns section headers and content items into markdown
// fragments. Every fragment ends in a single newline and contains no
// leading or trailing blank lines, so callers can join fragments with "\n".
package mdrender

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgallion1/mdgen/internal/section"
)

// Options control how paths are written.
type Options struct {
	// BaseDir is the directory of the markdown file. Absolute image paths
	// inside it are written relative to it.
	BaseDir string
}

// Header renders an ATX header whose rank equals level.
func Header(level int, name string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + strings.TrimSpace(name) + "\n"
}

// Title renders a setext title, underlined to the title's width.
func Title(title string) string {
	title = strings.TrimSpace(title)
	width := len([]rune(title))
	if width < 3 {
		width = 3
	}
	return title + "\n" + strings.Repeat("=", width) + "\n"
}

// Authors renders the author line.
func Authors(authors []string) string {
	return "Author: " + strings.Join(authors, ", ") + "\n"
}

// Item renders one content item.
func Item(item section.Item, opts Options) string {
	switch v := item.(type) {
	case section.Text:
		return block(v.Body())
	case section.Code:
		return code(v.Body(), v.Language())
	case section.List:
		return list(v.Items(), v.Marker())
	case section.Checkbox:
		return checkbox(v.Items())
	case section.Table:
		return table(v.Header(), v.Rows(), v.Columns())
	case section.Image:
		return image(v.Alt(), opts.relative(v.Path()))
	case section.Figure:
		alt := v.Alt()
		if alt == "" {
			alt = v.Caption()
		}
		out := image(alt, opts.relative(v.Path()))
		if v.Caption() != "" {
			out += "\n*" + escapeInline(v.Caption()) + "*\n"
		}
		return out
	case section.Link:
		return fmt.Sprintf("[%s](%s)\n", escapeInline(v.Text()), destination(v.URL()))
	}
	return ""
}

// ListBreak is placed between two list fragments so CommonMark readers see
// two lists instead of one loose list.
const ListBreak = "<!-- -->\n"

// Continues reports whether next, written right after prev, would be read
// as more entries of prev's list.
func Continues(prev, next section.Item) bool {
	return isList(prev) && isList(next)
}

func isList(item section.Item) bool {
	switch item.(type) {
	case section.List, section.Checkbox:
		return true
	}
	return false
}

func block(body string) string {
	body = strings.Trim(body, "\n")
	if body == "" {
		return "\n"
	}
	return body + "\n"
}

func code(body, language string) string {
	body = strings.Trim(body, "\n")
	fence := "```"
	for strings.Contains(body, fence) {
		fence += "`"
	}
	return fence + language + "\n" + body + "\n" + fence + "\n"
}

func list(items []string, marker string) string {
	switch marker {
	case "-", "*", "+":
	default:
		marker = "-"
	}
	var b strings.Builder
	for _, it := range items {
		b.WriteString(marker + " " + oneLine(it) + "\n")
	}
	if b.Len() == 0 {
		return "\n"
	}
	return b.String()
}

func checkbox(items []section.CheckItem) string {
	var b strings.Builder
	for _, it := range items {
		box := "[ ]"
		if it.Checked {
			box = "[x]"
		}
		b.WriteString("- " + box + " " + oneLine(it.Text) + "\n")
	}
	if b.Len() == 0 {
		return "\n"
	}
	return b.String()
}

func table(header []string, rows [][]string, cols int) string {
	if cols == 0 {
		return "\n"
	}
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(cells) {
				cell = escapeCell(cells[c])
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
	}
	writeRow(header)
	b.WriteString("|")
	for i := 0; i < cols; i++ {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, r := range rows {
		writeRow(r)
	}
	return b.String()
}

func image(alt, path string) string {
	return fmt.Sprintf("![%s](%s)\n", escapeInline(alt), destination(path))
}

func (o Options) relative(path string) string {
	if o.BaseDir == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	base, err := filepath.Abs(o.BaseDir)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// destination wraps link targets containing spaces in angle brackets.
func destination(url string) string {
	if strings.ContainsAny(url, " ()") {
		return "<" + url + ">"
	}
	return url
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	return strings.ReplaceAll(s, "\n", "<br>")
}

func escapeInline(s string) string {
	s = strings.ReplaceAll(s, "[", `\[`)
	s = strings.ReplaceAll(s, "]", `\]`)
	return oneLine(s)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
