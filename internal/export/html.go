// Package export converts rendered documents into other formats.
package export

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// HTMLOptions controls HTML conversion.
type HTMLOptions struct {
	// Page wraps the fragment in a complete HTML document.
	Page bool
	// Title is used for <title> when Page is set.
	Title string
}

func newEngine() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.TaskList),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

// HTML converts markdown to HTML. Raw HTML in the input is not passed
// through.
func HTML(markdown []byte, opts HTMLOptions) ([]byte, error) {
	var buf bytes.Buffer
	if opts.Page {
		buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
		fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(opts.Title))
		buf.WriteString("</head>\n<body>\n")
	}
	if err := newEngine().Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown to html: %w", err)
	}
	if opts.Page {
		buf.WriteString("</body>\n</html>\n")
	}
	return buf.Bytes(), nil
}

// Heading is one entry of a document outline.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id,omitempty"`
}

// Outline lists the ATX and setext headings of markdown in document order.
func Outline(markdown []byte) []Heading {
	doc := newEngine().Parser().Parse(text.NewReader(markdown))

	var out []Heading
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		heading := Heading{Level: h.Level, Text: inlineText(h, markdown)}
		if id, ok := h.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok {
				heading.ID = string(b)
			}
		}
		out = append(out, heading)
		return ast.WalkSkipChildren, nil
	})
	return out
}

func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			buf.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(v.Value)
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return buf.String()
}
