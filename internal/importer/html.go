package importer

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/mdgen/internal/section"
)

// HTMLImporter handles HTML files. h1-h6 become sections; paragraphs,
// preformatted blocks, lists, tables and images become content items.
type HTMLImporter struct{}

func (p *HTMLImporter) Import(r io.Reader, filename string, into *section.Node) (Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Result{}, fmt.Errorf("parse html: %w", err)
	}

	res := Result{Title: baseTitle(filename)}
	if title := findTitle(doc); title != "" {
		res.Title = title
	}

	// Collect first so a failure leaves into untouched.
	var blocks []htmlBlock
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				blocks = append(blocks, htmlBlock{level: level, title: textContent(n)})
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header", "noscript":
				return
			case "p", "blockquote":
				if t := textContent(n); t != "" {
					blocks = append(blocks, htmlBlock{item: section.NewText(t)})
				}
				return
			case "pre":
				blocks = append(blocks, htmlBlock{item: section.NewCode(rawText(n), codeLanguage(n))})
				return
			case "ul", "ol":
				if items := listItems(n); len(items) > 0 {
					blocks = append(blocks, htmlBlock{item: section.NewList(items)})
				}
				return
			case "table":
				header, rows := tableCells(n)
				if header != nil || len(rows) > 0 {
					blocks = append(blocks, htmlBlock{item: section.NewTable(header, rows)})
				}
				return
			case "img":
				if src := attr(n, "src"); src != "" {
					blocks = append(blocks, htmlBlock{item: section.NewImage(src, attr(n, "alt"))})
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// Find <body> or use whole document.
	body := findBody(doc)
	if body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	out := newOutline(into, &res)
	for _, b := range blocks {
		if b.item == nil {
			if err := out.heading(b.level, b.title); err != nil {
				return Result{}, err
			}
			continue
		}
		out.attach(b.item)
	}
	return res, nil
}

type htmlBlock struct {
	level int
	title string
	item  section.Item
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// textContent is the whitespace-collapsed text of n.
func textContent(n *html.Node) string {
	return strings.Join(strings.Fields(rawText(n)), " ")
}

func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// codeLanguage reads a "language-x" class from a <pre> or its <code> child.
func codeLanguage(pre *html.Node) string {
	nodes := []*html.Node{pre}
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "code" {
			nodes = append(nodes, c)
		}
	}
	for _, n := range nodes {
		for _, class := range strings.Fields(attr(n, "class")) {
			if lang, ok := strings.CutPrefix(class, "language-"); ok {
				return lang
			}
		}
	}
	return ""
}

func listItems(list *html.Node) []string {
	var items []string
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "li" {
			items = append(items, textContent(c))
		}
	}
	return items
}

// tableCells reads a table. A first row made only of <th> cells is the
// header.
func tableCells(table *html.Node) (header []string, rows [][]string) {
	var trs []*html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "tr":
				trs = append(trs, c)
			case "thead", "tbody", "tfoot":
				find(c)
			}
		}
	}
	find(table)

	for i, tr := range trs {
		var cells []string
		allTH := true
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
				continue
			}
			if c.Data != "th" {
				allTH = false
			}
			cells = append(cells, textContent(c))
		}
		if i == 0 && allTH && len(cells) > 0 {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}
	return header, rows
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
