package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/mdgen/internal/document"
)

func sampleTree(t *testing.T) *document.Tree {
	t.Helper()
	tree := document.New(document.WithTitle("Report"), document.WithAuthors("Ann", "Bo"))
	for path, value := range map[string]any{
		"Intro":                 "Hello",
		"Intro/Details":         []string{"a", "b"},
		"Intro/Details/Numbers": [][]string{{"1", "2"}},
	} {
		if err := tree.Set(path, value); err != nil {
			t.Fatalf("Set(%q): %v", path, err)
		}
	}
	node, _ := tree.GetOrCreate("Intro/Details")
	if err := node.AttachCheckbox([]string{"done", "todo"}, true, false); err != nil {
		t.Fatal(err)
	}
	node.AttachLink("https://example.com", "site")
	return tree
}

func TestOutlineMatchesSectionDepth(t *testing.T) {
	tree := sampleTree(t)
	got := Outline([]byte(tree.Render()))
	want := []Heading{
		{Level: 1, Text: "Report"},
		{Level: 1, Text: "Intro"},
		{Level: 2, Text: "Details"},
		{Level: 3, Text: "Numbers"},
	}
	if len(got) != len(want) {
		t.Fatalf("Outline = %+v, want %d headings", got, len(want))
	}
	for i := range want {
		if got[i].Level != want[i].Level || got[i].Text != want[i].Text {
			t.Errorf("heading %d = %+v, want %+v", i, got[i], want[i])
		}
		if got[i].ID == "" {
			t.Errorf("heading %d has no id", i)
		}
	}
}

func TestHTML(t *testing.T) {
	tree := sampleTree(t)
	out, err := HTML([]byte(tree.Render()), HTMLOptions{})
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	html := string(out)
	for _, want := range []string{
		`<h1 id="intro">Intro</h1>`,
		`<h2 id="details">Details</h2>`,
		"<li>a</li>",
		"<table>",
		`<input checked="" disabled="" type="checkbox"`,
		`<a href="https://example.com">site</a>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q:\n%s", want, html)
		}
	}
}

func TestHTMLKeepsAdjacentListsApart(t *testing.T) {
	tree := document.New()
	node, _ := tree.GetOrCreate("A")
	node.AttachList("a", "b")
	node.AttachList("c")
	out, err := HTML([]byte(tree.Render()), HTMLOptions{})
	if err != nil {
		t.Fatal(err)
	}
	html := string(out)
	if got := strings.Count(html, "<ul>"); got != 2 {
		t.Errorf("rendered %d lists, want 2:\n%s", got, html)
	}
	if strings.Contains(html, "<p>") {
		t.Errorf("lists rendered loose:\n%s", html)
	}
}

func TestHTMLPage(t *testing.T) {
	out, err := HTML([]byte("# A\n"), HTMLOptions{Page: true, Title: "a < b"})
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "<!DOCTYPE html>") || !strings.Contains(s, "<title>a &lt; b</title>") {
		t.Errorf("page = %s", s)
	}
	if !strings.HasSuffix(s, "</html>\n") {
		t.Errorf("page not closed: %s", s)
	}
}

func TestHeadingStyle(t *testing.T) {
	tests := map[int]string{0: "Heading1", 1: "Heading1", 3: "Heading3", 9: "Heading6"}
	for level, want := range tests {
		if got := HeadingStyle(level); got != want {
			t.Errorf("HeadingStyle(%d) = %q, want %q", level, got, want)
		}
	}
}

func TestDOCXHeadings(t *testing.T) {
	tree := sampleTree(t)
	var buf bytes.Buffer
	if err := DOCX(tree, &buf, nil); err != nil {
		t.Fatalf("DOCX: %v", err)
	}

	doc, err := docx.Parse(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("parse docx: %v", err)
	}
	headings := map[string]string{}
	var tables int
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			if v.Properties != nil && v.Properties.Style != nil {
				headings[strings.TrimSpace(v.String())] = v.Properties.Style.Val
			}
		case *docx.Table:
			tables++
		}
	}
	for name, style := range map[string]string{"Intro": "Heading1", "Details": "Heading2", "Numbers": "Heading3", "Report": "Title"} {
		if headings[name] != style {
			t.Errorf("%s style = %q, want %q (all: %v)", name, headings[name], style, headings)
		}
	}
	if tables != 1 {
		t.Errorf("tables = %d, want 1", tables)
	}
}
