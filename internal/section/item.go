package section

import "fmt"

// Kind is the tag that identifies a content item variant.
type Kind string

const (
	KindText     Kind = "text"
	KindCode     Kind = "code"
	KindList     Kind = "list"
	KindCheckbox Kind = "checkbox"
	KindTable    Kind = "table"
	KindImage    Kind = "image"
	KindFigure   Kind = "figure"
	KindLink     Kind = "link"
)

// Kinds lists every content kind in a stable order.
var Kinds = []Kind{KindText, KindCode, KindList, KindCheckbox, KindTable, KindImage, KindFigure, KindLink}

// Item is one renderable unit attached to a section. The set of
// implementations is closed; values are immutable once constructed.
type Item interface {
	Kind() Kind
	item()
}

// Text is a paragraph of prose.
type Text struct{ body string }

func NewText(body string) Text { return Text{body: body} }

func (Text) Kind() Kind { return KindText }
func (Text) item() {}
func (t Text) Body() string { return t.body }

// Code is a fenced code block. Language may be empty.
type Code struct {
	body     string
	language string
}

func NewCode(body, language string) Code { return Code{body: body, language: language} }

func (Code) Kind() Kind { return KindCode }
func (Code) item() {}
func (c Code) Body() string { return c.body }
func (c Code) Language() string { return c.language }

// List is a bulleted list. Marker is one of "-", "*" or "+"; empty means "-".
type List struct {
	items  []string
	marker string
}

func NewList(items []string) List { return List{items: cloneStrings(items)} }

// NewMarkedList builds a list rendered with a specific bullet marker.
// Markers other than "*" and "+" are stored as the default.
func NewMarkedList(marker string, items []string) List {
	switch marker {
	case "*", "+":
	default:
		marker = ""
	}
	return List{items: cloneStrings(items), marker: marker}
}

func (List) Kind() Kind { return KindList }
func (List) item() {}
func (l List) Items() []string { return cloneStrings(l.items) }
func (l List) Len() int { return len(l.items) }
func (l List) Marker() string { return l.marker }

// CheckItem is one entry of a checkbox list.
type CheckItem struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// Checkbox is a task list.
type Checkbox struct{ items []CheckItem }

func NewCheckbox(items []CheckItem) Checkbox {
	out := make([]CheckItem, len(items))
	copy(out, items)
	return Checkbox{items: out}
}

// CheckboxFrom pairs texts with checked states. No states leaves every box
// unchecked, a single state applies to every box, otherwise there must be one
// state per text.
func CheckboxFrom(texts []string, checked ...bool) (Checkbox, error) {
	items := make([]CheckItem, len(texts))
	switch len(checked) {
	case 0, 1:
		state := len(checked) == 1 && checked[0]
		for i, t := range texts {
			items[i] = CheckItem{Text: t, Checked: state}
		}
	case len(texts):
		for i, t := range texts {
			items[i] = CheckItem{Text: t, Checked: checked[i]}
		}
	default:
		return Checkbox{}, fmt.Errorf("checkbox: %d checked states for %d items", len(checked), len(texts))
	}
	return Checkbox{items: items}, nil
}

func (Checkbox) Kind() Kind { return KindCheckbox }
func (Checkbox) item() {}

func (c Checkbox) Items() []CheckItem {
	out := make([]CheckItem, len(c.items))
	copy(out, c.items)
	return out
}

// Table is tabular data with an optional header row.
type Table struct {
	header []string
	rows   [][]string
}

// NewTable builds a table. An empty header means the table has none.
func NewTable(header []string, rows [][]string) Table {
	t := Table{rows: cloneRows(rows)}
	if len(header) > 0 {
		t.header = cloneStrings(header)
	}
	return t
}

func (Table) Kind() Kind { return KindTable }
func (Table) item() {}
func (t Table) Header() []string { return cloneStrings(t.header) }
func (t Table) HasHeader() bool { return len(t.header) > 0 }
func (t Table) Rows() [][]string { return cloneRows(t.rows) }

// Columns is the width of the widest row, header included.
func (t Table) Columns() int {
	n := len(t.header)
	for _, r := range t.rows {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}

// Image references an image file by path.
type Image struct {
	path string
	alt  string
}

func NewImage(path, alt string) Image { return Image{path: path, alt: alt} }

func (Image) Kind() Kind { return KindImage }
func (Image) item() {}
func (i Image) Path() string { return i.path }
func (i Image) Alt() string { return i.alt }

// Figure is an image with an optional caption, usually produced from a plot.
type Figure struct {
	path    string
	alt     string
	caption string
}

func NewFigure(path, alt, caption string) Figure {
	return Figure{path: path, alt: alt, caption: caption}
}

func (Figure) Kind() Kind { return KindFigure }
func (Figure) item() {}
func (f Figure) Path() string { return f.path }
func (f Figure) Alt() string { return f.alt }
func (f Figure) Caption() string { return f.caption }

// Link is a hyperlink. Empty display text falls back to the URL.
type Link struct {
	url  string
	text string
}

func NewLink(url, text string) Link {
	if text == "" {
		text = url
	}
	return Link{url: url, text: text}
}

func (Link) Kind() Kind { return KindLink }
func (Link) item() {}
func (l Link) URL() string { return l.url }
func (l Link) Text() string { return l.text }

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneRows(in [][]string) [][]string {
	if in == nil {
		return nil
	}
	out := make([][]string, len(in))
	for i, r := range in {
		out[i] = cloneStrings(r)
		if out[i] == nil {
			out[i] = []string{}
		}
	}
	return out
}
