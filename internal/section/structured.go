package section

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// StructuredNode is the persistence form of a section. Children are an
// ordered list of name/node pairs so creation order survives any encoder.
type StructuredNode struct {
	Name     string            `json:"name"`
	Level    int               `json:"level"`
	Content  []TaggedItem      `json:"content"`
	Children []StructuredChild `json:"children"`
}

// StructuredChild pairs a child name with its structured node.
type StructuredChild struct {
	Name string         `json:"name"`
	Node StructuredNode `json:"node"`
}

// TaggedItem is the persistence form of a content item. Type selects which
// of the remaining fields are meaningful. Required scalar fields are
// pointers and required lists are non-nil so a missing field can be told
// apart from an empty one.
type TaggedItem struct {
	Type Kind

	Body     *string // text, code
	Language string  // code

	Items  []string // list
	Marker string   // list

	Checks []CheckItem // checkbox

	Header []string   // table
	Rows   [][]string // table

	Path    *string // image, figure
	Alt     string  // image, figure
	Caption string  // figure

	URL  *string // link
	Text *string // link
}

type textWire struct {
	Type Kind   `json:"type"`
	Body string `json:"body"`
}

type codeWire struct {
	Type     Kind   `json:"type"`
	Body     string `json:"body"`
	Language string `json:"language,omitempty"`
}

type listWire struct {
	Type   Kind     `json:"type"`
	Items  []string `json:"items"`
	Marker string   `json:"marker,omitempty"`
}

type checkboxWire struct {
	Type  Kind        `json:"type"`
	Items []CheckItem `json:"items"`
}

type tableWire struct {
	Type   Kind       `json:"type"`
	Header []string   `json:"header,omitempty"`
	Rows   [][]string `json:"rows"`
}

type imageWire struct {
	Type Kind   `json:"type"`
	Path string `json:"path"`
	Alt  string `json:"alt,omitempty"`
}

type figureWire struct {
	Type    Kind   `json:"type"`
	Path    string `json:"path"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

type linkWire struct {
	Type Kind   `json:"type"`
	URL  string `json:"url"`
	Text string `json:"text"`
}

// MarshalJSON writes the shape that belongs to the item's type.
func (t TaggedItem) MarshalJSON() ([]byte, error) {
	switch t.Type {
	case KindText:
		return json.Marshal(textWire{Type: t.Type, Body: deref(t.Body)})
	case KindCode:
		return json.Marshal(codeWire{Type: t.Type, Body: deref(t.Body), Language: t.Language})
	case KindList:
		return json.Marshal(listWire{Type: t.Type, Items: nonNil(t.Items), Marker: t.Marker})
	case KindCheckbox:
		checks := t.Checks
		if checks == nil {
			checks = []CheckItem{}
		}
		return json.Marshal(checkboxWire{Type: t.Type, Items: checks})
	case KindTable:
		rows := t.Rows
		if rows == nil {
			rows = [][]string{}
		}
		return json.Marshal(tableWire{Type: t.Type, Header: t.Header, Rows: rows})
	case KindImage:
		return json.Marshal(imageWire{Type: t.Type, Path: deref(t.Path), Alt: t.Alt})
	case KindFigure:
		return json.Marshal(figureWire{Type: t.Type, Path: deref(t.Path), Alt: t.Alt, Caption: t.Caption})
	case KindLink:
		return json.Marshal(linkWire{Type: t.Type, URL: deref(t.URL), Text: deref(t.Text)})
	}
	return nil, fmt.Errorf("marshal content item: unknown type %q", t.Type)
}

// UnmarshalJSON reads any tagged shape. Unknown tags decode without error
// and are rejected when the tree is rebuilt.
func (t *TaggedItem) UnmarshalJSON(data []byte) error {
	var w struct {
		Type     Kind            `json:"type"`
		Body     *string         `json:"body"`
		Language string          `json:"language"`
		Items    json.RawMessage `json:"items"`
		Marker   string          `json:"marker"`
		Header   []string        `json:"header"`
		Rows     [][]string      `json:"rows"`
		Path     *string         `json:"path"`
		Alt      string          `json:"alt"`
		Caption  string          `json:"caption"`
		URL      *string         `json:"url"`
		Text     *string         `json:"text"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = TaggedItem{
		Type:     w.Type,
		Body:     w.Body,
		Language: w.Language,
		Marker:   w.Marker,
		Header:   w.Header,
		Rows:     w.Rows,
		Path:     w.Path,
		Alt:      w.Alt,
		Caption:  w.Caption,
		URL:      w.URL,
		Text:     w.Text,
	}
	if len(w.Items) == 0 || string(w.Items) == "null" {
		return nil
	}
	switch w.Type {
	case KindList:
		return json.Unmarshal(w.Items, &t.Items)
	case KindCheckbox:
		return json.Unmarshal(w.Items, &t.Checks)
	}
	return nil
}

// Tag converts an item to its persistence form.
func Tag(item Item) TaggedItem {
	switch v := item.(type) {
	case Text:
		return TaggedItem{Type: KindText, Body: ptr(v.body)}
	case Code:
		return TaggedItem{Type: KindCode, Body: ptr(v.body), Language: v.language}
	case List:
		return TaggedItem{Type: KindList, Items: nonNil(cloneStrings(v.items)), Marker: v.marker}
	case Checkbox:
		return TaggedItem{Type: KindCheckbox, Checks: v.Items()}
	case Table:
		rows := cloneRows(v.rows)
		if rows == nil {
			rows = [][]string{}
		}
		return TaggedItem{Type: KindTable, Header: cloneStrings(v.header), Rows: rows}
	case Image:
		return TaggedItem{Type: KindImage, Path: ptr(v.path), Alt: v.alt}
	case Figure:
		return TaggedItem{Type: KindFigure, Path: ptr(v.path), Alt: v.alt, Caption: v.caption}
	case Link:
		return TaggedItem{Type: KindLink, URL: ptr(v.url), Text: ptr(v.text)}
	}
	panic(fmt.Sprintf("section: unknown item type %T", item))
}

// Untag converts a persisted item back into a content item.
func Untag(t TaggedItem) (Item, error) {
	return untag(t, "")
}

func untag(t TaggedItem, loc string) (Item, error) {
	switch t.Type {
	case KindText:
		if t.Body == nil {
			return nil, formatErr(loc, "text item missing body")
		}
		return NewText(*t.Body), nil
	case KindCode:
		if t.Body == nil {
			return nil, formatErr(loc, "code item missing body")
		}
		return NewCode(*t.Body, t.Language), nil
	case KindList:
		if t.Items == nil {
			return nil, formatErr(loc, "list item missing items")
		}
		return NewMarkedList(t.Marker, t.Items), nil
	case KindCheckbox:
		if t.Checks == nil {
			return nil, formatErr(loc, "checkbox item missing items")
		}
		return NewCheckbox(t.Checks), nil
	case KindTable:
		if t.Rows == nil {
			return nil, formatErr(loc, "table item missing rows")
		}
		return NewTable(t.Header, t.Rows), nil
	case KindImage:
		if t.Path == nil {
			return nil, formatErr(loc, "image item missing path")
		}
		return NewImage(*t.Path, t.Alt), nil
	case KindFigure:
		if t.Path == nil {
			return nil, formatErr(loc, "figure item missing path")
		}
		return NewFigure(*t.Path, t.Alt, t.Caption), nil
	case KindLink:
		if t.URL == nil {
			return nil, formatErr(loc, "link item missing url")
		}
		if t.Text == nil {
			return nil, formatErr(loc, "link item missing text")
		}
		return NewLink(*t.URL, *t.Text), nil
	case "":
		return nil, formatErr(loc, "content item missing type")
	}
	return nil, formatErr(loc, "unknown content type %q", t.Type)
}

// ToStructured converts the subtree rooted at n to its persistence form.
func (n *Node) ToStructured() StructuredNode {
	s := StructuredNode{
		Name:     n.name,
		Level:    n.level,
		Content:  make([]TaggedItem, 0, len(n.content)),
		Children: make([]StructuredChild, 0, len(n.children)),
	}
	for _, item := range n.content {
		s.Content = append(s.Content, Tag(item))
	}
	for _, c := range n.children {
		s.Children = append(s.Children, StructuredChild{Name: c.name, Node: c.ToStructured()})
	}
	return s
}

// FromStructured rebuilds a root node from its persistence form. The root's
// level must be RootLevel and every child must sit one level below its
// parent. On any error no node is returned.
func FromStructured(s StructuredNode, opts ...Option) (*Node, error) {
	root := NewRoot(opts...)
	root.name = s.Name
	if s.Level != RootLevel {
		return nil, formatErr("/level", "root level is %d, want %d", s.Level, RootLevel)
	}
	if err := root.fill(s, ""); err != nil {
		return nil, err
	}
	return root, nil
}

func (n *Node) fill(s StructuredNode, loc string) error {
	if s.Content == nil {
		return formatErr(loc+"/content", "missing content")
	}
	if s.Children == nil {
		return formatErr(loc+"/children", "missing children")
	}
	for i, t := range s.Content {
		item, err := untag(t, loc+"/content/"+strconv.Itoa(i))
		if err != nil {
			return err
		}
		n.content = append(n.content, item)
	}
	for i, pair := range s.Children {
		cloc := loc + "/children/" + strconv.Itoa(i)
		if reason := invalidName(pair.Name); reason != "" {
			return formatErr(cloc+"/name", "%s", reason)
		}
		if pair.Name != pair.Node.Name {
			return formatErr(cloc+"/node/name", "node name %q does not match child name %q", pair.Node.Name, pair.Name)
		}
		if _, dup := n.byName[pair.Name]; dup {
			return formatErr(cloc+"/name", "duplicate child name %q", pair.Name)
		}
		if strings.Contains(pair.Name, PathDelimiter) {
			return formatErr(cloc+"/name", "child name %q contains the path delimiter", pair.Name)
		}
		if pair.Node.Level != n.level+1 {
			return formatErr(cloc+"/node/level", "level is %d, want %d", pair.Node.Level, n.level+1)
		}
		child := n.ensureChild(pair.Name)
		if err := child.fill(pair.Node, cloc+"/node"); err != nil {
			return err
		}
	}
	return nil
}

func ptr(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
