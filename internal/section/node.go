package section

import (
	"fmt"
	"strings"

	"github.com/dgallion1/mdgen/internal/figure"
	"github.com/dgallion1/mdgen/internal/tabular"
)

// PathDelimiter separates section names in a path.
const PathDelimiter = "/"

// RootLevel is the level of the unnamed document root. Top-level sections
// sit at RootLevel+1 and a section's header rank equals its level.
const RootLevel = 0

// Node is one section of the document hierarchy. Nodes are created on first
// access through Resolve or Child and are never removed.
type Node struct {
	name     string
	level    int
	parent   *Node
	children []*Node
	byName   map[string]*Node
	content  []Item
	env      *env
}

// env is shared by every node of one tree.
type env struct {
	figures figure.Extractor
}

// Option configures a root node.
type Option func(*env)

// WithFigureExtractor sets the extractor SetDefault uses for plottable values.
func WithFigureExtractor(x figure.Extractor) Option {
	return func(e *env) { e.figures = x }
}

// NewRoot creates an empty root node.
func NewRoot(opts ...Option) *Node {
	e := &env{}
	for _, opt := range opts {
		opt(e)
	}
	return &Node{level: RootLevel, env: e}
}

func (n *Node) Name() string { return n.name }
func (n *Node) Level() int { return n.level }
func (n *Node) Parent() *Node { return n.parent }
func (n *Node) IsRoot() bool { return n.parent == nil }

// Path is the delimiter-joined sequence of names from the root to n.
// The root itself has an empty path.
func (n *Node) Path() string {
	var names []string
	for cur := n; cur != nil && cur.parent != nil; cur = cur.parent {
		names = append(names, cur.name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, PathDelimiter)
}

// Children returns the direct children in creation order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Content returns the attached items in attachment order.
func (n *Node) Content() []Item {
	out := make([]Item, len(n.content))
	copy(out, n.content)
	return out
}

// Resolve walks path from n, creating any missing sections on the way, and
// returns the section at its end. Resolving "a/b" and then "c" reaches the
// same node as resolving "a/b/c" directly. A malformed path creates nothing.
func (n *Node) Resolve(path string) (*Node, error) {
	segments, err := SplitPath(path)
	if err != nil {
		return nil, err
	}
	cur := n
	for _, name := range segments {
		cur = cur.ensureChild(name)
	}
	return cur, nil
}

// Child resolves a single path segment.
func (n *Node) Child(name string) (*Node, error) {
	if strings.Contains(name, PathDelimiter) {
		return nil, &MalformedPathError{Path: name, Reason: "section name contains the path delimiter"}
	}
	if reason := invalidName(name); reason != "" {
		return nil, &MalformedPathError{Path: name, Reason: reason}
	}
	return n.ensureChild(name), nil
}

// Lookup finds the section at path without creating anything.
func (n *Node) Lookup(path string) (*Node, bool) {
	segments, err := SplitPath(path)
	if err != nil {
		return nil, false
	}
	cur := n
	for _, name := range segments {
		next, ok := cur.byName[name]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func (n *Node) ensureChild(name string) *Node {
	if c, ok := n.byName[name]; ok {
		return c
	}
	c := &Node{name: name, level: n.level + 1, parent: n, env: n.env}
	if n.byName == nil {
		n.byName = make(map[string]*Node)
	}
	n.byName[name] = c
	n.children = append(n.children, c)
	return c
}

// SplitPath breaks a path into section names. Leading, trailing and doubled
// delimiters produce empty segments and are rejected.
func SplitPath(path string) ([]string, error) {
	if path == "" {
		return nil, &MalformedPathError{Path: path, Reason: "empty path"}
	}
	segments := strings.Split(path, PathDelimiter)
	for i, s := range segments {
		if s == "" {
			switch {
			case i == 0:
				return nil, &MalformedPathError{Path: path, Reason: "leading delimiter"}
			case i == len(segments)-1:
				return nil, &MalformedPathError{Path: path, Reason: "trailing delimiter"}
			default:
				return nil, &MalformedPathError{Path: path, Reason: "empty segment"}
			}
		}
		if reason := invalidName(s); reason != "" {
			return nil, &MalformedPathError{Path: path, Reason: reason}
		}
	}
	return segments, nil
}

// JoinPath joins section names with the path delimiter.
func JoinPath(names ...string) string {
	return strings.Join(names, PathDelimiter)
}

func invalidName(name string) string {
	switch {
	case name == "":
		return "empty section name"
	case strings.TrimSpace(name) == "":
		return "blank section name"
	case strings.TrimSpace(name) != name:
		return "section name has leading or trailing space"
	case strings.ContainsAny(name, "\r\n"):
		return "section name spans lines"
	}
	return ""
}

// Attach appends an item to the section's content.
func (n *Node) Attach(item Item) {
	n.content = append(n.content, item)
}

func (n *Node) AttachText(body string) { n.Attach(NewText(body)) }

func (n *Node) AttachCode(body, language string) { n.Attach(NewCode(body, language)) }

func (n *Node) AttachList(items ...string) { n.Attach(NewList(items)) }

func (n *Node) AttachTable(header []string, rows [][]string) { n.Attach(NewTable(header, rows)) }

func (n *Node) AttachImage(path, alt string) { n.Attach(NewImage(path, alt)) }

func (n *Node) AttachFigure(path, alt, caption string) { n.Attach(NewFigure(path, alt, caption)) }

func (n *Node) AttachLink(url, text string) { n.Attach(NewLink(url, text)) }

// AttachCheckbox appends a checkbox list; see CheckboxFrom for how checked
// states pair with texts.
func (n *Node) AttachCheckbox(texts []string, checked ...bool) error {
	cb, err := CheckboxFrom(texts, checked...)
	if err != nil {
		return err
	}
	n.Attach(cb)
	return nil
}

// SetDefault appends exactly one item chosen from the shape of value:
// strings become Text, string slices become List, tabular values become
// Table and plottable values are handed to the figure extractor and become
// Figure. Other values are rejected and nothing is attached.
func (n *Node) SetDefault(value any) error {
	item, err := n.itemFor(value)
	if err != nil {
		return err
	}
	n.Attach(item)
	return nil
}

// Set resolves path from n and calls SetDefault on the section found there.
// Neither a malformed path nor an unsupported value creates any section.
func (n *Node) Set(path string, value any) error {
	if _, err := SplitPath(path); err != nil {
		return err
	}
	item, err := n.itemFor(value)
	if err != nil {
		return err
	}
	target, err := n.Resolve(path)
	if err != nil {
		return err
	}
	target.Attach(item)
	return nil
}

func (n *Node) itemFor(value any) (Item, error) {
	switch v := value.(type) {
	case Item:
		return v, nil
	case string:
		return NewText(v), nil
	case []string:
		return NewList(v), nil
	case [][]string:
		return NewTable(nil, v), nil
	case tabular.Source:
		return NewTable(v.Header(), v.Rows()), nil
	case tabular.Grid:
		t := tabular.FromGrid(v)
		return NewTable(t.Header(), t.Rows()), nil
	case figure.Plottable:
		if n.env == nil || n.env.figures == nil {
			return nil, &UnsupportedContentTypeError{Value: value, Reason: "no figure extractor configured"}
		}
		res, err := n.env.figures.Extract(v)
		if err != nil {
			return nil, fmt.Errorf("extract figure: %w", err)
		}
		return NewFigure(res.Path, res.Alt, res.Caption), nil
	case nil:
		return nil, &UnsupportedContentTypeError{Value: value, Reason: "nil value"}
	}
	return nil, &UnsupportedContentTypeError{Value: value}
}

// Merge appends src's content to n and merges src's children into the
// children of n with the same names, creating missing ones in src's order.
// src is not modified.
func (n *Node) Merge(src *Node) {
	n.content = append(n.content, src.content...)
	for _, c := range src.children {
		n.ensureChild(c.name).Merge(c)
	}
}

// Walk visits n and its descendants depth first, parents before children,
// children in creation order. A non-nil error from fn stops the walk.
func (n *Node) Walk(fn func(*Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Count is the number of nodes in the subtree rooted at n, n included.
func (n *Node) Count() int {
	total := 1
	for _, c := range n.children {
		total += c.Count()
	}
	return total
}
