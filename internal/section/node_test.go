package section

import (
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/dgallion1/mdgen/internal/figure"
	"github.com/dgallion1/mdgen/internal/tabular"
)

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}

func mustResolve(t *testing.T, n *Node, path string) *Node {
	t.Helper()
	got, err := n.Resolve(path)
	if err != nil {
		t.Fatalf("Resolve(%q): %v", path, err)
	}
	return got
}

func TestAddressingStylesAgree(t *testing.T) {
	root := NewRoot()
	direct := mustResolve(t, root, "a/b/c")

	chained, err := root.Child("a")
	if err != nil {
		t.Fatal(err)
	}
	if chained, err = chained.Child("b"); err != nil {
		t.Fatal(err)
	}
	if chained, err = chained.Child("c"); err != nil {
		t.Fatal(err)
	}

	mixed := mustResolve(t, mustResolve(t, root, "a/b"), "c")

	if direct != chained || direct != mixed {
		t.Fatal("addressing styles reached different nodes")
	}
	if direct.Level() != 3 || direct.Path() != "a/b/c" {
		t.Errorf("level %d path %q", direct.Level(), direct.Path())
	}
	if root.Count() != 4 {
		t.Errorf("Count = %d, want 4", root.Count())
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	root := NewRoot()
	first := mustResolve(t, root, "x/y")
	second := mustResolve(t, root, "x/y")
	if first != second {
		t.Fatal("second resolution created a new node")
	}
	if got := len(root.Children()); got != 1 {
		t.Errorf("root has %d children, want 1", got)
	}
}

func TestMalformedPaths(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"leading", "/a"},
		{"trailing", "a/"},
		{"double", "a//b"},
		{"blank segment", "a/ /b"},
		{"newline", "a/b\nc"},
		{"padded segment", "a/ b"},
		{"trailing space", "a /b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewRoot()
			mustResolve(t, root, "a")
			_, err := root.Resolve(tt.path)
			var mpe *MalformedPathError
			if !errors.As(err, &mpe) {
				t.Fatalf("err = %v, want *MalformedPathError", err)
			}
			if !errors.Is(err, ErrMalformedPath) {
				t.Error("error does not match ErrMalformedPath")
			}
			if root.Count() != 2 {
				t.Errorf("tree changed: %d nodes", root.Count())
			}
		})
	}
}

func TestChildRejectsDelimiter(t *testing.T) {
	root := NewRoot()
	if _, err := root.Child("a/b"); !errors.Is(err, ErrMalformedPath) {
		t.Fatalf("err = %v", err)
	}
	if root.Count() != 1 {
		t.Error("Child created a node for a bad name")
	}
}

func TestNumericNamesAreNames(t *testing.T) {
	root := NewRoot()
	n := mustResolve(t, root, "2024/01")
	if n.Path() != "2024/01" || n.Level() != 2 {
		t.Errorf("path %q level %d", n.Path(), n.Level())
	}
}

func TestLookupDoesNotCreate(t *testing.T) {
	root := NewRoot()
	mustResolve(t, root, "a/b")
	if _, ok := root.Lookup("a/c"); ok {
		t.Error("found missing section")
	}
	if n, ok := root.Lookup("a/b"); !ok || n.Name() != "b" {
		t.Error("did not find existing section")
	}
	if root.Count() != 3 {
		t.Errorf("Count = %d, want 3", root.Count())
	}
}

func TestOrderPreserved(t *testing.T) {
	root := NewRoot()
	for _, p := range []string{"z", "a", "m", "a/2", "a/1"} {
		mustResolve(t, root, p)
	}
	if got := names(root.Children()); !reflect.DeepEqual(got, []string{"z", "a", "m"}) {
		t.Errorf("children = %v", got)
	}
	a, _ := root.Lookup("a")
	if got := names(a.Children()); !reflect.DeepEqual(got, []string{"2", "1"}) {
		t.Errorf("a children = %v", got)
	}

	a.AttachText("one")
	a.AttachCode("two", "")
	a.AttachLink("http://three", "")
	var kinds []Kind
	for _, item := range a.Content() {
		kinds = append(kinds, item.Kind())
	}
	if !reflect.DeepEqual(kinds, []Kind{KindText, KindCode, KindLink}) {
		t.Errorf("kinds = %v", kinds)
	}
}

type fakePlot struct{ caption string }

func (p fakePlot) WriteImage(w io.Writer, dpi int) error { return nil }
func (p fakePlot) Caption() string { return p.caption }

type fakeExtractor struct{ calls int }

func (x *fakeExtractor) Extract(p figure.Plottable) (figure.Result, error) {
	x.calls++
	res := figure.Result{Path: "figures/doc_image0.png"}
	if c, ok := p.(figure.Captioned); ok {
		res.Caption = c.Caption()
	}
	return res, nil
}

func TestSetDefaultDispatch(t *testing.T) {
	x := &fakeExtractor{}
	tests := []struct {
		name  string
		value any
		check func(t *testing.T, item Item)
	}{
		{"string", "hello", func(t *testing.T, item Item) {
			if v, ok := item.(Text); !ok || v.Body() != "hello" {
				t.Errorf("item = %#v", item)
			}
		}},
		{"single element list", []string{"only"}, func(t *testing.T, item Item) {
			if v, ok := item.(List); !ok || v.Len() != 1 {
				t.Errorf("item = %#v", item)
			}
		}},
		{"rows", [][]string{{"a", "b"}}, func(t *testing.T, item Item) {
			if v, ok := item.(Table); !ok || v.HasHeader() || v.Columns() != 2 {
				t.Errorf("item = %#v", item)
			}
		}},
		{"tabular source", tabular.New([]string{"h"}, [][]string{{"1"}}), func(t *testing.T, item Item) {
			if v, ok := item.(Table); !ok || !reflect.DeepEqual(v.Header(), []string{"h"}) {
				t.Errorf("item = %#v", item)
			}
		}},
		{"grid", tabular.Matrix{{1, 2.5}}, func(t *testing.T, item Item) {
			v, ok := item.(Table)
			if !ok || !reflect.DeepEqual(v.Header(), []string{"Column 1", "Column 2"}) {
				t.Fatalf("item = %#v", item)
			}
			if !reflect.DeepEqual(v.Rows(), [][]string{{"1", "2.5"}}) {
				t.Errorf("rows = %v", v.Rows())
			}
		}},
		{"plottable", fakePlot{caption: "Sales"}, func(t *testing.T, item Item) {
			if v, ok := item.(Figure); !ok || v.Caption() != "Sales" || v.Path() != "figures/doc_image0.png" {
				t.Errorf("item = %#v", item)
			}
		}},
		{"item", NewLink("http://x", "x"), func(t *testing.T, item Item) {
			if item.Kind() != KindLink {
				t.Errorf("item = %#v", item)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewRoot(WithFigureExtractor(x))
			if err := root.SetDefault(tt.value); err != nil {
				t.Fatal(err)
			}
			content := root.Content()
			if len(content) != 1 {
				t.Fatalf("attached %d items, want 1", len(content))
			}
			tt.check(t, content[0])
		})
	}
	if x.calls != 1 {
		t.Errorf("extractor called %d times, want 1", x.calls)
	}
}

func TestSetDefaultRejects(t *testing.T) {
	for _, v := range []any{42, nil, map[string]string{}} {
		root := NewRoot()
		err := root.SetDefault(v)
		if !errors.Is(err, ErrUnsupportedContent) {
			t.Errorf("SetDefault(%#v) err = %v", v, err)
		}
		if len(root.Content()) != 0 {
			t.Errorf("SetDefault(%#v) attached content", v)
		}
	}

	root := NewRoot()
	if err := root.SetDefault(fakePlot{}); !errors.Is(err, ErrUnsupportedContent) {
		t.Errorf("plottable without extractor: %v", err)
	}
}

func TestSetIsAtomic(t *testing.T) {
	root := NewRoot()
	if err := root.Set("a/b", 3.14); err == nil {
		t.Fatal("expected error")
	}
	if err := root.Set("a//b", "x"); err == nil {
		t.Fatal("expected error")
	}
	if root.Count() != 1 {
		t.Errorf("failed Set created %d sections", root.Count()-1)
	}

	if err := root.Set("a/b", "x"); err != nil {
		t.Fatal(err)
	}
	n, ok := root.Lookup("a/b")
	if !ok || len(n.Content()) != 1 {
		t.Fatal("Set did not attach")
	}
}

func TestCheckboxFrom(t *testing.T) {
	tests := []struct {
		name    string
		checked []bool
		want    []bool
		wantErr bool
	}{
		{"none", nil, []bool{false, false}, false},
		{"broadcast", []bool{true}, []bool{true, true}, false},
		{"per item", []bool{false, true}, []bool{false, true}, false},
		{"mismatch", []bool{true, true, true}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, err := CheckboxFrom([]string{"a", "b"}, tt.checked...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if tt.wantErr {
				return
			}
			var got []bool
			for _, it := range cb.Items() {
				got = append(got, it.Checked)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("checked = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	dst := NewRoot()
	mustResolve(t, dst, "a").AttachText("old")

	src := NewRoot()
	src.AttachText("top")
	mustResolve(t, src, "a").AttachText("new")
	mustResolve(t, src, "a/b").AttachText("deep")
	mustResolve(t, src, "c")

	a := mustResolve(t, dst, "a")
	dst.Merge(src)

	if got := names(dst.Children()); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("children = %v", got)
	}
	if mustResolve(t, dst, "a") != a {
		t.Error("merge replaced an existing section")
	}
	if got := len(a.Content()); got != 2 {
		t.Errorf("a has %d items, want 2", got)
	}
	b, ok := dst.Lookup("a/b")
	if !ok || b.Level() != 2 || len(b.Content()) != 1 {
		t.Error("nested section not merged")
	}
	if len(dst.Content()) != 1 {
		t.Error("root content not merged")
	}
}

func TestMarkedListNormalizes(t *testing.T) {
	for marker, want := range map[string]string{"*": "*", "+": "+", "-": "", "1.": "", "": ""} {
		if got := NewMarkedList(marker, []string{"x"}).Marker(); got != want {
			t.Errorf("NewMarkedList(%q).Marker() = %q, want %q", marker, got, want)
		}
	}
}

func TestItemsAreCopies(t *testing.T) {
	in := []string{"a"}
	l := NewList(in)
	in[0] = "changed"
	out := l.Items()
	out[0] = "also changed"
	if l.Items()[0] != "a" {
		t.Error("list shares its backing array")
	}
}
