package mdrender

import (
	"path/filepath"
	"testing"

	"github.com/dgallion1/mdgen/internal/section"
)

func TestItem(t *testing.T) {
	checks, _ := section.CheckboxFrom([]string{"done", "todo"}, true, false)

	tests := []struct {
		name string
		item section.Item
		want string
	}{
		{"text", section.NewText("Hello\n"), "Hello\n"},
		{"code", section.NewCode("x := 1", "go"), "```go\nx := 1\n```\n"},
		{"code with fence", section.NewCode("```", ""), "````\n```\n````\n"},
		{"list", section.NewList([]string{"a", "b"}), "- a\n- b\n"},
		{"marked list", section.NewMarkedList("+", []string{"a"}), "+ a\n"},
		{"list item spans lines", section.NewList([]string{"a\nb"}), "- a b\n"},
		{"checkbox", checks, "- [x] done\n- [ ] todo\n"},
		{"table", section.NewTable([]string{"k", "v"}, [][]string{{"a|b", "1"}}),
			"| k | v |\n| --- | --- |\n| a\\|b | 1 |\n"},
		{"ragged table", section.NewTable(nil, [][]string{{"a"}, {"b", "c"}}),
			"|  |  |\n| --- | --- |\n| a |  |\n| b | c |\n"},
		{"image", section.NewImage("img/a.png", "A"), "![A](img/a.png)\n"},
		{"figure", section.NewFigure("f.png", "", "Sales [Q1]"), "![Sales \\[Q1\\]](f.png)\n\n*Sales \\[Q1\\]*\n"},
		{"link", section.NewLink("http://x.io/a b", ""), "[http://x.io/a b](<http://x.io/a b>)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Item(tt.item, Options{}); got != tt.want {
				t.Errorf("Item() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmptyItemsRenderBlank(t *testing.T) {
	for _, item := range []section.Item{
		section.NewText(""),
		section.NewList(nil),
		section.NewTable(nil, nil),
	} {
		if got := Item(item, Options{}); got != "\n" {
			t.Errorf("%s: Item() = %q", item.Kind(), got)
		}
	}
}

func TestHeaderAndTitle(t *testing.T) {
	if got := Header(3, " Deep "); got != "### Deep\n" {
		t.Errorf("Header = %q", got)
	}
	if got := Title("Go"); got != "Go\n===\n" {
		t.Errorf("short Title = %q", got)
	}
	if got := Title("Überblick"); got != "Überblick\n=========\n" {
		t.Errorf("Title = %q", got)
	}
	if got := Authors([]string{"A", "B"}); got != "Author: A, B\n" {
		t.Errorf("Authors = %q", got)
	}
}

func TestImagePathsRelativeToDocument(t *testing.T) {
	base := t.TempDir()
	opts := Options{BaseDir: base}

	inside := filepath.Join(base, "figures", "x.png")
	if got := Item(section.NewImage(inside, "x"), opts); got != "![x](figures/x.png)\n" {
		t.Errorf("inside = %q", got)
	}

	outside := filepath.Join(filepath.Dir(base), "elsewhere.png")
	want := "![x](" + filepath.ToSlash(outside) + ")\n"
	if got := Item(section.NewImage(outside, "x"), opts); got != want {
		t.Errorf("outside = %q, want %q", got, want)
	}

	if got := Item(section.NewImage("rel/y.png", "y"), opts); got != "![y](rel/y.png)\n" {
		t.Errorf("relative = %q", got)
	}
}

func TestContinues(t *testing.T) {
	list := section.NewList([]string{"a"})
	checks := section.NewCheckbox([]section.CheckItem{{Text: "b"}})
	text := section.NewText("c")
	tests := []struct {
		name       string
		prev, next section.Item
		want       bool
	}{
		{"list list", list, list, true},
		{"list checkbox", list, checks, true},
		{"checkbox checkbox", checks, checks, true},
		{"list text", list, text, false},
		{"text list", text, list, false},
	}
	for _, tt := range tests {
		if got := Continues(tt.prev, tt.next); got != tt.want {
			t.Errorf("%s: Continues() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
