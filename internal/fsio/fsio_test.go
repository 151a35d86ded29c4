package fsio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSplitTarget(t *testing.T) {
	tests := []struct {
		target   string
		wantDir  string
		wantBase string
	}{
		{"out/report.md", "out", "report"},
		{"notes.MARKDOWN", ".", "notes"},
		{"out/reports", "out/reports", ""},
		{"data.json", "data.json", ""},
	}
	for _, tt := range tests {
		dir, base := SplitTarget(tt.target)
		if dir != tt.wantDir || base != tt.wantBase {
			t.Errorf("SplitTarget(%q) = %q, %q; want %q, %q", tt.target, dir, base, tt.wantDir, tt.wantBase)
		}
	}
}

func TestOSCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "doc.md")
	if err := (OS{}).WriteFile(path, "# A\n"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# A\n" {
		t.Errorf("wrote %q", data)
	}
}

func TestWriterFunc(t *testing.T) {
	var got string
	w := WriterFunc(func(path, text string) error {
		got = path + ":" + text
		return nil
	})
	if err := w.WriteFile("p", "t"); err != nil || got != "p:t" {
		t.Errorf("got %q, err %v", got, err)
	}
}
