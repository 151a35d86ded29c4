package fsio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MarkdownExtensions are the suffixes recognized as a markdown file name.
var MarkdownExtensions = []string{".md", ".markdown"}

// Writer stores rendered text at a path.
type Writer interface {
	WriteFile(path, text string) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(path, text string) error

func (f WriterFunc) WriteFile(path, text string) error { return f(path, text) }

// OS writes to the local filesystem, creating parent directories.
type OS struct{}

func (OS) WriteFile(path, text string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// IsMarkdownFile reports whether name ends in a markdown extension.
func IsMarkdownFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range MarkdownExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// SplitTarget interprets an output target. A markdown file name splits into
// its directory and base name without extension; anything else is taken to
// be a directory and base is empty.
func SplitTarget(target string) (dir, base string) {
	if !IsMarkdownFile(target) {
		return target, ""
	}
	dir = filepath.Dir(target)
	name := filepath.Base(target)
	return dir, strings.TrimSuffix(name, filepath.Ext(name))
}
