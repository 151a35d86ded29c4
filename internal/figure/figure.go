package figure

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// FolderName is the directory, relative to the document, figures are saved in.
const FolderName = "figures"

// Plottable is a value that can draw itself as a PNG image.
type Plottable interface {
	WriteImage(w io.Writer, dpi int) error
}

// Captioned is implemented by plottables that carry their own caption.
type Captioned interface {
	Caption() string
}

// Result describes a saved figure. Path is relative to the document
// directory.
type Result struct {
	Path    string
	Alt     string
	Caption string
}

// Extractor saves a plottable value and reports where it went.
type Extractor interface {
	Extract(p Plottable) (Result, error)
}

// Reserver is implemented by extractors that number their files. Reserve is
// called with the path of every figure already in a loaded document.
type Reserver interface {
	Reserve(path string)
}

// DirExtractor writes figures to <dir>/figures/<base>_image<N>.png, numbering
// them in extraction order.
type DirExtractor struct {
	dir  string
	base string
	dpi  int

	mu   sync.Mutex
	next int
}

// NewDirExtractor returns an extractor for the document named base in dir.
// A dpi of zero lets each plottable choose.
func NewDirExtractor(dir, base string, dpi int) *DirExtractor {
	return &DirExtractor{dir: dir, base: base, dpi: dpi}
}

// Extract saves p and returns its path.
func (x *DirExtractor) Extract(p Plottable) (Result, error) {
	x.mu.Lock()
	n := x.next
	x.next++
	x.mu.Unlock()

	folder := filepath.Join(x.dir, FolderName)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return Result{}, fmt.Errorf("create figure dir: %w", err)
	}
	name := fmt.Sprintf("%s_image%d.png", x.base, n)
	path := filepath.Join(folder, name)
	f, err := os.Create(path)
	if err != nil {
		return Result{}, fmt.Errorf("create figure: %w", err)
	}
	if err := p.WriteImage(f, x.dpi); err != nil {
		f.Close()
		os.Remove(path)
		return Result{}, fmt.Errorf("write figure: %w", err)
	}
	if err := f.Close(); err != nil {
		return Result{}, fmt.Errorf("close figure: %w", err)
	}

	res := Result{Path: FolderName + "/" + name}
	if c, ok := p.(Captioned); ok {
		res.Caption = c.Caption()
	}
	return res, nil
}

// Reserve moves the counter past the figure at path, a path relative to the
// document directory, when path is one of this extractor's file names.
func (x *DirExtractor) Reserve(path string) {
	name, ok := strings.CutPrefix(filepath.ToSlash(path), FolderName+"/")
	if !ok {
		return
	}
	name, ok = strings.CutPrefix(name, x.base+"_image")
	if !ok {
		return
	}
	n, err := strconv.Atoi(strings.TrimSuffix(name, ".png"))
	if err != nil || n < 0 || !strings.HasSuffix(name, ".png") {
		return
	}
	x.mu.Lock()
	if n >= x.next {
		x.next = n + 1
	}
	x.mu.Unlock()
}

// Image adapts an image.Image to Plottable.
type Image struct {
	Img   image.Image
	Title string
}

// WriteImage encodes the image as PNG. Raster images have a fixed
// resolution, so dpi is ignored.
func (i Image) WriteImage(w io.Writer, dpi int) error {
	return png.Encode(w, i.Img)
}

func (i Image) Caption() string { return i.Title }
