package importer

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/mdgen/internal/section"
)

// PDFImporter handles PDF files. Each page with text becomes a section
// named "Page N" holding the page's paragraphs. It tries the Go library
// first, then falls back to pdftotext if enabled.
type PDFImporter struct {
	FallbackPdftotext bool
}

func (p *PDFImporter) Import(r io.Reader, filename string, into *section.Node) (Result, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "mdgen-pdf-*.pdf")
	if err != nil {
		return Result{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return Result{}, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if err != nil && p.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return Result{}, fmt.Errorf("extract pdf text: %w", err)
	}

	res := Result{Title: baseTitle(filename)}
	out := newOutline(into, &res)
	for i, page := range splitPages(text) {
		paras := pageParagraphs(page)
		if len(paras) == 0 {
			continue
		}
		if err := out.heading(1, fmt.Sprintf("Page %d", i+1)); err != nil {
			return Result{}, err
		}
		for _, para := range paras {
			out.attach(section.NewText(para))
		}
	}
	return res, nil
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if i > 1 {
			buf.WriteString("\f") // Form feed as page separator.
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

func splitPages(text string) []string {
	return strings.Split(text, "\f")
}

// pageParagraphs splits page text on blank lines.
func pageParagraphs(page string) []string {
	var paras []string
	for _, block := range strings.Split(strings.ReplaceAll(page, "\r\n", "\n"), "\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			paras = append(paras, block)
		}
	}
	return paras
}
