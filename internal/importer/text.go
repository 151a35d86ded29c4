package importer

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/mdgen/internal/section"
)

// TextImporter handles plain text files. Blank lines separate paragraphs
// and each paragraph becomes one text item.
type TextImporter struct{}

func (p *TextImporter) Import(r io.Reader, filename string, into *section.Node) (Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return Result{}, err
	}

	res := Result{Title: baseTitle(filename)}
	out := newOutline(into, &res)
	for _, para := range paragraphs {
		out.attach(section.NewText(para))
	}
	return res, nil
}
