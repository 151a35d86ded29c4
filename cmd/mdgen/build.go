package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/mdgen/internal/document"
	"github.com/dgallion1/mdgen/internal/importer"
	"github.com/dgallion1/mdgen/internal/section"
	"github.com/dgallion1/mdgen/internal/tabular"
)

func (a *app) newCmd() *cobra.Command {
	var title string
	var authors []string
	var force bool

	cmd := &cobra.Command{
		Use:   "new <doc.json>",
		Short: "Create an empty structured document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			opts := append(a.options(path), document.WithTitle(title), document.WithAuthors(authors...))
			return a.save(path, document.New(opts...))
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "document title")
	cmd.Flags().StringSliceVarP(&authors, "author", "a", nil, "author name (repeatable)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

type addFlags struct {
	text     string
	code     string
	lang     string
	list     []string
	marker   string
	checks   []string
	checked  []bool
	link     string
	linkText string
	image    string
	alt      string
	caption  string
	csv      string
}

// item builds the single content item selected by the flags.
func (f addFlags) item(cmd *cobra.Command) (section.Item, error) {
	var items []section.Item
	changed := cmd.Flags().Changed

	if changed("text") {
		items = append(items, section.NewText(f.text))
	}
	if changed("code") {
		items = append(items, section.NewCode(f.code, f.lang))
	}
	if changed("list") {
		items = append(items, section.NewMarkedList(f.marker, f.list))
	}
	if changed("check") {
		cb, err := section.CheckboxFrom(f.checks, f.checked...)
		if err != nil {
			return nil, err
		}
		items = append(items, cb)
	}
	if changed("link") {
		items = append(items, section.NewLink(f.link, f.linkText))
	}
	if changed("image") {
		if f.caption != "" {
			items = append(items, section.NewFigure(f.image, f.alt, f.caption))
		} else {
			items = append(items, section.NewImage(f.image, f.alt))
		}
	}
	if changed("csv") {
		t, err := csvTable(f.csv)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}

	switch len(items) {
	case 0:
		return nil, errors.New("one of --text, --code, --list, --check, --link, --image or --csv is required")
	case 1:
		return items[0], nil
	}
	return nil, errors.New("only one content item can be added at a time")
}

func (a *app) addCmd() *cobra.Command {
	var f addFlags

	cmd := &cobra.Command{
		Use:   "add <doc.json> <section/path>",
		Short: "Append one content item to a section",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := f.item(cmd)
			if err != nil {
				return err
			}
			tree, err := a.load(args[0])
			if err != nil {
				return err
			}
			node, err := tree.GetOrCreate(args[1])
			if err != nil {
				return err
			}
			node.Attach(item)
			a.log.Info("item added", "path", node.Path(), "type", item.Kind())
			return a.save(args[0], tree)
		},
	}
	cmd.Flags().StringVar(&f.text, "text", "", "paragraph text")
	cmd.Flags().StringVar(&f.code, "code", "", "code block body")
	cmd.Flags().StringVar(&f.lang, "lang", "", "code block language")
	cmd.Flags().StringSliceVar(&f.list, "list", nil, "list entries")
	cmd.Flags().StringVar(&f.marker, "marker", "", "list marker: -, * or +")
	cmd.Flags().StringSliceVar(&f.checks, "check", nil, "checkbox entries")
	cmd.Flags().BoolSliceVar(&f.checked, "checked", nil, "checked state, one for all entries or one per entry")
	cmd.Flags().StringVar(&f.link, "link", "", "link URL")
	cmd.Flags().StringVar(&f.linkText, "link-text", "", "link text (defaults to the URL)")
	cmd.Flags().StringVar(&f.image, "image", "", "image path")
	cmd.Flags().StringVar(&f.alt, "alt", "", "image alt text")
	cmd.Flags().StringVar(&f.caption, "caption", "", "caption; turns the image into a figure")
	cmd.Flags().StringVar(&f.csv, "csv", "", "CSV file to add as a table")
	return cmd
}

func csvTable(path string) (section.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := tabular.FromCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return section.NewTable(t.Header(), t.Rows()), nil
}

func (a *app) importCmd() *cobra.Command {
	var into string

	cmd := &cobra.Command{
		Use:   "import <doc.json> <file>",
		Short: "Import a txt, csv, html, pdf or docx file into a document",
		Long: `Import reads a file and appends its content beneath a section.
Headings in the file become child sections. The document is created when
it does not exist yet, titled after the imported file.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docPath, src := args[0], args[1]

			imp, err := importer.ForFile(src, importer.Options{
				FallbackPdftotext: a.cfg.PDFFallbackPdftotext,
				CSVBatchRows:      a.cfg.CSVBatchRows,
			})
			if err != nil {
				return err
			}
			data, err := os.ReadFile(src)
			if err != nil {
				return err
			}
			scratch := section.NewRoot()
			res, err := imp.Import(bytes.NewReader(data), filepath.Base(src), scratch)
			if err != nil {
				return fmt.Errorf("import %s: %w", src, err)
			}

			tree, err := a.load(docPath)
			if errors.Is(err, os.ErrNotExist) {
				tree, err = document.New(append(a.options(docPath), document.WithTitle(res.Title))...), nil
			}
			if err != nil {
				return err
			}

			target := tree.Root()
			if into != "" {
				if target, err = tree.GetOrCreate(into); err != nil {
					return err
				}
			}
			target.Merge(scratch)
			a.log.Info("file imported", "file", src, "sections", res.Sections, "items", res.Items)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s: %d sections, %d items\n", filepath.Base(src), res.Sections, res.Items)
			return a.save(docPath, tree)
		},
	}
	cmd.Flags().StringVar(&into, "into", "", "section path to import beneath (default: document root)")
	cmd.Flags().IntVar(&a.cfg.CSVBatchRows, "csv-batch-rows", a.cfg.CSVBatchRows, "split CSV tables into sections of this many rows")
	cmd.Flags().BoolVar(&a.cfg.PDFFallbackPdftotext, "pdftotext", a.cfg.PDFFallbackPdftotext, "fall back to the pdftotext binary for PDFs")
	return cmd
}
