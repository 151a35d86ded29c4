package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgallion1/mdgen/internal/document"
	"github.com/dgallion1/mdgen/internal/export"
	"github.com/dgallion1/mdgen/internal/fsio"
	"github.com/dgallion1/mdgen/internal/section"
)

func (a *app) renderCmd() *cobra.Command {
	var out string
	var frontMatter bool

	cmd := &cobra.Command{
		Use:   "render <doc.json>",
		Short: "Render a document to markdown",
		Long: `Render prints the markdown for a document. With --out the markdown is
saved instead: a path ending in .md names the file, any other path names
the directory and the file is called after the document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var extra []document.Option
			if out != "" {
				// Image paths are rendered relative to the output directory.
				extra = append(extra, document.WithTarget(out))
			}
			tree, err := a.load(args[0], extra...)
			if err != nil {
				return err
			}
			opts := document.RenderOptions{FrontMatter: frontMatter}
			if out == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), tree.RenderWith(opts))
				return err
			}
			if err := tree.SaveWith(fsio.OS{}, opts); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tree.MarkdownPath())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory")
	cmd.Flags().BoolVar(&frontMatter, "front-matter", false, "emit title and authors as YAML front matter")
	return cmd
}

func (a *app) htmlCmd() *cobra.Command {
	var out string
	var page bool

	cmd := &cobra.Command{
		Use:   "html <doc.json>",
		Short: "Render a document to HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.load(args[0])
			if err != nil {
				return err
			}
			data, err := export.HTML([]byte(tree.Render()), export.HTMLOptions{Page: page, Title: tree.Title()})
			if err != nil {
				return err
			}
			return writeOut(cmd, out, data)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&page, "page", false, "wrap the body in a complete HTML page")
	return cmd
}

func (a *app) docxCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "docx <doc.json>",
		Short: "Export a document to Word format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.load(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(tree.Dir(), tree.FileName()+".docx")
			}
			var buf bytes.Buffer
			if err := export.DOCX(tree, &buf, a.log); err != nil {
				return err
			}
			if err := writeOut(cmd, out, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: beside the document)")
	return cmd
}

func (a *app) outlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outline <doc.json>",
		Short: "Print the heading outline of the rendered document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.load(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, h := range export.Outline([]byte(tree.Render())) {
				fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", h.Level-1), h.Text)
			}
			return nil
		},
	}
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <doc.json>",
		Short: "Count sections and content items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.load(args[0])
			if err != nil {
				return err
			}
			stats := tree.Stats()

			kinds := make([]string, 0, len(stats.Items))
			for k := range stats.Items {
				kinds = append(kinds, string(k))
			}
			sort.Strings(kinds)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "sections\t%d\n", stats.Sections)
			for _, k := range kinds {
				fmt.Fprintf(tw, "%s\t%d\n", k, stats.Items[section.Kind(k)])
			}
			fmt.Fprintf(tw, "total\t%d\n", stats.Total())
			return tw.Flush()
		},
	}
}
