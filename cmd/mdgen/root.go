package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/mdgen/internal/config"
	"github.com/dgallion1/mdgen/internal/document"
	"github.com/dgallion1/mdgen/internal/fsio"
)

// app carries settings shared by every subcommand. Flags are layered over
// the environment configuration.
type app struct {
	cfg     config.Config
	verbose bool
	log     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Load()}

	root := &cobra.Command{
		Use:   "mdgen",
		Short: "Build markdown documents from path-addressed sections",
		Long: `mdgen edits structured documents stored as JSON and renders them.

Sections are addressed with slash-separated paths. Missing sections are
created on first use.

Example: mdgen add report.json "Intro/Details" --text "Hello"`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			a.log = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log progress to stderr")
	root.PersistentFlags().IntVar(&a.cfg.FigureDPI, "dpi", a.cfg.FigureDPI, "resolution of saved figures")

	root.AddCommand(
		a.newCmd(),
		a.addCmd(),
		a.importCmd(),
		a.renderCmd(),
		a.htmlCmd(),
		a.docxCmd(),
		a.outlineCmd(),
		a.statsCmd(),
	)
	return root
}

// options places the document's output beside its JSON file.
func (a *app) options(path string) []document.Option {
	return []document.Option{
		document.WithDir(filepath.Dir(path)),
		document.WithFileName(filepath.Base(path)),
		document.WithFigureDPI(a.cfg.FigureDPI),
		document.WithLogger(a.log),
	}
}

func (a *app) load(path string, extra ...document.Option) (*document.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tree, err := document.Load(f, append(a.options(path), extra...)...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return tree, nil
}

func (a *app) save(path string, tree *document.Tree) error {
	var buf bytes.Buffer
	if err := tree.SaveStructured(&buf); err != nil {
		return err
	}
	if err := (fsio.OS{}).WriteFile(path, buf.String()); err != nil {
		return err
	}
	a.log.Info("document saved", "path", path, "sections", tree.Stats().Sections)
	return nil
}

// writeOut writes data to path, or to the command's output when path is
// empty.
func writeOut(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
