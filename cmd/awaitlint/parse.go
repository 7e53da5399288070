package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"awaitlint/internal/diag"
	"awaitlint/internal/diagfmt"
	"awaitlint/internal/jsfront"
	"awaitlint/internal/source"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [flags] <file>",
		Short: "Dump the syntax tree the linter works on",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	cmd.Flags().String("format", "tree", "output format (tree|json)")
	return cmd
}

// runParse prints the converted tree. Syntax errors are rendered to stderr
// and make the command exit with 1.
func runParse(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "tree" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	fs := source.NewFileSet()
	id, err := fs.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	bag := diag.NewBag(maxDiagnostics)
	res, err := jsfront.Parse(cmd.Context(), fs, id, diag.BagReporter{Bag: bag}, jsfront.DefaultOptions())
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	if format == "json" {
		err = diagfmt.DumpASTJSON(cmd.OutOrStdout(), res.Builder, res.File)
	} else {
		err = diagfmt.DumpAST(cmd.OutOrStdout(), res.Builder, res.File, fs)
	}
	if err != nil {
		return fmt.Errorf("failed to dump tree: %w", err)
	}

	if bag.Len() > 0 {
		bag.Sort()
		opts := diagfmt.DefaultPrettyOpts()
		opts.Color = useColor()
		if err := diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, opts); err != nil {
			return err
		}
	}
	if bag.HasErrors() {
		return &exitError{code: 1}
	}
	return nil
}
