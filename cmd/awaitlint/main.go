package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"awaitlint/internal/version"
)

// exitError carries a non-zero exit code after output was already printed.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code:
// 0 clean or warnings only, 1 error diagnostics, 2 failures.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cleanup func()
	root := newRootCmd(&cleanup)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cleanup != nil {
		cleanup()
	}

	var exitErr *exitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return exitErr.code
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
}

func newRootCmd(cleanup *func()) *cobra.Command {
	root := &cobra.Command{
		Use:           "awaitlint",
		Short:         "Find redundant return await in JavaScript",
		Long:          `awaitlint reports "return await" in async functions where the await only adds a microtask.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := setupColor(cmd); err != nil {
				return err
			}
			stopTrace, err := setupTracing(cmd)
			if err != nil {
				return err
			}
			stopProf, err := setupProfiling(cmd)
			if err != nil {
				stopTrace()
				return err
			}
			*cleanup = func() {
				stopProf()
				stopTrace()
			}
			return nil
		},
	}

	root.AddCommand(newLintCmd())
	root.AddCommand(newParseCmd())
	root.AddCommand(newVersionCmd())

	// Глобальные флаги
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().String("config", "", "path to awaitlint.toml (default: search upward from the working directory)")
	root.PersistentFlags().Bool("quiet", false, "suppress the summary line")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics per file (0 = unlimited)")
	root.PersistentFlags().String("trace", "", "write trace events to a file (- for stderr)")
	root.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	root.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	root.PersistentFlags().String("cpu-profile", "", "write a CPU profile to the file")
	root.PersistentFlags().String("mem-profile", "", "write a heap profile to the file on exit")
	root.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to the file")
	return root
}

// isTerminal проверяет, является ли writer терминалом
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
