package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"awaitlint/internal/config"
	"awaitlint/internal/diag"
	"awaitlint/internal/diagfmt"
	"awaitlint/internal/driver"
	"awaitlint/internal/jsfront"
	"awaitlint/internal/observ"
	"awaitlint/internal/source"
	"awaitlint/internal/version"
)

func newLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [flags] <file|directory|->...",
		Short: "Report redundant return await in JavaScript files",
		Long: `Lint JavaScript files and directories (*.js, *.mjs, *.cjs, *.jsx).
Pass - to read a single file from stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runLint,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif|msgpack)")
	cmd.Flags().String("theme", "unicode", "glyphs for pretty output (unicode|ascii)")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	cmd.Flags().Bool("display-width", false, "align underlines by terminal cell width instead of code points")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	cmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	cmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	cmd.Flags().Bool("cache", false, "reuse diagnostics of unchanged files from the disk cache")
	cmd.Flags().String("cache-dir", "", "disk cache location (default: $XDG_CACHE_HOME/awaitlint)")
	cmd.Flags().Bool("clear-cache", false, "empty the disk cache before linting (implies --cache)")
	cmd.Flags().String("stdin-filename", "<stdin>", "file name reported for input read from stdin")
	return cmd
}

type lintFlags struct {
	jobs             int
	ui               uiMode
	warningsAsErrors bool
	noWarnings       bool
	cache            bool
	cacheDir         string
	clearCache       bool
	stdinName        string
	maxDiagnostics   int
	timings          bool
	quiet            bool
}

type outputSettings struct {
	format   string
	pathMode diagfmt.PathMode
	pretty   diagfmt.PrettyOpts
	args     []string
}

func readLintFlags(cmd *cobra.Command) (lintFlags, error) {
	var (
		f   lintFlags
		err error
	)
	if f.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return f, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if f.ui, err = readUIMode(uiValue); err != nil {
		return f, err
	}
	if f.warningsAsErrors, err = cmd.Flags().GetBool("warnings-as-errors"); err != nil {
		return f, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if f.noWarnings, err = cmd.Flags().GetBool("no-warnings"); err != nil {
		return f, fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	if f.noWarnings && f.warningsAsErrors {
		return f, fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	if f.cache, err = cmd.Flags().GetBool("cache"); err != nil {
		return f, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if f.cacheDir, err = cmd.Flags().GetString("cache-dir"); err != nil {
		return f, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	if f.clearCache, err = cmd.Flags().GetBool("clear-cache"); err != nil {
		return f, fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	f.cache = f.cache || f.clearCache
	if f.stdinName, err = cmd.Flags().GetString("stdin-filename"); err != nil {
		return f, fmt.Errorf("failed to get stdin-filename flag: %w", err)
	}
	if f.maxDiagnostics, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return f, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if f.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return f, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if f.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return f, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	return f, nil
}

// loadConfig reads --config, or discovers awaitlint.toml upward from the
// working directory.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	return config.Discover(".")
}

// flagOrConfig prefers an explicitly set flag, then the config file value,
// then the flag default.
func flagOrConfig(cmd *cobra.Command, name, fromConfig string) (string, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	if cmd.Flags().Changed(name) || fromConfig == "" {
		return value, nil
	}
	return fromConfig, nil
}

func resolveOutput(cmd *cobra.Command, cfg config.Config, args []string) (outputSettings, error) {
	out := outputSettings{args: append([]string{cmd.CommandPath()}, args...)}

	format, err := flagOrConfig(cmd, "format", cfg.Output.Format)
	if err != nil {
		return out, err
	}
	out.format = strings.ToLower(strings.TrimSpace(format))
	if err := config.CheckFormat(out.format); err != nil {
		return out, err
	}

	themeName, err := flagOrConfig(cmd, "theme", cfg.Output.Theme)
	if err != nil {
		return out, err
	}
	theme, err := diagfmt.ParseTheme(themeName)
	if err != nil {
		return out, err
	}

	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return out, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if fullPath {
		out.pathMode = diagfmt.PathModeAbsolute
	} else if out.pathMode, err = diagfmt.ParsePathMode(cfg.Output.PathMode); err != nil {
		return out, err
	}

	displayWidth, err := cmd.Flags().GetBool("display-width")
	if err != nil {
		return out, fmt.Errorf("failed to get display-width flag: %w", err)
	}

	out.pretty = diagfmt.DefaultPrettyOpts()
	out.pretty.Color = useColor()
	out.pretty.Theme = theme
	out.pretty.PathMode = out.pathMode
	out.pretty.DisplayWidth = displayWidth
	return out, nil
}

// runLint executes the "lint" command. Diagnostics go to stdout; the
// summary, timings and warnings go to stderr.
func runLint(cmd *cobra.Command, args []string) error {
	flags, err := readLintFlags(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out, err := resolveOutput(cmd, cfg, args)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	var timer *observ.Timer
	if flags.timings {
		timer = observ.NewTimer()
	}

	opts := driver.Options{
		Jobs:           flags.jobs,
		MaxDiagnostics: flags.maxDiagnostics,
		Levels:         cfg.Levels,
		Parse:          jsfront.DefaultOptions(),
		Policy: driver.Policy{
			WarningsAsErrors: flags.warningsAsErrors,
			NoWarnings:       flags.noWarnings,
		},
		EnableTimings: flags.timings,
	}
	if flags.cache {
		cache, cacheErr := openCache(flags)
		if cacheErr != nil {
			fmt.Fprintf(stderr, "warning: disk cache disabled: %v\n", cacheErr)
		} else {
			opts.Cache = cache
		}
	}

	done := timer.Track("lint")
	fs, results, err := lintInputs(cmd, args, flags, opts)
	done("")
	if err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}
	absorbFileTimings(timer, results)

	done = timer.Track("render")
	err = renderResults(cmd.OutOrStdout(), fs, results, out)
	done(out.format)
	if err != nil {
		return fmt.Errorf("failed to format diagnostics: %w", err)
	}

	if !flags.quiet && out.format == "pretty" {
		printSummary(stderr, results)
	}
	if timer != nil {
		fmt.Fprint(stderr, timer.Summary())
	}
	if code := driver.ExitCode(results); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

func openCache(flags lintFlags) (*driver.DiskCache, error) {
	var (
		cache *driver.DiskCache
		err   error
	)
	if flags.cacheDir != "" {
		cache, err = driver.OpenDiskCacheAt(flags.cacheDir)
	} else {
		cache, err = driver.OpenDiskCache("awaitlint")
	}
	if err != nil {
		return nil, err
	}
	if flags.clearCache {
		if err := cache.Clear(); err != nil {
			return nil, fmt.Errorf("clear %s: %w", cache.Dir(), err)
		}
	}
	return cache, nil
}

// absorbFileTimings folds per-file stage timings into the run timer.
func absorbFileTimings(timer *observ.Timer, results []driver.Result) {
	for _, r := range results {
		if r.Timing == nil {
			continue
		}
		for _, p := range r.Timing.Phases {
			timer.Add("files/"+p.Name, time.Duration(p.DurationMS*float64(time.Millisecond)), "")
		}
	}
}

func lintInputs(cmd *cobra.Command, args []string, flags lintFlags, opts driver.Options) (*source.FileSet, []driver.Result, error) {
	ctx := cmd.Context()
	for _, arg := range args {
		if arg == "-" {
			if len(args) > 1 {
				return nil, nil, fmt.Errorf("stdin (-) cannot be combined with other paths")
			}
			return lintStdin(ctx, cmd.InOrStdin(), flags.stdinName, opts)
		}
	}

	files, err := driver.CollectFiles(args)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no JavaScript files found in %s", strings.Join(args, ", "))
	}
	if shouldUseTUI(flags.ui, cmd.ErrOrStderr(), len(files)) {
		return runLintWithUI(ctx, cmd.ErrOrStderr(), "awaitlint", files, opts)
	}
	return driver.LintFiles(ctx, files, opts)
}

func lintStdin(ctx context.Context, in io.Reader, name string, opts driver.Options) (*source.FileSet, []driver.Result, error) {
	content, err := io.ReadAll(in)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	fs := source.NewFileSetWithBase(opts.BaseDir)
	id := fs.AddVirtual(name, content)
	res, err := driver.LintSource(ctx, fs, id, opts)
	if err != nil {
		return nil, nil, err
	}
	return fs, []driver.Result{*res}, nil
}

func renderResults(w io.Writer, fs *source.FileSet, results []driver.Result, out outputSettings) error {
	jsonOpts := diagfmt.JSONOpts{IncludePositions: true, PathMode: out.pathMode}

	switch out.format {
	case "pretty":
		first := true
		for _, r := range results {
			if r.Bag.Len() == 0 {
				continue
			}
			if !first {
				fmt.Fprintln(w)
			}
			first = false
			if err := diagfmt.Pretty(w, r.Bag, fs, out.pretty); err != nil {
				return err
			}
		}
	case "short":
		output := diag.FormatShortDiagnostics(mergeBags(results).Items(), fs, out.pathMode.String(), false)
		if output != "" {
			fmt.Fprintln(w, output)
		}
	case "json":
		if len(results) == 1 {
			return diagfmt.JSON(w, results[0].Bag, fs, jsonOpts)
		}
		output := make(map[string]diagfmt.DiagnosticsOutput, len(results))
		for _, r := range results {
			output[displayPath(fs, r, out.pathMode)] = diagfmt.BuildDiagnosticsOutput(r.Bag, fs, jsonOpts)
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	case "sarif":
		meta := diagfmt.SarifRunMeta{
			ToolName:       "awaitlint",
			ToolVersion:    version.Version,
			InvocationArgs: out.args,
		}
		return diagfmt.Sarif(w, mergeBags(results), fs, meta)
	case "msgpack":
		return diagfmt.MsgPack(w, mergeBags(results), fs, jsonOpts)
	default:
		return fmt.Errorf("unknown format: %s", out.format)
	}
	return nil
}

// mergeBags joins per-file bags in file order for single-document formats.
func mergeBags(results []driver.Result) *diag.Bag {
	bag := diag.NewBag(0)
	for _, r := range results {
		bag.Merge(r.Bag)
	}
	return bag
}

func displayPath(fs *source.FileSet, r driver.Result, mode diagfmt.PathMode) string {
	if !r.Loaded {
		if mode == diagfmt.PathModeAbsolute {
			if abs, err := source.AbsolutePath(r.Path); err == nil {
				return abs
			}
		}
		return r.Path
	}
	return fs.Get(r.FileID).FormatPath(mode.String(), fs.BaseDir())
}

func printSummary(w io.Writer, results []driver.Result) {
	errs, warnings := driver.Count(results)
	if errs == 0 && warnings == 0 {
		fmt.Fprintf(w, "no problems in %s\n", plural(len(results), "file"))
	} else {
		fmt.Fprintf(w, "%s and %s in %s\n",
			plural(errs, "error"), plural(warnings, "warning"), plural(len(results), "file"))
	}
	dropped := 0
	for _, r := range results {
		dropped += r.Bag.Dropped()
	}
	if dropped > 0 {
		fmt.Fprintf(w, "%s not shown, see --max-diagnostics\n", plural(dropped, "diagnostic"))
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
