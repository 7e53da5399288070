// Package driver runs the lint pipeline over files: load, parse, lint and
// the severity policy.
package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"awaitlint/internal/ast"
	"awaitlint/internal/diag"
	"awaitlint/internal/jsfront"
	"awaitlint/internal/lint"
	"awaitlint/internal/observ"
	"awaitlint/internal/source"
	"awaitlint/internal/trace"
)

// Options configures a lint run.
type Options struct {
	// Jobs limits parallel files; <= 0 means GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int
	// Levels overrides rule settings by rule name.
	Levels        map[string]lint.Level
	Parse         jsfront.Options
	Policy        Policy
	EnableTimings bool
	// Cache, when set, stores and reuses diagnostics per file content.
	Cache *DiskCache
	Sink  ProgressSink
	// BaseDir is used for relative paths; empty means the working directory.
	BaseDir string
}

// Result is the outcome for one file.
type Result struct {
	Path   string
	FileID source.FileID
	// Loaded is false when the file could not be read; Bag then holds the
	// load error and FileID is meaningless.
	Loaded bool
	Bag    *diag.Bag
	// Builder and ASTFile are nil/zero when the result came from the cache.
	Builder *ast.Builder
	ASTFile ast.FileID
	Cached  bool
	Timing  *observ.Report
}

// LintFile loads and lints one file.
func LintFile(ctx context.Context, path string, opts Options) (*source.FileSet, *Result, error) {
	fs, results, err := LintFiles(ctx, []string{path}, opts)
	if err != nil {
		return fs, nil, err
	}
	return fs, &results[0], nil
}

// LintFiles lints paths in parallel. Results keep the order of paths.
// Files are loaded into the FileSet up front, so workers only read it.
// The returned error is either a context error or a *lint.InternalError.
func LintFiles(ctx context.Context, paths []string, opts Options) (*source.FileSet, []Result, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "lint")
	defer span.End("")
	span.WithExtra("files", strconv.Itoa(len(paths)))

	fs := source.NewFileSetWithBase(opts.BaseDir)
	results := make([]Result, len(paths))
	if len(paths) == 0 {
		return fs, results, nil
	}

	_, loadSpan := trace.Start(ctx, trace.ScopePass, "load")
	for i, path := range paths {
		emit(opts.Sink, Event{File: path, Stage: StageLoad, Status: StatusQueued})
		started := time.Now()
		results[i] = Result{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics)}
		id, err := fs.Load(path)
		if err != nil {
			results[i].Bag.Add(diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.IOLoadFileError,
				Message:  fmt.Sprintf("failed to load file %s: %v", path, err),
			})
			emit(opts.Sink, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err, Elapsed: time.Since(started)})
			continue
		}
		results[i].FileID = id
		results[i].Loaded = true
	}
	loadSpan.End("")

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i := range results {
		if !results[i].Loaded {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return lintLoaded(gctx, fs, &results[i], opts)
		})
	}
	if err := g.Wait(); err != nil {
		return fs, nil, err
	}
	return fs, results, nil
}

// LintSource lints a file that is already in fs, e.g. stdin added with
// AddVirtual.
func LintSource(ctx context.Context, fs *source.FileSet, id source.FileID, opts Options) (*Result, error) {
	f := fs.Get(id)
	if f == nil {
		return nil, fmt.Errorf("unknown file id %d", id)
	}
	res := &Result{Path: f.Path, FileID: id, Loaded: true, Bag: diag.NewBag(opts.MaxDiagnostics)}
	if err := lintLoaded(ctx, fs, res, opts); err != nil {
		return nil, err
	}
	return res, nil
}

func lintLoaded(ctx context.Context, fs *source.FileSet, res *Result, opts Options) error {
	ctx, span := trace.Start(ctx, trace.ScopeFile, res.Path)
	started := time.Now()

	var timer *observ.Timer
	if opts.EnableTimings {
		timer = observ.NewTimer()
	}

	status, err := lintStages(ctx, fs, res, opts, timer)
	if err != nil {
		span.End("failed")
		emit(opts.Sink, Event{File: res.Path, Stage: StageLint, Status: StatusError, Err: err, Elapsed: time.Since(started)})
		return err
	}

	opts.Policy.Apply(res.Bag)
	res.Bag.Sort()
	if timer != nil {
		report := timer.Report()
		res.Timing = &report
		appendTimingDiagnostic(res.Bag, res.Path, report)
	}
	if status == StatusDone && res.Bag.HasErrors() {
		status = StatusError
	}

	span.WithExtra("diags", strconv.Itoa(res.Bag.Len())).End(string(status))
	emit(opts.Sink, Event{File: res.Path, Stage: StageLint, Status: status, Elapsed: time.Since(started)})
	return nil
}

// lintStages fills res.Bag with raw rule and syntax diagnostics, before the
// severity policy.
func lintStages(ctx context.Context, fs *source.FileSet, res *Result, opts Options, timer *observ.Timer) (Status, error) {
	file := fs.Get(res.FileID)

	var key Digest
	if opts.Cache != nil {
		key = combineDigest(file.Hash, fingerprint(opts))
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		if err != nil {
			trace.Note(ctx, trace.ScopeFile, "cache", "read failed: "+err.Error())
		}
		if hit {
			payload.restore(res.Bag, res.FileID)
			res.Cached = true
			return StatusCached, nil
		}
	}

	emit(opts.Sink, Event{File: res.Path, Stage: StageParse, Status: StatusWorking})
	done := timer.Track("parse")
	parsed, err := jsfront.Parse(ctx, fs, res.FileID, diag.BagReporter{Bag: res.Bag}, opts.Parse)
	if err != nil {
		done("failed")
		if errors.Is(err, jsfront.ErrFileTooLarge) {
			res.Bag.Add(diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.IOLoadFileError,
				Message:  err.Error(),
			})
			return StatusError, nil
		}
		return StatusError, err
	}
	done(fmt.Sprintf("syntax-errors=%d", parsed.SyntaxErrors))
	res.Builder, res.ASTFile = parsed.Builder, parsed.File

	emit(opts.Sink, Event{File: res.Path, Stage: StageLint, Status: StatusWorking})
	done = timer.Track("lint")
	linter := lint.NewWithOptions(lint.Options{
		Levels: opts.Levels,
		Tracer: trace.FromContext(ctx),
		Parent: trace.ParentID(ctx),
	})
	if err := linter.Run(parsed.Builder, parsed.File, diag.BagReporter{Bag: res.Bag}); err != nil {
		done("internal error")
		return StatusError, fmt.Errorf("%s: %w", res.Path, err)
	}
	done(fmt.Sprintf("diags=%d", res.Bag.Len()))

	if opts.Cache != nil {
		if err := opts.Cache.Put(key, toPayload(res.Path, res.Bag)); err != nil {
			trace.Note(ctx, trace.ScopeFile, "cache", "write failed: "+err.Error())
		}
	}
	return StatusDone, nil
}
