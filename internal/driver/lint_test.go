package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"awaitlint/internal/diag"
	"awaitlint/internal/lint"
	"awaitlint/internal/source"
)

const fooSrc = "async function foo() {\n    return await bar();\n}\n"

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLintFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.js": fooSrc})
	fs, res, err := LintFile(context.Background(), filepath.Join(dir, "a.js"), Options{})
	if err != nil {
		t.Fatalf("LintFile: %v", err)
	}
	if !res.Loaded || res.Builder == nil {
		t.Fatalf("result = %+v", res)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.LintNoReturnAwait || items[0].Severity != diag.SevWarning {
		t.Fatalf("diagnostics = %+v", items)
	}
	start, _ := fs.Resolve(items[0].Primary)
	if start != (source.LineCol{Line: 2, Col: 12}) {
		t.Fatalf("position = %+v, want 2:12", start)
	}
	if ExitCode([]Result{*res}) != 0 {
		t.Fatalf("warnings alone must exit 0")
	}
}

func TestLintFilesOrderAndEvents(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.js": fooSrc,
		"b.js": "function ok() { return 1; }\n",
		"c.js": "async function f() { return a ? await b : await c; }\n",
	})
	paths := []string{filepath.Join(dir, "a.js"), filepath.Join(dir, "b.js"), filepath.Join(dir, "c.js")}

	var mu sync.Mutex
	final := map[string]Status{}
	sink := SinkFunc(func(ev Event) {
		if ev.Stage != StageLint || ev.Status == StatusWorking {
			return
		}
		mu.Lock()
		final[filepath.Base(ev.File)] = ev.Status
		mu.Unlock()
	})

	_, results, err := LintFiles(context.Background(), paths, Options{Jobs: 2, Sink: sink})
	if err != nil {
		t.Fatalf("LintFiles: %v", err)
	}
	got := make([]int, len(results))
	for i, r := range results {
		if r.Path != paths[i] {
			t.Fatalf("result %d path = %q, want %q", i, r.Path, paths[i])
		}
		got[i] = r.Bag.Len()
	}
	if want := []int{1, 0, 2}; !reflect.DeepEqual(got, want) {
		t.Fatalf("diagnostic counts = %v, want %v", got, want)
	}
	want := map[string]Status{"a.js": StatusDone, "b.js": StatusDone, "c.js": StatusDone}
	if !reflect.DeepEqual(final, want) {
		t.Fatalf("final statuses = %v, want %v", final, want)
	}
}

func TestLintFilesMissingFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.js": fooSrc})
	paths := []string{filepath.Join(dir, "a.js"), filepath.Join(dir, "missing.js")}
	_, results, err := LintFiles(context.Background(), paths, Options{})
	if err != nil {
		t.Fatalf("LintFiles: %v", err)
	}
	missing := results[1]
	if missing.Loaded {
		t.Fatalf("missing file marked loaded")
	}
	items := missing.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.IOLoadFileError || len(items[0].Labels) != 0 {
		t.Fatalf("diagnostics = %+v", items)
	}
	if ExitCode(results) != 1 {
		t.Fatalf("load failure must exit 1")
	}
}

func TestLintFilesTopLevelReturn(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.js":  fooSrc,
		"b.cjs": "if (module.parent) return;\nmodule.exports = async () => { return await x(); };\n",
		"c.js":  "if (done) return;\n",
	})
	paths := []string{filepath.Join(dir, "a.js"), filepath.Join(dir, "b.cjs"), filepath.Join(dir, "c.js")}
	_, results, err := LintFiles(context.Background(), paths, Options{})
	if err != nil {
		t.Fatalf("LintFiles: %v", err)
	}
	codes := func(r Result) []diag.Code {
		var out []diag.Code
		for _, d := range r.Bag.Items() {
			out = append(out, d.Code)
		}
		return out
	}
	tests := []struct {
		name string
		got  []diag.Code
		want []diag.Code
	}{
		{"a.js", codes(results[0]), []diag.Code{diag.LintNoReturnAwait}},
		{"b.cjs", codes(results[1]), []diag.Code{diag.LintNoReturnAwait}},
		{"c.js", codes(results[2]), []diag.Code{diag.SynStrayReturn}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.want) {
				t.Fatalf("codes = %v, want %v", tt.got, tt.want)
			}
		})
	}
	if ExitCode(results) != 1 {
		t.Fatalf("stray return in a script must exit 1")
	}
}

func TestLintFilesSyntaxError(t *testing.T) {
	dir := writeFiles(t, map[string]string{"bad.js": "async function f( {\n  return await x;\n"})
	_, res, err := LintFile(context.Background(), filepath.Join(dir, "bad.js"), Options{})
	if err != nil {
		t.Fatalf("LintFile: %v", err)
	}
	if !res.Bag.HasErrors() {
		t.Fatalf("syntax errors not reported: %+v", res.Bag.Items())
	}
}

func TestLintFileTooLarge(t *testing.T) {
	dir := writeFiles(t, map[string]string{"big.js": fooSrc})
	opts := Options{}
	opts.Parse.MaxFileSize = 8
	_, res, err := LintFile(context.Background(), filepath.Join(dir, "big.js"), opts)
	if err != nil {
		t.Fatalf("LintFile: %v", err)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.IOLoadFileError {
		t.Fatalf("diagnostics = %+v", items)
	}
}

func TestLintFilesCanceled(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.js": fooSrc})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := LintFiles(ctx, []string{filepath.Join(dir, "a.js")}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestLintSourceLevels(t *testing.T) {
	tests := []struct {
		name  string
		level lint.Level
		want  []diag.Severity
	}{
		{"default", lint.LevelDefault, []diag.Severity{diag.SevWarning}},
		{"error", lint.LevelError, []diag.Severity{diag.SevError}},
		{"off", lint.LevelOff, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			id := fs.AddVirtual("<stdin>", []byte(fooSrc))
			opts := Options{Levels: map[string]lint.Level{"no-return-await": tt.level}}
			res, err := LintSource(context.Background(), fs, id, opts)
			if err != nil {
				t.Fatalf("LintSource: %v", err)
			}
			var got []diag.Severity
			for _, d := range res.Bag.Items() {
				got = append(got, d.Severity)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("severities = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLintSourceTimings(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.js", []byte(fooSrc))
	res, err := LintSource(context.Background(), fs, id, Options{EnableTimings: true})
	if err != nil {
		t.Fatalf("LintSource: %v", err)
	}
	if res.Timing == nil || len(res.Timing.Phases) != 2 {
		t.Fatalf("timing = %+v", res.Timing)
	}
	items := res.Bag.Items()
	last := items[len(items)-1]
	if last.Code != diag.ObsTimings || last.Severity != diag.SevInfo {
		t.Fatalf("last diagnostic = %+v, want timings", last)
	}
}

func TestPolicy(t *testing.T) {
	mk := func() *diag.Bag {
		bag := diag.NewBag(0)
		bag.Add(diag.NewWarning(diag.LintNoReturnAwait, source.Span{}, "w"))
		bag.Add(diag.NewError(diag.SynSyntaxError, source.Span{}, "e"))
		bag.Add(diag.Diagnostic{Severity: diag.SevInfo, Code: diag.ObsTimings})
		return bag
	}
	tests := []struct {
		name   string
		policy Policy
		want   []diag.Severity
	}{
		{"none", Policy{}, []diag.Severity{diag.SevWarning, diag.SevError, diag.SevInfo}},
		{"warnings as errors", Policy{WarningsAsErrors: true}, []diag.Severity{diag.SevError, diag.SevError, diag.SevInfo}},
		{"no warnings", Policy{NoWarnings: true}, []diag.Severity{diag.SevError, diag.SevInfo}},
		{"both", Policy{WarningsAsErrors: true, NoWarnings: true}, []diag.Severity{diag.SevError, diag.SevInfo}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := mk()
			tt.policy.Apply(bag)
			var got []diag.Severity
			for _, d := range bag.Items() {
				got = append(got, d.Severity)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("severities = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCount(t *testing.T) {
	bag := diag.NewBag(0)
	bag.Add(diag.NewWarning(diag.LintNoReturnAwait, source.Span{}, "w"))
	bag.Add(diag.NewWarning(diag.LintNoReturnAwait, source.Span{Start: 1, End: 2}, "w"))
	bag.Add(diag.NewError(diag.SynSyntaxError, source.Span{}, "e"))
	errs, warns := Count([]Result{{Bag: bag}, {}})
	if errs != 1 || warns != 2 {
		t.Fatalf("Count = %d errors, %d warnings", errs, warns)
	}
}
