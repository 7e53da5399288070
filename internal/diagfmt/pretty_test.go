package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"awaitlint/internal/diag"
	"awaitlint/internal/source"
)

const (
	ruleMsg  = "Redundant use of `await` on a return value."
	ruleHelp = "Remove redundant `await`."
)

// awaitAt builds the rule diagnostic for the n-th "await" (0-based) of src.
func awaitAt(t *testing.T, id source.FileID, src string, n int) diag.Diagnostic {
	t.Helper()
	off := -1
	for i := 0; i <= n; i++ {
		next := strings.Index(src[off+1:], "await")
		if next < 0 {
			t.Fatalf("await #%d not found", n)
		}
		off += next + 1
	}
	sp := source.Span{File: id, Start: uint32(off), End: uint32(off + len("await"))}
	return diag.NewWarning(diag.LintNoReturnAwait, sp, ruleMsg).WithHelp(ruleHelp)
}

func render(t *testing.T, src string, opts PrettyOpts, build func(id source.FileID) []diag.Diagnostic) string {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.js", []byte(src))
	bag := diag.NewBag(0)
	for _, d := range build(id) {
		bag.Add(d)
	}
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, opts); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	return buf.String()
}

func TestPrettyGolden(t *testing.T) {
	src := "\nasync function foo() {\n    return await bar();\n}"
	got := render(t, src, DefaultPrettyOpts(), func(id source.FileID) []diag.Diagnostic {
		return []diag.Diagnostic{awaitAt(t, id, src, 0)}
	})
	want := "" +
		"  ⚠ eslint(no-return-await): Redundant use of `await` on a return value.\n" +
		"   ╭─[test.js:3:12]\n" +
		" 2 │ async function foo() {\n" +
		" 3 │     return await bar();\n" +
		"   ·            ─────\n" +
		" 4 │ }\n" +
		"   ╰────\n" +
		"  help: Remove redundant `await`.\n"
	if got != want {
		t.Fatalf("pretty output mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyIdempotent(t *testing.T) {
	src := "async function foo() {\n    return (a, await bar());\n}\n"
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.js", []byte(src))
	d := awaitAt(t, id, src, 0)
	first := RenderPretty(d, fs, DefaultPrettyOpts())
	second := RenderPretty(d, fs, DefaultPrettyOpts())
	if first != second {
		t.Fatalf("renders differ:\n%s\n---\n%s", first, second)
	}
}

func TestPrettyTwoBranchesSameLine(t *testing.T) {
	src := "async function foo() {\n    return baz() ? await a : await b;\n}"
	got := render(t, src, DefaultPrettyOpts(), func(id source.FileID) []diag.Diagnostic {
		return []diag.Diagnostic{awaitAt(t, id, src, 0), awaitAt(t, id, src, 1)}
	})
	block := func(col, pad int) string {
		return "" +
			"  ⚠ eslint(no-return-await): Redundant use of `await` on a return value.\n" +
			"   ╭─[test.js:2:" + itoa(col) + "]\n" +
			" 1 │ async function foo() {\n" +
			" 2 │     return baz() ? await a : await b;\n" +
			"   · " + strings.Repeat(" ", pad) + "─────\n" +
			" 3 │ }\n" +
			"   ╰────\n" +
			"  help: Remove redundant `await`.\n"
	}
	want := block(20, 19) + "\n" + block(30, 29)
	if got != want {
		t.Fatalf("pretty output mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func itoa(n int) string {
	var b bytes.Buffer
	if n >= 10 {
		b.WriteString(itoa(n / 10))
	}
	b.WriteByte(byte('0' + n%10))
	return b.String()
}

func TestPrettyASCII(t *testing.T) {
	src := "async function foo() {\n    return await bar();\n}"
	opts := DefaultPrettyOpts()
	opts.Theme = &ThemeASCII
	got := render(t, src, opts, func(id source.FileID) []diag.Diagnostic {
		return []diag.Diagnostic{awaitAt(t, id, src, 0)}
	})
	want := "" +
		"  ! eslint(no-return-await): Redundant use of `await` on a return value.\n" +
		"   ,-[test.js:2:12]\n" +
		" 1 | async function foo() {\n" +
		" 2 |     return await bar();\n" +
		"   :            -----\n" +
		" 3 | }\n" +
		"   `----\n" +
		"  help: Remove redundant `await`.\n"
	if got != want {
		t.Fatalf("pretty output mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyContextEdges(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "first line has no line before",
			src:  "await x;\nfoo();",
			want: "" +
				"   ╭─[test.js:1:1]\n" +
				" 1 │ await x;\n" +
				"   · ─────\n" +
				" 2 │ foo();\n" +
				"   ╰────\n",
		},
		{
			name: "last line has no line after",
			src:  "foo();\nawait x;",
			want: "" +
				"   ╭─[test.js:2:1]\n" +
				" 1 │ foo();\n" +
				" 2 │ await x;\n" +
				"   · ─────\n" +
				"   ╰────\n",
		},
		{
			name: "empty neighbour line has no trailing space",
			src:  "\nawait x;\n",
			want: "" +
				"   ╭─[test.js:2:1]\n" +
				" 1 │\n" +
				" 2 │ await x;\n" +
				"   · ─────\n" +
				"   ╰────\n",
		},
		{
			name: "gutter widens with the largest shown line",
			src:  strings.Repeat("x;\n", 9) + "await y;\nz;",
			want: "" +
				"    ╭─[test.js:10:1]\n" +
				"  9 │ x;\n" +
				" 10 │ await y;\n" +
				"    · ─────\n" +
				" 11 │ z;\n" +
				"    ╰────\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, tt.src, DefaultPrettyOpts(), func(id source.FileID) []diag.Diagnostic {
				d := awaitAt(t, id, tt.src, 0)
				d.Help = ""
				return []diag.Diagnostic{d}
			})
			header := "  ⚠ eslint(no-return-await): " + ruleMsg + "\n"
			if got != header+tt.want {
				t.Fatalf("pretty output mismatch\n got:\n%s\nwant:\n%s", got, header+tt.want)
			}
		})
	}
}

func TestPrettyContextZeroShowsNone(t *testing.T) {
	src := "foo();\nawait x;\nbar();"
	want := "" +
		"  ⚠ eslint(no-return-await): " + ruleMsg + "\n" +
		"   ╭─[test.js:2:1]\n" +
		" 2 │ await x;\n" +
		"   · ─────\n" +
		"   ╰────\n"
	for _, ctx := range []int8{0, -1} {
		got := render(t, src, PrettyOpts{Context: ctx}, func(id source.FileID) []diag.Diagnostic {
			d := awaitAt(t, id, src, 0)
			d.Help = ""
			return []diag.Diagnostic{d}
		})
		if got != want {
			t.Fatalf("context %d: pretty output mismatch\n got:\n%s\nwant:\n%s", ctx, got, want)
		}
	}
}

func TestPrettyLabels(t *testing.T) {
	src := "async function f() { return a || await b; }"
	got := render(t, src, DefaultPrettyOpts(), func(id source.FileID) []diag.Diagnostic {
		d := awaitAt(t, id, src, 0).
			WithPrimaryText("awaited here").
			WithLabel(source.Span{File: id, Start: 21, End: 27}, "returned here")
		d.Help = ""
		return []diag.Diagnostic{d}
	})
	want := "" +
		"  ⚠ eslint(no-return-await): " + ruleMsg + "\n" +
		"   ╭─[test.js:1:34]\n" +
		" 1 │ async function f() { return a || await b; }\n" +
		"   ·                                  ───── awaited here\n" +
		"   ·                      ────── returned here\n" +
		"   ╰────\n"
	if got != want {
		t.Fatalf("pretty output mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyWideAndTabs(t *testing.T) {
	tests := []struct {
		name         string
		src          string
		displayWidth bool
		annotation   string
	}{
		{"wide code points", "s = \"日本\"; await x;", false, "   · " + strings.Repeat(" ", 10) + "─────\n"},
		{"wide display width", "s = \"日本\"; await x;", true, "   · " + strings.Repeat(" ", 12) + "─────\n"},
		{"tab code points", "\tawait x;", false, "   ·  ─────\n"},
		{"tab display width", "\tawait x;", true, "   · \t─────\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultPrettyOpts()
			opts.DisplayWidth = tt.displayWidth
			got := render(t, tt.src, opts, func(id source.FileID) []diag.Diagnostic {
				return []diag.Diagnostic{awaitAt(t, id, tt.src, 0)}
			})
			if !strings.Contains(got, tt.annotation) {
				t.Fatalf("annotation row %q not found in:\n%s", tt.annotation, got)
			}
		})
	}
}

func TestPrettyWithoutLabels(t *testing.T) {
	fs := source.NewFileSet()
	d := diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.IOLoadFileError,
		Message:  "failed to load file a.js: no such file",
	}
	got := RenderPretty(d, fs, DefaultPrettyOpts())
	want := "  × io(load-file): failed to load file a.js: no such file\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPrettyColor(t *testing.T) {
	src := "async function f() { return await x; }"
	opts := DefaultPrettyOpts()
	opts.Color = true
	got := render(t, src, opts, func(id source.FileID) []diag.Diagnostic {
		return []diag.Diagnostic{awaitAt(t, id, src, 0)}
	})
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected ANSI escapes in colored output:\n%q", got)
	}
	plain := render(t, src, DefaultPrettyOpts(), func(id source.FileID) []diag.Diagnostic {
		return []diag.Diagnostic{awaitAt(t, id, src, 0)}
	})
	if strings.Contains(plain, "\x1b[") {
		t.Fatalf("unexpected ANSI escapes in plain output:\n%q", plain)
	}
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	src := "async function f() { return await x; }\n"
	fileID := fs.AddVirtual("/home/user/project/src/test.js", []byte(src))
	fs.SetBaseDir("/home/user/project")
	d := awaitAt(t, fileID, src, 0)

	tests := []struct {
		name string
		mode PathMode
		want string
	}{
		{"absolute", PathModeAbsolute, "[/home/user/project/src/test.js:1:29]"},
		{"relative", PathModeRelative, "[src/test.js:1:29]"},
		{"basename", PathModeBasename, "[test.js:1:29]"},
		{"auto keeps short paths", PathModeAuto, "[/home/user/project/src/test.js:1:29]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultPrettyOpts()
			opts.PathMode = tt.mode
			if got := RenderPretty(d, fs, opts); !strings.Contains(got, tt.want) {
				t.Fatalf("expected %q in:\n%s", tt.want, got)
			}
		})
	}
}

func TestParseOptions(t *testing.T) {
	if m, err := ParsePathMode("basename"); err != nil || m != PathModeBasename {
		t.Fatalf("ParsePathMode(basename) = %v, %v", m, err)
	}
	if _, err := ParsePathMode("weird"); err == nil {
		t.Fatalf("expected an error for an unknown path mode")
	}
	if th, err := ParseTheme("ASCII"); err != nil || th.Name != "ascii" {
		t.Fatalf("ParseTheme(ASCII) = %v, %v", th, err)
	}
	if _, err := ParseTheme("emoji"); err == nil {
		t.Fatalf("expected an error for an unknown theme")
	}
}
