package diagfmt

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"

	"awaitlint/internal/diag"
	"awaitlint/internal/source"
)

func sampleBag(t *testing.T) (*source.FileSet, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	src := "async function foo() {\n    return await bar();\n}\n"
	id := fs.AddVirtual("test.js", []byte(src))
	bag := diag.NewBag(10)
	bag.Add(awaitAt(t, id, src, 0))
	bag.Add(diag.Diagnostic{Severity: diag.SevError, Code: diag.IOLoadFileError, Message: "failed to load file b.js"})
	return fs, bag
}

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs, bag := sampleBag(t)

	var buf bytes.Buffer
	opts := JSONOpts{IncludePositions: true, PathMode: PathModeBasename}
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 2 || len(output.Diagnostics) != 2 {
		t.Fatalf("count = %d, diagnostics = %d", output.Count, len(output.Diagnostics))
	}

	d := output.Diagnostics[0]
	if d.Severity != "WARNING" || d.Code != "LNT5001" || d.Rule != "eslint(no-return-await)" {
		t.Fatalf("unexpected header fields: %+v", d)
	}
	if d.Help != "Remove redundant `await`." {
		t.Fatalf("help = %q", d.Help)
	}
	want := LocationJSON{File: "test.js", StartByte: 34, EndByte: 39, StartLine: 2, StartCol: 12, EndLine: 2, EndCol: 17}
	if d.Location == nil || *d.Location != want {
		t.Fatalf("location = %+v, want %+v", d.Location, want)
	}
	if len(d.Labels) != 1 || !d.Labels[0].Primary || d.Labels[0].Location != want {
		t.Fatalf("labels = %+v", d.Labels)
	}

	io := output.Diagnostics[1]
	if io.Location != nil || len(io.Labels) != 0 || io.Severity != "ERROR" {
		t.Fatalf("diagnostic without labels = %+v", io)
	}
}

func TestJSONWithoutPositions(t *testing.T) {
	fs, bag := sampleBag(t)
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if out.Count != 1 || out.Dropped != 1 {
		t.Fatalf("Max not applied: count = %d, dropped = %d", out.Count, out.Dropped)
	}
	loc := out.Diagnostics[0].Location
	if loc.StartLine != 0 || loc.StartCol != 0 || loc.StartByte != 34 {
		t.Fatalf("location = %+v", loc)
	}
}

func TestMsgPackMatchesJSON(t *testing.T) {
	fs, bag := sampleBag(t)
	opts := JSONOpts{IncludePositions: true}

	var buf bytes.Buffer
	if err := MsgPack(&buf, bag, fs, opts); err != nil {
		t.Fatalf("MsgPack: %v", err)
	}
	got, err := DecodeMsgPack(&buf)
	if err != nil {
		t.Fatalf("DecodeMsgPack: %v", err)
	}
	want := BuildDiagnosticsOutput(bag, fs, opts)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("msgpack document differs\n got: %+v\nwant: %+v", got, want)
	}
}

func TestSarif(t *testing.T) {
	fs, bag := sampleBag(t)
	var buf bytes.Buffer
	meta := SarifRunMeta{ToolVersion: "1.0.0", InvocationArgs: []string{"lint", "test.js"}}
	if err := Sarif(&buf, bag, fs, meta); err != nil {
		t.Fatalf("Sarif: %v", err)
	}

	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("log = %+v", log)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "awaitlint" || run.Tool.Driver.Version != "1.0.0" {
		t.Fatalf("driver = %+v", run.Tool.Driver)
	}
	// коды отсортированы: IO4001 < LNT5001
	ids := []string{run.Tool.Driver.Rules[0].ID, run.Tool.Driver.Rules[1].ID}
	if !reflect.DeepEqual(ids, []string{"IO4001", "LNT5001"}) {
		t.Fatalf("rules = %v", ids)
	}
	if len(run.Results) != 2 {
		t.Fatalf("results = %d", len(run.Results))
	}
	r := run.Results[0]
	if r.RuleID != "LNT5001" || r.RuleIndex != 1 || r.Level != "warning" {
		t.Fatalf("result = %+v", r)
	}
	region := r.Locations[0].PhysicalLocation.Region
	if region.StartLine != 2 || region.StartColumn != 12 || region.ByteLength != 5 {
		t.Fatalf("region = %+v", region)
	}
	if run.Results[1].Level != "error" || len(run.Results[1].Locations) != 0 {
		t.Fatalf("io result = %+v", run.Results[1])
	}
	if len(run.Invocations) != 1 || !run.Invocations[0].ExecutionSuccessful {
		t.Fatalf("invocations = %+v", run.Invocations)
	}
}
