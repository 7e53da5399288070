// Package trace records what the linter is doing as structured events.
//
//	awaitlint lint --trace=- --trace-level=detail src/
//
// Spans nest through the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopePass, "lint")
//	defer span.End("")
//	trace.Note(ctx, trace.ScopeFile, "cache", "miss")
//
// Levels map onto scopes: phase lets driver and pass events through,
// detail adds files, debug adds individual findings.
package trace
