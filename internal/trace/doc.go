// Package trace records what the compiler is doing while it runs.
//
// Spans mark the boundaries of driver calls, compiler passes and per-module
// work. They are written as they happen (stream mode), kept in a bounded
// buffer that is dumped when a compilation fails unexpectedly (ring mode), or
// both.
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: ring dump on internal errors only
//   - LevelPhase: driver calls and passes
//   - LevelDetail: per-module work
//   - LevelDebug: everything
//
// # Context propagation
//
// The tracer and the current span travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopePass, "resolve")
//	defer span.End("")
package trace
