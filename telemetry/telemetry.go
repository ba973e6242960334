// Package telemetry collects hierarchical operation timings. Collectors
// travel through context so instrumentation stays out of function
// signatures; code paths without a collector pay only a context lookup.
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.FromContext(ctx).Start("Load ledger")
//	child := timer.Child("Parse transactions")
//	// ... work ...
//	child.End()
//	timer.End()
//
//	collector.Report(os.Stderr, styles)
package telemetry

import (
	"context"
	"io"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector receives timed operations. Implementations decide what to keep
// and how Report renders it.
type Collector interface {
	// Start begins timing a named operation. The returned timer must be
	// ended when the operation completes.
	Start(name string) Timer

	// Report writes the collected data. The styles parameter may be an
	// *output.Styles for terminal colouring, or nil.
	Report(w io.Writer, styles interface{})
}

// Timer tracks one operation. Nested operations hang off Child.
type Timer interface {
	End()
	Child(name string) Timer
}

// WithCollector attaches a collector to the context.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext returns the context's collector, or a no-op collector when
// none is attached.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}
