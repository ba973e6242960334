package telemetry

import "io"

// noOpCollector keeps uninstrumented paths free of timing overhead.
type noOpCollector struct{}

func (noOpCollector) Start(name string) Timer                { return noOpTimer{} }
func (noOpCollector) Report(w io.Writer, styles interface{}) {}

type noOpTimer struct{}

func (noOpTimer) End()                    {}
func (noOpTimer) Child(name string) Timer { return noOpTimer{} }
