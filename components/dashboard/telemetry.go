package dashboard

import "context"

// Telemetry event names.
const (
	EventPanelFetch      = "dashboard.panel.fetch"
	EventPanelDiagnostic = "dashboard.panel.diagnostic"
	EventHookError       = "dashboard.panel.hook_error"
	EventSessionOpen     = "dashboard.session.open"
	EventSessionClose    = "dashboard.session.close"
	EventChartRender     = "dashboard.chart.render"
	EventChartCacheError = "dashboard.chart_cache.error"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// TelemetryFunc adapts a function into Telemetry.
type TelemetryFunc func(ctx context.Context, event string, payload map[string]any)

// Record implements Telemetry.
func (f TelemetryFunc) Record(ctx context.Context, event string, payload map[string]any) {
	f(ctx, event, payload)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

type multiTelemetry []Telemetry

func (m multiTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	for _, t := range m {
		t.Record(ctx, event, payload)
	}
}

// MultiTelemetry fans events out to every non-nil sink.
func MultiTelemetry(sinks ...Telemetry) Telemetry {
	out := make(multiTelemetry, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return noopTelemetry{}
	case 1:
		return out[0]
	}
	return out
}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
