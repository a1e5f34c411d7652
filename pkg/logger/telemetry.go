package logger

import (
	"context"
	"sort"

	"github.com/goliatone/go-rfm-dashboard/components/dashboard"
)

// Telemetry writes dashboard events to a Logger. Events carrying an
// "error" key log at warn, everything else at debug.
type Telemetry struct {
	log Logger
}

var _ dashboard.Telemetry = (*Telemetry)(nil)

// NewTelemetry adapts l into a dashboard telemetry sink.
func NewTelemetry(l Logger) *Telemetry {
	return &Telemetry{log: l}
}

func (t *Telemetry) Record(ctx context.Context, event string, payload map[string]any) {
	if t == nil || t.log == nil {
		return
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Any(k, payload[k]))
	}
	if _, failed := payload["error"]; failed {
		t.log.Warn(ctx, event, fields...)
		return
	}
	t.log.Debug(ctx, event, fields...)
}
