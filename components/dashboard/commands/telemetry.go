package commands

import dashboard "github.com/goliatone/go-rfm-dashboard/components/dashboard"

// Telemetry is the dashboard event sink; commands record one event per call.
type Telemetry = dashboard.Telemetry

func normalizeTelemetry(t Telemetry) Telemetry {
	return dashboard.MultiTelemetry(t)
}
