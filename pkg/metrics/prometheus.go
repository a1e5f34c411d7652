package metrics

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goliatone/go-rfm-dashboard/components/dashboard"
)

// Manager owns the dashboard collectors and implements dashboard.Telemetry.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  prometheus.Registerer

	panelFetches      *prometheus.CounterVec
	panelFetchLatency *prometheus.HistogramVec
	panelErrors       *prometheus.CounterVec
	hookErrors        *prometheus.CounterVec
	chartRenders      *prometheus.HistogramVec
	chartCacheErrors  *prometheus.CounterVec
	sessionsOpen      prometheus.Gauge
	sessionsClosed    *prometheus.CounterVec
	commands          *prometheus.CounterVec
}

var _ dashboard.Telemetry = (*Manager)(nil)

// NewManager registers the dashboard collectors. Registering twice on the
// same registry panics, so tests pass their own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "rfm",
		subsystem: "dashboard",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.panelFetches = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "panel_fetches_total",
		Help:      "Settled panel fetches by outcome (success, error, stale).",
	}, []string{"panel", "outcome"})

	m.panelFetchLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "panel_fetch_duration_seconds",
		Help:      "Backend round trip per panel fetch.",
		Buckets:   m.buckets,
	}, []string{"panel"})

	m.panelErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "panel_errors_total",
		Help:      "Panel failures by error kind and surface severity.",
	}, []string{"panel", "kind", "severity"})

	m.hookErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_hook_errors_total",
		Help:      "Refresh hook publish failures.",
	}, []string{"panel"})

	m.chartRenders = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "chart_render_duration_seconds",
		Help:      "Chart HTML render time.",
		Buckets:   m.buckets,
	}, []string{"chart_type"})

	m.chartCacheErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "chart_cache_errors_total",
		Help:      "Shared chart cache failures by operation.",
	}, []string{"op"})

	m.sessionsOpen = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_open",
		Help:      "Page sessions currently held.",
	})

	m.sessionsClosed = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_closed_total",
		Help:      "Closed page sessions by reason (closed, expired).",
	}, []string{"reason"})

	m.commands = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "commands_total",
		Help:      "Dashboard commands executed.",
	}, []string{"command", "state"})
}

// Record implements dashboard.Telemetry.
func (m *Manager) Record(_ context.Context, event string, payload map[string]any) {
	switch event {
	case dashboard.EventPanelFetch:
		panel := label(payload, "panel")
		m.panelFetches.WithLabelValues(panel, label(payload, "outcome")).Inc()
		if ms, ok := number(payload, "duration_ms"); ok {
			m.panelFetchLatency.WithLabelValues(panel).Observe(ms / 1000)
		}
	case dashboard.EventPanelDiagnostic:
		m.panelErrors.WithLabelValues(label(payload, "panel"), label(payload, "error_kind"), label(payload, "severity")).Inc()
	case dashboard.EventHookError:
		m.hookErrors.WithLabelValues(label(payload, "panel")).Inc()
	case dashboard.EventChartRender:
		if ms, ok := number(payload, "duration_ms"); ok {
			m.chartRenders.WithLabelValues(label(payload, "chart_type")).Observe(ms / 1000)
		}
	case dashboard.EventChartCacheError:
		m.chartCacheErrors.WithLabelValues(label(payload, "op")).Inc()
	case dashboard.EventSessionOpen:
		if open, ok := number(payload, "open"); ok {
			m.sessionsOpen.Set(open)
		} else {
			m.sessionsOpen.Inc()
		}
	case dashboard.EventSessionClose:
		m.sessionsOpen.Dec()
		m.sessionsClosed.WithLabelValues(label(payload, "reason")).Inc()
	default:
		if strings.HasPrefix(event, "dashboard.") {
			m.commands.WithLabelValues(strings.TrimPrefix(event, "dashboard."), label(payload, "state")).Inc()
		}
	}
}

func label(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok && v != "" {
		return v
	}
	return "unknown"
}

func number(payload map[string]any, key string) (float64, bool) {
	switch v := payload[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
