package dashboard

import (
	"context"
	"io"
	"sync"
)

type stubCustomers struct {
	mu     sync.Mutex
	codes  []string
	record CustomerRecord
	err    error
}

func (s *stubCustomers) FetchCustomer(_ context.Context, code string) (CustomerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = append(s.codes, code)
	return s.record, s.err
}

func (s *stubCustomers) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}

type stubCalculations struct {
	mu      sync.Mutex
	queries []CalculationQuery
	metrics ClusterMetrics
	err     error
}

func (s *stubCalculations) CalculateClusters(_ context.Context, q CalculationQuery) (ClusterMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	return s.metrics, s.err
}

type stubClusterMetrics struct {
	mu      sync.Mutex
	queries []ClusterQuery
	metrics ClusterMetrics
	err     error
}

func (s *stubClusterMetrics) FetchClusterMetrics(_ context.Context, q ClusterQuery) (ClusterMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	return s.metrics, s.err
}

func (s *stubClusterMetrics) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

type renderCall struct {
	chartType ChartType
	title     string
	series    ChartSeries
}

type stubChartRenderer struct {
	mu    sync.Mutex
	calls []renderCall
	err   error
}

func (s *stubChartRenderer) Render(_ context.Context, chartType ChartType, title string, series ChartSeries) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, renderCall{chartType: chartType, title: title, series: series})
	if s.err != nil {
		return "", s.err
	}
	return "<div>" + string(chartType) + "</div>", nil
}

type recordedEvent struct {
	name    string
	payload map[string]any
}

type stubTelemetry struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (s *stubTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, recordedEvent{name: event, payload: payload})
}

func (s *stubTelemetry) named(name string) []recordedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []recordedEvent
	for _, e := range s.events {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

type stubRenderer struct {
	lastTemplate string
	lastPayload  map[string]any
	err          error
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.lastTemplate = name
	if payload, ok := data.(map[string]any); ok {
		r.lastPayload = payload
	}
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("<html></html>"))
	}
	return "<html></html>", r.err
}

func sampleCustomer() CustomerRecord {
	return CustomerRecord{
		Code:   "6000007393575",
		Gender: GenderFemale,
		Age:    34,
		Transactions: []TransactionSummary{
			{LastPurchaseDate: "2010-12-01", Recency: 9, Monetary: 1234.5, Frequency: 4},
		},
	}
}

func sampleClusters() ClusterMetrics {
	return ClusterMetrics{
		"0": {FieldRecency: 40.0, FieldFrequency: 2.0, FieldMonetary: 120.0},
		"1": {
			FieldRecency:            12.6,
			FieldFrequency:          7.0,
			FieldMonetary:           500.125,
			FieldGenderDistribution: map[string]any{"1": 0.6, "2": 0.4},
		},
		"2": {FieldRecency: 3.0, FieldFrequency: 15.0, FieldMonetary: 2048.0},
	}
}
