package segments

import (
	"context"
	"sync"

	dashboard "github.com/goliatone/go-rfm-dashboard/components/dashboard"
)

// MockData seeds deterministic backend responses for tests or local demos.
type MockData struct {
	Customers map[string]dashboard.CustomerRecord
	// Calculations is returned for every calculate call.
	Calculations dashboard.ClusterMetrics
	// Clusters is keyed by metric name.
	Clusters map[string]dashboard.ClusterMetrics
}

// MockClient implements Client using in-memory fixtures.
type MockClient struct {
	data MockData
	mu   sync.RWMutex
}

// NewMockClient builds a mock backend from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data}
}

// FetchCustomer returns the seeded record or a not-found error.
func (c *MockClient) FetchCustomer(_ context.Context, code string) (dashboard.CustomerRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.data.Customers[code]
	if !ok {
		return dashboard.CustomerRecord{}, dashboard.NewNotFoundError(dashboard.MsgCustomerNotFound, nil)
	}
	record.Transactions = append([]dashboard.TransactionSummary(nil), record.Transactions...)
	return record, nil
}

// CalculateClusters returns the seeded calculation ignoring the query.
func (c *MockClient) CalculateClusters(context.Context, dashboard.CalculationQuery) (dashboard.ClusterMetrics, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Calculations.Clone(), nil
}

// FetchClusters returns the metrics seeded for query.Metric.
func (c *MockClient) FetchClusters(_ context.Context, query dashboard.ClusterQuery) (dashboard.ClusterMetrics, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	metrics, ok := c.data.Clusters[query.Metric]
	if !ok {
		return dashboard.ClusterMetrics{}, nil
	}
	return metrics.Clone(), nil
}

// DemoData returns a small fixture set for local runs without a backend.
func DemoData() MockData {
	return MockData{
		Customers: map[string]dashboard.CustomerRecord{
			"6000007393575": {
				Code:   "6000007393575",
				Gender: dashboard.GenderFemale,
				Age:    34,
				Transactions: []dashboard.TransactionSummary{
					{LastPurchaseDate: "2010-12-01", Recency: 9, Monetary: 1234.5, Frequency: 4},
				},
			},
		},
		Calculations: dashboard.ClusterMetrics{
			"1": {
				dashboard.FieldRecency:            12.6,
				dashboard.FieldFrequency:          7.0,
				dashboard.FieldMonetary:           500.125,
				dashboard.FieldGenderDistribution: map[string]any{"1": 0.6, "2": 0.4},
			},
		},
		Clusters: map[string]dashboard.ClusterMetrics{
			dashboard.FieldRecency: {
				"0": {dashboard.FieldRecency: 30.0},
				"1": {dashboard.FieldRecency: 12.6},
				"2": {dashboard.FieldRecency: 88.1},
			},
			dashboard.FieldFrequency: {
				"0": {dashboard.FieldFrequency: 2.0},
				"1": {dashboard.FieldFrequency: 7.0},
				"2": {dashboard.FieldFrequency: 1.0},
			},
			dashboard.FieldMonetary: {
				"0": {dashboard.FieldMonetary: 210.4},
				"1": {dashboard.FieldMonetary: 500.125},
				"2": {dashboard.FieldMonetary: 95.0},
			},
		},
	}
}
