package segments

import (
	"context"

	dashboard "github.com/goliatone/go-rfm-dashboard/components/dashboard"
)

// NewCustomerRepository adapts a backend client into the lookup panel repository.
func NewCustomerRepository(client CustomerClient) dashboard.CustomerRepository {
	return &customerRepository{client: client}
}

type customerRepository struct {
	client CustomerClient
}

func (r *customerRepository) FetchCustomer(ctx context.Context, code string) (dashboard.CustomerRecord, error) {
	return r.client.FetchCustomer(ctx, code)
}

// NewCalculationRepository adapts the backend client for the parameter panel.
func NewCalculationRepository(client CalculationClient) dashboard.ClusterCalculationRepository {
	return &calculationRepository{client: client}
}

type calculationRepository struct {
	client CalculationClient
}

func (r *calculationRepository) CalculateClusters(ctx context.Context, query dashboard.CalculationQuery) (dashboard.ClusterMetrics, error) {
	return r.client.CalculateClusters(ctx, query)
}

// NewClusterMetricsRepository adapts the backend client for the visualization panel.
func NewClusterMetricsRepository(client ClusterClient) dashboard.ClusterMetricsRepository {
	return &clusterMetricsRepository{client: client}
}

type clusterMetricsRepository struct {
	client ClusterClient
}

func (r *clusterMetricsRepository) FetchClusterMetrics(ctx context.Context, query dashboard.ClusterQuery) (dashboard.ClusterMetrics, error) {
	return r.client.FetchClusters(ctx, query)
}
