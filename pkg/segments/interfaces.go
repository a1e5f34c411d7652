package segments

import (
	"context"

	dashboard "github.com/goliatone/go-rfm-dashboard/components/dashboard"
)

// CustomerClient fetches customer transaction summaries from the segmentation backend.
type CustomerClient interface {
	FetchCustomer(ctx context.Context, code string) (dashboard.CustomerRecord, error)
}

// CalculationClient runs per-cluster aggregations for one cluster, year and function.
type CalculationClient interface {
	CalculateClusters(ctx context.Context, query dashboard.CalculationQuery) (dashboard.ClusterMetrics, error)
}

// ClusterClient fetches one metric aggregated across every cluster.
type ClusterClient interface {
	FetchClusters(ctx context.Context, query dashboard.ClusterQuery) (dashboard.ClusterMetrics, error)
}

// Client is a convenience union for backends that serve every endpoint.
type Client interface {
	CustomerClient
	CalculationClient
	ClusterClient
}
