package dashboard

import "context"

// CustomerRepository loads customer transaction summaries from the segmentation backend.
type CustomerRepository interface {
	FetchCustomer(ctx context.Context, code string) (CustomerRecord, error)
}

// ClusterCalculationRepository runs per-cluster aggregations on the backend.
type ClusterCalculationRepository interface {
	CalculateClusters(ctx context.Context, query CalculationQuery) (ClusterMetrics, error)
}

// ClusterMetricsRepository loads per-cluster metrics for the visualization panel.
type ClusterMetricsRepository interface {
	FetchClusterMetrics(ctx context.Context, query ClusterQuery) (ClusterMetrics, error)
}

// Gender mirrors the backend gender codes.
type Gender int

const (
	GenderUnknown Gender = 0
	GenderMale    Gender = 1
	GenderFemale  Gender = 2
)

// Label returns the display label for the gender code.
func (g Gender) Label() string {
	return GenderLabel(int(g))
}

// GenderLabel maps a raw gender code to its label; unmapped codes are "Unknown".
func GenderLabel(code int) string {
	switch Gender(code) {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	default:
		return "Unknown"
	}
}

// TransactionSummary is a single RFM row returned for a customer.
type TransactionSummary struct {
	LastPurchaseDate string
	Recency          float64
	Monetary         float64
	Frequency        float64
}

// CustomerRecord groups the demographics and transaction rows of a customer lookup.
type CustomerRecord struct {
	Code         string
	Gender       Gender
	Age          float64
	Transactions []TransactionSummary
}

// Empty reports whether the lookup returned no rows.
func (r CustomerRecord) Empty() bool {
	return len(r.Transactions) == 0
}

// CalculationQuery configures the cluster parameter panel request.
type CalculationQuery struct {
	K        int
	Cluster  string
	Year     string
	Function string
}

// ClusterQuery configures the cluster visualization request.
type ClusterQuery struct {
	K           int
	Metric      string
	Aggregation string
}

// MetricRecord holds the named metrics of a single cluster. Values keep their
// decoded JSON shape (float64, string, map[string]any, ...).
type MetricRecord map[string]any

// ClusterMetrics maps cluster identifiers to their metrics.
type ClusterMetrics map[string]MetricRecord

// Keys returns the cluster identifiers in display order.
func (m ClusterMetrics) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortClusterKeys(keys)
	return keys
}

// Clone returns a deep-enough copy so callers cannot mutate panel state.
func (m ClusterMetrics) Clone() ClusterMetrics {
	if m == nil {
		return nil
	}
	out := make(ClusterMetrics, len(m))
	for k, record := range m {
		copied := make(MetricRecord, len(record))
		for field, value := range record {
			copied[field] = value
		}
		out[k] = copied
	}
	return out
}
