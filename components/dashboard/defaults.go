package dashboard

import "strconv"

// Panel identifiers used in events, telemetry and routes.
const (
	PanelCustomerLookup       = "customer_lookup"
	PanelClusterParameters    = "cluster_parameters"
	PanelClusterVisualization = "cluster_visualization"
)

const (
	// DefaultClusterCount is the k sent to the backend.
	DefaultClusterCount = 3
	// DefaultYear is preselected in the parameter panel.
	DefaultYear = "2009"
	// DefaultMetric is preselected in the visualization panel.
	DefaultMetric = FieldMonetary
	// DefaultAggregation is preselected in the visualization panel.
	DefaultAggregation = "avg"
	// CustomerCodeHint is the lookup input placeholder.
	CustomerCodeHint = "Enter Customer Code (eg: 6000007393575)"
)

// Option is a select entry rendered by the panels.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Values returns the option values.
func Values(options []Option) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.Value
	}
	return out
}

// ClusterOptions lists cluster ids 0..k-1.
func ClusterOptions(k int) []Option {
	if k <= 0 {
		k = DefaultClusterCount
	}
	out := make([]Option, k)
	for i := range out {
		id := strconv.Itoa(i)
		out[i] = Option{Value: id, Label: "Cluster " + id}
	}
	return out
}

// YearOptions lists the selectable years.
func YearOptions(years []string) []Option {
	if len(years) == 0 {
		years = []string{DefaultYear}
	}
	out := make([]Option, len(years))
	for i, y := range years {
		out[i] = Option{Value: y, Label: y}
	}
	return out
}

// AggregationOptions lists the backend aggregation functions.
func AggregationOptions() []Option {
	return []Option{
		{Value: "sum", Label: "Sum"},
		{Value: "avg", Label: "Average"},
		{Value: "median", Label: "Median"},
		{Value: "count", Label: "Count"},
	}
}

// MetricOptions lists the metrics the visualization panel can plot.
func MetricOptions() []Option {
	return []Option{
		{Value: FieldMonetary, Label: "Monetary"},
		{Value: FieldFrequency, Label: "Frequency"},
		{Value: FieldRecency, Label: "Recency"},
		{Value: "Age Distribution", Label: "Age Distribution"},
	}
}

// ChartTypeOptions lists the chart toggles.
func ChartTypeOptions() []Option {
	return []Option{
		{Value: string(ChartBar), Label: "Visualize Bar Charts"},
		{Value: string(ChartPie), Label: "Visualize Pie Charts"},
	}
}
