package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var errMissingMetricsRepository = errors.New("dashboard: cluster metrics repository not configured")

// ChartHTMLRenderer renders a series into embeddable chart markup.
type ChartHTMLRenderer interface {
	Render(ctx context.Context, chartType ChartType, title string, series ChartSeries) (string, error)
}

// ClusterVisualizationOptions configures a ClusterVisualizationPanel.
type ClusterVisualizationOptions struct {
	PanelConfig
	Repository ClusterMetricsRepository
	Renderer   ChartHTMLRenderer
	Validator  SelectionValidator
	K          int
	// Severity applies to fetch failures.
	Severity Severity
}

// VisualizationSelection is the metric and aggregation being compared.
type VisualizationSelection struct {
	Metric      string `json:"metric"`
	Aggregation string `json:"aggregation"`
}

func (s VisualizationSelection) complete() bool {
	return s.Metric != "" && s.Aggregation != ""
}

// comparison is what one successful fetch produced; the series is derived
// once so both chart types plot the same points.
type comparison struct {
	Selection VisualizationSelection
	Metrics   ClusterMetrics
	Series    ChartSeries
}

// ClusterVisualizationPanel compares one metric across clusters as a bar or
// pie chart.
type ClusterVisualizationPanel struct {
	repo      ClusterMetricsRepository
	renderer  ChartHTMLRenderer
	validator SelectionValidator
	k         int
	policy    errorPolicy
	telemetry Telemetry
	remote    *Remote[comparison]

	mu        sync.Mutex
	selection VisualizationSelection
	chartType ChartType
	mounted   bool
}

// NewClusterVisualizationPanel builds a panel preselecting the default
// metric and aggregation with no chart shown.
func NewClusterVisualizationPanel(opts ClusterVisualizationOptions) *ClusterVisualizationPanel {
	k := opts.K
	if k <= 0 {
		k = DefaultClusterCount
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = NewChartRenderer(WithChartTelemetry(opts.Telemetry))
	}
	validator := opts.Validator
	if validator == nil {
		validator = NewJSONSchemaValidator()
	}
	telemetry := normalizeTelemetry(opts.Telemetry)
	return &ClusterVisualizationPanel{
		repo:      opts.Repository,
		renderer:  renderer,
		validator: validator,
		k:         k,
		policy: errorPolicy{
			panel:      PanelClusterVisualization,
			validation: SeverityInline,
			fetch:      ParseSeverity(string(opts.Severity), SeverityNotice),
			telemetry:  telemetry,
		},
		telemetry: telemetry,
		remote:    NewRemote[comparison](PanelClusterVisualization, opts.remoteOptions()...),
		selection: VisualizationSelection{Metric: DefaultMetric, Aggregation: DefaultAggregation},
	}
}

// Mount performs the initial fetch once. Later calls are no-ops.
func (p *ClusterVisualizationPanel) Mount(ctx context.Context) error {
	p.mu.Lock()
	if p.mounted {
		p.mu.Unlock()
		return nil
	}
	p.mounted = true
	p.mu.Unlock()
	return p.Refresh(ctx)
}

// SetMetric changes the metric, fetching only when the value changed.
func (p *ClusterVisualizationPanel) SetMetric(ctx context.Context, metric string) error {
	sel := p.Selection()
	sel.Metric = metric
	return p.Select(ctx, sel)
}

// SetAggregation changes the aggregation, fetching only when the value changed.
func (p *ClusterVisualizationPanel) SetAggregation(ctx context.Context, aggregation string) error {
	sel := p.Selection()
	sel.Aggregation = aggregation
	return p.Select(ctx, sel)
}

// Select applies both values and issues at most one fetch. Nothing is
// fetched when neither value changed or either one is empty.
func (p *ClusterVisualizationPanel) Select(ctx context.Context, sel VisualizationSelection) error {
	sel.Metric = strings.TrimSpace(sel.Metric)
	sel.Aggregation = strings.TrimSpace(sel.Aggregation)
	p.mu.Lock()
	changed := sel != p.selection
	p.selection = sel
	p.mounted = true
	p.mu.Unlock()
	if !changed {
		return nil
	}
	return p.Refresh(ctx)
}

// SetChartType switches the chart without refetching.
func (p *ClusterVisualizationPanel) SetChartType(chartType ChartType) {
	p.mu.Lock()
	p.chartType = chartType
	p.mu.Unlock()
}

// ChartType returns the active chart type.
func (p *ClusterVisualizationPanel) ChartType() ChartType {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chartType
}

// Selection returns the current metric and aggregation.
func (p *ClusterVisualizationPanel) Selection() VisualizationSelection {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selection
}

// Refresh fetches the current selection. Incomplete selections are skipped.
func (p *ClusterVisualizationPanel) Refresh(ctx context.Context) error {
	sel := p.Selection()
	if !sel.complete() {
		return nil
	}
	if err := p.validator.Validate(VisualizationSelectionSchema(), map[string]any{
		"metric":      sel.Metric,
		"aggregation": sel.Aggregation,
	}); err != nil {
		p.remote.Fail(ctx, err)
		p.policy.report(ctx, err)
		return err
	}
	if p.repo == nil {
		p.remote.Fail(ctx, errMissingMetricsRepository)
		return errMissingMetricsRepository
	}
	query := ClusterQuery{K: p.k, Metric: sel.Metric, Aggregation: sel.Aggregation}
	snap, _ := p.remote.Do(ctx, func(ctx context.Context) (comparison, error) {
		metrics, err := p.repo.FetchClusterMetrics(ctx, query)
		if err != nil {
			return comparison{}, err
		}
		return comparison{
			Selection: sel,
			Metrics:   metrics.Clone(),
			Series:    BuildChartSeries(metrics, sel.Metric, sel.Aggregation),
		}, nil
	})
	if snap.Err != nil {
		p.policy.report(ctx, snap.Err)
	}
	return snap.Err
}

// Close abandons any request in flight.
func (p *ClusterVisualizationPanel) Close() {
	p.remote.Close()
}

// ChartTitle builds the title shown above a chart.
func ChartTitle(sel VisualizationSelection, chartType ChartType) string {
	return fmt.Sprintf("Cluster Comparison (%s - %s) - %s", sel.Metric, sel.Aggregation, chartType.Title())
}

// ClusterVisualizationView is the render model of the visualization panel.
type ClusterVisualizationView struct {
	Panel        string                 `json:"panel"`
	State        FetchState             `json:"state"`
	Busy         bool                   `json:"busy"`
	Selection    VisualizationSelection `json:"selection"`
	ChartType    ChartType              `json:"chart_type"`
	Metrics      []Option               `json:"metrics"`
	Aggregations []Option               `json:"aggregations"`
	ChartTypes   []Option               `json:"chart_types"`
	Title        string                 `json:"title,omitempty"`
	Series       *ChartSeries           `json:"series,omitempty"`
	ChartHTML    string                 `json:"chart_html,omitempty"`
	Error        *ErrorSurface          `json:"error,omitempty"`
}

// View renders the panel. A chart is drawn only when a chart type is
// selected and the last fetch returned at least one cluster.
func (p *ClusterVisualizationPanel) View(ctx context.Context) ClusterVisualizationView {
	snap := p.remote.Snapshot()
	chartType := p.ChartType()
	view := ClusterVisualizationView{
		Panel:        PanelClusterVisualization,
		State:        snap.State,
		Busy:         snap.Busy(),
		Selection:    p.Selection(),
		ChartType:    chartType,
		Metrics:      MetricOptions(),
		Aggregations: AggregationOptions(),
		ChartTypes:   ChartTypeOptions(),
		Error:        p.policy.surface(snap.Err),
	}
	if snap.State != StateSuccess || snap.Data.Series.Len() == 0 {
		return view
	}
	series := snap.Data.Series
	view.Series = &series
	if chartType == ChartNone {
		return view
	}
	view.Title = ChartTitle(snap.Data.Selection, chartType)
	html, err := p.renderer.Render(ctx, chartType, view.Title, series)
	if err != nil {
		p.telemetry.Record(ctx, EventChartRender, map[string]any{
			"panel":      PanelClusterVisualization,
			"chart_type": string(chartType),
			"error":      err.Error(),
		})
		return view
	}
	view.ChartHTML = html
	return view
}
