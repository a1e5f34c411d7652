package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

var sharedChartCache = NewChartCache(5 * time.Minute)

// ChartType selects how the visualization panel draws its series.
type ChartType string

const (
	ChartNone ChartType = ""
	ChartBar  ChartType = "bar"
	ChartPie  ChartType = "pie"
)

// ParseChartType accepts "", "bar" and "pie" (case-insensitive).
func ParseChartType(value string) (ChartType, error) {
	switch ChartType(strings.ToLower(strings.TrimSpace(value))) {
	case ChartNone:
		return ChartNone, nil
	case ChartBar:
		return ChartBar, nil
	case ChartPie:
		return ChartPie, nil
	}
	return ChartNone, NewValidationError(fmt.Sprintf("Unsupported chart type %q.", value))
}

// Title returns the suffix used in chart titles.
func (t ChartType) Title() string {
	switch t {
	case ChartBar:
		return "Bar Chart"
	case ChartPie:
		return "Pie Chart"
	}
	return ""
}

// ChartSeries is the chart-ready projection of ClusterMetrics: parallel
// labels and values shared by the bar and pie views.
type ChartSeries struct {
	Name   string    `json:"name"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Len returns the number of points.
func (s ChartSeries) Len() int { return len(s.Labels) }

// BuildChartSeries derives one point per cluster from metric. Missing or
// non-numeric values plot as zero.
func BuildChartSeries(metrics ClusterMetrics, metric, aggregation string) ChartSeries {
	keys := metrics.Keys()
	series := ChartSeries{
		Name:   fmt.Sprintf("%s (%s)", metric, aggregation),
		Labels: make([]string, len(keys)),
		Values: make([]float64, len(keys)),
	}
	for i, key := range keys {
		series.Labels[i] = "Cluster " + key
		if value, ok := finiteNumber(metrics[key][metric]); ok {
			series.Values[i] = value
		}
	}
	return series
}

// ChartRenderer renders server-side go-echarts HTML for a ChartSeries.
type ChartRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
	telemetry  Telemetry
}

// ChartRendererOption customizes renderer behavior.
type ChartRendererOption func(*ChartRenderer)

// WithChartCache injects a render cache; nil disables caching.
func WithChartCache(cache RenderCache) ChartRendererOption {
	return func(p *ChartRenderer) {
		p.cache = cache
	}
}

// WithChartTheme sets the echarts theme (defaults to Westeros).
func WithChartTheme(theme string) ChartRendererOption {
	return func(p *ChartRenderer) {
		if theme != "" {
			p.theme = theme
		}
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) ChartRendererOption {
	return func(p *ChartRenderer) {
		p.assetsHost = host
	}
}

// WithChartTelemetry records render timings.
func WithChartTelemetry(t Telemetry) ChartRendererOption {
	return func(p *ChartRenderer) {
		p.telemetry = t
	}
}

// NewChartRenderer builds a renderer with the shared in-memory cache.
func NewChartRenderer(opts ...ChartRendererOption) *ChartRenderer {
	p := &ChartRenderer{
		cache: sharedChartCache,
		theme: types.ThemeWesteros,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.telemetry = normalizeTelemetry(p.telemetry)
	return p
}

// Render returns chart HTML for the series.
func (p *ChartRenderer) Render(ctx context.Context, chartType ChartType, title string, series ChartSeries) (string, error) {
	if series.Len() == 0 {
		return "", fmt.Errorf("dashboard: chart series is required")
	}
	renderFn := func() (string, error) {
		start := time.Now()
		html, err := p.render(chartType, title, series)
		p.telemetry.Record(ctx, EventChartRender, map[string]any{
			"chart_type":  string(chartType),
			"points":      series.Len(),
			"duration_ms": float64(time.Since(start)) / float64(time.Millisecond),
		})
		return html, err
	}
	if p.cache == nil {
		return renderFn()
	}
	key := fmt.Sprintf("%s:%s:%s", chartType, p.theme, configHash(map[string]any{
		"title":  title,
		"series": series,
		"assets": p.assetsHost,
	}))
	return p.cache.GetOrRender(key, renderFn)
}

func (p *ChartRenderer) render(chartType ChartType, title string, series ChartSeries) (string, error) {
	switch chartType {
	case ChartBar:
		return p.renderBarChart(title, series)
	case ChartPie:
		return p.renderPieChart(title, series)
	default:
		return "", fmt.Errorf("unsupported chart type: %q", chartType)
	}
}

func (p *ChartRenderer) renderBarChart(title string, series ChartSeries) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(p.globalChartOptions(title)...)
	bar.SetXAxis(series.Labels)
	bar.AddSeries(series.Name, toBarData(series, 99, 132))
	return renderChart(bar)
}

func (p *ChartRenderer) renderPieChart(title string, series ChartSeries) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(p.globalChartOptions(title)...)
	pie.AddSeries(series.Name, toPieData(series, 192, 192))
	return renderChart(pie)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (p *ChartRenderer) globalChartOptions(title string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  p.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if p.assetsHost != "" {
		initOpts.AssetsHost = p.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithToolboxOpts(opts.Toolbox{Show: opts.Bool(true)}),
	}
}

// seriesColor spreads the red channel across clusters, saturating at 255.
func seriesColor(index, green, blue int, alpha float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", min(index*80, 255), green, blue, alpha)
}

func toBarData(series ChartSeries, green, blue int) []opts.BarData {
	data := make([]opts.BarData, series.Len())
	for i := range series.Labels {
		data[i] = opts.BarData{
			Name:  series.Labels[i],
			Value: series.Values[i],
			ItemStyle: &opts.ItemStyle{
				Color:       seriesColor(i, green, blue, 0.6),
				BorderColor: seriesColor(i, green, blue, 1),
			},
		}
	}
	return data
}

func toPieData(series ChartSeries, green, blue int) []opts.PieData {
	data := make([]opts.PieData, series.Len())
	for i := range series.Labels {
		name := series.Labels[i]
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{
			Name:  name,
			Value: series.Values[i],
			ItemStyle: &opts.ItemStyle{
				Color:       seriesColor(i, green, blue, 0.6),
				BorderColor: seriesColor(i, green, blue, 1),
			},
		}
	}
	return data
}
