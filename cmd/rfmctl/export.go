package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ettle/strcase"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/goliatone/go-rfm-dashboard/components/dashboard"
)

// exportChart writes series to out. A directory target gets a generated
// .html name; otherwise the extension picks the format.
func exportChart(ctx context.Context, renderer dashboard.ChartHTMLRenderer, out string, sel dashboard.VisualizationSelection, chartType dashboard.ChartType, series dashboard.ChartSeries) (string, error) {
	if series.Len() == 0 {
		return "", fmt.Errorf("rfmctl: nothing to export for %s (%s)", sel.Metric, sel.Aggregation)
	}
	path := out
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		path = filepath.Join(out, chartFileName(sel, chartType)+".html")
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".png" && ext != ".html" {
		return "", fmt.Errorf("rfmctl: unsupported export format %q (use .html or .png)", ext)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("rfmctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return "", fmt.Errorf("rfmctl: create %s: %w", path, err)
	}
	defer file.Close()

	title := dashboard.ChartTitle(sel, chartType)
	if ext == ".png" {
		err = renderPNG(file, title, chartType, series)
	} else {
		var html string
		html, err = renderer.Render(ctx, chartType, title, series)
		if err == nil {
			_, err = io.WriteString(file, html)
		}
	}
	if err != nil {
		return "", fmt.Errorf("rfmctl: export %s: %w", path, err)
	}
	return path, nil
}

// chartFileName is e.g. cluster_comparison_monetary_avg_bar.
func chartFileName(sel dashboard.VisualizationSelection, chartType dashboard.ChartType) string {
	return strcase.ToSnake(fmt.Sprintf("cluster comparison %s %s %s", sel.Metric, sel.Aggregation, chartType))
}

func renderPNG(w io.Writer, title string, chartType dashboard.ChartType, series dashboard.ChartSeries) error {
	values := make([]chart.Value, series.Len())
	for i, label := range series.Labels {
		values[i] = chart.Value{Label: label, Value: series.Values[i]}
	}
	if chartType == dashboard.ChartPie {
		pie := chart.PieChart{
			Title:  title,
			Width:  640,
			Height: 640,
			Values: values,
		}
		return pie.Render(chart.PNG, w)
	}
	bar := chart.BarChart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		Width:      800,
		Height:     480,
		BarWidth:   80,
		Bars:       values,
	}
	return bar.Render(chart.PNG, w)
}
