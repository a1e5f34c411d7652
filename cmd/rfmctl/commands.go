package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goliatone/go-rfm-dashboard/components/dashboard"
	"github.com/goliatone/go-rfm-dashboard/pkg/logger"
	"github.com/goliatone/go-rfm-dashboard/pkg/segments"
)

type lookupCmd struct {
	Code string `required:"" help:"Customer code (e.g. 6000007393575)."`
}

func (c *lookupCmd) Run(ctx context.Context, root *cli) error {
	a, err := root.oneShot(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return c.run(ctx, a, root.Output, stdout)
}

func (c *lookupCmd) run(ctx context.Context, a *app, format string, w io.Writer) error {
	panel := dashboard.NewCustomerLookupPanel(dashboard.CustomerLookupOptions{
		PanelConfig: dashboard.PanelConfig{Session: "cli", Telemetry: a.telemetry},
		Repository:  segments.NewCustomerRepository(a.backend),
	})
	defer panel.Close()
	view, err := panel.SubmitLookup(ctx, c.Code)
	if err != nil {
		return fmt.Errorf("rfmctl: lookup: %w", err)
	}
	return writeOutput(w, format, view, func(w io.Writer) error {
		customer := view.Customer
		if customer == nil {
			_, err := fmt.Fprintln(w, "No transactions found.")
			return err
		}
		fmt.Fprintf(w, "Customer Code: %s\nGender: %s\nAge: %s\n", customer.Code, customer.GenderLabel, customer.Age)
		for _, tx := range customer.Transactions {
			fmt.Fprintf(w, "- Last Purchase Date: %s  Recency: %s  Monetary: %s  Frequency: %s\n",
				tx.LastPurchaseDate, tx.Recency, tx.Monetary, tx.Frequency)
		}
		return nil
	})
}

type calculateCmd struct {
	Cluster  string `required:"" help:"Cluster id."`
	Year     string `help:"Year (defaults to default_year)."`
	Function string `required:"" help:"Aggregation function (avg, sum, max, min, count)."`
}

func (c *calculateCmd) Run(ctx context.Context, root *cli) error {
	a, err := root.oneShot(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return c.run(ctx, a, root.Output, stdout)
}

func (c *calculateCmd) run(ctx context.Context, a *app, format string, w io.Writer) error {
	panel := dashboard.NewClusterParameterPanel(dashboard.ClusterParameterOptions{
		PanelConfig: dashboard.PanelConfig{Session: "cli", Telemetry: a.telemetry},
		Repository:  segments.NewCalculationRepository(a.backend),
		Formatter:   a.formatter,
		K:           a.cfg.Clusters,
		Years:       a.cfg.OrderedYears(),
	})
	defer panel.Close()
	panel.Apply(dashboard.ParameterSelection{Cluster: c.Cluster, Year: c.Year, Function: c.Function})
	view, err := panel.Calculate(ctx)
	if err != nil {
		return fmt.Errorf("rfmctl: calculate: %w", err)
	}
	return writeOutput(w, format, view.Results, func(w io.Writer) error {
		for _, cluster := range view.Results {
			fmt.Fprintln(w, cluster.Title)
			for _, field := range cluster.Fields {
				if len(field.Distribution) > 0 {
					fmt.Fprintf(w, "  %s:\n", field.Name)
					for _, entry := range field.Distribution {
						fmt.Fprintf(w, "    %s\n", entry.Text)
					}
					continue
				}
				fmt.Fprintf(w, "  %s: %s\n", field.Name, field.Value)
			}
		}
		return nil
	})
}

type clustersCmd struct {
	Metric      string `default:"Monetary" help:"Metric to compare (Recency, Frequency, Monetary, ...)."`
	Aggregation string `default:"avg" help:"Aggregation (avg, sum, max, min, count)."`
	Chart       string `help:"Chart type for --out (bar or pie, default bar)."`
	Out         string `type:"path" help:"Export the chart to a .html or .png file, or into a directory."`
}

func (c *clustersCmd) Run(ctx context.Context, root *cli) error {
	a, err := root.oneShot(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return c.run(ctx, a, root.Output, stdout)
}

func (c *clustersCmd) run(ctx context.Context, a *app, format string, w io.Writer) error {
	sel := dashboard.VisualizationSelection{Metric: trim(c.Metric), Aggregation: trim(c.Aggregation)}
	if sel.Metric == "" || sel.Aggregation == "" {
		return fmt.Errorf("rfmctl: clusters: %w", dashboard.NewValidationError(dashboard.MsgMissingSelection))
	}
	chartType, err := dashboard.ParseChartType(c.Chart)
	if err != nil {
		return fmt.Errorf("rfmctl: clusters: %w", err)
	}

	panel := dashboard.NewClusterVisualizationPanel(dashboard.ClusterVisualizationOptions{
		PanelConfig: dashboard.PanelConfig{Session: "cli", Telemetry: a.telemetry},
		Repository:  segments.NewClusterMetricsRepository(a.backend),
		Renderer:    a.charts,
		K:           a.cfg.Clusters,
	})
	defer panel.Close()
	if sel == panel.Selection() {
		err = panel.Mount(ctx)
	} else {
		err = panel.Select(ctx, sel)
	}
	if err != nil {
		return fmt.Errorf("rfmctl: clusters: %w", err)
	}

	view := panel.View(ctx)
	series := dashboard.ChartSeries{}
	if view.Series != nil {
		series = *view.Series
	}
	if c.Out != "" {
		if chartType == dashboard.ChartNone {
			chartType = dashboard.ChartBar
		}
		path, err := exportChart(ctx, a.charts, c.Out, sel, chartType, series)
		if err != nil {
			return err
		}
		a.log.Info(ctx, "chart exported", logger.String("path", path), logger.String("chart_type", string(chartType)))
		fmt.Fprintf(w, "✓ Wrote %s\n", path)
	}
	return writeOutput(w, format, series, func(w io.Writer) error {
		fmt.Fprintf(w, "Cluster Comparison (%s - %s)\n", sel.Metric, sel.Aggregation)
		for i, label := range series.Labels {
			fmt.Fprintf(w, "  %s: %s\n", label, dashboard.RawValue(series.Values[i]))
		}
		return nil
	})
}
