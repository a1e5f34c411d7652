package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-rfm-dashboard/components/dashboard"
)

type visualizeService interface {
	VisualizeClusters(ctx context.Context, req dashboard.VisualizeRequest) (dashboard.ClusterVisualizationView, error)
}

// VisualizeClustersCommand changes the visualization selection or chart type.
type VisualizeClustersCommand struct {
	service   visualizeService
	telemetry Telemetry
}

// NewVisualizeClustersCommand creates the command.
func NewVisualizeClustersCommand(service visualizeService, telemetry Telemetry) *VisualizeClustersCommand {
	return &VisualizeClustersCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[dashboard.VisualizeRequest] = (*VisualizeClustersCommand)(nil)

// Execute delegates to the dashboard service.
func (c *VisualizeClustersCommand) Execute(ctx context.Context, msg dashboard.VisualizeRequest) error {
	if c.service == nil {
		return errors.New("visualize command requires service")
	}
	view, err := c.service.VisualizeClusters(ctx, msg)
	c.telemetry.Record(ctx, "dashboard.clusters.visualize", map[string]any{
		"session":     msg.Session,
		"metric":      view.Selection.Metric,
		"aggregation": view.Selection.Aggregation,
		"chart_type":  string(view.ChartType),
	})
	return err
}
