package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-rfm-dashboard/components/dashboard"
)

type calculateService interface {
	CalculateClusters(ctx context.Context, req dashboard.CalculateRequest) (dashboard.ClusterParameterView, error)
}

// CalculateClustersCommand fetches aggregated metrics for the parameter panel.
type CalculateClustersCommand struct {
	service   calculateService
	telemetry Telemetry
}

// NewCalculateClustersCommand creates the command.
func NewCalculateClustersCommand(service calculateService, telemetry Telemetry) *CalculateClustersCommand {
	return &CalculateClustersCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[dashboard.CalculateRequest] = (*CalculateClustersCommand)(nil)

// Execute delegates to the dashboard service.
func (c *CalculateClustersCommand) Execute(ctx context.Context, msg dashboard.CalculateRequest) error {
	if c.service == nil {
		return errors.New("calculate command requires service")
	}
	view, err := c.service.CalculateClusters(ctx, msg)
	c.telemetry.Record(ctx, "dashboard.clusters.calculate", map[string]any{
		"session":  msg.Session,
		"cluster":  msg.Cluster,
		"year":     msg.Year,
		"function": msg.Function,
		"clusters": len(view.Results),
	})
	return err
}
