package dashboard

import (
	core "github.com/goliatone/go-rfm-dashboard/components/dashboard"
	"github.com/goliatone/go-rfm-dashboard/pkg/segments"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// PageOptions re-export for convenience.
type PageOptions = core.PageOptions

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// WithBackend fills the panel repositories of opts from a segments client.
// Repositories already set are kept.
func WithBackend(opts PageOptions, client segments.Client) PageOptions {
	if client == nil {
		return opts
	}
	if opts.Customers == nil {
		opts.Customers = segments.NewCustomerRepository(client)
	}
	if opts.Calculations == nil {
		opts.Calculations = segments.NewCalculationRepository(client)
	}
	if opts.Metrics == nil {
		opts.Metrics = segments.NewClusterMetricsRepository(client)
	}
	return opts
}

// NewDemoService builds a service backed by the bundled demo data.
func NewDemoService() *Service {
	return NewService(Options{
		Page: WithBackend(PageOptions{}, segments.NewMockClient(segments.DemoData())),
	})
}
