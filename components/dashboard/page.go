package dashboard

import (
	"context"
	"time"
)

// PageOptions holds everything needed to assemble the three panels.
type PageOptions struct {
	Customers    CustomerRepository
	Calculations ClusterCalculationRepository
	Metrics      ClusterMetricsRepository
	Renderer     ChartHTMLRenderer
	Validator    SelectionValidator
	Formatter    *Formatter
	K            int
	Years        []string

	LookupSeverity        Severity
	ParameterSeverity     Severity
	VisualizationSeverity Severity

	Telemetry Telemetry
	Hook      RefreshHook
}

// Page is one operator's dashboard: the three panels sharing a session id.
type Page struct {
	ID            string
	CreatedAt     time.Time
	Lookup        *CustomerLookupPanel
	Parameters    *ClusterParameterPanel
	Visualization *ClusterVisualizationPanel
}

// NewPage assembles the panels for session id.
func NewPage(id string, opts PageOptions) *Page {
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	shared := PanelConfig{
		Session:   id,
		Telemetry: opts.Telemetry,
		Hook:      opts.Hook,
	}
	return &Page{
		ID:        id,
		CreatedAt: time.Now(),
		Lookup: NewCustomerLookupPanel(CustomerLookupOptions{
			PanelConfig: shared,
			Repository:  opts.Customers,
			Severity:    opts.LookupSeverity,
		}),
		Parameters: NewClusterParameterPanel(ClusterParameterOptions{
			PanelConfig: shared,
			Repository:  opts.Calculations,
			Validator:   opts.Validator,
			Formatter:   opts.Formatter,
			K:           opts.K,
			Years:       opts.Years,
			Severity:    opts.ParameterSeverity,
		}),
		Visualization: NewClusterVisualizationPanel(ClusterVisualizationOptions{
			PanelConfig: shared,
			Repository:  opts.Metrics,
			Renderer:    opts.Renderer,
			Validator:   opts.Validator,
			K:           opts.K,
			Severity:    opts.VisualizationSeverity,
		}),
	}
}

// Mount runs the initial visualization fetch.
func (p *Page) Mount(ctx context.Context) error {
	return p.Visualization.Mount(ctx)
}

// Close unmounts every panel; late results are discarded.
func (p *Page) Close() {
	p.Lookup.Close()
	p.Parameters.Close()
	p.Visualization.Close()
}

// PageView is the render model of the whole dashboard.
type PageView struct {
	Session       string                   `json:"session"`
	Lookup        CustomerLookupView       `json:"customer_lookup"`
	Parameters    ClusterParameterView     `json:"cluster_parameters"`
	Visualization ClusterVisualizationView `json:"cluster_visualization"`
}

// View renders all three panels.
func (p *Page) View(ctx context.Context) PageView {
	return PageView{
		Session:       p.ID,
		Lookup:        p.Lookup.View(),
		Parameters:    p.Parameters.View(),
		Visualization: p.Visualization.View(ctx),
	}
}
