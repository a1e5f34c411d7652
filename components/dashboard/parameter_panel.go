package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var errMissingCalculationRepository = errors.New("dashboard: cluster calculation repository not configured")

// ClusterParameterOptions configures a ClusterParameterPanel.
type ClusterParameterOptions struct {
	PanelConfig
	Repository ClusterCalculationRepository
	Validator  SelectionValidator
	Formatter  *Formatter
	// K is the number of clusters requested from the backend.
	K     int
	Years []string
	// Severity applies to fetch failures. Missing selections always prompt.
	Severity Severity
}

// ParameterSelection is the cluster, year and function chosen in the form.
type ParameterSelection struct {
	Cluster  string `json:"cluster"`
	Year     string `json:"year"`
	Function string `json:"function"`
}

func (s ParameterSelection) toMap() map[string]any {
	return map[string]any{
		"cluster":  s.Cluster,
		"year":     s.Year,
		"function": s.Function,
	}
}

// ClusterParameterPanel calculates aggregated cluster metrics for one
// cluster, year and aggregation function.
type ClusterParameterPanel struct {
	repo      ClusterCalculationRepository
	validator SelectionValidator
	formatter *Formatter
	k         int
	years     []string
	policy    errorPolicy
	remote    *Remote[ClusterMetrics]

	mu        sync.Mutex
	selection ParameterSelection
}

// NewClusterParameterPanel builds an idle panel with the default year selected.
func NewClusterParameterPanel(opts ClusterParameterOptions) *ClusterParameterPanel {
	k := opts.K
	if k <= 0 {
		k = DefaultClusterCount
	}
	years := opts.Years
	if len(years) == 0 {
		years = []string{DefaultYear}
	}
	formatter := opts.Formatter
	if formatter == nil {
		formatter = NewFormatter("")
	}
	validator := opts.Validator
	if validator == nil {
		validator = NewJSONSchemaValidator()
	}
	return &ClusterParameterPanel{
		repo:      opts.Repository,
		validator: validator,
		formatter: formatter,
		k:         k,
		years:     years,
		policy: errorPolicy{
			panel:      PanelClusterParameters,
			validation: SeverityPrompt,
			fetch:      ParseSeverity(string(opts.Severity), SeverityNotice),
			telemetry:  normalizeTelemetry(opts.Telemetry),
		},
		remote:    NewRemote[ClusterMetrics](PanelClusterParameters, opts.remoteOptions()...),
		selection: ParameterSelection{Year: defaultYear(years)},
	}
}

func defaultYear(years []string) string {
	for _, y := range years {
		if y == DefaultYear {
			return y
		}
	}
	return years[0]
}

// SetCluster selects the cluster id.
func (p *ClusterParameterPanel) SetCluster(cluster string) {
	p.mu.Lock()
	p.selection.Cluster = strings.TrimSpace(cluster)
	p.mu.Unlock()
}

// SetYear selects the year.
func (p *ClusterParameterPanel) SetYear(year string) {
	p.mu.Lock()
	p.selection.Year = strings.TrimSpace(year)
	p.mu.Unlock()
}

// SetFunction selects the aggregation function.
func (p *ClusterParameterPanel) SetFunction(function string) {
	p.mu.Lock()
	p.selection.Function = strings.TrimSpace(function)
	p.mu.Unlock()
}

// Apply replaces the whole selection. An empty year keeps the current one.
func (p *ClusterParameterPanel) Apply(selection ParameterSelection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selection.Cluster = strings.TrimSpace(selection.Cluster)
	p.selection.Function = strings.TrimSpace(selection.Function)
	if year := strings.TrimSpace(selection.Year); year != "" {
		p.selection.Year = year
	}
}

// Selection returns the current form values.
func (p *ClusterParameterPanel) Selection() ParameterSelection {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selection
}

// Calculate fetches metrics for the current selection. A missing cluster,
// year or function fails with a prompt and issues no request.
func (p *ClusterParameterPanel) Calculate(ctx context.Context) (ClusterParameterView, error) {
	sel := p.Selection()
	if sel.Cluster == "" || sel.Year == "" || sel.Function == "" {
		return p.fail(ctx, NewValidationError(MsgMissingParameters))
	}
	if err := p.validator.Validate(ParameterSelectionSchema(p.k, p.years), sel.toMap()); err != nil {
		return p.fail(ctx, err)
	}
	if p.repo == nil {
		return p.fail(ctx, errMissingCalculationRepository)
	}
	query := CalculationQuery{
		K:        p.k,
		Cluster:  sel.Cluster,
		Year:     sel.Year,
		Function: sel.Function,
	}
	snap, _ := p.remote.Do(ctx, func(ctx context.Context) (ClusterMetrics, error) {
		metrics, err := p.repo.CalculateClusters(ctx, query)
		return metrics.Clone(), err
	})
	if snap.Err != nil {
		p.policy.report(ctx, snap.Err)
	}
	return p.View(), snap.Err
}

func (p *ClusterParameterPanel) fail(ctx context.Context, err error) (ClusterParameterView, error) {
	p.remote.Fail(ctx, err)
	p.policy.report(ctx, err)
	return p.View(), err
}

// Snapshot exposes the raw fetch state.
func (p *ClusterParameterPanel) Snapshot() Snapshot[ClusterMetrics] {
	return p.remote.Snapshot()
}

// Close abandons any request in flight.
func (p *ClusterParameterPanel) Close() {
	p.remote.Close()
}

// ClusterParameterView is the render model of the parameter panel.
type ClusterParameterView struct {
	Panel       string             `json:"panel"`
	State       FetchState         `json:"state"`
	Busy        bool               `json:"busy"`
	ButtonLabel string             `json:"button_label"`
	Selection   ParameterSelection `json:"selection"`
	Clusters    []Option           `json:"clusters"`
	Years       []Option           `json:"years"`
	Functions   []Option           `json:"functions"`
	Results     []FormattedCluster `json:"results"`
	Error       *ErrorSurface      `json:"error,omitempty"`
}

// View renders the form and, once loaded, one card per cluster.
func (p *ClusterParameterPanel) View() ClusterParameterView {
	snap := p.remote.Snapshot()
	view := ClusterParameterView{
		Panel:       PanelClusterParameters,
		State:       snap.State,
		Busy:        snap.Busy(),
		ButtonLabel: "Fetch Results",
		Selection:   p.Selection(),
		Clusters:    ClusterOptions(p.k),
		Years:       YearOptions(p.years),
		Functions:   AggregationOptions(),
		Results:     []FormattedCluster{},
		Error:       p.policy.surface(snap.Err),
	}
	if view.Busy {
		view.ButtonLabel = "Loading..."
	}
	if snap.State == StateSuccess {
		view.Results = p.formatter.FormatClusters(snap.Data)
	}
	return view
}
