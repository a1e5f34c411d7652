package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var errMissingCustomerRepository = errors.New("dashboard: customer repository not configured")

// CustomerLookupOptions configures a CustomerLookupPanel.
type CustomerLookupOptions struct {
	PanelConfig
	Repository CustomerRepository
	// Severity applies to fetch failures; validation failures are always inline.
	Severity Severity
}

// CustomerLookupPanel looks a customer up by code and lists their transactions.
type CustomerLookupPanel struct {
	repo   CustomerRepository
	policy errorPolicy
	remote *Remote[CustomerRecord]

	mu    sync.Mutex
	input string
}

// NewCustomerLookupPanel builds an idle lookup panel.
func NewCustomerLookupPanel(opts CustomerLookupOptions) *CustomerLookupPanel {
	telemetry := normalizeTelemetry(opts.Telemetry)
	return &CustomerLookupPanel{
		repo: opts.Repository,
		policy: errorPolicy{
			panel:      PanelCustomerLookup,
			validation: SeverityInline,
			fetch:      ParseSeverity(string(opts.Severity), SeverityInline),
			telemetry:  telemetry,
		},
		remote: NewRemote[CustomerRecord](PanelCustomerLookup, opts.remoteOptions()...),
	}
}

// SetInput stores the code typed by the operator.
func (p *CustomerLookupPanel) SetInput(code string) {
	p.mu.Lock()
	p.input = code
	p.mu.Unlock()
}

// Input returns the current code input.
func (p *CustomerLookupPanel) Input() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.input
}

// Submit looks up the current input.
func (p *CustomerLookupPanel) Submit(ctx context.Context) (CustomerLookupView, error) {
	return p.SubmitLookup(ctx, p.Input())
}

// SubmitLookup validates code and fetches the customer. Blank codes fail
// with a validation error without calling the backend.
func (p *CustomerLookupPanel) SubmitLookup(ctx context.Context, code string) (CustomerLookupView, error) {
	p.SetInput(code)
	code = strings.TrimSpace(code)
	if code == "" {
		err := NewValidationError(MsgInvalidCustomerCode)
		p.remote.Fail(ctx, err)
		p.policy.report(ctx, err)
		return p.View(), err
	}
	if p.repo == nil {
		p.remote.Fail(ctx, errMissingCustomerRepository)
		return p.View(), errMissingCustomerRepository
	}
	snap, _ := p.remote.Do(ctx, func(ctx context.Context) (CustomerRecord, error) {
		return p.repo.FetchCustomer(ctx, code)
	})
	if snap.Err != nil {
		p.policy.report(ctx, snap.Err)
	}
	return p.View(), snap.Err
}

// Clear resets input, result and error.
func (p *CustomerLookupPanel) Clear(ctx context.Context) CustomerLookupView {
	p.SetInput("")
	p.remote.Reset(ctx)
	return p.View()
}

// Snapshot exposes the raw fetch state.
func (p *CustomerLookupPanel) Snapshot() Snapshot[CustomerRecord] {
	return p.remote.Snapshot()
}

// Close abandons any request in flight.
func (p *CustomerLookupPanel) Close() {
	p.remote.Close()
}

// CustomerLookupView is the render model of the lookup panel.
type CustomerLookupView struct {
	Panel       string        `json:"panel"`
	State       FetchState    `json:"state"`
	Busy        bool          `json:"busy"`
	Input       string        `json:"input"`
	Placeholder string        `json:"placeholder"`
	Error       *ErrorSurface `json:"error,omitempty"`
	Customer    *CustomerView `json:"customer,omitempty"`
}

// CustomerView holds the demographics of the first row and every transaction.
type CustomerView struct {
	Code         string            `json:"code"`
	Gender       int               `json:"gender"`
	GenderLabel  string            `json:"gender_label"`
	Age          string            `json:"age"`
	Transactions []TransactionView `json:"transactions"`
}

// TransactionView is one transaction card.
type TransactionView struct {
	LastPurchaseDate string `json:"last_purchase_date"`
	Recency          string `json:"recency"`
	Monetary         string `json:"monetary"`
	Frequency        string `json:"frequency"`
}

// View renders the current state. Results only show once loading settles.
func (p *CustomerLookupPanel) View() CustomerLookupView {
	snap := p.remote.Snapshot()
	view := CustomerLookupView{
		Panel:       PanelCustomerLookup,
		State:       snap.State,
		Busy:        snap.Busy(),
		Input:       p.Input(),
		Placeholder: CustomerCodeHint,
		Error:       p.policy.surface(snap.Err),
	}
	if snap.State == StateSuccess && !snap.Data.Empty() {
		view.Customer = newCustomerView(snap.Data)
	}
	return view
}

func newCustomerView(record CustomerRecord) *CustomerView {
	out := &CustomerView{
		Code:         record.Code,
		Gender:       int(record.Gender),
		GenderLabel:  record.Gender.Label(),
		Age:          RawValue(record.Age),
		Transactions: make([]TransactionView, len(record.Transactions)),
	}
	for i, tx := range record.Transactions {
		out.Transactions[i] = TransactionView{
			LastPurchaseDate: tx.LastPurchaseDate,
			Recency:          RawValue(tx.Recency),
			Monetary:         ToFixed(tx.Monetary, 2),
			Frequency:        RawValue(tx.Frequency),
		}
	}
	return out
}
