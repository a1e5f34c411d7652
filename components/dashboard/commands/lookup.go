package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-rfm-dashboard/components/dashboard"
)

type lookupService interface {
	LookupCustomer(ctx context.Context, req dashboard.LookupRequest) (dashboard.CustomerLookupView, error)
	ClearLookup(ctx context.Context, session string) (dashboard.CustomerLookupView, error)
}

// LookupCustomerCommand runs a customer lookup on a session's page.
type LookupCustomerCommand struct {
	service   lookupService
	telemetry Telemetry
}

// NewLookupCustomerCommand creates the command.
func NewLookupCustomerCommand(service lookupService, telemetry Telemetry) *LookupCustomerCommand {
	return &LookupCustomerCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[dashboard.LookupRequest] = (*LookupCustomerCommand)(nil)

// Execute delegates to the dashboard service.
func (c *LookupCustomerCommand) Execute(ctx context.Context, msg dashboard.LookupRequest) error {
	if c.service == nil {
		return errors.New("lookup command requires service")
	}
	view, err := c.service.LookupCustomer(ctx, msg)
	c.telemetry.Record(ctx, "dashboard.customer.lookup", map[string]any{
		"session": msg.Session,
		"state":   view.State.String(),
		"found":   view.Customer != nil,
	})
	return err
}

// ClearLookupInput identifies the page whose lookup panel is reset.
type ClearLookupInput struct {
	Session string `json:"session"`
}

// ClearLookupCommand resets the lookup panel.
type ClearLookupCommand struct {
	service   lookupService
	telemetry Telemetry
}

// NewClearLookupCommand creates the command.
func NewClearLookupCommand(service lookupService, telemetry Telemetry) *ClearLookupCommand {
	return &ClearLookupCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ClearLookupInput] = (*ClearLookupCommand)(nil)

// Execute delegates to the dashboard service.
func (c *ClearLookupCommand) Execute(ctx context.Context, msg ClearLookupInput) error {
	if c.service == nil {
		return errors.New("clear command requires service")
	}
	if _, err := c.service.ClearLookup(ctx, msg.Session); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.customer.clear", map[string]any{
		"session": msg.Session,
	})
	return nil
}
