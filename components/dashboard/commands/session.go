package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

type sessionService interface {
	CloseSession(ctx context.Context, session string) error
}

// CloseSessionInput identifies the page to unmount.
type CloseSessionInput struct {
	Session string `json:"session"`
}

// CloseSessionCommand unmounts a page so late results are dropped.
type CloseSessionCommand struct {
	service   sessionService
	telemetry Telemetry
}

// NewCloseSessionCommand creates the command.
func NewCloseSessionCommand(service sessionService, telemetry Telemetry) *CloseSessionCommand {
	return &CloseSessionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CloseSessionInput] = (*CloseSessionCommand)(nil)

// Execute delegates to the dashboard service.
func (c *CloseSessionCommand) Execute(ctx context.Context, msg CloseSessionInput) error {
	if c.service == nil {
		return errors.New("close session command requires service")
	}
	if err := c.service.CloseSession(ctx, msg.Session); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.session.unmount", map[string]any{
		"session": msg.Session,
	})
	return nil
}
