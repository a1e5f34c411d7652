package dashboard

import "context"

// ErrorSurface is the user-visible form of a panel failure.
type ErrorSurface struct {
	Severity Severity  `json:"severity"`
	Kind     ErrorKind `json:"kind"`
	Message  string    `json:"message"`
}

// Inline reports whether the error replaces the panel result.
func (s *ErrorSurface) Inline() bool { return s != nil && s.Severity == SeverityInline }

// Notice reports whether the error is a non-blocking notice.
func (s *ErrorSurface) Notice() bool { return s != nil && s.Severity == SeverityNotice }

// Prompt reports whether the client should show a blocking prompt.
func (s *ErrorSurface) Prompt() bool { return s != nil && s.Severity == SeverityPrompt }

// errorPolicy decides how validation and fetch failures surface.
type errorPolicy struct {
	panel      string
	validation Severity
	fetch      Severity
	telemetry  Telemetry
}

func (p errorPolicy) severityFor(err error) Severity {
	if KindOf(err) == KindValidation {
		return p.validation
	}
	return p.fetch
}

// surface returns nil for diagnostic-only failures.
func (p errorPolicy) surface(err error) *ErrorSurface {
	if err == nil {
		return nil
	}
	severity := p.severityFor(err)
	if severity == SeverityDiagnostic {
		return nil
	}
	return &ErrorSurface{
		Severity: severity,
		Kind:     KindOf(err),
		Message:  UserMessage(err),
	}
}

// report sends every failure to the diagnostic channel regardless of severity.
func (p errorPolicy) report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	p.telemetry.Record(ctx, EventPanelDiagnostic, map[string]any{
		"panel":      p.panel,
		"severity":   string(p.severityFor(err)),
		"error_kind": string(KindOf(err)),
		"error":      err.Error(),
	})
}

// PanelConfig carries the collaborators every panel shares.
type PanelConfig struct {
	Session   string
	Telemetry Telemetry
	Hook      RefreshHook
}

func (c PanelConfig) remoteOptions() []RemoteOption {
	return []RemoteOption{
		WithRemoteSession(c.Session),
		WithRemoteTelemetry(c.Telemetry),
		WithRemoteHook(c.Hook),
	}
}
