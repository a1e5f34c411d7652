package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/goliatone/go-rfm-dashboard/components/dashboard"
)

type stubService struct {
	lookups    []dashboard.LookupRequest
	clears     []string
	calculates []dashboard.CalculateRequest
	visualizes []dashboard.VisualizeRequest
	closes     []string
	err        error
}

func (s *stubService) LookupCustomer(_ context.Context, req dashboard.LookupRequest) (dashboard.CustomerLookupView, error) {
	s.lookups = append(s.lookups, req)
	return dashboard.CustomerLookupView{State: dashboard.StateSuccess}, s.err
}

func (s *stubService) ClearLookup(_ context.Context, session string) (dashboard.CustomerLookupView, error) {
	s.clears = append(s.clears, session)
	return dashboard.CustomerLookupView{}, s.err
}

func (s *stubService) CalculateClusters(_ context.Context, req dashboard.CalculateRequest) (dashboard.ClusterParameterView, error) {
	s.calculates = append(s.calculates, req)
	return dashboard.ClusterParameterView{}, s.err
}

func (s *stubService) VisualizeClusters(_ context.Context, req dashboard.VisualizeRequest) (dashboard.ClusterVisualizationView, error) {
	s.visualizes = append(s.visualizes, req)
	return dashboard.ClusterVisualizationView{ChartType: dashboard.ChartBar}, s.err
}

func (s *stubService) CloseSession(_ context.Context, session string) error {
	s.closes = append(s.closes, session)
	return s.err
}

type stubTelemetry struct {
	events []string
}

func (s *stubTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	s.events = append(s.events, event)
}

func TestLookupCustomerCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewLookupCustomerCommand(service, telemetry)

	err := cmd.Execute(context.Background(), dashboard.LookupRequest{Session: "s1", Code: "6000007393575"})
	require.NoError(t, err)
	require.Len(t, service.lookups, 1)
	assert.Equal(t, "6000007393575", service.lookups[0].Code)
	assert.Equal(t, []string{"dashboard.customer.lookup"}, telemetry.events)
}

func TestLookupCustomerCommandReturnsPanelError(t *testing.T) {
	service := &stubService{err: dashboard.NewValidationError(dashboard.MsgInvalidCustomerCode)}
	telemetry := &stubTelemetry{}
	cmd := NewLookupCustomerCommand(service, telemetry)

	err := cmd.Execute(context.Background(), dashboard.LookupRequest{Session: "s1"})
	assert.ErrorIs(t, err, dashboard.ErrValidation)
	assert.Len(t, telemetry.events, 1, "failed lookups are still recorded")
}

func TestClearLookupCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewClearLookupCommand(service, nil)
	require.NoError(t, cmd.Execute(context.Background(), ClearLookupInput{Session: "s1"}))
	assert.Equal(t, []string{"s1"}, service.clears)
}

func TestCalculateClustersCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewCalculateClustersCommand(service, nil)
	req := dashboard.CalculateRequest{
		Session:            "s1",
		ParameterSelection: dashboard.ParameterSelection{Cluster: "1", Year: "2009", Function: "avg"},
	}
	require.NoError(t, cmd.Execute(context.Background(), req))
	require.Len(t, service.calculates, 1)
	assert.Equal(t, req, service.calculates[0])
}

func TestVisualizeClustersCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewVisualizeClustersCommand(service, telemetry)
	chart := "bar"
	require.NoError(t, cmd.Execute(context.Background(), dashboard.VisualizeRequest{Session: "s1", ChartType: &chart}))
	require.Len(t, service.visualizes, 1)
	assert.Equal(t, "bar", *service.visualizes[0].ChartType)
	assert.Equal(t, []string{"dashboard.clusters.visualize"}, telemetry.events)
}

func TestCloseSessionCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewCloseSessionCommand(service, nil)
	require.NoError(t, cmd.Execute(context.Background(), CloseSessionInput{Session: "s1"}))
	assert.Equal(t, []string{"s1"}, service.closes)

	service.err = dashboard.ErrSessionNotFound
	err := cmd.Execute(context.Background(), CloseSessionInput{Session: "gone"})
	assert.True(t, errors.Is(err, dashboard.ErrSessionNotFound))
}

func TestCommandsRequireService(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, NewLookupCustomerCommand(nil, nil).Execute(ctx, dashboard.LookupRequest{}))
	assert.Error(t, NewClearLookupCommand(nil, nil).Execute(ctx, ClearLookupInput{}))
	assert.Error(t, NewCalculateClustersCommand(nil, nil).Execute(ctx, dashboard.CalculateRequest{}))
	assert.Error(t, NewVisualizeClustersCommand(nil, nil).Execute(ctx, dashboard.VisualizeRequest{}))
	assert.Error(t, NewCloseSessionCommand(nil, nil).Execute(ctx, CloseSessionInput{}))
}
