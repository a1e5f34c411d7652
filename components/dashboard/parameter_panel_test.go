package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCluster(t *testing.T, results []FormattedCluster, key string) map[string]FormattedField {
	t.Helper()
	for _, c := range results {
		if c.Key == key {
			fields := map[string]FormattedField{}
			for _, f := range c.Fields {
				fields[f.Name] = f
			}
			return fields
		}
	}
	t.Fatalf("cluster %s not found", key)
	return nil
}

func TestClusterParameterScenario(t *testing.T) {
	repo := &stubCalculations{metrics: sampleClusters()}
	panel := NewClusterParameterPanel(ClusterParameterOptions{Repository: repo})
	assert.Equal(t, "2009", panel.Selection().Year)

	panel.SetCluster("1")
	panel.SetFunction("avg")
	view, err := panel.Calculate(context.Background())
	require.NoError(t, err)

	require.Len(t, repo.queries, 1)
	assert.Equal(t, CalculationQuery{K: 3, Cluster: "1", Year: "2009", Function: "avg"}, repo.queries[0])
	assert.Equal(t, StateSuccess, view.State)
	assert.Equal(t, "Fetch Results", view.ButtonLabel)
	require.Len(t, view.Results, 3)

	fields := findCluster(t, view.Results, "1")
	assert.Equal(t, "500.13 JPY", fields[FieldMonetary].Value)
	assert.Equal(t, "13 days", fields[FieldRecency].Value)
	dist := fields[FieldGenderDistribution].Distribution
	require.Len(t, dist, 2)
	assert.Equal(t, "Male: 60%", dist[0].Text)
	assert.Equal(t, "Female: 40%", dist[1].Text)
}

func TestClusterParameterMissingSelectionPrompts(t *testing.T) {
	repo := &stubCalculations{metrics: sampleClusters()}
	panel := NewClusterParameterPanel(ClusterParameterOptions{Repository: repo})
	panel.SetCluster("1")

	view, err := panel.Calculate(context.Background())

	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, repo.queries)
	require.NotNil(t, view.Error)
	assert.True(t, view.Error.Prompt())
	assert.Equal(t, MsgMissingParameters, view.Error.Message)
	assert.Empty(t, view.Results)
}

func TestClusterParameterRejectsUnknownFunction(t *testing.T) {
	repo := &stubCalculations{metrics: sampleClusters()}
	panel := NewClusterParameterPanel(ClusterParameterOptions{Repository: repo})
	panel.Apply(ParameterSelection{Cluster: "1", Function: "mode"})

	_, err := panel.Calculate(context.Background())

	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, repo.queries)
	assert.Equal(t, "2009", panel.Selection().Year, "empty year keeps the default")
}

func TestClusterParameterBackendErrorIsNotice(t *testing.T) {
	repo := &stubCalculations{err: NewFormatError(MsgInvalidFormat, errors.New("unexpected body"))}
	panel := NewClusterParameterPanel(ClusterParameterOptions{Repository: repo})
	panel.Apply(ParameterSelection{Cluster: "0", Year: "2009", Function: "sum"})

	view, err := panel.Calculate(context.Background())

	assert.ErrorIs(t, err, ErrFormat)
	require.NotNil(t, view.Error)
	assert.True(t, view.Error.Notice())
	assert.Equal(t, MsgInvalidFormat, view.Error.Message)
	assert.Empty(t, view.Results)
}

func TestClusterParameterCustomClustersAndYears(t *testing.T) {
	repo := &stubCalculations{metrics: ClusterMetrics{}}
	panel := NewClusterParameterPanel(ClusterParameterOptions{
		Repository: repo,
		K:          5,
		Years:      []string{"2010", "2011"},
	})
	assert.Equal(t, "2010", panel.Selection().Year)

	panel.Apply(ParameterSelection{Cluster: "4", Year: "2011", Function: "median"})
	view, err := panel.Calculate(context.Background())
	require.NoError(t, err)
	assert.Len(t, view.Clusters, 5)
	assert.Equal(t, 5, repo.queries[0].K)
	assert.Empty(t, view.Results)
}
