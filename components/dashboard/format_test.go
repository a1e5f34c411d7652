package dashboard

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFixed(t *testing.T) {
	cases := []struct {
		value  float64
		digits int
		want   string
	}{
		{1234.5, 2, "1234.50"},
		{500.125, 2, "500.13"},
		{12.6, 0, "13"},
		{12.4, 0, "12"},
		{-2.5, 0, "-3"},
		{0, 2, "0.00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ToFixed(tc.value, tc.digits), "ToFixed(%v, %d)", tc.value, tc.digits)
	}
}

func TestFormatClustersScenario(t *testing.T) {
	formatted := NewFormatter("JPY").FormatClusters(sampleClusters())

	require.Len(t, formatted, 3)
	cluster := formatted[1]
	assert.Equal(t, "1", cluster.Key)
	assert.Equal(t, "Cluster 1", cluster.Title)

	names := make([]string, len(cluster.Fields))
	values := map[string]FormattedField{}
	for i, f := range cluster.Fields {
		names[i] = f.Name
		values[f.Name] = f
	}
	assert.Equal(t, []string{FieldRecency, FieldFrequency, FieldMonetary, FieldGenderDistribution}, names)
	assert.Equal(t, "500.13 JPY", values[FieldMonetary].Value)
	assert.Equal(t, "13 days", values[FieldRecency].Value)
	assert.Equal(t, "7", values[FieldFrequency].Value)

	dist := values[FieldGenderDistribution].Distribution
	require.Len(t, dist, 2)
	assert.Equal(t, "Male: 60%", dist[0].Text)
	assert.Equal(t, "Female: 40%", dist[1].Text)
}

func TestFormatDistributionClampsAndLabels(t *testing.T) {
	dist := FormatDistribution(map[string]any{
		"0": math.NaN(),
		"1": 1.2,
		"2": -0.1,
		"9": 0.25,
	})

	require.Len(t, dist, 4)
	assert.Equal(t, "Unknown: 0%", dist[0].Text)
	assert.Equal(t, 100, dist[1].Percent)
	assert.Equal(t, 0, dist[2].Percent)
	assert.Equal(t, "Unknown", dist[3].Label)
	assert.Equal(t, 25, dist[3].Percent)
}

func TestFormatFieldPassesUnknownFieldsThrough(t *testing.T) {
	f := NewFormatter("")
	assert.Equal(t, "42", f.FormatField("Age", 42.0).Value)
	assert.Equal(t, "n/a JPY", f.FormatField(FieldMonetary, "n/a").Value)

	f.WithField("Age", MetricFormat{Decimals: 1, Suffix: " yrs"})
	assert.Equal(t, "42.0 yrs", f.FormatField("Age", 42.0).Value)
}

func TestFieldOrder(t *testing.T) {
	order := fieldOrder(MetricRecord{
		FieldGenderDistribution: map[string]any{},
		"Zeta":                  1.0,
		FieldMonetary:           1.0,
		"Age":                   1.0,
		FieldRecency:            1.0,
	})
	assert.Equal(t, []string{FieldRecency, FieldMonetary, "Age", "Zeta", FieldGenderDistribution}, order)
}

func TestSortClusterKeys(t *testing.T) {
	keys := []string{"10", "b", "2", "a", "1"}
	sortClusterKeys(keys)
	assert.Equal(t, []string{"1", "2", "10", "a", "b"}, keys)
}

func TestRawValue(t *testing.T) {
	assert.Equal(t, "34", RawValue(34.0))
	assert.Equal(t, "2010-12-01", RawValue("2010-12-01"))
	assert.Equal(t, "", RawValue(nil))
	assert.Equal(t, `{"a":1}`, RawValue(map[string]any{"a": 1}))
}
