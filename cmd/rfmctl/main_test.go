package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-rfm-dashboard/components/dashboard"
	"github.com/goliatone/go-rfm-dashboard/pkg/config"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg := config.New()
	cfg.MockBackend = true
	cfg.LogLevel = "error"
	a, err := newApp(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestCLIGrammar(t *testing.T) {
	var root cli
	parser, err := kong.New(&root, kong.Name("rfmctl"))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"-o", "json", "clusters", "--metric", "Recency", "--chart", "pie", "--out", "chart.png"})
	require.NoError(t, err)
	assert.Equal(t, "json", root.Output)
	assert.Equal(t, "Recency", root.Clusters.Metric)
	assert.Equal(t, "avg", root.Clusters.Aggregation)
	assert.Equal(t, "pie", root.Clusters.Chart)

	_, err = parser.Parse([]string{"-o", "xml", "lookup", "--code", "1"})
	assert.Error(t, err)
}

func TestLoadConfigAppliesFlags(t *testing.T) {
	t.Setenv("RFM_CONFIG", "")
	t.Setenv("RFM_BASE_URL", "")
	t.Setenv("RFM_MOCK_BACKEND", "")
	root := cli{Mock: true, BaseURL: "http://backend:5000", EnvFile: filepath.Join(t.TempDir(), "none.env")}

	cfg, err := root.loadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.MockBackend)
	assert.Equal(t, "http://backend:5000", cfg.BaseURL)
}

func TestLookupText(t *testing.T) {
	a := newTestApp(t)
	var out bytes.Buffer
	cmd := lookupCmd{Code: " 6000007393575 "}
	require.NoError(t, cmd.run(context.Background(), a, "text", &out))

	text := out.String()
	assert.Contains(t, text, "Customer Code: 6000007393575")
	assert.Contains(t, text, "Gender: Female")
	assert.Contains(t, text, "Age: 34")
	assert.Contains(t, text, "Monetary: 1234.50")
}

func TestLookupBlankCode(t *testing.T) {
	a := newTestApp(t)
	cmd := lookupCmd{Code: "   "}
	err := cmd.run(context.Background(), a, "text", &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dashboard.ErrValidation))
}

func TestLookupUnknownCustomer(t *testing.T) {
	a := newTestApp(t)
	cmd := lookupCmd{Code: "42"}
	err := cmd.run(context.Background(), a, "text", &bytes.Buffer{})
	assert.True(t, errors.Is(err, dashboard.ErrNotFound))
}

func TestCalculateText(t *testing.T) {
	a := newTestApp(t)
	var out bytes.Buffer
	cmd := calculateCmd{Cluster: "1", Function: "avg"}
	require.NoError(t, cmd.run(context.Background(), a, "text", &out))

	text := out.String()
	assert.Contains(t, text, "Cluster 1")
	assert.Contains(t, text, "Monetary: 500.13 JPY")
	assert.Contains(t, text, "Recency: 13 days")
	assert.Contains(t, text, "Male: 60%")
	assert.Contains(t, text, "Female: 40%")
}

func TestCalculateJSON(t *testing.T) {
	a := newTestApp(t)
	var out bytes.Buffer
	cmd := calculateCmd{Cluster: "1", Year: "2010", Function: "sum"}
	require.NoError(t, cmd.run(context.Background(), a, "json", &out))

	var results []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Cluster 1", results[0]["title"])
}

func TestCalculateMissingFunction(t *testing.T) {
	a := newTestApp(t)
	cmd := calculateCmd{Cluster: "1"}
	err := cmd.run(context.Background(), a, "text", &bytes.Buffer{})
	assert.True(t, errors.Is(err, dashboard.ErrValidation))
}

func TestClustersYAML(t *testing.T) {
	a := newTestApp(t)
	var out bytes.Buffer
	cmd := clustersCmd{Metric: "Recency", Aggregation: "avg"}
	require.NoError(t, cmd.run(context.Background(), a, "yaml", &out))

	text := out.String()
	assert.Contains(t, text, "labels:")
	assert.Contains(t, text, "Cluster 0")
	assert.Contains(t, text, "Cluster 2")
}

func TestClustersDefaultSelectionFetches(t *testing.T) {
	a := newTestApp(t)
	var out bytes.Buffer
	cmd := clustersCmd{Metric: dashboard.DefaultMetric, Aggregation: dashboard.DefaultAggregation}
	require.NoError(t, cmd.run(context.Background(), a, "text", &out))
	assert.Contains(t, out.String(), "Cluster 1: 500.125")
}

func TestClustersMissingSelection(t *testing.T) {
	a := newTestApp(t)
	cmd := clustersCmd{Metric: "", Aggregation: "avg"}
	err := cmd.run(context.Background(), a, "text", &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, dashboard.MsgMissingSelection, dashboard.UserMessage(err))
}

func TestClustersExportPNG(t *testing.T) {
	a := newTestApp(t)
	path := filepath.Join(t.TempDir(), "charts", "monetary.png")
	var out bytes.Buffer
	cmd := clustersCmd{Metric: "Monetary", Aggregation: "avg", Chart: "pie", Out: path}
	require.NoError(t, cmd.run(context.Background(), a, "text", &out))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
	assert.Contains(t, out.String(), "Wrote "+path)
}

func TestClustersExportHTMLIntoDirectory(t *testing.T) {
	a := newTestApp(t)
	dir := t.TempDir()
	cmd := clustersCmd{Metric: "Recency", Aggregation: "avg", Out: dir}
	require.NoError(t, cmd.run(context.Background(), a, "text", &bytes.Buffer{}))

	data, err := os.ReadFile(filepath.Join(dir, "cluster_comparison_recency_avg_bar.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "echarts")
	assert.Contains(t, string(data), "Cluster 2")
}

func TestClustersExportRejectsUnknownExtension(t *testing.T) {
	a := newTestApp(t)
	path := filepath.Join(t.TempDir(), "chart.svg")
	cmd := clustersCmd{Metric: "Recency", Aggregation: "avg", Out: path}
	require.Error(t, cmd.run(context.Background(), a, "text", &bytes.Buffer{}))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestServerOpsMux(t *testing.T) {
	a := newTestApp(t)
	a.cfg.MetricsAddr = "127.0.0.1:0"
	srv, err := newServer(a, http.NotFoundHandler())
	require.NoError(t, err)
	require.NotNil(t, srv.ops)

	handler := srv.ops.Handler
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	var page map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	visualization := page["cluster_visualization"].(map[string]any)
	assert.Equal(t, "success", visualization["state"])

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.JSONEq(t, `{"status":"ok","sessions":1}`, rec.Body.String())

	srv.sweep(context.Background())
	assert.Equal(t, 1, srv.service.Sessions().Len())
}
