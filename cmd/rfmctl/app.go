package main

import (
	"context"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-rfm-dashboard/components/dashboard"
	"github.com/goliatone/go-rfm-dashboard/pkg/config"
	rfmdashboard "github.com/goliatone/go-rfm-dashboard/pkg/dashboard"
	"github.com/goliatone/go-rfm-dashboard/pkg/logger"
	"github.com/goliatone/go-rfm-dashboard/pkg/metrics"
	"github.com/goliatone/go-rfm-dashboard/pkg/segments"
)

// app holds the dependencies shared by every subcommand.
type app struct {
	cfg       *config.Config
	log       logger.Logger
	telemetry dashboard.Telemetry
	metrics   *metrics.Manager
	backend   segments.Client
	cache     dashboard.RenderCache
	memCache  *dashboard.ChartCache
	redis     *redis.Client
	charts    *dashboard.ChartRenderer
	formatter *dashboard.Formatter
}

// loadConfig applies the global flags on top of the config sources.
func (c *cli) loadConfig() (*config.Config, error) {
	if c.Config != "" {
		if err := os.Setenv(config.EnvConfigFile, c.Config); err != nil {
			return nil, err
		}
	}
	if c.BaseURL != "" {
		if err := os.Setenv(config.EnvPrefix+"BASE_URL", c.BaseURL); err != nil {
			return nil, err
		}
	}
	if c.Mock {
		if err := os.Setenv(config.EnvPrefix+"MOCK_BACKEND", "true"); err != nil {
			return nil, err
		}
	}
	return config.Load(c.EnvFile)
}

// newApp wires the backend, chart rendering and telemetry. registry is nil
// for one-shot commands, which skip Prometheus.
func newApp(ctx context.Context, cfg *config.Config, registry prometheus.Registerer) (*app, error) {
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return nil, err
	}
	if err := logger.Init(logger.Options{Writer: os.Stderr}); err != nil {
		return nil, err
	}
	a := &app{
		cfg:       cfg,
		log:       logger.Named("rfmctl"),
		formatter: dashboard.NewFormatter(cfg.Currency),
	}
	sinks := []dashboard.Telemetry{logger.NewTelemetry(logger.Named("dashboard"))}
	if registry != nil {
		a.metrics = metrics.NewManager(metrics.WithPrometheusRegistry(registry))
		sinks = append(sinks, a.metrics)
	}
	a.telemetry = dashboard.MultiTelemetry(sinks...)

	if cfg.MockBackend {
		a.backend = segments.NewMockClient(segments.DemoData())
		a.log.Info(ctx, "using demo backend data")
	} else {
		client, err := segments.NewHTTPClient(segments.HTTPConfig{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.RequestTimeout(),
		})
		if err != nil {
			return nil, err
		}
		a.backend = client
	}

	a.memCache = dashboard.NewChartCache(cfg.ChartCacheTTL())
	a.cache = a.memCache
	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.cache = dashboard.NewRedisChartCache(a.redis, cfg.ChartCacheTTL(),
			dashboard.WithRedisFallback(a.memCache),
			dashboard.WithRedisTelemetry(a.telemetry),
		)
		a.log.Info(ctx, "chart cache backed by redis", logger.String("addr", cfg.RedisAddr))
	}
	a.charts = dashboard.NewChartRenderer(
		dashboard.WithChartCache(a.cache),
		dashboard.WithChartTheme(cfg.ChartTheme),
		dashboard.WithChartAssetsHost(cfg.ChartAssetsHost),
		dashboard.WithChartTelemetry(a.telemetry),
	)
	return a, nil
}

// pageOptions feeds the backend into the three panels.
func (a *app) pageOptions(hook dashboard.RefreshHook) dashboard.PageOptions {
	severity := a.cfg.Severity()
	return rfmdashboard.WithBackend(dashboard.PageOptions{
		Renderer:              a.charts,
		Formatter:             a.formatter,
		K:                     a.cfg.Clusters,
		Years:                 a.cfg.OrderedYears(),
		LookupSeverity:        severity,
		ParameterSeverity:     severity,
		VisualizationSeverity: severity,
		Telemetry:             a.telemetry,
		Hook:                  hook,
	}, a.backend)
}

func (a *app) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// oneShot builds an app without metrics for the query subcommands.
func (c *cli) oneShot(ctx context.Context) (*app, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, nil)
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
