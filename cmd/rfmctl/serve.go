package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-rfm-dashboard/components/dashboard"
	"github.com/goliatone/go-rfm-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-rfm-dashboard/components/dashboard/gorouter"
	"github.com/goliatone/go-rfm-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-rfm-dashboard/components/dashboard/queries"
	"github.com/goliatone/go-rfm-dashboard/pkg/logger"
)

const janitorInterval = time.Minute

type serveCmd struct {
	Addr        string `help:"Dashboard listen address (overrides addr)."`
	MetricsAddr string `name:"metrics-addr" help:"Ops listener for /metrics and the JSON API (overrides metrics_addr)."`
}

func (c *serveCmd) Run(ctx context.Context, root *cli) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}
	if c.MetricsAddr != "" {
		cfg.MetricsAddr = c.MetricsAddr
	}
	a, err := newApp(ctx, cfg, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := newServer(a, promhttp.Handler())
	if err != nil {
		return err
	}
	return srv.run(ctx)
}

// server bundles the fiber dashboard, the net/http ops listener and the
// session janitor.
type server struct {
	app      *app
	hook     *dashboard.BroadcastHook
	service  *dashboard.Service
	api      *httpapi.Handlers
	health   *queries.HealthQuery
	http     router.Server[*fiber.App]
	ops      *http.Server
	interval time.Duration
}

func newServer(a *app, metricsHandler http.Handler) (*server, error) {
	hook := dashboard.NewBroadcastHook()
	service := dashboard.NewService(dashboard.Options{
		Page:       a.pageOptions(hook),
		SessionTTL: a.cfg.SessionTTL(),
		Telemetry:  a.telemetry,
	})
	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return nil, err
	}
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service:  service,
		Renderer: renderer,
		BasePath: a.cfg.BasePath,
	})
	api := &httpapi.Handlers{
		Lookup:    commands.NewLookupCustomerCommand(service, a.telemetry),
		Clear:     commands.NewClearLookupCommand(service, a.telemetry),
		Calculate: commands.NewCalculateClustersCommand(service, a.telemetry),
		Visualize: commands.NewVisualizeClustersCommand(service, a.telemetry),
		Close:     commands.NewCloseSessionCommand(service, a.telemetry),
		Sessions:  service,
		State:     queries.NewPageStateQuery(service),
	}

	fiberServer := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config{
		Router:     fiberServer.Router(),
		Controller: controller,
		API:        api,
		Broadcast:  hook,
		BasePath:   a.cfg.BasePath,
	}); err != nil {
		return nil, fmt.Errorf("rfmctl: register routes: %w", err)
	}

	s := &server{
		app:      a,
		hook:     hook,
		service:  service,
		api:      api,
		health:   queries.NewHealthQuery(service.Sessions()),
		http:     fiberServer,
		interval: janitorInterval,
	}
	if a.cfg.MetricsAddr != "" {
		s.ops = &http.Server{
			Addr:              a.cfg.MetricsAddr,
			Handler:           s.opsMux(metricsHandler),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return s, nil
}

// opsMux serves metrics, health, the JSON API and the event streams.
func (s *server) opsMux(metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		health, err := s.health.Query(r.Context(), queries.HealthInput{})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(health)
	})
	s.api.Mount(mux, "/api")
	mux.HandleFunc("GET /api/events", s.hook.ServeSSE)
	mux.HandleFunc("GET /api/ws", s.hook.ServeWebSocket)
	return mux
}

func (s *server) run(ctx context.Context) error {
	log := s.app.log
	errs := make(chan error, 2)

	go func() {
		log.Info(ctx, "dashboard listening",
			logger.String("addr", s.app.cfg.Addr),
			logger.String("url", "http://localhost"+s.app.cfg.Addr+s.app.cfg.BasePath+"/dashboard"))
		errs <- s.http.Serve(s.app.cfg.Addr)
	}()
	if s.ops != nil {
		go func() {
			log.Info(ctx, "ops listening", logger.String("addr", s.ops.Addr))
			if err := s.ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs <- err
			}
		}()
	}
	go s.janitor(ctx)

	var err error
	select {
	case <-ctx.Done():
		log.Info(ctx, "shutting down")
	case err = <-errs:
		log.Error(ctx, "server stopped", logger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if s.ops != nil {
		_ = s.ops.Shutdown(shutdownCtx)
	}
	_ = s.http.Shutdown(shutdownCtx)
	return err
}

// janitor expires idle sessions and stale in-memory charts.
func (s *server) janitor(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *server) sweep(ctx context.Context) {
	sessions := s.service.Sessions().Sweep(ctx)
	charts := s.app.memCache.Sweep(ctx)
	if sessions > 0 || charts > 0 {
		s.app.log.Debug(ctx, "janitor sweep", logger.Int("sessions", sessions), logger.Int("charts", charts))
	}
}
