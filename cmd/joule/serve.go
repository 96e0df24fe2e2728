package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/spf13/cobra"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/api"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/config"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/heatloss"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/ingest"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/metrics"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/service"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/simulator"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/ws"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and the live replay websocket",
		Long: `Starts the JSON API under /api, Prometheus metrics on /metrics and a
websocket on /ws that replays the forecast series (or a synthesized typical
year) through the heat pump model.`,
		RunE: runServe,
	}
	cmd.Flags().String("addr", "", "listen address (default server.addr)")
	cmd.Flags().Float64("speed", 0, "initial replay speed (default server.speed)")
	addNormalsFlag(cmd)
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	applyNormalsFlag(cmd)
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if speed, _ := cmd.Flags().GetFloat64("speed"); speed > 0 {
		cfg.Server.Speed = speed
	}

	m := metrics.New()
	svc, history, err := newService(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer func() { _ = history.Close() }()

	profile := profileFromConfig(cfg)
	rp, sourceRanges, err := newReplay(ctx, cfg, svc, profile, m)
	if err != nil {
		return err
	}

	router := api.NewServer(svc, profile, m).NewRouter()
	router.Handle("/ws", ws.NewHandler(rp.hub, rp.engine, sourceRanges))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handlers.LoggingHandler(os.Stdout, router),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	rp.engine.Pause()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	slog.Info("Stopping server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// replay is the engine behind /ws together with the hub it broadcasts to.
type replay struct {
	engine *simulator.Engine
	hub    *ws.Hub
}

// newReplay loads the forecast series, or synthesizes a typical year from
// the normals, into a replay engine.
func newReplay(ctx context.Context, c config.Config, svc *service.Service, p service.Profile, m *metrics.Metrics) (*replay, map[string]model.TimeRange, error) {
	hl, err := heatloss.Resolve(p.Building, p.HeatLoss)
	if err != nil {
		return nil, nil, fmt.Errorf("heat loss: %w", err)
	}

	series, err := replaySeries(ctx, c, svc)
	if err != nil {
		return nil, nil, err
	}

	hub := ws.NewHub()
	hub.OnDrop(m.WSDropped)
	engine := simulator.New(svc.Aggregator.Model, simulator.Config{
		Equipment:      p.Equipment,
		HeatLossFactor: hl.BTUPerHourPerF,
		Thermostat:     p.Thermostat,
		Rates:          p.Rates,
	}, m.WrapCallback(ws.NewBridge(hub)))
	if err := engine.Load(series); err != nil {
		return nil, nil, fmt.Errorf("replay series: %w", err)
	}
	engine.SetSpeed(c.Server.Speed)

	tr, _ := series.TimeRange()
	slog.Info("Replay loaded",
		"hours", len(series),
		"start", tr.Start.Format("2006-01-02"),
		"end", tr.End.Format("2006-01-02"))

	return &replay{engine: engine, hub: hub}, sourceRanges(series), nil
}

func replaySeries(ctx context.Context, c config.Config, svc *service.Service) (model.ClimateSeries, error) {
	if c.Climate.SeriesPath != "" {
		return ingest.FileSeries{Path: c.Climate.SeriesPath, Parser: ingest.NewSeriesParser()}.Series(ctx)
	}
	if svc.Normals == nil {
		return nil, fmt.Errorf("%w: set climate.series_path or climate.normals_path", service.ErrNoNormals)
	}
	normals, err := svc.Normals.Normals(ctx)
	if err != nil {
		return nil, err
	}
	return svc.Aggregator.Synth.SynthesizeYear(normals)
}

// sourceRanges offers the whole series as "all" plus one window per month.
func sourceRanges(series model.ClimateSeries) map[string]model.TimeRange {
	ranges := make(map[string]model.TimeRange)
	all, ok := series.TimeRange()
	if !ok {
		return ranges
	}
	ranges["all"] = all

	for _, s := range series {
		key := model.PeriodKey(s.Time.Year(), s.Time.Month())
		tr, seen := ranges[key]
		if !seen {
			tr.Start = s.Time
		}
		tr.End = s.Time
		ranges[key] = tr
	}
	return ranges
}
