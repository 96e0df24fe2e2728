package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/climate"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/config"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/cost"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/ingest"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/metrics"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/service"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/store"
)

func profileFromConfig(c config.Config) service.Profile {
	return service.Profile{
		Building:   c.Building,
		HeatLoss:   c.HeatLoss,
		Equipment:  c.Equipment,
		Thermostat: c.Thermostat,
		Rates:      c.Rates,
	}
}

func normalsSource(path string) climate.NormalsSource {
	if path == "" {
		return nil
	}
	return ingest.FileNormals{Path: path}
}

// newService opens the history store and wires the service. The caller
// closes the returned store.
func newService(ctx context.Context, c config.Config, m *metrics.Metrics) (*service.Service, store.History, error) {
	history, err := store.Open(ctx, c.History.Driver, c.History.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history: %w", err)
	}
	agg := cost.New()
	agg.BaseLoad = c.BaseLoad
	return service.New(agg, normalsSource(c.Climate.NormalsPath), history, m), history, nil
}

// withService runs fn against a service built from the loaded config.
func withService(cmd *cobra.Command, fn func(*service.Service) error) error {
	svc, history, err := newService(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = history.Close() }()

	err = fn(svc)
	if errors.Is(err, service.ErrNoNormals) {
		return fmt.Errorf("%w: set climate.normals_path or pass --normals", err)
	}
	return err
}

// addNormalsFlag lets a command override climate.normals_path.
func addNormalsFlag(cmd *cobra.Command) {
	cmd.Flags().String("normals", "", "monthly HDD/CDD normals (CSV or YAML)")
}

func applyNormalsFlag(cmd *cobra.Command) {
	if path, _ := cmd.Flags().GetString("normals"); path != "" {
		cfg.Climate.NormalsPath = config.ExpandPath(path)
	}
}
