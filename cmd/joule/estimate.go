package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/cli"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/config"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/heatloss"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/ingest"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/service"
)

func heatLossCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "heatloss",
		Short: "Show the building heat-loss factor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			hl, err := heatloss.Resolve(cfg.Building, cfg.HeatLoss)
			if err != nil {
				return err
			}
			cli.RenderHeatLoss(cmd.OutOrStdout(), hl)
			return nil
		},
	}
}

func estimateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate heating and cooling costs",
	}
	cmd.AddCommand(estimateWeekCmd())
	cmd.AddCommand(estimateAnnualCmd())
	return cmd
}

func estimateWeekCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Estimate the cost of an hourly forecast",
		Long: `Simulates every hour of a forecast CSV (timestamp,temp_f[,rh]) and sums
the energy and cost. Defaults to climate.series_path.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("series")
			if path == "" {
				path = cfg.Climate.SeriesPath
			}
			if path == "" {
				return errors.New("no forecast: set climate.series_path or pass --series")
			}
			src := ingest.FileSeries{Path: config.ExpandPath(path), Parser: ingest.NewSeriesParser()}

			return withService(cmd, func(svc *service.Service) error {
				est, err := svc.Weekly(cmd.Context(), profileFromConfig(cfg), src)
				if err != nil {
					return err
				}
				cli.RenderEstimate(cmd.OutOrStdout(), fmt.Sprintf("Forecast estimate (%d hours)", est.Hours), est)
				return nil
			})
		},
	}
	cmd.Flags().String("series", "", "hourly forecast CSV")
	return cmd
}

func estimateAnnualCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annual",
		Short: "Estimate a typical year from monthly climate normals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyNormalsFlag(cmd)
			quiet, _ := cmd.Flags().GetBool("no-progress")

			return withService(cmd, func(svc *service.Service) error {
				if !quiet {
					svc.Aggregator.OnMonth = cli.NewMonthProgress(os.Stderr).OnMonth
				}
				est, err := svc.Annual(cmd.Context(), profileFromConfig(cfg))
				if err != nil {
					return err
				}
				cli.RenderAnnual(cmd.OutOrStdout(), est)
				return nil
			})
		},
	}
	addNormalsFlag(cmd)
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")
	return cmd
}
