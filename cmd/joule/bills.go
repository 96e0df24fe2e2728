package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/cli"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/service"
)

func expectedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expected",
		Short: "Show the expected usage for a calendar month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyNormalsFlag(cmd)
			month, _ := cmd.Flags().GetInt("month")

			return withService(cmd, func(svc *service.Service) error {
				exp, err := svc.Expected(cmd.Context(), profileFromConfig(cfg), time.Month(month))
				if err != nil {
					return err
				}
				cli.RenderExpected(cmd.OutOrStdout(), exp)
				return nil
			})
		},
	}
	cmd.Flags().Int("month", int(time.Now().Month()), "calendar month (1-12)")
	addNormalsFlag(cmd)
	return cmd
}

func diagnoseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Explain why a bill differs from the estimate",
		Long: `Compares a month's actual kWh with the typical-year expectation, lists
likely causes and recommendations, and optionally saves the comparison to
history.`,
		RunE: runDiagnose,
	}
	cmd.Flags().Int("month", 0, "bill month (1-12)")
	cmd.Flags().Int("year", time.Now().Year(), "bill year, used when saving")
	cmd.Flags().Float64("actual-kwh", 0, "kWh on the bill")
	cmd.Flags().Float64("actual-cost", 0, "total cost on the bill")
	cmd.Flags().Bool("save", false, "save the comparison to history")
	_ = cmd.MarkFlagRequired("month")
	_ = cmd.MarkFlagRequired("actual-kwh")
	addNormalsFlag(cmd)
	return cmd
}

func runDiagnose(cmd *cobra.Command, _ []string) error {
	applyNormalsFlag(cmd)
	month, _ := cmd.Flags().GetInt("month")
	year, _ := cmd.Flags().GetInt("year")
	actualKWh, _ := cmd.Flags().GetFloat64("actual-kwh")
	save, _ := cmd.Flags().GetBool("save")

	bill := service.Bill{Year: year, Month: time.Month(month), ActualKWh: actualKWh}
	if cmd.Flags().Changed("actual-cost") {
		actualCost, _ := cmd.Flags().GetFloat64("actual-cost")
		bill.ActualCost = &actualCost
	}

	return withService(cmd, func(svc *service.Service) error {
		d, err := svc.Diagnose(cmd.Context(), profileFromConfig(cfg), bill, save)
		if err != nil {
			return err
		}
		cli.RenderDiagnosis(cmd.OutOrStdout(), d)
		return nil
	})
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List saved bill comparisons",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, func(svc *service.Service) error {
				hist, err := svc.LoadHistory(cmd.Context())
				if err != nil {
					return err
				}
				cli.RenderHistory(cmd.OutOrStdout(), hist)
				return nil
			})
		},
	}
}

func trendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Summarize how recent bills compare with the estimate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			window, _ := cmd.Flags().GetInt("window")
			return withService(cmd, func(svc *service.Service) error {
				t, err := svc.Trend(cmd.Context(), window)
				if err != nil {
					return err
				}
				cli.RenderTrend(cmd.OutOrStdout(), t)
				return nil
			})
		},
	}
	cmd.Flags().Int("window", 0, "number of recent months (default 6)")
	return cmd
}
