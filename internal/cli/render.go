package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/calibration"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/cost"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/service"
)

// table lays out rows in padded columns with a styled header.
func table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	render := func(cells []string, style lipgloss.Style) string {
		out := make([]string, len(cells))
		for i, c := range cells {
			out[i] = TableCellStyle.Width(widths[i] + 2).Render(c)
		}
		return style.Render(lipgloss.JoinHorizontal(lipgloss.Top, out...))
	}

	lines := []string{render(header, TableHeaderStyle)}
	for _, row := range rows {
		lines = append(lines, render(row, lipgloss.NewStyle()))
	}
	return strings.Join(lines, "\n")
}

func kwh(v float64) string { return fmt.Sprintf("%.0f kWh", v) }
func usd(v float64) string { return fmt.Sprintf("$%.2f", v) }

// RenderHeatLoss prints the resolved heat-loss factor.
func RenderHeatLoss(w io.Writer, hl model.HeatLossResult) {
	body := fmt.Sprintf("%s %.1f BTU/hr/°F\n%s %.0f BTU/hr at a %.0f°F delta\n%s %s",
		BoldStyle.Render("Heat loss:"), hl.BTUPerHourPerF,
		BoldStyle.Render("Design load:"), hl.DesignLoadBTU(), model.ReferenceDeltaF,
		BoldStyle.Render("Source:"), hl.Source)
	fmt.Fprintln(w, TitleStyle.Render("Building heat loss"))
	fmt.Fprintln(w, BoxStyle.Render(body))
}

// RenderEstimate prints a single-period cost estimate.
func RenderEstimate(w io.Writer, title string, est model.CostEstimate) {
	rows := [][]string{
		{"Heating", kwh(est.HeatingKWh)},
		{"  backup", kwh(est.AuxKWh)},
		{"Cooling", kwh(est.CoolingKWh)},
		{"Base load", kwh(est.BaseLoadKWh)},
		{"Total", kwh(est.KWh)},
	}
	if est.GasTherms > 0 {
		rows = append(rows, []string{"Gas", fmt.Sprintf("%.1f therms (%s)", est.GasTherms, usd(est.GasCost))})
	}
	rows = append(rows, []string{"Cost", usd(est.Cost)})

	fmt.Fprintln(w, TitleStyle.Render(title))
	fmt.Fprintln(w, table([]string{"Component", "Amount"}, rows))
	if est.UnmetHours > 0 {
		fmt.Fprintln(w, FormatWarning(fmt.Sprintf("%d of %d hours could not hold the setpoint", est.UnmetHours, est.Hours)))
	}
}

// RenderAnnual prints the monthly breakdown and totals of a typical year.
func RenderAnnual(w io.Writer, est cost.AnnualEstimate) {
	rows := make([][]string, 0, 13)
	for i, m := range est.Months {
		rows = append(rows, []string{
			time.Month(i + 1).String()[:3],
			kwh(m.HeatingKWh),
			kwh(m.CoolingKWh),
			kwh(m.BaseLoadKWh),
			kwh(m.KWh),
			usd(m.Cost),
		})
	}
	t := est.Total
	rows = append(rows, []string{
		BoldStyle.Render("Year"),
		kwh(t.HeatingKWh), kwh(t.CoolingKWh), kwh(t.BaseLoadKWh),
		BoldStyle.Render(kwh(t.KWh)), BoldStyle.Render(usd(t.Cost)),
	})

	fmt.Fprintln(w, TitleStyle.Render("Typical-year estimate"))
	fmt.Fprintln(w, table([]string{"Month", "Heating", "Cooling", "Base", "Total", "Cost"}, rows))
	if t.UnmetHours > 0 {
		fmt.Fprintln(w, FormatWarning(fmt.Sprintf("%d hours a year could not hold the setpoint", t.UnmetHours)))
	}
}

// RenderExpected prints one month's expectation.
func RenderExpected(w io.Writer, exp model.MonthlyExpectation) {
	fmt.Fprintln(w, TitleStyle.Render("Expected usage for "+exp.Month.String()))
	fmt.Fprintln(w, table([]string{"Component", "Amount"}, [][]string{
		{"Heating", kwh(exp.HeatingKWh)},
		{"Cooling", kwh(exp.CoolingKWh)},
		{"Base load", kwh(exp.BaseLoadKWh)},
		{"Total", kwh(exp.KWh)},
		{"Cost", usd(exp.Cost)},
	}))
}

// RenderDiagnosis prints a diagnosis with its findings and recommendations.
func RenderDiagnosis(w io.Writer, d service.Diagnosis) {
	r := d.Report
	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("Bill diagnosis: %s (%s)", r.Month, r.Season)))

	summary := fmt.Sprintf("%s %s\n%s %+.0f kWh (%+.1f%%), %s\n%s %s",
		BoldStyle.Render("Expected:"), kwh(d.Expected.KWh),
		BoldStyle.Render("Gap:"), r.Gap.KWh, r.Gap.Percent, usd(r.Gap.Cost),
		BoldStyle.Render("Class:"), r.Class)
	fmt.Fprintln(w, BoxStyle.Render(summary))

	for _, f := range r.Findings {
		fmt.Fprintln(w, FormatFinding(f))
	}
	if len(r.Recommendations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, BoldStyle.Render("Recommendations"))
		for _, rec := range r.Recommendations {
			fmt.Fprintln(w, "  • "+rec)
		}
	}
	if d.Record != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, FormatSuccess("Saved to history as "+d.Record.Key()))
	}
}

func optional(v *float64, format string) string {
	if v == nil {
		return SubtleStyle.Render("n/a")
	}
	return fmt.Sprintf(format, *v)
}

// RenderHistory prints every recorded month.
func RenderHistory(w io.Writer, hist []model.BillRecord) {
	fmt.Fprintln(w, TitleStyle.Render("Bill history"))
	if len(hist) == 0 {
		fmt.Fprintln(w, SubtleStyle.Render("No bills recorded yet."))
		return
	}
	rows := make([][]string, len(hist))
	for i, r := range hist {
		rows[i] = []string{
			r.Key(),
			kwh(r.ActualKWh),
			kwh(r.PredictedKWh),
			optional(r.GapPercent, "%+.1f%%"),
			optional(r.GapCost, "$%.2f"),
		}
	}
	fmt.Fprintln(w, table([]string{"Month", "Actual", "Predicted", "Gap", "Gap cost"}, rows))
}

// RenderTrend prints a trend summary.
func RenderTrend(w io.Writer, t calibration.Trend) {
	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("Trend over the last %d months", t.Window)))
	if len(t.Records) == 0 {
		fmt.Fprintln(w, SubtleStyle.Render("Not enough history with a defined gap."))
		return
	}
	body := fmt.Sprintf("%s %+.1f%%\n%s %s\n%s %.1f%%\n%s %d of %d",
		BoldStyle.Render("Average gap:"), t.AvgGapPercent,
		BoldStyle.Render("Average gap cost:"), usd(t.AvgGapCost),
		BoldStyle.Render("Spread (1σ):"), t.StdDevPercent,
		BoldStyle.Render("Months above 10%:"), t.HighMonths, len(t.Records))
	fmt.Fprintln(w, BoxStyle.Render(body))
	for _, key := range t.Outliers {
		fmt.Fprintln(w, FormatWarning(key+" is unusual compared with the other months"))
	}
}
