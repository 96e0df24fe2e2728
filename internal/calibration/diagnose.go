// Package calibration compares utility bills with expected usage, explains
// the gap and tracks it over time.
package calibration

import (
	"fmt"
	"math"
	"time"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
)

// Gap thresholds in percent of expected usage. Bounds are inclusive: a
// 910 kWh bill against 700 expected is a 30.0% gap and classifies as large.
const (
	LargeGapPercent    = 30.0
	MediumGapPercent   = 15.0
	NearOptimalPercent = 20.0

	// CostRecommendationUSD is the monthly gap cost above which a
	// dollar-quantified recommendation is added.
	CostRecommendationUSD = 20.0

	// rateMismatch is the relative difference between the bill's implied
	// rate and the configured rate that earns a finding.
	rateMismatch = 0.15
)

// Recommendation texts that other code checks for.
const (
	RecCheckThermostat = "Verify your thermostat setpoints and schedule match how you actually live."
	RecNearOptimal     = "Your settings may already be near optimal; keep the current schedule."
)

// Engine diagnoses bills. Thermostat holds the homeowner's setpoints and
// Defaults the setpoints the estimate assumes.
type Engine struct {
	Thermostat model.Thermostat
	Defaults   model.Thermostat
	Now        func() time.Time
}

// NewEngine returns an engine comparing th against the 68°F/76°F defaults.
func NewEngine(th model.Thermostat) *Engine {
	return &Engine{
		Thermostat: th,
		Defaults:   model.DefaultThermostat(),
		Now:        time.Now,
	}
}

// ClassifyGap buckets an absolute gap percentage.
func ClassifyGap(gapPercent float64) model.GapClass {
	p := math.Abs(gapPercent)
	switch {
	case p >= LargeGapPercent:
		return model.GapLarge
	case p >= MediumGapPercent:
		return model.GapMedium
	default:
		return model.GapMinor
	}
}

func checkBill(actualKWh float64, actualCost *float64, month time.Month, utilityCost float64) error {
	if math.IsNaN(actualKWh) || math.IsInf(actualKWh, 0) || actualKWh < 0 {
		return &model.ValidationError{Field: "actual_kwh", Value: actualKWh, Err: model.ErrInvalidBill}
	}
	if actualCost != nil && (math.IsNaN(*actualCost) || math.IsInf(*actualCost, 0) || *actualCost < 0) {
		return &model.ValidationError{Field: "actual_cost", Value: *actualCost, Err: model.ErrInvalidBill}
	}
	if !model.ValidMonth(month) {
		return &model.ValidationError{Field: "month", Value: float64(month), Err: model.ErrInvalidBill}
	}
	if math.IsNaN(utilityCost) || math.IsInf(utilityCost, 0) || utilityCost < 0 {
		return &model.ValidationError{Field: "utility_cost", Value: utilityCost, Err: model.ErrInvalidBill}
	}
	return nil
}

func checkBaseline(expected model.MonthlyExpectation) error {
	if math.IsNaN(expected.KWh) || expected.KWh <= 0 {
		return fmt.Errorf("expected %.2f kWh: %w", expected.KWh, model.ErrUndefinedBaseline)
	}
	return nil
}

// Diagnose explains the difference between a month's bill and its expected
// usage. The report depends only on the arguments and the engine's setpoints.
func (e *Engine) Diagnose(actualKWh float64, actualCost *float64, expected model.MonthlyExpectation, month time.Month, utilityCost float64) (model.DiagnosisReport, error) {
	if err := checkBill(actualKWh, actualCost, month, utilityCost); err != nil {
		return model.DiagnosisReport{}, err
	}
	if err := checkBaseline(expected); err != nil {
		return model.DiagnosisReport{}, err
	}

	gap := actualKWh - expected.KWh
	pct := 100 * gap / expected.KWh
	r := &report{DiagnosisReport: model.DiagnosisReport{
		Month:  month,
		Season: model.SeasonOf(month),
		Class:  ClassifyGap(pct),
		Gap:    model.Gap{KWh: gap, Percent: pct, Cost: gap * utilityCost},
	}}

	if gap > 0 {
		e.overUsage(r)
	} else {
		r.add(model.SeveritySuccess, "Efficiency better than expected",
			fmt.Sprintf("You used %.0f kWh (%.1f%%) less than the %.0f kWh expected for %s.", -gap, -pct, expected.KWh, month))
		if math.Abs(pct) > NearOptimalPercent {
			r.recommend(RecNearOptimal)
		}
	}

	if actualCost != nil && actualKWh > 0 && utilityCost > 0 {
		implied := *actualCost / actualKWh
		if math.Abs(implied-utilityCost)/utilityCost > rateMismatch {
			r.add(model.SeverityInfo, "Bill rate differs from configured rate",
				fmt.Sprintf("Your bill works out to $%.3f/kWh including fixed charges; estimates use $%.3f/kWh.", implied, utilityCost))
			r.recommend("Update your electricity rate so cost estimates match your bill.")
		}
	}

	if r.Findings == nil {
		r.Findings = []model.Finding{}
	}
	if r.Recommendations == nil {
		r.Recommendations = []string{}
	}
	return r.DiagnosisReport, nil
}

func (e *Engine) overUsage(r *report) {
	gap, pct := r.Gap.KWh, r.Gap.Percent
	over := fmt.Sprintf("You used %.0f kWh (%.1f%%) more than expected for %s.", gap, pct, r.Month)

	switch r.Class {
	case model.GapLarge:
		switch r.Season {
		case model.SeasonWinter:
			r.add(model.SeverityCritical, "Possible heat pump running on resistance heat",
				over+" Auxiliary strip heat uses two to three times the energy of the compressor. Is the outdoor unit's fan spinning when the heat is on?")
			r.recommend("Check that the outdoor fan spins during a heat call; if it does not, schedule a service visit.")
			r.recommend("Review the auxiliary heat lockout temperature on your thermostat.")
		case model.SeasonSummer:
			r.add(model.SeverityCritical, "Possible hidden load",
				over+" Cooling alone rarely explains a gap this large. Common culprits are a pool pump, an EV charger or an always-on appliance such as a second refrigerator or dehumidifier.")
			r.recommend("Look for loads added since the estimate was made: pool pump, EV charger, always-on appliances.")
		default:
			r.add(model.SeverityCritical, "Usage far above expected",
				over+" Shoulder months need little heating or cooling, so most of this gap is likely a non-HVAC load.")
			r.recommend("Compare appliance usage with the same month last year.")
		}
	case model.GapMedium:
		r.add(model.SeverityWarning, "Check thermostat setting", over+" "+e.setpointDetail(r.Month))
		r.recommend(RecCheckThermostat)
	default:
		r.add(model.SeverityInfo, "Usage close to expected", over+" This is within normal month-to-month variation.")
	}

	r.recommend(RecCheckThermostat)

	if r.Gap.Cost > CostRecommendationUSD {
		r.recommend(fmt.Sprintf("Closing this gap would save about $%.2f this month.", r.Gap.Cost))
	}
}

// setpointDetail compares the season's configured setpoint with the default.
// Shoulder months count as heating in March, April, October and November.
func (e *Engine) setpointDetail(m time.Month) string {
	heating := true
	switch model.SeasonOf(m) {
	case model.SeasonSummer:
		heating = false
	case model.SeasonShoulder:
		heating = m == time.March || m == time.April || m == time.October || m == time.November
	}

	mode, cur, def := "heat", e.Thermostat.EffectiveHeatSetpointF(), e.Defaults.HeatSetpointF
	if !heating {
		mode, cur, def = "cool", e.Thermostat.CoolSetpointF, e.Defaults.CoolSetpointF
	}
	switch {
	case cur == 0:
		return fmt.Sprintf("No %s setpoint is configured; the estimate assumes %.0f°F.", mode, def)
	case (heating && cur > def) || (!heating && cur < def):
		return fmt.Sprintf("Your %s setpoint of %.0f°F is %.0f°F past the %.0f°F default; each degree adds roughly 3%% to %sing energy.",
			mode, cur, math.Abs(cur-def), def, mode)
	default:
		return fmt.Sprintf("Your %s setpoint of %.0f°F is at or better than the %.0f°F default; look for schedule holds or manual overrides.",
			mode, cur, def)
	}
}

type report struct {
	model.DiagnosisReport
}

func (r *report) add(sev model.Severity, title, detail string) {
	r.Findings = append(r.Findings, model.Finding{Severity: sev, Title: title, Detail: detail})
}

// recommend appends rec unless it is already present.
func (r *report) recommend(rec string) {
	for _, existing := range r.Recommendations {
		if existing == rec {
			return
		}
	}
	r.Recommendations = append(r.Recommendations, rec)
}
