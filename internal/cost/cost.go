// Package cost aggregates hourly simulation results into weekly, monthly and
// annual energy and cost estimates.
package cost

import (
	"fmt"
	"math"
	"time"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/climate"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/simulator"
)

// Base load defaults. A learned kWh/day figure is clamped to the range.
const (
	DefaultUplift = 0.15
	MinKWhPerDay  = 5.0
	MaxKWhPerDay  = 25.0

	daysPerMonth = 365.0 / 12
)

// BaseLoad configures non-HVAC consumption. KnownAnnualKWh takes precedence
// over KWhPerDay, which takes precedence over Uplift. Zero values are unset.
type BaseLoad struct {
	KWhPerDay      float64 `json:"kwh_per_day,omitempty" mapstructure:"kwh_per_day"`
	KnownAnnualKWh float64 `json:"known_annual_kwh,omitempty" mapstructure:"known_annual_kwh"`
	// Uplift is the fraction of HVAC energy added as base load.
	Uplift float64 `json:"uplift,omitempty" mapstructure:"uplift"`
}

// Validate rejects negative or non-finite values.
func (b BaseLoad) Validate() error {
	for _, c := range []struct {
		field string
		v     float64
	}{
		{"kwh_per_day", b.KWhPerDay},
		{"known_annual_kwh", b.KnownAnnualKWh},
		{"uplift", b.Uplift},
	} {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) || c.v < 0 {
			return &model.ValidationError{Field: c.field, Value: c.v, Err: model.ErrInvalidProfile}
		}
	}
	return nil
}

func (b BaseLoad) perDay() float64 {
	return math.Max(MinKWhPerDay, math.Min(MaxKWhPerDay, b.KWhPerDay))
}

// Aggregator runs the hourly model over climate data.
type Aggregator struct {
	Model    *simulator.Model
	Synth    *climate.Synthesizer
	BaseLoad BaseLoad
	// OnMonth is called after each month of an annual estimate is simulated.
	OnMonth func(month time.Month)
}

// New returns an aggregator with the default model, synthesizer and a 15%
// base load uplift.
func New() *Aggregator {
	return &Aggregator{
		Model:    simulator.NewModel(),
		Synth:    climate.NewSynthesizer(),
		BaseLoad: BaseLoad{Uplift: DefaultUplift},
	}
}

// AnnualEstimate is a 12-month estimate with its per-month breakdown.
type AnnualEstimate struct {
	Total  model.CostEstimate     `json:"total"`
	Months [12]model.CostEstimate `json:"months"`
	Rates  model.UtilityRates     `json:"rates"`
}

// hvacTotals is the HVAC-only energy of a simulated period.
type hvacTotals struct {
	heatingKWh float64
	coolingKWh float64
	auxKWh     float64
	therms     float64
	hours      int
	unmetHours int
}

func (h hvacTotals) kwh() float64 {
	return h.heatingKWh + h.coolingKWh
}

func (h hvacTotals) scale(f float64) hvacTotals {
	h.heatingKWh *= f
	h.coolingKWh *= f
	h.auxKWh *= f
	h.therms *= f
	return h
}

func (a *Aggregator) simulate(series model.ClimateSeries, eq model.EquipmentProfile, factor float64, th model.Thermostat) (hvacTotals, error) {
	m := a.Model
	if m == nil {
		m = simulator.NewModel()
	}
	var t hvacTotals
	for i, s := range series {
		res, err := m.SimulateThermostatHour(eq, factor, th, s)
		if err != nil {
			return hvacTotals{}, fmt.Errorf("hour %d: %w", i, err)
		}
		switch res.Mode {
		case model.ModeHeat:
			t.heatingKWh += res.ElectricKWh()
			t.auxKWh += res.AuxEnergyKWh
			t.therms += res.AuxTherms
		case model.ModeCool:
			t.coolingKWh += res.ElectricKWh()
		}
		if res.UnmetLoadBTU > 0 {
			t.unmetHours++
		}
		t.hours++
	}
	return t, nil
}

func (a *Aggregator) checkInputs(eq model.EquipmentProfile, factor float64, th model.Thermostat, rates model.UtilityRates) error {
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor <= 0 {
		return &model.ValidationError{Field: "heat_loss_factor", Value: factor, Err: model.ErrInvalidProfile}
	}
	if err := eq.Validate(); err != nil {
		return fmt.Errorf("equipment: %w", err)
	}
	if err := th.Validate(); err != nil {
		return fmt.Errorf("thermostat: %w", err)
	}
	if err := rates.Validate(); err != nil {
		return fmt.Errorf("rates: %w", err)
	}
	return a.BaseLoad.Validate()
}

// estimate prices one period. fixedShare is the fraction of a month's fixed
// charge that applies.
func estimate(h hvacTotals, baseKWh, fixedShare float64, rates model.UtilityRates) model.CostEstimate {
	e := model.CostEstimate{
		HeatingKWh:  h.heatingKWh,
		CoolingKWh:  h.coolingKWh,
		BaseLoadKWh: baseKWh,
		AuxKWh:      h.auxKWh,
		GasTherms:   h.therms,
		Hours:       h.hours,
		UnmetHours:  h.unmetHours,
	}
	e.KWh = e.HeatingKWh + e.CoolingKWh + e.BaseLoadKWh
	e.GasCost = e.GasTherms * rates.GasPerTherm
	e.FixedCost = rates.FixedMonthly * fixedShare
	e.Cost = e.KWh*rates.ElectricPerKWh + e.GasCost + e.FixedCost
	return e
}

// ComputeWeeklyCost simulates every sample of series. Despite the name it
// accepts a series of any length; the fixed charge is prorated by days.
func (a *Aggregator) ComputeWeeklyCost(series model.ClimateSeries, eq model.EquipmentProfile, heatLossFactor float64, th model.Thermostat, rates model.UtilityRates) (model.CostEstimate, error) {
	if err := series.Validate(); err != nil {
		return model.CostEstimate{}, err
	}
	if err := a.checkInputs(eq, heatLossFactor, th, rates); err != nil {
		return model.CostEstimate{}, err
	}

	h, err := a.simulate(series, eq, heatLossFactor, th)
	if err != nil {
		return model.CostEstimate{}, err
	}
	days := float64(h.hours) / 24
	base := a.BaseLoad.Uplift * h.kwh()
	if a.BaseLoad.KWhPerDay > 0 {
		base = a.BaseLoad.perDay() * days
	}
	return estimate(h, base, days/daysPerMonth, rates), nil
}

// ComputeAnnualCost synthesizes a typical month for each row of normals,
// simulates it and sums the year. Nothing is rounded.
func (a *Aggregator) ComputeAnnualCost(normals model.MonthlyNormals, eq model.EquipmentProfile, heatLossFactor float64, th model.Thermostat, rates model.UtilityRates) (AnnualEstimate, error) {
	if err := normals.Validate(); err != nil {
		return AnnualEstimate{}, err
	}
	if err := a.checkInputs(eq, heatLossFactor, th, rates); err != nil {
		return AnnualEstimate{}, err
	}
	synth := a.Synth
	if synth == nil {
		synth = climate.NewSynthesizer()
	}
	year := synth.Year
	if year == 0 {
		year = climate.ReferenceYear
	}

	var months [12]hvacTotals
	var annual hvacTotals
	for i, dd := range normals {
		month := time.Month(i + 1)
		series, err := synth.SynthesizeMonth(month, dd.HDD, dd.CDD)
		if err != nil {
			return AnnualEstimate{}, fmt.Errorf("%s: %w", month, err)
		}
		h, err := a.simulate(series, eq, heatLossFactor, th)
		if err != nil {
			return AnnualEstimate{}, fmt.Errorf("%s: %w", month, err)
		}
		if fullHours := model.DaysInMonth(year, month) * 24; h.hours > 0 && h.hours != fullHours {
			h = h.scale(float64(fullHours) / float64(h.hours))
			h.hours = fullHours
		}
		months[i] = h
		annual.heatingKWh += h.heatingKWh
		annual.coolingKWh += h.coolingKWh
		if a.OnMonth != nil {
			a.OnMonth(month)
		}
	}

	var annualBase float64
	switch {
	case a.BaseLoad.KnownAnnualKWh > 0:
		annualBase = math.Max(0, a.BaseLoad.KnownAnnualKWh-annual.kwh())
	case a.BaseLoad.KWhPerDay > 0:
		annualBase = a.BaseLoad.perDay() * 365
	default:
		annualBase = a.BaseLoad.Uplift * annual.kwh()
	}

	out := AnnualEstimate{Rates: rates}
	for i, h := range months {
		out.Months[i] = estimate(h, annualBase/12, 1, rates)
		out.Total = out.Total.Add(out.Months[i])
	}
	return out, nil
}

// ComputeExpectedMonthly distributes an annual estimate to one month by its
// share of annual degree days. Base load is spread evenly.
func ComputeExpectedMonthly(annual AnnualEstimate, month time.Month, normals model.MonthlyNormals) (model.MonthlyExpectation, error) {
	if !model.ValidMonth(month) {
		return model.MonthlyExpectation{}, fmt.Errorf("month %d: %w", int(month), model.ErrInvalidClimateData)
	}
	if err := normals.Validate(); err != nil {
		return model.MonthlyExpectation{}, err
	}

	dd := normals.Month(month)
	heatShare := share(dd.HDD, normals.AnnualHDD())
	coolShare := share(dd.CDD, normals.AnnualCDD())

	exp := model.MonthlyExpectation{
		Month:       month,
		HeatingKWh:  annual.Total.HeatingKWh * heatShare,
		CoolingKWh:  annual.Total.CoolingKWh * coolShare,
		BaseLoadKWh: annual.Total.BaseLoadKWh / 12,
	}
	exp.KWh = exp.HeatingKWh + exp.CoolingKWh + exp.BaseLoadKWh

	r := annual.Rates
	exp.Cost = exp.KWh*r.ElectricPerKWh + annual.Total.GasTherms*heatShare*r.GasPerTherm + r.FixedMonthly
	return exp, nil
}

func share(part, total float64) float64 {
	if total <= 0 {
		return 1.0 / 12
	}
	return part / total
}
