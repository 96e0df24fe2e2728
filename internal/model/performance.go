package model

import "time"

// Mode is the conditioning state of a simulated hour.
type Mode string

const (
	ModeHeat Mode = "heat"
	ModeCool Mode = "cool"
	ModeIdle Mode = "idle"
)

// HourlyPerformanceResult is the output of one simulated hour.
type HourlyPerformanceResult struct {
	Mode                  Mode    `json:"mode"`
	RequiredLoadBTU       float64 `json:"required_load_btu"`
	HeatPumpOutputBTU     float64 `json:"heat_pump_output_btu"`
	AuxOutputBTU          float64 `json:"aux_output_btu"`
	UnmetLoadBTU          float64 `json:"unmet_load_btu"`
	HeatPumpEnergyKWh     float64 `json:"heat_pump_energy_kwh"`
	AuxEnergyKWh          float64 `json:"aux_energy_kwh"`
	AuxTherms             float64 `json:"aux_therms"`
	CapacityFactor        float64 `json:"capacity_factor"`
	EffectiveCOP          float64 `json:"effective_cop"`
	DefrostPenaltyApplied bool    `json:"defrost_penalty_applied"`
	CompressorLockedOut   bool    `json:"compressor_locked_out"`
}

// ElectricKWh is the hour's total electrical draw.
func (r HourlyPerformanceResult) ElectricKWh() float64 {
	return r.HeatPumpEnergyKWh + r.AuxEnergyKWh
}

// CostEstimate aggregates simulated energy over a period.
// KWh always equals HeatingKWh + CoolingKWh + BaseLoadKWh.
type CostEstimate struct {
	KWh         float64 `json:"kwh"`
	Cost        float64 `json:"cost"`
	HeatingKWh  float64 `json:"heating_kwh"`
	CoolingKWh  float64 `json:"cooling_kwh"`
	BaseLoadKWh float64 `json:"base_load_kwh"`

	// AuxKWh is the electric backup share of HeatingKWh.
	AuxKWh     float64 `json:"aux_kwh"`
	GasTherms  float64 `json:"gas_therms"`
	GasCost    float64 `json:"gas_cost"`
	FixedCost  float64 `json:"fixed_cost"`
	Hours      int     `json:"hours"`
	UnmetHours int     `json:"unmet_hours"`
}

// Add returns the field-wise sum of two estimates.
func (c CostEstimate) Add(o CostEstimate) CostEstimate {
	return CostEstimate{
		KWh:         c.KWh + o.KWh,
		Cost:        c.Cost + o.Cost,
		HeatingKWh:  c.HeatingKWh + o.HeatingKWh,
		CoolingKWh:  c.CoolingKWh + o.CoolingKWh,
		BaseLoadKWh: c.BaseLoadKWh + o.BaseLoadKWh,
		AuxKWh:      c.AuxKWh + o.AuxKWh,
		GasTherms:   c.GasTherms + o.GasTherms,
		GasCost:     c.GasCost + o.GasCost,
		FixedCost:   c.FixedCost + o.FixedCost,
		Hours:       c.Hours + o.Hours,
		UnmetHours:  c.UnmetHours + o.UnmetHours,
	}
}

// MonthlyExpectation is the expected usage for one calendar month, the
// baseline a bill is compared against.
type MonthlyExpectation struct {
	Month       time.Month `json:"month"`
	KWh         float64    `json:"kwh"`
	Cost        float64    `json:"cost"`
	HeatingKWh  float64    `json:"heating_kwh"`
	CoolingKWh  float64    `json:"cooling_kwh"`
	BaseLoadKWh float64    `json:"base_load_kwh"`
}
