package model

import (
	"math"
	"time"
)

// Insulation multiplier bounds accepted by Validate. 1.0 is a code-built
// baseline house; typical inputs fall between 0.5 and 2.0.
const (
	MinInsulationLevel = 0.1
	MaxInsulationLevel = 5.0
)

// BuildingProfile describes the envelope used to derive a heat-loss factor.
type BuildingProfile struct {
	SquareFeet      float64 `json:"square_feet" mapstructure:"square_feet" yaml:"square_feet"`
	InsulationLevel float64 `json:"insulation_level" mapstructure:"insulation_level" yaml:"insulation_level"`
	HomeShape       float64 `json:"home_shape" mapstructure:"home_shape" yaml:"home_shape"`
	CeilingHeightFt float64 `json:"ceiling_height_ft" mapstructure:"ceiling_height_ft" yaml:"ceiling_height_ft"`
	// WallHeightFt is the eave wall height of a pitched-roof cabin. Zero means unset.
	WallHeightFt float64 `json:"wall_height_ft,omitempty" mapstructure:"wall_height_ft" yaml:"wall_height_ft"`
	HasLoft      bool    `json:"has_loft" mapstructure:"has_loft" yaml:"has_loft"`
}

// DefaultBuilding returns a 1500 sqft baseline house.
func DefaultBuilding() BuildingProfile {
	return BuildingProfile{
		SquareFeet:      1500,
		InsulationLevel: 1.0,
		HomeShape:       1.0,
		CeilingHeightFt: 8,
	}
}

// Validate reports the first out-of-range field as ErrInvalidProfile.
func (b BuildingProfile) Validate() error {
	if !finite(b.SquareFeet) || b.SquareFeet <= 0 {
		return invalid(ErrInvalidProfile, "square_feet", b.SquareFeet)
	}
	if !finite(b.InsulationLevel) || b.InsulationLevel < MinInsulationLevel || b.InsulationLevel > MaxInsulationLevel {
		return invalid(ErrInvalidProfile, "insulation_level", b.InsulationLevel)
	}
	if !finite(b.HomeShape) || b.HomeShape <= 0 {
		return invalid(ErrInvalidProfile, "home_shape", b.HomeShape)
	}
	if !finite(b.CeilingHeightFt) || b.CeilingHeightFt <= 0 {
		return invalid(ErrInvalidProfile, "ceiling_height_ft", b.CeilingHeightFt)
	}
	if !finite(b.WallHeightFt) || b.WallHeightFt < 0 {
		return invalid(ErrInvalidProfile, "wall_height_ft", b.WallHeightFt)
	}
	return nil
}

// ReferenceDeltaF is the indoor/outdoor delta at which design heat loss is quoted.
const ReferenceDeltaF = 70.0

// HeatLossSource records which tier produced a heat-loss factor.
type HeatLossSource string

const (
	HeatLossCalculated HeatLossSource = "calculated"
	HeatLossAnalyzer   HeatLossSource = "analyzer"
	HeatLossManual     HeatLossSource = "manual"
)

// HeatLossResult is the building's loss rate per degree F of indoor/outdoor delta.
type HeatLossResult struct {
	BTUPerHourPerF float64        `json:"btu_per_hour_per_f"`
	Source         HeatLossSource `json:"source"`
}

// DesignLoadBTU returns the loss at the 70°F reference delta.
func (h HeatLossResult) DesignLoadBTU() float64 {
	return h.BTUPerHourPerF * ReferenceDeltaF
}

// LoadAt scales the factor linearly to an arbitrary delta. Negative deltas yield zero.
func (h HeatLossResult) LoadAt(deltaF float64) float64 {
	return h.BTUPerHourPerF * math.Max(0, deltaF)
}

// Thermostat holds the setpoints used to decide heating and cooling hours.
type Thermostat struct {
	HeatSetpointF float64 `json:"heat_setpoint_f" mapstructure:"heat_setpoint_f" yaml:"heat_setpoint_f"`
	CoolSetpointF float64 `json:"cool_setpoint_f" mapstructure:"cool_setpoint_f" yaml:"cool_setpoint_f"`
	// HeatNightF is the overnight heating setback. Zero disables setback.
	HeatNightF float64 `json:"heat_night_f,omitempty" mapstructure:"heat_night_f" yaml:"heat_night_f"`
	// NightHours is how many hours per day run at the setback (default 8).
	NightHours int `json:"night_hours,omitempty" mapstructure:"night_hours" yaml:"night_hours"`
}

// DefaultThermostat uses the setpoints diagnosis compares against.
func DefaultThermostat() Thermostat {
	return Thermostat{HeatSetpointF: 68, CoolSetpointF: 76}
}

// FixedSetpoint holds one temperature year round: heat below it, cool above it.
func FixedSetpoint(f float64) Thermostat {
	return Thermostat{HeatSetpointF: f, CoolSetpointF: f}
}

// EffectiveHeatSetpointF blends the day and night heating setpoints by hours.
func (t Thermostat) EffectiveHeatSetpointF() float64 {
	if t.HeatNightF <= 0 {
		return t.HeatSetpointF
	}
	night := t.NightHours
	if night <= 0 || night >= 24 {
		night = 8
	}
	n := float64(night)
	return t.HeatSetpointF*(24-n)/24 + t.HeatNightF*n/24
}

// Validate rejects non-finite setpoints and a cooling setpoint below heating.
func (t Thermostat) Validate() error {
	if !finite(t.HeatSetpointF) {
		return invalid(ErrInvalidProfile, "heat_setpoint_f", t.HeatSetpointF)
	}
	if !finite(t.CoolSetpointF) || t.CoolSetpointF < t.HeatSetpointF {
		return invalid(ErrInvalidProfile, "cool_setpoint_f", t.CoolSetpointF)
	}
	if !finite(t.HeatNightF) || t.HeatNightF < 0 {
		return invalid(ErrInvalidProfile, "heat_night_f", t.HeatNightF)
	}
	return nil
}

// UtilityRates are the tariffs applied to simulated energy.
type UtilityRates struct {
	ElectricPerKWh float64 `json:"electric_per_kwh" mapstructure:"electric_per_kwh" yaml:"electric_per_kwh"`
	GasPerTherm    float64 `json:"gas_per_therm" mapstructure:"gas_per_therm" yaml:"gas_per_therm"`
	FixedMonthly   float64 `json:"fixed_monthly" mapstructure:"fixed_monthly" yaml:"fixed_monthly"`
}

// Validate rejects negative or non-finite rates.
func (r UtilityRates) Validate() error {
	if !finite(r.ElectricPerKWh) || r.ElectricPerKWh < 0 {
		return invalid(ErrInvalidProfile, "electric_per_kwh", r.ElectricPerKWh)
	}
	if !finite(r.GasPerTherm) || r.GasPerTherm < 0 {
		return invalid(ErrInvalidProfile, "gas_per_therm", r.GasPerTherm)
	}
	if !finite(r.FixedMonthly) || r.FixedMonthly < 0 {
		return invalid(ErrInvalidProfile, "fixed_monthly", r.FixedMonthly)
	}
	return nil
}

// DaysInMonth returns the number of days of month in year.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
