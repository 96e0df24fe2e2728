// Package simulator models hourly heat pump performance and replays climate
// series through it.
package simulator

import (
	"fmt"
	"math"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
)

// defaultAFUE applies to gas backup when the profile leaves FurnaceAFUE unset.
const defaultAFUE = 0.95

// Model simulates one hour of equipment operation.
type Model struct {
	Curves Curves
}

// NewModel returns a model using DefaultCurves.
func NewModel() *Model {
	return &Model{Curves: DefaultCurves()}
}

var defaultModel = NewModel()

// SimulateHour runs the default model for one hour.
func SimulateHour(eq model.EquipmentProfile, heatLossFactor, indoorSetpointF float64, sample model.ClimateSample) (model.HourlyPerformanceResult, error) {
	return defaultModel.SimulateHour(eq, heatLossFactor, indoorSetpointF, sample)
}

// SimulateThermostatHour runs the default model against a thermostat.
func SimulateThermostatHour(eq model.EquipmentProfile, heatLossFactor float64, th model.Thermostat, sample model.ClimateSample) (model.HourlyPerformanceResult, error) {
	return defaultModel.SimulateThermostatHour(eq, heatLossFactor, th, sample)
}

// SimulateHour heats when the setpoint is above outdoor, cools when it is
// below and idles when they are equal.
func (m *Model) SimulateHour(eq model.EquipmentProfile, heatLossFactor, indoorSetpointF float64, sample model.ClimateSample) (model.HourlyPerformanceResult, error) {
	if err := checkInputs(eq, heatLossFactor, sample); err != nil {
		return model.HourlyPerformanceResult{}, err
	}
	if math.IsNaN(indoorSetpointF) || math.IsInf(indoorSetpointF, 0) {
		return model.HourlyPerformanceResult{}, fmt.Errorf("setpoint: %w",
			&model.ValidationError{Field: "indoor_setpoint_f", Value: indoorSetpointF, Err: model.ErrInvalidProfile})
	}

	switch {
	case indoorSetpointF > sample.OutdoorTempF:
		return m.heat(eq, heatLossFactor*(indoorSetpointF-sample.OutdoorTempF), sample), nil
	case indoorSetpointF < sample.OutdoorTempF:
		return m.cool(eq, heatLossFactor*(sample.OutdoorTempF-indoorSetpointF), sample), nil
	default:
		return model.HourlyPerformanceResult{Mode: model.ModeIdle}, nil
	}
}

// SimulateThermostatHour heats below the effective heat setpoint, cools above
// the cool setpoint and idles in the deadband between them.
func (m *Model) SimulateThermostatHour(eq model.EquipmentProfile, heatLossFactor float64, th model.Thermostat, sample model.ClimateSample) (model.HourlyPerformanceResult, error) {
	if err := th.Validate(); err != nil {
		return model.HourlyPerformanceResult{}, fmt.Errorf("thermostat: %w", err)
	}
	if err := checkInputs(eq, heatLossFactor, sample); err != nil {
		return model.HourlyPerformanceResult{}, err
	}

	heatSP := th.EffectiveHeatSetpointF()
	switch {
	case sample.OutdoorTempF < heatSP:
		return m.heat(eq, heatLossFactor*(heatSP-sample.OutdoorTempF), sample), nil
	case sample.OutdoorTempF > th.CoolSetpointF:
		return m.cool(eq, heatLossFactor*(sample.OutdoorTempF-th.CoolSetpointF), sample), nil
	default:
		return model.HourlyPerformanceResult{Mode: model.ModeIdle}, nil
	}
}

func checkInputs(eq model.EquipmentProfile, heatLossFactor float64, sample model.ClimateSample) error {
	if math.IsNaN(heatLossFactor) || math.IsInf(heatLossFactor, 0) || heatLossFactor <= 0 {
		return fmt.Errorf("heat loss factor: %w",
			&model.ValidationError{Field: "heat_loss_factor", Value: heatLossFactor, Err: model.ErrInvalidProfile})
	}
	if err := eq.Validate(); err != nil {
		return fmt.Errorf("equipment: %w", err)
	}
	if err := sample.Validate(); err != nil {
		return fmt.Errorf("climate sample: %w", err)
	}
	return nil
}

func (m *Model) heat(eq model.EquipmentProfile, load float64, sample model.ClimateSample) model.HourlyPerformanceResult {
	t := sample.OutdoorTempF
	res := model.HourlyPerformanceResult{
		Mode:            model.ModeHeat,
		RequiredLoadBTU: load,
	}

	if t < eq.CompressorMinOutdoorTempF {
		res.CompressorLockedOut = true
	} else if eq.HSPF2 > 0 && eq.RatedCapacityBTU > 0 {
		res.CapacityFactor = HeatingCapacityFactor(t)
	}

	var delivered float64
	if res.CapacityFactor > 0 {
		cop := HeatingCOP(t, eq.HSPF2)
		available := eq.RatedCapacityBTU * res.CapacityFactor
		if m.Curves.defrosting(t, sample.RelativeHumidity) {
			if mult := DefrostMultiplier(t, sample.RelativeHumidity); mult > 1 {
				cop = math.Max(0.5, cop/mult)
				available *= 1 - m.Curves.DefrostDerate
				res.DefrostPenaltyApplied = true
			}
		}
		if eq.CompressorPowerKW > 0 {
			available = math.Min(available, eq.CompressorPowerKW*cop*model.BTUPerKWh)
		}
		delivered = math.Min(load, available)
		res.EffectiveCOP = cop
		res.HeatPumpOutputBTU = delivered
		res.HeatPumpEnergyKWh = delivered / (cop * model.BTUPerKWh)
	}

	deficit := math.Max(0, load-delivered)
	if deficit > 0 && eq.AuxCapacityKW > 0 && t <= eq.AuxHeatMaxOutdoorTempF {
		aux := math.Min(deficit, eq.AuxCapacityKW*model.BTUPerKWh)
		res.AuxOutputBTU = aux
		if eq.GasAux() {
			afue := eq.FurnaceAFUE
			if afue <= 0 {
				afue = defaultAFUE
			}
			res.AuxTherms = aux / (afue * model.BTUPerTherm)
		} else {
			res.AuxEnergyKWh = aux / model.BTUPerKWh
		}
		deficit -= aux
	}
	res.UnmetLoadBTU = deficit
	return res
}

func (m *Model) cool(eq model.EquipmentProfile, load float64, sample model.ClimateSample) model.HourlyPerformanceResult {
	t := sample.OutdoorTempF
	res := model.HourlyPerformanceResult{
		Mode:            model.ModeCool,
		RequiredLoadBTU: load,
	}
	if eq.SEER2 <= 0 || eq.RatedCapacityBTU <= 0 {
		res.UnmetLoadBTU = load
		return res
	}

	res.CapacityFactor = m.Curves.CoolingCapacityFactor(t)
	cop := m.Curves.CoolingCOP(t, eq.SEER2)
	available := eq.RatedCapacityBTU * res.CapacityFactor
	if eq.CompressorPowerKW > 0 {
		available = math.Min(available, eq.CompressorPowerKW*cop*model.BTUPerKWh)
	}
	delivered := math.Min(load, available)

	res.EffectiveCOP = cop
	res.HeatPumpOutputBTU = delivered
	res.HeatPumpEnergyKWh = delivered / (cop * model.BTUPerKWh)
	res.UnmetLoadBTU = load - delivered
	return res
}
