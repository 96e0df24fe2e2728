// Package heatloss derives a building's heat-loss factor from its envelope.
package heatloss

import (
	"fmt"
	"math"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
)

const (
	// BaseBTUPerSqFt is the design heat loss of a baseline house at the 70°F reference delta.
	BaseBTUPerSqFt = 22.67

	baselineCeilingFt = 8.0
	ceilingStep       = 0.1 // per foot above or below baseline

	// Loft floor area sits inside the envelope; only part of it loses heat.
	loftAreaFraction = 0.65
	loftShapeMin     = 1.2
	loftShapeMax     = 1.3
)

// Compute returns the calculated heat-loss factor in BTU/hr per °F.
func Compute(p model.BuildingProfile) (model.HeatLossResult, error) {
	if err := p.Validate(); err != nil {
		return model.HeatLossResult{}, fmt.Errorf("heat loss: %w", err)
	}
	design := DesignLoad(p)
	return model.HeatLossResult{
		BTUPerHourPerF: design / model.ReferenceDeltaF,
		Source:         model.HeatLossCalculated,
	}, nil
}

// DesignLoad is the BTU/hr loss at the reference delta. The profile must be valid.
func DesignLoad(p model.BuildingProfile) float64 {
	return BaseBTUPerSqFt * effectiveArea(p) * p.InsulationLevel * p.HomeShape * ceilingMultiplier(p)
}

func effectiveArea(p model.BuildingProfile) float64 {
	if p.HasLoft && p.HomeShape >= loftShapeMin && p.HomeShape < loftShapeMax {
		return p.SquareFeet * loftAreaFraction
	}
	return p.SquareFeet
}

// ceilingMultiplier scales by conditioned volume. A pitched roof with eave
// walls averages the wall and peak heights.
func ceilingMultiplier(p model.BuildingProfile) float64 {
	h := p.CeilingHeightFt
	if p.WallHeightFt > 0 {
		h = (p.WallHeightFt + p.CeilingHeightFt) / 2
	}
	return 1 + (h-baselineCeilingFt)*ceilingStep
}

// Overrides are measured heat-loss factors in BTU/hr per °F. Zero means absent.
type Overrides struct {
	ManualBTUPerF   float64 `json:"manual_btu_per_f,omitempty" mapstructure:"manual_btu_per_f"`
	AnalyzerBTUPerF float64 `json:"analyzer_btu_per_f,omitempty" mapstructure:"analyzer_btu_per_f"`
}

// Resolve picks manual, then analyzer, then the calculated factor.
func Resolve(p model.BuildingProfile, o Overrides) (model.HeatLossResult, error) {
	if err := checkOverride("manual_btu_per_f", o.ManualBTUPerF); err != nil {
		return model.HeatLossResult{}, err
	}
	if err := checkOverride("analyzer_btu_per_f", o.AnalyzerBTUPerF); err != nil {
		return model.HeatLossResult{}, err
	}
	switch {
	case o.ManualBTUPerF > 0:
		return model.HeatLossResult{BTUPerHourPerF: o.ManualBTUPerF, Source: model.HeatLossManual}, nil
	case o.AnalyzerBTUPerF > 0:
		return model.HeatLossResult{BTUPerHourPerF: o.AnalyzerBTUPerF, Source: model.HeatLossAnalyzer}, nil
	}
	return Compute(p)
}

func checkOverride(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("heat loss override: %w", &model.ValidationError{Field: field, Value: v, Err: model.ErrInvalidProfile})
	}
	return nil
}
