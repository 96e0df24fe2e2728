package simulator

import (
	"math"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
)

// Curves holds the performance curve parameters that are not part of the
// equipment ratings.
type Curves struct {
	// Defrost applies at or below DefrostMaxTempF when RH is at least
	// DefrostMinRH. DefrostDerate is the fraction of output lost to
	// defrost cycles.
	DefrostMaxTempF float64
	DefrostMinRH    float64
	DefrostDerate   float64

	// Cooling capacity is full up to CoolingRatedTempF and falls by
	// CoolingCapacitySlope per °F above it, never below CoolingCapacityFloor.
	CoolingRatedTempF    float64
	CoolingCapacitySlope float64
	CoolingCapacityFloor float64

	// Cooling COP equals SEER2/3.41214 at CoolingCOPAnchorF and changes by
	// CoolingCOPSlope (fraction per °F) away from it.
	CoolingCOPAnchorF float64
	CoolingCOPSlope   float64
}

// DefaultCurves returns the curve set used by SimulateHour.
func DefaultCurves() Curves {
	return Curves{
		DefrostMaxTempF:      45,
		DefrostMinRH:         60,
		DefrostDerate:        0.10,
		CoolingRatedTempF:    95,
		CoolingCapacitySlope: 0.01,
		CoolingCapacityFloor: 0.6,
		CoolingCOPAnchorF:    82,
		CoolingCOPSlope:      0.015,
	}
}

// HeatingCapacityFactor is the fraction of rated output deliverable at
// outdoorF. It is 1 at 47°F and above and reaches 0.64 at 17°F.
func HeatingCapacityFactor(outdoorF float64) float64 {
	switch {
	case outdoorF >= 47:
		return 1
	case outdoorF < 17:
		return math.Max(0, 0.64-(17-outdoorF)*0.01)
	default:
		return 1 - (47-outdoorF)*0.012
	}
}

func baseHeatingCOP(outdoorF float64) float64 {
	switch {
	case outdoorF >= 47:
		return 4.8
	case outdoorF >= 17:
		return 4.8 - (47-outdoorF)*0.0867
	default:
		return math.Max(1.2, 2.2-(17-outdoorF)*0.02)
	}
}

// hspf2Bins are the heating-season bin hours (bin temperature °F, hours)
// used to weight the base COP curve.
var hspf2Bins = [...]struct{ tempF, hours float64 }{
	{62, 87}, {57, 183}, {52, 294}, {47, 358}, {42, 415}, {37, 460},
	{33, 430}, {28, 407}, {23, 311}, {18, 239}, {13, 152}, {8, 91},
	{3, 47}, {-2, 20}, {-7, 8}, {-13, 3},
}

var baseSeasonalCOP = func() float64 {
	var weighted, hours float64
	for _, b := range hspf2Bins {
		weighted += baseHeatingCOP(b.tempF) * b.hours
		hours += b.hours
	}
	return weighted / hours
}()

// HeatingCOP is the base curve scaled so its bin-weighted seasonal average
// equals the COP implied by hspf2.
func HeatingCOP(outdoorF, hspf2 float64) float64 {
	target := hspf2 * 1000 / model.BTUPerKWh
	return baseHeatingCOP(outdoorF) * target / baseSeasonalCOP
}

// DefrostMultiplier is the factor (1 to 2) by which frost cycles divide COP.
// It peaks between 36°F and 40°F in saturated air.
func DefrostMultiplier(outdoorF, humidity float64) float64 {
	rh := humidity / 100
	t := outdoorF

	var tempMult float64
	switch {
	case t >= 36 && t <= 40:
		tempMult = 1
	case t > 40 && t <= 45:
		tempMult = 1 - ((t-40)/5)*0.5
	case t >= 32 && t < 36:
		tempMult = 1 - ((36-t)/4)*0.1
	case t >= 20 && t < 32:
		tempMult = 0.9 - ((32-t)/12)*0.3
	case t < 20:
		tempMult = math.Max(0.2, 0.6-((20-t)/30)*0.4)
	case t <= 50:
		tempMult = 0.5 - ((t-45)/5)*0.4
	default:
		tempMult = 0.1
	}

	base := 0.15
	if t >= 36 && t <= 40 {
		switch {
		case rh >= 0.9:
			base = 0.20
		case rh >= 0.8:
			base = 0.18
		}
	}
	penalty := base * rh * tempMult
	if rh >= 0.95 && t >= 32 && t <= 42 {
		penalty += (rh - 0.95) * 0.10 * tempMult
	}
	return math.Max(1, math.Min(2, 1+penalty))
}

// defrosting reports whether the defrost penalty applies.
func (c Curves) defrosting(outdoorF, humidity float64) bool {
	return outdoorF <= c.DefrostMaxTempF && humidity >= c.DefrostMinRH
}

// CoolingCapacityFactor is the fraction of rated cooling output at outdoorF.
func (c Curves) CoolingCapacityFactor(outdoorF float64) float64 {
	if outdoorF <= c.CoolingRatedTempF {
		return 1
	}
	return math.Max(c.CoolingCapacityFloor, 1-(outdoorF-c.CoolingRatedTempF)*c.CoolingCapacitySlope)
}

// CoolingCOP derives COP from SEER2, degrading in hotter air.
func (c Curves) CoolingCOP(outdoorF, seer2 float64) float64 {
	anchor := seer2 * 1000 / model.BTUPerKWh
	f := 1 - (outdoorF-c.CoolingCOPAnchorF)*c.CoolingCOPSlope
	return anchor * math.Max(0.5, math.Min(1.25, f))
}
