package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeatingCapacityFactor(t *testing.T) {
	assert.Equal(t, 1.0, HeatingCapacityFactor(60))
	assert.Equal(t, 1.0, HeatingCapacityFactor(47))
	assert.InDelta(t, 0.64, HeatingCapacityFactor(17), 1e-9)
	assert.InDelta(t, 0.82, HeatingCapacityFactor(32), 1e-9)
	assert.InDelta(t, 0.54, HeatingCapacityFactor(7), 1e-9)
	assert.Equal(t, 0.0, HeatingCapacityFactor(-60))
}

func TestHeatingCapacityFactor_Monotonic(t *testing.T) {
	prev := HeatingCapacityFactor(-70)
	for temp := -69.5; temp <= 70; temp += 0.5 {
		cur := HeatingCapacityFactor(temp)
		assert.GreaterOrEqual(t, cur, prev, "temp %.1f", temp)
		prev = cur
	}
}

func TestHeatingCOP_MatchesHSPF2(t *testing.T) {
	for _, hspf2 := range []float64{7.5, 9, 11} {
		var weighted, hours float64
		for _, b := range hspf2Bins {
			weighted += HeatingCOP(b.tempF, hspf2) * b.hours
			hours += b.hours
		}
		assert.InDelta(t, hspf2*1000/3412.14, weighted/hours, 1e-9)
	}
}

func TestHeatingCOP_DegradesWithCold(t *testing.T) {
	assert.Greater(t, HeatingCOP(47, 9), HeatingCOP(17, 9))
	assert.Greater(t, HeatingCOP(17, 9), HeatingCOP(0, 9))
	// floor of the base curve
	assert.InDelta(t, HeatingCOP(-50, 9), HeatingCOP(-80, 9), 1e-12)
}

func TestDefrostMultiplier(t *testing.T) {
	// worst case: 36-40°F in saturated air
	assert.InDelta(t, 1.205, DefrostMultiplier(38, 100), 1e-9)
	assert.InDelta(t, 1.153, DefrostMultiplier(38, 85), 1e-9)
	assert.InDelta(t, 1.0, DefrostMultiplier(60, 0), 1e-12)
	assert.Greater(t, DefrostMultiplier(38, 90), DefrostMultiplier(10, 90))

	for temp := -20.0; temp <= 70; temp++ {
		for rh := 0.0; rh <= 100; rh += 10 {
			m := DefrostMultiplier(temp, rh)
			assert.GreaterOrEqual(t, m, 1.0)
			assert.LessOrEqual(t, m, 2.0)
		}
	}
}

func TestCoolingCurves(t *testing.T) {
	c := DefaultCurves()

	assert.Equal(t, 1.0, c.CoolingCapacityFactor(90))
	assert.InDelta(t, 0.95, c.CoolingCapacityFactor(100), 1e-9)
	assert.InDelta(t, 0.6, c.CoolingCapacityFactor(160), 1e-9)

	assert.InDelta(t, 16/3.41214, c.CoolingCOP(82, 16), 1e-9)
	assert.Less(t, c.CoolingCOP(100, 16), c.CoolingCOP(82, 16))
	assert.Greater(t, c.CoolingCOP(75, 16), c.CoolingCOP(82, 16))
}
