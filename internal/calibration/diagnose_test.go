package calibration

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expected(kwh float64) model.MonthlyExpectation {
	return model.MonthlyExpectation{KWh: kwh, Cost: kwh * 0.15}
}

func ptr(v float64) *float64 { return &v }

func TestClassifyGap(t *testing.T) {
	assert.Equal(t, model.GapLarge, ClassifyGap(30))
	assert.Equal(t, model.GapLarge, ClassifyGap(100*210.0/700))
	assert.Equal(t, model.GapLarge, ClassifyGap(-45))
	assert.Equal(t, model.GapMedium, ClassifyGap(29.9))
	assert.Equal(t, model.GapMedium, ClassifyGap(15))
	assert.Equal(t, model.GapMedium, ClassifyGap(-20))
	assert.Equal(t, model.GapMinor, ClassifyGap(14.9))
	assert.Equal(t, model.GapMinor, ClassifyGap(0))
}

func TestDiagnose_LargeWinterGap(t *testing.T) {
	e := NewEngine(model.DefaultThermostat())
	r, err := e.Diagnose(910, nil, expected(700), time.January, 0.15)
	require.NoError(t, err)

	assert.InDelta(t, 210, r.Gap.KWh, 1e-9)
	assert.InDelta(t, 30, r.Gap.Percent, 1e-9)
	assert.InDelta(t, 31.5, r.Gap.Cost, 1e-9)
	assert.Equal(t, model.GapLarge, r.Class)
	assert.Equal(t, model.SeasonWinter, r.Season)

	require.NotEmpty(t, r.Findings)
	assert.Equal(t, model.SeverityCritical, r.Findings[0].Severity)
	assert.Contains(t, r.Findings[0].Title, "resistance heat")
	assert.Contains(t, r.Findings[0].Detail, "fan spinning")

	assert.Contains(t, r.Recommendations, RecCheckThermostat)
	assert.Equal(t, "Closing this gap would save about $31.50 this month.", r.Recommendations[len(r.Recommendations)-1])
}

func TestDiagnose_LargeSummerGapHiddenLoad(t *testing.T) {
	e := NewEngine(model.DefaultThermostat())
	r, err := e.Diagnose(1400, nil, expected(1000), time.July, 0.12)
	require.NoError(t, err)

	assert.Equal(t, model.SeasonSummer, r.Season)
	assert.Equal(t, "Possible hidden load", r.Findings[0].Title)
	for _, cause := range []string{"pool pump", "EV charger", "always-on appliance"} {
		assert.Contains(t, r.Findings[0].Detail, cause)
	}
}

func TestDiagnose_LargeShoulderGap(t *testing.T) {
	e := NewEngine(model.DefaultThermostat())
	r, err := e.Diagnose(700, nil, expected(500), time.April, 0.15)
	require.NoError(t, err)
	assert.Equal(t, model.SeasonShoulder, r.Season)
	assert.Equal(t, model.SeverityCritical, r.Findings[0].Severity)
	assert.Equal(t, "Usage far above expected", r.Findings[0].Title)
}

func TestDiagnose_MediumGapComparesSetpoint(t *testing.T) {
	e := NewEngine(model.Thermostat{HeatSetpointF: 72, CoolSetpointF: 74})

	r, err := e.Diagnose(840, nil, expected(700), time.February, 0.10)
	require.NoError(t, err)
	assert.Equal(t, model.GapMedium, r.Class)
	assert.Equal(t, model.SeverityWarning, r.Findings[0].Severity)
	assert.Contains(t, r.Findings[0].Detail, "heat setpoint of 72°F")
	assert.Contains(t, r.Findings[0].Detail, "68°F default")

	r, err = e.Diagnose(840, nil, expected(700), time.August, 0.10)
	require.NoError(t, err)
	assert.Contains(t, r.Findings[0].Detail, "cool setpoint of 74°F")
	assert.Contains(t, r.Findings[0].Detail, "76°F default")

	// shoulder months in spring and fall compare the heating setpoint
	r, err = e.Diagnose(840, nil, expected(700), time.October, 0.10)
	require.NoError(t, err)
	assert.Contains(t, r.Findings[0].Detail, "heat setpoint")
}

func TestDiagnose_ThermostatRecommendationNotDuplicated(t *testing.T) {
	e := NewEngine(model.DefaultThermostat())
	r, err := e.Diagnose(840, nil, expected(700), time.February, 0.10)
	require.NoError(t, err)

	var n int
	for _, rec := range r.Recommendations {
		if rec == RecCheckThermostat {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestDiagnose_CostRecommendationThreshold(t *testing.T) {
	e := NewEngine(model.DefaultThermostat())

	// gap cost $14: no dollar recommendation
	r, err := e.Diagnose(840, nil, expected(700), time.January, 0.10)
	require.NoError(t, err)
	for _, rec := range r.Recommendations {
		assert.False(t, strings.HasPrefix(rec, "Closing this gap"))
	}

	// gap cost $28
	r, err = e.Diagnose(840, nil, expected(700), time.January, 0.20)
	require.NoError(t, err)
	assert.Contains(t, r.Recommendations, "Closing this gap would save about $28.00 this month.")
}

func TestDiagnose_MinorOverage(t *testing.T) {
	e := NewEngine(model.DefaultThermostat())
	r, err := e.Diagnose(750, nil, expected(700), time.May, 0.15)
	require.NoError(t, err)

	assert.Equal(t, model.GapMinor, r.Class)
	assert.Equal(t, model.SeverityInfo, r.Findings[0].Severity)
	assert.Equal(t, []string{RecCheckThermostat}, r.Recommendations)
}

func TestDiagnose_BetterThanExpected(t *testing.T) {
	e := NewEngine(model.DefaultThermostat())
	for m := time.January; m <= time.December; m++ {
		r, err := e.Diagnose(560, nil, expected(700), m, 0.15)
		require.NoError(t, err)

		assert.InDelta(t, -140, r.Gap.KWh, 1e-9)
		assert.InDelta(t, -20, r.Gap.Percent, 1e-9)
		assert.Equal(t, "Efficiency better than expected", r.Findings[0].Title)
		assert.Equal(t, model.SeveritySuccess, r.Findings[0].Severity)
		assert.False(t, r.HasSeverity(model.SeverityCritical))
		// exactly 20% is not beyond the near-optimal threshold
		assert.NotContains(t, r.Recommendations, RecNearOptimal)
	}
}

func TestDiagnose_NearOptimal(t *testing.T) {
	e := NewEngine(model.DefaultThermostat())
	r, err := e.Diagnose(500, nil, expected(700), time.March, 0.15)
	require.NoError(t, err)
	assert.Equal(t, []string{RecNearOptimal}, r.Recommendations)
}

func TestDiagnose_ImpliedRateMismatch(t *testing.T) {
	e := NewEngine(model.DefaultThermostat())

	r, err := e.Diagnose(700, ptr(140), expected(700), time.March, 0.15)
	require.NoError(t, err)
	assert.True(t, r.HasSeverity(model.SeverityInfo))
	assert.Contains(t, r.Findings[len(r.Findings)-1].Detail, "$0.200/kWh")

	r, err = e.Diagnose(700, ptr(108), expected(700), time.March, 0.15)
	require.NoError(t, err)
	assert.False(t, r.HasSeverity(model.SeverityInfo))
}

func TestDiagnose_UndefinedBaseline(t *testing.T) {
	e := NewEngine(model.DefaultThermostat())
	_, err := e.Diagnose(500, nil, expected(0), time.January, 0.15)
	assert.ErrorIs(t, err, model.ErrUndefinedBaseline)

	_, err = e.Diagnose(500, nil, expected(-10), time.January, 0.15)
	assert.ErrorIs(t, err, model.ErrUndefinedBaseline)
}

func TestDiagnose_InvalidBill(t *testing.T) {
	e := NewEngine(model.DefaultThermostat())

	_, err := e.Diagnose(math.NaN(), nil, expected(700), time.January, 0.15)
	assert.ErrorIs(t, err, model.ErrInvalidBill)

	_, err = e.Diagnose(500, ptr(-1), expected(700), time.January, 0.15)
	assert.ErrorIs(t, err, model.ErrInvalidBill)

	_, err = e.Diagnose(500, nil, expected(700), 13, 0.15)
	assert.ErrorIs(t, err, model.ErrInvalidBill)
}

func TestDiagnose_Deterministic(t *testing.T) {
	e := NewEngine(model.Thermostat{HeatSetpointF: 71, CoolSetpointF: 74})
	inputs := []struct {
		actual float64
		month  time.Month
	}{
		{910, time.January}, {560, time.June}, {820, time.September}, {1200, time.July},
	}
	for _, in := range inputs {
		a, err := e.Diagnose(in.actual, ptr(150), expected(700), in.month, 0.15)
		require.NoError(t, err)
		b, err := e.Diagnose(in.actual, ptr(150), expected(700), in.month, 0.15)
		require.NoError(t, err)

		ja, err := json.Marshal(a)
		require.NoError(t, err)
		jb, err := json.Marshal(b)
		require.NoError(t, err)
		assert.Equal(t, ja, jb)
	}
}
