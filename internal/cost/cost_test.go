package cost

import (
	"testing"
	"time"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/climate"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFactor = 22.67 * 1500 / 70

var testNormals = model.MonthlyNormals{
	{HDD: 930}, {HDD: 780}, {HDD: 620, CDD: 2}, {HDD: 330, CDD: 12},
	{HDD: 110, CDD: 70}, {HDD: 10, CDD: 240}, {CDD: 390}, {CDD: 350},
	{HDD: 40, CDD: 160}, {HDD: 280, CDD: 25}, {HDD: 560}, {HDD: 860},
}

var testRates = model.UtilityRates{ElectricPerKWh: 0.15, GasPerTherm: 1.4, FixedMonthly: 12}

func weekSeries(t *testing.T, tempF float64) model.ClimateSeries {
	t.Helper()
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	series := make(model.ClimateSeries, 7*24)
	for i := range series {
		series[i] = model.ClimateSample{
			Time:             start.Add(time.Duration(i) * time.Hour),
			OutdoorTempF:     tempF,
			RelativeHumidity: 50,
		}
	}
	return series
}

func assertConserved(t *testing.T, e model.CostEstimate) {
	t.Helper()
	assert.InDelta(t, e.KWh, e.HeatingKWh+e.CoolingKWh+e.BaseLoadKWh, 1e-6)
}

func TestComputeWeeklyCost_Uplift(t *testing.T) {
	a := New()
	eq := model.DefaultEquipment()
	th := model.FixedSetpoint(68)

	est, err := a.ComputeWeeklyCost(weekSeries(t, 35), eq, testFactor, th, testRates)
	require.NoError(t, err)

	assertConserved(t, est)
	assert.Equal(t, 168, est.Hours)
	assert.Greater(t, est.HeatingKWh, 0.0)
	assert.Zero(t, est.CoolingKWh)
	assert.InDelta(t, 0.15*est.HeatingKWh, est.BaseLoadKWh, 1e-9)
	assert.InDelta(t, est.KWh*0.15+12*7/(365.0/12), est.Cost, 1e-9)
}

func TestComputeWeeklyCost_KWhPerDayClamped(t *testing.T) {
	a := New()
	a.BaseLoad = BaseLoad{KWhPerDay: 40}

	est, err := a.ComputeWeeklyCost(weekSeries(t, 68), model.DefaultEquipment(), testFactor, model.FixedSetpoint(68), testRates)
	require.NoError(t, err)

	assert.Zero(t, est.HeatingKWh)
	assert.InDelta(t, 25*7, est.BaseLoadKWh, 1e-9)
	assertConserved(t, est)
}

func TestComputeWeeklyCost_MatchesHourlySum(t *testing.T) {
	a := New()
	a.BaseLoad = BaseLoad{}
	eq := model.DefaultEquipment()
	series := weekSeries(t, 20)

	est, err := a.ComputeWeeklyCost(series, eq, testFactor, model.FixedSetpoint(70), testRates)
	require.NoError(t, err)

	var want float64
	for _, s := range series {
		res, err := a.Model.SimulateHour(eq, testFactor, 70, s)
		require.NoError(t, err)
		want += res.ElectricKWh()
	}
	assert.InDelta(t, want, est.HeatingKWh, 1e-9)
	assert.InDelta(t, want, est.KWh, 1e-9)
}

func TestComputeWeeklyCost_GasAux(t *testing.T) {
	a := New()
	eq := model.DefaultEquipment()
	eq.AuxFuel = model.AuxGas
	eq.CompressorMinOutdoorTempF = 10

	est, err := a.ComputeWeeklyCost(weekSeries(t, 0), eq, testFactor, model.FixedSetpoint(68), testRates)
	require.NoError(t, err)

	assert.Zero(t, est.HeatingKWh)
	assert.Greater(t, est.GasTherms, 0.0)
	assert.InDelta(t, est.GasTherms*1.4, est.GasCost, 1e-9)
}

func TestComputeWeeklyCost_Errors(t *testing.T) {
	a := New()
	eq := model.DefaultEquipment()
	th := model.DefaultThermostat()

	_, err := a.ComputeWeeklyCost(nil, eq, testFactor, th, testRates)
	assert.ErrorIs(t, err, model.ErrInvalidClimateData)

	_, err = a.ComputeWeeklyCost(weekSeries(t, 30), eq, 0, th, testRates)
	assert.ErrorIs(t, err, model.ErrInvalidProfile)

	_, err = a.ComputeWeeklyCost(weekSeries(t, 30), eq, testFactor, th, model.UtilityRates{ElectricPerKWh: -1})
	assert.ErrorIs(t, err, model.ErrInvalidProfile)
}

func TestComputeAnnualCost_Conservation(t *testing.T) {
	a := New()
	var progress []time.Month
	a.OnMonth = func(m time.Month) { progress = append(progress, m) }

	annual, err := a.ComputeAnnualCost(testNormals, model.DefaultEquipment(), testFactor, model.DefaultThermostat(), testRates)
	require.NoError(t, err)

	assert.Len(t, progress, 12)
	assertConserved(t, annual.Total)
	assert.Equal(t, 8760, annual.Total.Hours)

	var heating, cooling float64
	for _, m := range annual.Months {
		assertConserved(t, m)
		heating += m.HeatingKWh
		cooling += m.CoolingKWh
	}
	assert.InDelta(t, heating, annual.Total.HeatingKWh, 1e-6)
	assert.InDelta(t, cooling, annual.Total.CoolingKWh, 1e-6)
	assert.InDelta(t, 0.15*(heating+cooling), annual.Total.BaseLoadKWh, 1e-6)
	assert.InDelta(t, 12*12, annual.Total.FixedCost, 1e-9)

	// January costs more to heat than July
	assert.Greater(t, annual.Months[0].HeatingKWh, annual.Months[6].HeatingKWh)
	assert.Greater(t, annual.Months[6].CoolingKWh, annual.Months[0].CoolingKWh)
}

func TestComputeAnnualCost_KnownAnnualTotal(t *testing.T) {
	a := New()
	a.BaseLoad = BaseLoad{KnownAnnualKWh: 20000}

	annual, err := a.ComputeAnnualCost(testNormals, model.DefaultEquipment(), testFactor, model.DefaultThermostat(), testRates)
	require.NoError(t, err)

	hvac := annual.Total.HeatingKWh + annual.Total.CoolingKWh
	require.Less(t, hvac, 20000.0)
	assert.InDelta(t, 20000, annual.Total.KWh, 1e-6)
	for _, m := range annual.Months {
		assert.InDelta(t, (20000-hvac)/12, m.BaseLoadKWh, 1e-6)
	}

	// a known total smaller than HVAC leaves no base load
	a.BaseLoad = BaseLoad{KnownAnnualKWh: 1}
	annual, err = a.ComputeAnnualCost(testNormals, model.DefaultEquipment(), testFactor, model.DefaultThermostat(), testRates)
	require.NoError(t, err)
	assert.Zero(t, annual.Total.BaseLoadKWh)
}

func TestComputeAnnualCost_Deterministic(t *testing.T) {
	a := New()
	first, err := a.ComputeAnnualCost(testNormals, model.DefaultEquipment(), testFactor, model.DefaultThermostat(), testRates)
	require.NoError(t, err)
	second, err := a.ComputeAnnualCost(testNormals, model.DefaultEquipment(), testFactor, model.DefaultThermostat(), testRates)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeAnnualCost_InvalidNormals(t *testing.T) {
	bad := testNormals
	bad[3].HDD = -5
	_, err := New().ComputeAnnualCost(bad, model.DefaultEquipment(), testFactor, model.DefaultThermostat(), testRates)
	assert.ErrorIs(t, err, model.ErrInvalidClimateData)
}

func TestComputeAnnualCost_SynthesizedDegreeDaysMatchNormals(t *testing.T) {
	s := climate.NewSynthesizer()
	var hdd float64
	for i, dd := range testNormals {
		series, err := s.SynthesizeMonth(time.Month(i+1), dd.HDD, dd.CDD)
		require.NoError(t, err)
		hdd += climate.IntegratedDegreeDays(series).HDD
	}
	assert.InEpsilon(t, testNormals.AnnualHDD(), hdd, 1e-4)
}

func TestComputeExpectedMonthly(t *testing.T) {
	annual, err := New().ComputeAnnualCost(testNormals, model.DefaultEquipment(), testFactor, model.DefaultThermostat(), testRates)
	require.NoError(t, err)

	jan, err := ComputeExpectedMonthly(annual, time.January, testNormals)
	require.NoError(t, err)

	assert.Equal(t, time.January, jan.Month)
	assert.InDelta(t, annual.Total.HeatingKWh*930/testNormals.AnnualHDD(), jan.HeatingKWh, 1e-9)
	assert.Zero(t, jan.CoolingKWh)
	assert.InDelta(t, annual.Total.BaseLoadKWh/12, jan.BaseLoadKWh, 1e-9)
	assert.InDelta(t, jan.KWh, jan.HeatingKWh+jan.CoolingKWh+jan.BaseLoadKWh, 1e-6)
	assert.InDelta(t, jan.KWh*0.15+12, jan.Cost, 1e-9)

	var heating, total float64
	for m := time.January; m <= time.December; m++ {
		exp, err := ComputeExpectedMonthly(annual, m, testNormals)
		require.NoError(t, err)
		heating += exp.HeatingKWh
		total += exp.KWh
	}
	assert.InDelta(t, annual.Total.HeatingKWh, heating, 1e-6)
	assert.InDelta(t, annual.Total.KWh, total, 1e-6)
}

func TestComputeExpectedMonthly_NoDegreeDaysSplitsEvenly(t *testing.T) {
	annual := AnnualEstimate{Total: model.CostEstimate{HeatingKWh: 1200, CoolingKWh: 600, BaseLoadKWh: 2400, KWh: 4200}}
	exp, err := ComputeExpectedMonthly(annual, time.May, model.MonthlyNormals{})
	require.NoError(t, err)
	assert.InDelta(t, 100, exp.HeatingKWh, 1e-9)
	assert.InDelta(t, 50, exp.CoolingKWh, 1e-9)
	assert.InDelta(t, 350, exp.KWh, 1e-9)
}

func TestComputeExpectedMonthly_BadMonth(t *testing.T) {
	_, err := ComputeExpectedMonthly(AnnualEstimate{}, 0, testNormals)
	assert.ErrorIs(t, err, model.ErrInvalidClimateData)
}
