package climate

import (
	"math"
	"testing"
	"time"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Roughly a mid-Atlantic climate.
var testNormals = model.MonthlyNormals{
	{HDD: 930, CDD: 0},
	{HDD: 780, CDD: 0},
	{HDD: 620, CDD: 2},
	{HDD: 330, CDD: 12},
	{HDD: 110, CDD: 70},
	{HDD: 10, CDD: 240},
	{HDD: 0, CDD: 390},
	{HDD: 0, CDD: 350},
	{HDD: 40, CDD: 160},
	{HDD: 280, CDD: 25},
	{HDD: 560, CDD: 0},
	{HDD: 860, CDD: 0},
}

func TestSynthesizeMonth_FullMonthOfHours(t *testing.T) {
	series, err := SynthesizeMonthHours(time.February, 780, 0)
	require.NoError(t, err)
	require.Len(t, series, 28*24)
	require.NoError(t, series.Validate())

	assert.Equal(t, time.Date(ReferenceYear, time.February, 1, 0, 0, 0, 0, time.UTC), series[0].Time)
	assert.Equal(t, 28*24-1, series[len(series)-1].HourIndex)
}

func TestSynthesizeMonth_ReproducesDegreeDays(t *testing.T) {
	for i, dd := range testNormals {
		month := time.Month(i + 1)
		series, err := SynthesizeMonthHours(month, dd.HDD, dd.CDD)
		require.NoError(t, err, month.String())

		got := IntegratedDegreeDays(series)
		assert.InDelta(t, dd.HDD, got.HDD, 1e-6, "%s HDD", month)
		assert.InDelta(t, dd.CDD, got.CDD, 1e-6, "%s CDD", month)
	}
}

func TestSynthesizeMonth_AnnualSumMatches(t *testing.T) {
	var hdd, cdd float64
	for i, dd := range testNormals {
		series, err := SynthesizeMonthHours(time.Month(i+1), dd.HDD, dd.CDD)
		require.NoError(t, err)
		got := IntegratedDegreeDays(series)
		hdd += got.HDD
		cdd += got.CDD
	}
	assert.InEpsilon(t, testNormals.AnnualHDD(), hdd, 1e-4)
	assert.InEpsilon(t, testNormals.AnnualCDD(), cdd, 1e-4)
}

func TestSynthesizeMonth_Deterministic(t *testing.T) {
	a, err := SynthesizeMonthHours(time.April, 330, 12)
	require.NoError(t, err)
	b, err := SynthesizeMonthHours(time.April, 330, 12)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSynthesizeMonth_DiurnalSwing(t *testing.T) {
	s := NewSynthesizer()
	series, err := s.SynthesizeMonth(time.January, 930, 0)
	require.NoError(t, err)

	day := series[:24]
	assert.Less(t, day[6].OutdoorTempF, day[18].OutdoorTempF)
	assert.InDelta(t, 2*DefaultAmplitudeF[0], day[18].OutdoorTempF-day[6].OutdoorTempF, 1e-9)
	// humidity moves against temperature
	assert.Greater(t, day[6].RelativeHumidity, day[18].RelativeHumidity)
}

func TestSynthesizeMonth_SingleSidedStaysOnOneSide(t *testing.T) {
	s := NewSynthesizer()
	s.AmplitudeF = [12]float64{}

	series, err := s.SynthesizeMonth(time.December, 60, 0)
	require.NoError(t, err)
	for _, smp := range series {
		assert.LessOrEqual(t, smp.OutdoorTempF, model.DegreeDayBaseF+1e-9)
	}
}

func TestSynthesizeMonth_ZeroDegreeDays(t *testing.T) {
	series, err := SynthesizeMonthHours(time.May, 0, 0)
	require.NoError(t, err)
	got := IntegratedDegreeDays(series)
	assert.InDelta(t, 0, got.HDD, 1e-9)
	assert.InDelta(t, 0, got.CDD, 1e-9)
}

func TestSynthesizeMonth_CustomProfile(t *testing.T) {
	s := NewSynthesizer()
	s.Profile = CosineProfile(4)
	series, err := s.SynthesizeMonth(time.March, 620, 2)
	require.NoError(t, err)

	got := IntegratedDegreeDays(series)
	assert.InDelta(t, 620, got.HDD, 1e-6)
	assert.InDelta(t, 2, got.CDD, 1e-6)
	assert.Less(t, series[4].OutdoorTempF, series[3].OutdoorTempF)
}

func TestSynthesizeMonth_InvalidInput(t *testing.T) {
	_, err := SynthesizeMonthHours(0, 100, 0)
	assert.ErrorIs(t, err, model.ErrInvalidClimateData)

	_, err = SynthesizeMonthHours(13, 100, 0)
	assert.ErrorIs(t, err, model.ErrInvalidClimateData)

	_, err = SynthesizeMonthHours(time.June, -1, 0)
	assert.ErrorIs(t, err, model.ErrInvalidClimateData)

	_, err = SynthesizeMonthHours(time.June, 0, math.NaN())
	assert.ErrorIs(t, err, model.ErrInvalidClimateData)
}

func TestSynthesizeYear(t *testing.T) {
	year, err := NewSynthesizer().SynthesizeYear(testNormals)
	require.NoError(t, err)

	require.Len(t, year, 8760)
	require.NoError(t, year.Validate())
	assert.Equal(t, time.Date(ReferenceYear, time.January, 1, 0, 0, 0, 0, time.UTC), year[0].Time)
	assert.Equal(t, time.Date(ReferenceYear, time.December, 31, 23, 0, 0, 0, time.UTC), year[8759].Time)
	assert.Equal(t, 8759, year[8759].HourIndex)

	dd := IntegratedDegreeDays(year)
	assert.InDelta(t, testNormals.AnnualHDD(), dd.HDD, 1)
	assert.InDelta(t, testNormals.AnnualCDD(), dd.CDD, 1)
}

func TestIntegratedDegreeDays_PartialDay(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var series model.ClimateSeries
	for h := 0; h < 12; h++ {
		series = append(series, model.ClimateSample{Time: start.Add(time.Duration(h) * time.Hour), OutdoorTempF: 45})
	}
	got := IntegratedDegreeDays(series)
	assert.InDelta(t, 10, got.HDD, 1e-9)
}
