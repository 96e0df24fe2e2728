package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func TestClimateSeries_Validate(t *testing.T) {
	s := ClimateSeries{
		{Time: t0, OutdoorTempF: 30, RelativeHumidity: 70},
		{Time: t0.Add(time.Hour), OutdoorTempF: 28, RelativeHumidity: 72},
	}
	require.NoError(t, s.Validate())

	assert.ErrorIs(t, ClimateSeries{}.Validate(), ErrInvalidClimateData)

	bad := ClimateSeries{{Time: t0, OutdoorTempF: math.NaN(), RelativeHumidity: 50}}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidClimateData)

	humid := ClimateSeries{{Time: t0, OutdoorTempF: 40, RelativeHumidity: 120}}
	assert.ErrorIs(t, humid.Validate(), ErrInvalidClimateData)

	reversed := ClimateSeries{s[1], s[0]}
	assert.ErrorIs(t, reversed.Validate(), ErrInvalidClimateData)

	byIndex := ClimateSeries{{HourIndex: 3, OutdoorTempF: 40}, {HourIndex: 2, OutdoorTempF: 41}}
	assert.ErrorIs(t, byIndex.Validate(), ErrInvalidClimateData)
}

func TestClimateSeries_TimeRange(t *testing.T) {
	_, ok := ClimateSeries{}.TimeRange()
	assert.False(t, ok)

	s := ClimateSeries{{Time: t0}, {Time: t0.Add(5 * time.Hour)}}
	tr, ok := s.TimeRange()
	require.True(t, ok)
	assert.Equal(t, t0, tr.Start)
	assert.Equal(t, t0.Add(5*time.Hour), tr.End)
}

func TestMonthlyNormals_Sums(t *testing.T) {
	var n MonthlyNormals
	for i := range n {
		n[i] = DegreeDays{HDD: float64(100 * (i + 1)), CDD: float64(i)}
	}

	assert.InDelta(t, 7800, n.AnnualHDD(), 1e-9)
	assert.InDelta(t, 66, n.AnnualCDD(), 1e-9)
	assert.InDelta(t, 300, n.Month(time.March).HDD, 1e-9)
	assert.NoError(t, n.Validate())

	n[4].CDD = -1
	assert.ErrorIs(t, n.Validate(), ErrInvalidClimateData)
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(2023, time.January))
	assert.Equal(t, 28, DaysInMonth(2023, time.February))
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 30, DaysInMonth(2023, time.November))
	assert.Equal(t, 31, DaysInMonth(2023, time.December))
}
