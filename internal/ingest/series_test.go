package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
)

func TestSeriesParser_Parse(t *testing.T) {
	input := `timestamp,temp_f,rh
2025-01-06T00:00:00Z,28.4,81
2025-01-06T01:00:00Z,27.9,83
2025-01-06T02:00:00Z,27.1,84`

	series, err := NewSeriesParser().Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), series[0].Time)
	assert.InDelta(t, 28.4, series[0].OutdoorTempF, 0.001)
	assert.InDelta(t, 81, series[0].RelativeHumidity, 0.001)
	assert.Equal(t, 2, series[2].HourIndex)
}

func TestSeriesParser_SkipsUnavailable(t *testing.T) {
	input := `timestamp,temp_f,rh
2025-01-06T00:00:00Z,28.4,81
2025-01-06T01:00:00Z,unavailable,83
2025-01-06T02:00:00Z,,84
2025-01-06T03:00:00Z,26.5,85`

	series, err := NewSeriesParser().Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.InDelta(t, 28.4, series[0].OutdoorTempF, 0.001)
	assert.InDelta(t, 26.5, series[1].OutdoorTempF, 0.001)
}

func TestSeriesParser_SortsChronologically(t *testing.T) {
	input := `timestamp,temp_f,rh
2025-01-06 02:00:00,30,70
2025-01-06 00:00:00,32,70
2025-01-06 01:00:00,31,70`

	series, err := NewSeriesParser().Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.NoError(t, series.Validate())
	assert.InDelta(t, 32, series[0].OutdoorTempF, 0.001)
	assert.InDelta(t, 30, series[2].OutdoorTempF, 0.001)
	assert.Equal(t, 0, series[0].HourIndex)
}

func TestSeriesParser_MissingHumidityUsesDefault(t *testing.T) {
	input := `timestamp,temp_f
2025-07-01T15:00:00Z,91.5`

	series, err := NewSeriesParser().Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.InDelta(t, DefaultHumidity, series[0].RelativeHumidity, 0.001)
}

func TestSeriesParser_RejectsNonFinite(t *testing.T) {
	for _, bad := range []string{"NaN", "+Inf", "-inf"} {
		input := "timestamp,temp_f,rh\n2025-01-06T00:00:00Z," + bad + ",80"
		_, err := NewSeriesParser().Parse(strings.NewReader(input))
		assert.ErrorIs(t, err, model.ErrInvalidClimateData, bad)
	}
}

func TestSeriesParser_RejectsNonNumeric(t *testing.T) {
	for _, input := range []string{
		"timestamp,temp_f,rh\n2025-01-06T00:00:00Z,abc,80",
		"timestamp,temp_f,rh\n2025-01-06T00:00:00Z,30,wet",
	} {
		_, err := NewSeriesParser().Parse(strings.NewReader(input))
		assert.ErrorIs(t, err, model.ErrInvalidClimateData, input)
	}
}

func TestSeriesParser_RejectsDuplicateTimestamp(t *testing.T) {
	input := `timestamp,temp_f,rh
2025-01-06T01:00:00Z,27.9,83
2025-01-06T00:00:00Z,28.4,81
2025-01-06T01:00:00Z,27.5,84`

	_, err := NewSeriesParser().Parse(strings.NewReader(input))

	require.ErrorIs(t, err, model.ErrInvalidClimateData)
	assert.Contains(t, err.Error(), "duplicate timestamp 2025-01-06T01:00:00Z")
}

func TestSeriesParser_RejectsHumidityOutOfRange(t *testing.T) {
	input := "timestamp,temp_f,rh\n2025-01-06T00:00:00Z,30,140"
	_, err := NewSeriesParser().Parse(strings.NewReader(input))
	assert.ErrorIs(t, err, model.ErrInvalidClimateData)
}

func TestSeriesParser_InvalidHeader(t *testing.T) {
	input := `time,temp,rh
2025-01-06T00:00:00Z,28.4,81`

	_, err := NewSeriesParser().Parse(strings.NewReader(input))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp")
}

func TestSeriesParser_EmptyIsInvalid(t *testing.T) {
	_, err := NewSeriesParser().Parse(strings.NewReader("timestamp,temp_f,rh\n"))
	assert.ErrorIs(t, err, model.ErrInvalidClimateData)
}

func TestFileSeries_Series(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecast.csv")
	require.NoError(t, os.WriteFile(path, []byte("timestamp,temp_f,rh\n2025-01-06T00:00:00Z,20,75\n"), 0600))

	series, err := FileSeries{Path: path}.Series(context.Background())

	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.InDelta(t, 20, series[0].OutdoorTempF, 0.001)
}

func TestFileSeries_MissingFile(t *testing.T) {
	_, err := FileSeries{Path: filepath.Join(t.TempDir(), "nope.csv")}.Series(context.Background())
	assert.Error(t, err)
}
