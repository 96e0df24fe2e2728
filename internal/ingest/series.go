package ingest

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
)

// DefaultHumidity fills the rh column when it is missing or blank.
const DefaultHumidity = 65.0

// SeriesParser parses hourly climate CSV files.
//
// Expected format:
//
//	timestamp,temp_f,rh
//	2025-01-06T00:00:00Z,28.4,81
type SeriesParser struct {
	// Location applies to timestamps without a zone offset.
	Location *time.Location
}

func NewSeriesParser() *SeriesParser {
	return &SeriesParser{Location: time.UTC}
}

// Parse returns the samples sorted by time. Rows whose temperature is empty
// or "unavailable" are skipped.
func (p *SeriesParser) Parse(r io.Reader) (model.ClimateSeries, error) {
	cr := newReader(r)
	if err := readHeader(cr, []string{"timestamp", "temp_f"}); err != nil {
		return nil, err
	}

	var series model.ClimateSeries
	err := eachRecord(cr, func(record []string, lineNum int) error {
		sample, ok, err := p.parseRecord(record, lineNum)
		if err != nil {
			return err
		}
		if ok {
			series = append(series, sample)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no samples: %w", model.ErrInvalidClimateData)
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Time.Before(series[j].Time)
	})
	for i := range series {
		if i > 0 && series[i].Time.Equal(series[i-1].Time) {
			return nil, fmt.Errorf("duplicate timestamp %s: %w", series[i].Time.Format(time.RFC3339), model.ErrInvalidClimateData)
		}
		series[i].HourIndex = i
	}
	return series, nil
}

func (p *SeriesParser) parseRecord(record []string, lineNum int) (model.ClimateSample, bool, error) {
	if len(record) < 2 {
		return model.ClimateSample{}, false, fmt.Errorf("line %d: expected at least 2 fields, got %d", lineNum, len(record))
	}

	rawTemp := strings.TrimSpace(record[1])
	if skipValue(rawTemp) {
		return model.ClimateSample{}, false, nil
	}

	ts, err := p.parseTime(strings.TrimSpace(record[0]))
	if err != nil {
		return model.ClimateSample{}, false, fmt.Errorf("line %d: parsing timestamp %q: %w", lineNum, record[0], err)
	}

	temp, err := parseFinite(rawTemp)
	if err != nil {
		return model.ClimateSample{}, false, fmt.Errorf("line %d: temp_f: %w", lineNum, err)
	}

	rh := DefaultHumidity
	if len(record) > 2 {
		if raw := strings.TrimSpace(record[2]); !skipValue(raw) {
			if rh, err = parseFinite(raw); err != nil {
				return model.ClimateSample{}, false, fmt.Errorf("line %d: rh: %w", lineNum, err)
			}
		}
	}

	sample := model.ClimateSample{Time: ts, OutdoorTempF: temp, RelativeHumidity: rh}
	if err := sample.Validate(); err != nil {
		return model.ClimateSample{}, false, fmt.Errorf("line %d: %w", lineNum, err)
	}
	return sample, true, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func (p *SeriesParser) parseTime(s string) (time.Time, error) {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	var firstErr error
	for _, layout := range timeLayouts {
		ts, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return ts, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	// Unix seconds, as in Home Assistant statistics exports.
	if secs, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(secs) && !math.IsInf(secs, 0) {
		return time.Unix(int64(secs), 0).UTC(), nil
	}
	return time.Time{}, firstErr
}

func skipValue(s string) bool {
	switch strings.ToLower(s) {
	case "", "unavailable", "unknown":
		return true
	}
	return false
}

// parseFinite parses a float and rejects NaN and infinities as invalid climate data.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w: %w", s, model.ErrInvalidClimateData, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q: %w", s, model.ErrInvalidClimateData)
	}
	return v, nil
}

// FileSeries reads an hourly series CSV on every call.
type FileSeries struct {
	Path   string
	Parser *SeriesParser
}

func (f FileSeries) Series(ctx context.Context) (model.ClimateSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("opening series: %w", err)
	}
	defer file.Close()

	p := f.Parser
	if p == nil {
		p = NewSeriesParser()
	}
	series, err := p.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return series, nil
}
