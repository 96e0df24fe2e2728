package model

import (
	"fmt"
	"time"
)

// DegreeDayBaseF is the balance temperature for HDD/CDD normals.
const DegreeDayBaseF = 65.0

// ClimateSample is one hour of outdoor conditions.
type ClimateSample struct {
	Time             time.Time `json:"time"`
	HourIndex        int       `json:"hour_index"`
	OutdoorTempF     float64   `json:"outdoor_temp_f"`
	RelativeHumidity float64   `json:"relative_humidity"`
}

// Validate rejects non-finite temperatures and humidity outside 0-100.
func (s ClimateSample) Validate() error {
	if !finite(s.OutdoorTempF) {
		return invalid(ErrInvalidClimateData, "outdoor_temp_f", s.OutdoorTempF)
	}
	if !finite(s.RelativeHumidity) || s.RelativeHumidity < 0 || s.RelativeHumidity > 100 {
		return invalid(ErrInvalidClimateData, "relative_humidity", s.RelativeHumidity)
	}
	return nil
}

// ClimateSeries is a chronological run of hourly samples.
type ClimateSeries []ClimateSample

// Validate checks every sample and the chronological order.
func (cs ClimateSeries) Validate() error {
	if len(cs) == 0 {
		return fmt.Errorf("empty series: %w", ErrInvalidClimateData)
	}
	for i, s := range cs {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		if i == 0 {
			continue
		}
		prev := cs[i-1]
		if !s.Time.IsZero() && !prev.Time.IsZero() && s.Time.Before(prev.Time) {
			return fmt.Errorf("sample %d at %s precedes %s: %w", i,
				s.Time.Format(time.RFC3339), prev.Time.Format(time.RFC3339), ErrInvalidClimateData)
		}
		if s.Time.IsZero() && s.HourIndex < prev.HourIndex {
			return fmt.Errorf("sample %d hour index %d precedes %d: %w", i, s.HourIndex, prev.HourIndex, ErrInvalidClimateData)
		}
	}
	return nil
}

// TimeRange returns the first and last sample times.
func (cs ClimateSeries) TimeRange() (TimeRange, bool) {
	if len(cs) == 0 {
		return TimeRange{}, false
	}
	return TimeRange{Start: cs[0].Time, End: cs[len(cs)-1].Time}, true
}

// DegreeDays is one month of climate-normal aggregates.
type DegreeDays struct {
	HDD float64 `json:"hdd" yaml:"hdd"`
	CDD float64 `json:"cdd" yaml:"cdd"`
}

// MonthlyNormals holds HDD/CDD normals indexed January..December.
type MonthlyNormals [12]DegreeDays

// Month returns the normals for a calendar month.
func (n MonthlyNormals) Month(m time.Month) DegreeDays {
	return n[m-1]
}

// AnnualHDD sums heating degree days over the year.
func (n MonthlyNormals) AnnualHDD() float64 {
	var sum float64
	for _, dd := range n {
		sum += dd.HDD
	}
	return sum
}

// AnnualCDD sums cooling degree days over the year.
func (n MonthlyNormals) AnnualCDD() float64 {
	var sum float64
	for _, dd := range n {
		sum += dd.CDD
	}
	return sum
}

// Validate rejects negative or non-finite degree days.
func (n MonthlyNormals) Validate() error {
	for i, dd := range n {
		if !finite(dd.HDD) || dd.HDD < 0 {
			return fmt.Errorf("%s: %w", time.Month(i+1), invalid(ErrInvalidClimateData, "hdd", dd.HDD))
		}
		if !finite(dd.CDD) || dd.CDD < 0 {
			return fmt.Errorf("%s: %w", time.Month(i+1), invalid(ErrInvalidClimateData, "cdd", dd.CDD))
		}
	}
	return nil
}

// ValidMonth reports whether m is a calendar month.
func ValidMonth(m time.Month) bool {
	return m >= time.January && m <= time.December
}

type TimeRange struct {
	Start time.Time
	End   time.Time
}
