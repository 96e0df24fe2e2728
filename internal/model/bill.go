package model

import (
	"fmt"
	"time"
)

// BillRecord is the persisted comparison of one month's bill against the estimate.
type BillRecord struct {
	Year          int        `json:"year"`
	Month         time.Month `json:"month"`
	ActualKWh     float64    `json:"actualKwh"`
	ActualCost    *float64   `json:"actualCost,omitempty"`
	PredictedKWh  float64    `json:"predictedKwh"`
	PredictedCost float64    `json:"predictedCost"`
	GapKWh        float64    `json:"gapKwh"`
	// GapPercent and GapCost are nil when the prediction was not positive.
	GapPercent *float64  `json:"gapPercent,omitempty"`
	GapCost    *float64  `json:"gapCost,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Key returns the history key for the record's period.
func (r BillRecord) Key() string {
	return PeriodKey(r.Year, r.Month)
}

// PeriodKey formats a (year, month) history key, e.g. "2025-01".
func PeriodKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// Before orders records chronologically by period.
func (r BillRecord) Before(o BillRecord) bool {
	if r.Year != o.Year {
		return r.Year < o.Year
	}
	return r.Month < o.Month
}

// Severity tags a diagnosis finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
	SeveritySuccess  Severity = "success"
)

// GapClass buckets the size of the bill gap.
type GapClass string

const (
	GapLarge  GapClass = "large"
	GapMedium GapClass = "medium"
	GapMinor  GapClass = "minor"
)

// Season groups months for diagnosis.
type Season string

const (
	SeasonWinter   Season = "winter"
	SeasonSummer   Season = "summer"
	SeasonShoulder Season = "shoulder"
)

// SeasonOf classifies a calendar month.
func SeasonOf(m time.Month) Season {
	switch m {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonShoulder
	}
}

// Finding is one diagnosis line.
type Finding struct {
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Detail   string   `json:"detail"`
}

// Gap is the difference between actual and expected usage.
type Gap struct {
	KWh     float64 `json:"kwh"`
	Percent float64 `json:"percent"`
	Cost    float64 `json:"cost"`
}

// DiagnosisReport is computed on demand from a bill and its expectation.
type DiagnosisReport struct {
	Month           time.Month `json:"month"`
	Season          Season     `json:"season"`
	Class           GapClass   `json:"class"`
	Gap             Gap        `json:"gap"`
	Findings        []Finding  `json:"findings"`
	Recommendations []string   `json:"recommendations"`
}

// HasSeverity reports whether any finding carries s.
func (d DiagnosisReport) HasSeverity(s Severity) bool {
	for _, f := range d.Findings {
		if f.Severity == s {
			return true
		}
	}
	return false
}
