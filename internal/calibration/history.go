package calibration

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
)

// HistoryStore persists one active bill record per (year, month).
type HistoryStore interface {
	// RecordMonth stores rec under (year, month), replacing any earlier record.
	RecordMonth(ctx context.Context, year int, month time.Month, rec model.BillRecord) error
	// LoadHistory returns the active record of every period, in any order.
	LoadHistory(ctx context.Context) ([]model.BillRecord, error)
	// Find returns the active record for a period.
	Find(ctx context.Context, year int, month time.Month) (model.BillRecord, bool, error)
}

// NewRecord builds the persisted comparison for a bill. GapPercent and GapCost
// stay nil when the expectation is not positive.
func (e *Engine) NewRecord(year int, month time.Month, actualKWh float64, actualCost *float64, expected model.MonthlyExpectation, utilityCost float64) (model.BillRecord, error) {
	if err := checkBill(actualKWh, actualCost, month, utilityCost); err != nil {
		return model.BillRecord{}, err
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	rec := model.BillRecord{
		Year:          year,
		Month:         month,
		ActualKWh:     actualKWh,
		ActualCost:    actualCost,
		PredictedKWh:  expected.KWh,
		PredictedCost: expected.Cost,
		GapKWh:        actualKWh - expected.KWh,
		RecordedAt:    now().UTC(),
	}
	if checkBaseline(expected) == nil {
		pct := 100 * rec.GapKWh / expected.KWh
		cost := rec.GapKWh * utilityCost
		rec.GapPercent = &pct
		rec.GapCost = &cost
	}
	return rec, nil
}

// RecordAndPersist writes rec for (year, month), overwriting any earlier
// record for the period.
func RecordAndPersist(ctx context.Context, store HistoryStore, year int, month time.Month, rec model.BillRecord) error {
	if !model.ValidMonth(month) {
		return &model.ValidationError{Field: "month", Value: float64(month), Err: model.ErrInvalidBill}
	}
	rec.Year = year
	rec.Month = month
	if err := store.RecordMonth(ctx, year, month, rec); err != nil {
		return fmt.Errorf("record %s: %w", model.PeriodKey(year, month), err)
	}
	return nil
}

// DefaultTrendWindow is the number of recent months a trend covers.
const DefaultTrendWindow = 6

// Trend thresholds.
const (
	HighGapPercent = 10.0
	OutlierSigma   = 2.0
)

// Trend summarizes the most recent bill gaps.
type Trend struct {
	Window        int                `json:"window"`
	Records       []model.BillRecord `json:"records"`
	AvgGapPercent float64            `json:"avg_gap_percent"`
	AvgGapCost    float64            `json:"avg_gap_cost"`
	StdDevPercent float64            `json:"stddev_percent"`
	HighMonths    int                `json:"high_months"`
	Outliers      []string           `json:"outliers"`
}

// ComputeTrend averages the newest window records that have a gap percent.
// Months whose gap is more than two standard deviations from the window mean
// are listed by key. A window of zero or less uses DefaultTrendWindow.
func ComputeTrend(history []model.BillRecord, window int) Trend {
	if window <= 0 {
		window = DefaultTrendWindow
	}

	defined := make([]model.BillRecord, 0, len(history))
	for _, r := range history {
		if r.GapPercent != nil {
			defined = append(defined, r)
		}
	}
	sort.SliceStable(defined, func(i, j int) bool { return defined[i].Before(defined[j]) })
	if len(defined) > window {
		defined = defined[len(defined)-window:]
	}

	t := Trend{Window: window, Records: defined, Outliers: []string{}}
	if len(defined) == 0 {
		return t
	}

	var sum, sumSq, costSum float64
	var costN int
	for _, r := range defined {
		p := *r.GapPercent
		sum += p
		sumSq += p * p
		if p > HighGapPercent {
			t.HighMonths++
		}
		if r.GapCost != nil {
			costSum += *r.GapCost
			costN++
		}
	}
	n := float64(len(defined))
	t.AvgGapPercent = sum / n
	if costN > 0 {
		t.AvgGapCost = costSum / float64(costN)
	}

	variance := sumSq/n - t.AvgGapPercent*t.AvgGapPercent
	if variance < 0 {
		variance = 0
	}
	t.StdDevPercent = math.Sqrt(variance)
	if t.StdDevPercent > 0 {
		for _, r := range defined {
			if math.Abs(*r.GapPercent-t.AvgGapPercent) > OutlierSigma*t.StdDevPercent {
				t.Outliers = append(t.Outliers, r.Key())
			}
		}
	}
	return t
}
