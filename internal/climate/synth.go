package climate

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
)

// ReferenceYear is the non-leap calendar year synthesized months fall in.
const ReferenceYear = 2023

// DefaultAmplitudeF is half the typical daily temperature range per month.
var DefaultAmplitudeF = [12]float64{8, 8.5, 9.5, 10.5, 10.5, 10, 9.5, 9.5, 10, 10.5, 9, 8}

// DefaultHumidity is the mean relative humidity per month.
var DefaultHumidity = [12]float64{70, 68, 65, 63, 66, 70, 72, 73, 72, 68, 70, 72}

// NormalsSource provides a 12-month HDD/CDD table.
type NormalsSource interface {
	Normals(ctx context.Context) (model.MonthlyNormals, error)
}

// SeriesSource provides an hourly climate series such as a forecast.
type SeriesSource interface {
	Series(ctx context.Context) (model.ClimateSeries, error)
}

// Synthesizer turns a month's degree days into an hourly series. The curve
// is an approximation: every parameter below can be tuned.
type Synthesizer struct {
	Profile DiurnalProfile
	// AmplitudeF scales Profile for each month (January first).
	AmplitudeF [12]float64
	// Humidity is the mean RH per month; HumiditySwing is the RH change at
	// full profile amplitude, opposite in sign to temperature.
	Humidity      [12]float64
	HumiditySwing float64
	// SpreadF is the default half-range of daily means across the month
	// when only one of HDD and CDD is positive.
	SpreadF float64
	Year    int
}

// NewSynthesizer returns a synthesizer with the default curve.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{
		Profile:       DefaultProfile(),
		AmplitudeF:    DefaultAmplitudeF,
		Humidity:      DefaultHumidity,
		HumiditySwing: 12,
		SpreadF:       6,
		Year:          ReferenceYear,
	}
}

// SynthesizeMonthHours uses the default synthesizer.
func SynthesizeMonthHours(month time.Month, hdd, cdd float64) (model.ClimateSeries, error) {
	return NewSynthesizer().SynthesizeMonth(month, hdd, cdd)
}

// SynthesizeMonth returns every hour of month. Daily means reproduce hdd and
// cdd against the 65°F base; the diurnal shape averages out within each day.
func (s *Synthesizer) SynthesizeMonth(month time.Month, hdd, cdd float64) (model.ClimateSeries, error) {
	if !model.ValidMonth(month) {
		return nil, fmt.Errorf("month %d: %w", int(month), model.ErrInvalidClimateData)
	}
	if !isFinite(hdd) || hdd < 0 {
		return nil, fmt.Errorf("%s hdd %v: %w", month, hdd, model.ErrInvalidClimateData)
	}
	if !isFinite(cdd) || cdd < 0 {
		return nil, fmt.Errorf("%s cdd %v: %w", month, cdd, model.ErrInvalidClimateData)
	}

	year := s.Year
	if year == 0 {
		year = ReferenceYear
	}
	means := s.dailyMeans(month, model.DaysInMonth(year, month), hdd, cdd)

	amp := s.AmplitudeF[month-1]
	rh := s.Humidity[month-1]
	series := make(model.ClimateSeries, 0, len(means)*24)
	for d, mean := range means {
		for h := 0; h < 24; h++ {
			shape := s.Profile.Shape[h]
			series = append(series, model.ClimateSample{
				Time:             time.Date(year, month, d+1, h, 0, 0, 0, time.UTC),
				HourIndex:        d*24 + h,
				OutdoorTempF:     mean + amp*shape,
				RelativeHumidity: clamp(rh-s.HumiditySwing*shape, 0, 100),
			})
		}
	}
	return series, nil
}

// SynthesizeYear concatenates every month of normals into one hourly series.
func (s *Synthesizer) SynthesizeYear(normals model.MonthlyNormals) (model.ClimateSeries, error) {
	var year model.ClimateSeries
	for m := time.January; m <= time.December; m++ {
		dd := normals.Month(m)
		month, err := s.SynthesizeMonth(m, dd.HDD, dd.CDD)
		if err != nil {
			return nil, err
		}
		for _, sample := range month {
			sample.HourIndex = len(year)
			year = append(year, sample)
		}
	}
	return year, nil
}

// dailyMeans spreads the month's mean linearly across its days. The month's
// position in the year decides whether it warms or cools.
func (s *Synthesizer) dailyMeans(month time.Month, days int, hdd, cdd float64) []float64 {
	base := model.DegreeDayBaseF
	n := float64(days)
	mu := base - (hdd-cdd)/n

	z := make([]float64, days)
	dir := 1.0
	if month >= time.August || month == time.January {
		dir = -1
	}
	for d := range z {
		if days > 1 {
			z[d] = dir * (-1 + 2*float64(d)/float64(days-1))
		}
	}

	var spread float64
	switch {
	case hdd > 0 && cdd > 0:
		spread = solveSpread(mu, base, z, cdd)
	case hdd > 0:
		spread = math.Min(math.Max(s.SpreadF, 0), base-mu)
	case cdd > 0:
		spread = math.Min(math.Max(s.SpreadF, 0), mu-base)
	}

	means := make([]float64, days)
	for d := range means {
		means[d] = mu + spread*z[d]
	}
	return means
}

// solveSpread bisects for the spread at which days above base add up to cdd.
// Sum(m-base) is fixed by mu, so matching cdd also matches hdd.
func solveSpread(mu, base float64, z []float64, cdd float64) float64 {
	above := func(spread float64) float64 {
		var sum float64
		for _, zd := range z {
			sum += math.Max(0, mu+spread*zd-base)
		}
		return sum
	}

	lo, hi := 0.0, 1.0
	for above(hi) < cdd && hi < 1e6 {
		hi *= 2
	}
	for i := 0; i < 200 && hi-lo > 1e-12; i++ {
		mid := (lo + hi) / 2
		if above(mid) < cdd {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// IntegratedDegreeDays sums degree days over the daily means of series.
// Days with fewer than 24 samples count in proportion.
func IntegratedDegreeDays(series model.ClimateSeries) model.DegreeDays {
	type acc struct {
		sum float64
		n   int
	}
	var order []int64
	days := make(map[int64]*acc)
	for _, s := range series {
		key := int64(s.HourIndex / 24)
		if !s.Time.IsZero() {
			y, m, d := s.Time.Date()
			key = time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
		}
		a, ok := days[key]
		if !ok {
			a = &acc{}
			days[key] = a
			order = append(order, key)
		}
		a.sum += s.OutdoorTempF
		a.n++
	}

	var dd model.DegreeDays
	for _, key := range order {
		a := days[key]
		mean := a.sum / float64(a.n)
		weight := math.Min(1, float64(a.n)/24)
		dd.HDD += math.Max(0, model.DegreeDayBaseF-mean) * weight
		dd.CDD += math.Max(0, mean-model.DegreeDayBaseF) * weight
	}
	return dd
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
