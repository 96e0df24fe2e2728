// Package climate synthesizes typical-month hourly weather from degree-day normals.
package climate

import (
	"fmt"
	"math"
	"time"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
)

// DiurnalProfile is a 24-hour temperature shape around the daily mean.
type DiurnalProfile struct {
	// Shape holds the offset for each hour [0-23] in units of the daily
	// amplitude. It averages to zero and its largest magnitude is 1.
	Shape [24]float64
	// TroughHour is the coldest hour, PeakHour the warmest.
	TroughHour int
	PeakHour   int
}

// CosineProfile returns a symmetric cosine with its minimum at troughHour.
func CosineProfile(troughHour float64) DiurnalProfile {
	var p DiurnalProfile
	for h := 0; h < 24; h++ {
		p.Shape[h] = -math.Cos((float64(h) - troughHour) * math.Pi / 12)
	}
	p.normalize()
	return p
}

// DefaultProfile is coldest at 06:00 and warmest at 18:00.
func DefaultProfile() DiurnalProfile {
	return CosineProfile(6)
}

// BuildProfileFromSeries derives a shape from observed hourly data. Only
// complete days count; each hour's deviation from its day's mean is averaged.
func BuildProfileFromSeries(series model.ClimateSeries) (DiurnalProfile, error) {
	type day struct {
		temps [24]float64
		seen  [24]bool
		n     int
	}
	days := make(map[time.Time]*day)
	var order []time.Time
	for _, s := range series {
		if s.Time.IsZero() {
			continue
		}
		if !isFinite(s.OutdoorTempF) {
			return DiurnalProfile{}, fmt.Errorf("sample at %s: %w", s.Time.Format(time.RFC3339), model.ErrInvalidClimateData)
		}
		y, m, d := s.Time.Date()
		key := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		dd, ok := days[key]
		if !ok {
			dd = &day{}
			days[key] = dd
			order = append(order, key)
		}
		h := s.Time.Hour()
		if !dd.seen[h] {
			dd.seen[h] = true
			dd.n++
		}
		dd.temps[h] = s.OutdoorTempF
	}

	var hourSum [24]float64
	var full int
	for _, key := range order {
		dd := days[key]
		if dd.n < 24 {
			continue
		}
		var mean float64
		for _, t := range dd.temps {
			mean += t
		}
		mean /= 24
		for h, t := range dd.temps {
			hourSum[h] += t - mean
		}
		full++
	}
	if full == 0 {
		return DiurnalProfile{}, fmt.Errorf("no complete day in %d samples: %w", len(series), model.ErrInvalidClimateData)
	}

	var p DiurnalProfile
	for h := 0; h < 24; h++ {
		p.Shape[h] = hourSum[h] / float64(full)
	}
	if !p.normalize() {
		return DiurnalProfile{}, fmt.Errorf("flat diurnal profile: %w", model.ErrInvalidClimateData)
	}
	return p, nil
}

// At returns the shape value for a fractional hour, wrapping around midnight.
func (p DiurnalProfile) At(hour float64) float64 {
	return interpolateProfile(p.Shape, hour)
}

// normalize removes the mean, scales the peak magnitude to 1 and records the
// extreme hours. It reports false for a flat shape.
func (p *DiurnalProfile) normalize() bool {
	var mean float64
	for _, v := range p.Shape {
		mean += v
	}
	mean /= 24

	var maxAbs float64
	for h := range p.Shape {
		p.Shape[h] -= mean
		maxAbs = math.Max(maxAbs, math.Abs(p.Shape[h]))
	}
	if maxAbs < 1e-9 {
		return false
	}
	p.TroughHour, p.PeakHour = 0, 0
	for h := range p.Shape {
		p.Shape[h] /= maxAbs
		if p.Shape[h] < p.Shape[p.TroughHour] {
			p.TroughHour = h
		}
		if p.Shape[h] > p.Shape[p.PeakHour] {
			p.PeakHour = h
		}
	}
	return true
}

// interpolateProfile returns linearly interpolated factor for a fractional hour.
func interpolateProfile(factors [24]float64, hour float64) float64 {
	hour = math.Mod(hour, 24)
	if hour < 0 {
		hour += 24
	}

	lo := int(math.Floor(hour)) % 24
	hi := (lo + 1) % 24
	frac := hour - math.Floor(hour)

	return factors[lo]*(1-frac) + factors[hi]*frac
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
