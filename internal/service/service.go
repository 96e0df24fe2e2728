// Package service ties heat loss, the annual estimate, bill diagnosis and
// history together for the CLI and HTTP surfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/calibration"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/climate"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/cost"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/heatloss"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/metrics"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
)

// ErrNoNormals is returned when an operation needs climate normals and none
// are configured.
var ErrNoNormals = errors.New("no climate normals configured")

// Profile is everything an estimate depends on.
type Profile struct {
	Building   model.BuildingProfile  `json:"building"`
	HeatLoss   heatloss.Overrides     `json:"heat_loss"`
	Equipment  model.EquipmentProfile `json:"equipment"`
	Thermostat model.Thermostat       `json:"thermostat"`
	Rates      model.UtilityRates     `json:"rates"`
}

// Bill is one month of utility usage as entered by the homeowner.
type Bill struct {
	Year       int        `json:"year"`
	Month      time.Month `json:"month"`
	ActualKWh  float64    `json:"actual_kwh"`
	ActualCost *float64   `json:"actual_cost,omitempty"`
}

// Diagnosis is a diagnosis report with the expectation it was built from.
// Record is set when the bill was saved to history.
type Diagnosis struct {
	Report   model.DiagnosisReport    `json:"report"`
	Expected model.MonthlyExpectation `json:"expected"`
	HeatLoss model.HeatLossResult     `json:"heat_loss"`
	Record   *model.BillRecord        `json:"record,omitempty"`
}

// Service is safe for concurrent use as long as Aggregator.OnMonth is not
// changed while estimates run.
type Service struct {
	Aggregator *cost.Aggregator
	Normals    climate.NormalsSource
	History    calibration.HistoryStore
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

func New(agg *cost.Aggregator, normals climate.NormalsSource, history calibration.HistoryStore, m *metrics.Metrics) *Service {
	if agg == nil {
		agg = cost.New()
	}
	return &Service{
		Aggregator: agg,
		Normals:    normals,
		History:    history,
		Metrics:    m,
		Now:        time.Now,
	}
}

// HeatLoss resolves the factor from overrides or the building envelope.
func (s *Service) HeatLoss(p Profile) (model.HeatLossResult, error) {
	return heatloss.Resolve(p.Building, p.HeatLoss)
}

func (s *Service) normals(ctx context.Context) (model.MonthlyNormals, error) {
	if s.Normals == nil {
		return model.MonthlyNormals{}, ErrNoNormals
	}
	return s.Normals.Normals(ctx)
}

// Annual estimates a typical year from the configured normals.
func (s *Service) Annual(ctx context.Context, p Profile) (cost.AnnualEstimate, error) {
	est, _, _, err := s.annual(ctx, p)
	return est, err
}

func (s *Service) annual(ctx context.Context, p Profile) (cost.AnnualEstimate, model.MonthlyNormals, model.HeatLossResult, error) {
	hl, err := s.HeatLoss(p)
	if err != nil {
		return cost.AnnualEstimate{}, model.MonthlyNormals{}, hl, fmt.Errorf("heat loss: %w", err)
	}
	normals, err := s.normals(ctx)
	if err != nil {
		return cost.AnnualEstimate{}, normals, hl, err
	}

	start := time.Now()
	est, err := s.Aggregator.ComputeAnnualCost(normals, p.Equipment, hl.BTUPerHourPerF, p.Thermostat, p.Rates)
	if err != nil {
		return cost.AnnualEstimate{}, normals, hl, fmt.Errorf("annual estimate: %w", err)
	}
	s.Metrics.Estimate("annual", time.Since(start))
	slog.Debug("annual estimate computed",
		"kwh", est.Total.KWh,
		"cost", est.Total.Cost,
		"heat_loss_btu_per_f", hl.BTUPerHourPerF,
		"heat_loss_source", hl.Source)
	return est, normals, hl, nil
}

// Weekly estimates the cost of an hourly forecast series.
func (s *Service) Weekly(ctx context.Context, p Profile, src climate.SeriesSource) (model.CostEstimate, error) {
	hl, err := s.HeatLoss(p)
	if err != nil {
		return model.CostEstimate{}, fmt.Errorf("heat loss: %w", err)
	}
	series, err := src.Series(ctx)
	if err != nil {
		return model.CostEstimate{}, err
	}

	start := time.Now()
	est, err := s.Aggregator.ComputeWeeklyCost(series, p.Equipment, hl.BTUPerHourPerF, p.Thermostat, p.Rates)
	if err != nil {
		return model.CostEstimate{}, fmt.Errorf("weekly estimate: %w", err)
	}
	s.Metrics.Estimate("weekly", time.Since(start))
	return est, nil
}

// Expected returns the expected usage for one calendar month.
func (s *Service) Expected(ctx context.Context, p Profile, month time.Month) (model.MonthlyExpectation, error) {
	est, normals, _, err := s.annual(ctx, p)
	if err != nil {
		return model.MonthlyExpectation{}, err
	}
	return cost.ComputeExpectedMonthly(est, month, normals)
}

// Diagnose explains a bill. With save set and a year given, the comparison
// is also written to history.
func (s *Service) Diagnose(ctx context.Context, p Profile, bill Bill, save bool) (Diagnosis, error) {
	if !model.ValidMonth(bill.Month) {
		return Diagnosis{}, &model.ValidationError{Field: "month", Value: float64(bill.Month), Err: model.ErrInvalidBill}
	}
	est, normals, hl, err := s.annual(ctx, p)
	if err != nil {
		return Diagnosis{}, err
	}
	expected, err := cost.ComputeExpectedMonthly(est, bill.Month, normals)
	if err != nil {
		return Diagnosis{}, err
	}

	engine := s.engine(p)
	report, err := engine.Diagnose(bill.ActualKWh, bill.ActualCost, expected, bill.Month, p.Rates.ElectricPerKWh)
	if err != nil {
		return Diagnosis{}, err
	}
	s.Metrics.Diagnosis(report.Class)

	out := Diagnosis{Report: report, Expected: expected, HeatLoss: hl}
	if save {
		rec, err := s.persist(ctx, engine, p, bill, expected)
		if err != nil {
			return Diagnosis{}, err
		}
		out.Record = &rec
	}
	return out, nil
}

// Record compares a bill with its expectation and saves it, replacing any
// earlier record for the same month.
func (s *Service) Record(ctx context.Context, p Profile, bill Bill) (model.BillRecord, error) {
	if !model.ValidMonth(bill.Month) {
		return model.BillRecord{}, &model.ValidationError{Field: "month", Value: float64(bill.Month), Err: model.ErrInvalidBill}
	}
	expected, err := s.Expected(ctx, p, bill.Month)
	if err != nil {
		return model.BillRecord{}, err
	}
	return s.persist(ctx, s.engine(p), p, bill, expected)
}

func (s *Service) persist(ctx context.Context, engine *calibration.Engine, p Profile, bill Bill, expected model.MonthlyExpectation) (model.BillRecord, error) {
	if s.History == nil {
		return model.BillRecord{}, errors.New("no history store configured")
	}
	if bill.Year < 1 {
		return model.BillRecord{}, &model.ValidationError{Field: "year", Value: float64(bill.Year), Err: model.ErrInvalidBill}
	}
	rec, err := engine.NewRecord(bill.Year, bill.Month, bill.ActualKWh, bill.ActualCost, expected, p.Rates.ElectricPerKWh)
	if err != nil {
		return model.BillRecord{}, err
	}
	err = calibration.RecordAndPersist(ctx, s.History, bill.Year, bill.Month, rec)
	s.Metrics.HistoryWrite(err)
	if err != nil {
		return model.BillRecord{}, err
	}
	slog.Info("bill recorded", "period", rec.Key(), "actual_kwh", rec.ActualKWh, "predicted_kwh", rec.PredictedKWh)
	return rec, nil
}

// LoadHistory returns the active record of every month, oldest first.
func (s *Service) LoadHistory(ctx context.Context) ([]model.BillRecord, error) {
	if s.History == nil {
		return []model.BillRecord{}, nil
	}
	return s.History.LoadHistory(ctx)
}

// Trend summarizes the newest window months of history.
func (s *Service) Trend(ctx context.Context, window int) (calibration.Trend, error) {
	hist, err := s.LoadHistory(ctx)
	if err != nil {
		return calibration.Trend{}, err
	}
	return calibration.ComputeTrend(hist, window), nil
}

func (s *Service) engine(p Profile) *calibration.Engine {
	e := calibration.NewEngine(p.Thermostat)
	if s.Now != nil {
		e.Now = s.Now
	}
	return e
}
