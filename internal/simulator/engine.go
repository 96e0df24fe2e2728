package simulator

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
)

// State represents the current simulation state.
type State struct {
	Time    time.Time `json:"time"`
	Speed   float64   `json:"speed"`
	Running bool      `json:"running"`
}

// Summary holds running energy totals.
type Summary struct {
	TodayKWh float64 `json:"today_kwh"`
	MonthKWh float64 `json:"month_kwh"`
	TotalKWh float64 `json:"total_kwh"`

	HeatingKWh float64 `json:"heating_kwh"`
	CoolingKWh float64 `json:"cooling_kwh"`
	AuxKWh     float64 `json:"aux_kwh"`
	GasTherms  float64 `json:"gas_therms"`

	// Cost tracking (USD), energy charges only
	ElectricCost float64 `json:"electric_cost"`
	GasCost      float64 `json:"gas_cost"`
	TotalCost    float64 `json:"total_cost"`

	Hours        int `json:"hours"`
	HeatHours    int `json:"heat_hours"`
	CoolHours    int `json:"cool_hours"`
	DefrostHours int `json:"defrost_hours"`
	UnmetHours   int `json:"unmet_hours"`
}

// HourUpdate is emitted for every simulated hour.
type HourUpdate struct {
	Timestamp        string                        `json:"timestamp"`
	OutdoorTempF     float64                       `json:"outdoor_temp_f"`
	RelativeHumidity float64                       `json:"relative_humidity"`
	Result           model.HourlyPerformanceResult `json:"result"`
}

// Callback receives simulation events.
type Callback interface {
	OnState(state State)
	OnHour(update HourUpdate)
	OnSummary(summary Summary)
}

// Config is the house and equipment being replayed.
type Config struct {
	Equipment      model.EquipmentProfile `json:"equipment"`
	HeatLossFactor float64                `json:"heat_loss_factor"`
	Thermostat     model.Thermostat       `json:"thermostat"`
	Rates          model.UtilityRates     `json:"rates"`
}

// Validate checks every part of the configuration.
func (c Config) Validate() error {
	if err := c.Equipment.Validate(); err != nil {
		return fmt.Errorf("equipment: %w", err)
	}
	if c.HeatLossFactor <= 0 || math.IsNaN(c.HeatLossFactor) || math.IsInf(c.HeatLossFactor, 0) {
		return &model.ValidationError{Field: "heat_loss_factor", Value: c.HeatLossFactor, Err: model.ErrInvalidProfile}
	}
	if err := c.Thermostat.Validate(); err != nil {
		return fmt.Errorf("thermostat: %w", err)
	}
	if err := c.Rates.Validate(); err != nil {
		return fmt.Errorf("rates: %w", err)
	}
	return nil
}

// Engine replays a climate series through the performance model at
// configurable speed.
type Engine struct {
	mu       sync.Mutex
	model    *Model
	callback Callback
	cfg      Config

	series    model.ClimateSeries
	running   bool
	speed     float64
	simTime   time.Time
	timeRange model.TimeRange
	// finished is set once the final sample of the window has been emitted.
	finished bool

	// Tracking for energy summaries
	dayStart   time.Time
	monthStart time.Time
	todayKWh   float64
	monthKWh   float64
	sum        Summary

	stopCh chan struct{}
}

// New creates an engine. A nil model uses DefaultCurves.
func New(m *Model, cfg Config, cb Callback) *Engine {
	if m == nil {
		m = NewModel()
	}
	return &Engine{
		model:    m,
		cfg:      cfg,
		callback: cb,
		speed:    3600,
	}
}

// Load replaces the replayed series and seeks to its start. Every sample
// must carry a timestamp, and the engine's configuration must be valid.
func (e *Engine) Load(series model.ClimateSeries) error {
	if err := e.Config().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := series.Validate(); err != nil {
		return err
	}
	for i, s := range series {
		if s.Time.IsZero() {
			return fmt.Errorf("sample %d has no timestamp: %w", i, model.ErrInvalidClimateData)
		}
	}
	tr, _ := series.TimeRange()

	e.mu.Lock()
	e.series = series
	e.timeRange = tr
	e.simTime = tr.Start
	e.resetAccumulators()
	e.mu.Unlock()
	return nil
}

// State returns the current simulation state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Time:    e.simTime,
		Speed:   e.speed,
		Running: e.running,
	}
}

// Config returns the active configuration.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// SetConfig swaps the configuration without moving the clock. Totals so far
// are kept.
func (e *Engine) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
	return nil
}

// Start begins the simulation loop.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running || len(e.series) == 0 {
		e.mu.Unlock()
		return
	}
	if e.finished {
		e.simTime = e.timeRange.Start
		e.resetAccumulators()
	}
	e.running = true
	e.stopCh = make(chan struct{})
	e.mu.Unlock()

	e.broadcastState()
	go e.loop()
}

// Pause stops the simulation loop.
func (e *Engine) Pause() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stopCh)
	e.mu.Unlock()

	e.broadcastState()
}

// SetSpeed sets the simulation speed multiplier.
func (e *Engine) SetSpeed(speed float64) {
	if speed < 0.1 {
		speed = 0.1
	}
	if speed > 604800 {
		speed = 604800
	}

	e.mu.Lock()
	e.speed = speed
	e.mu.Unlock()

	e.broadcastState()
}

// resetAccumulators zeroes all energy counters. Must be called with mu held.
func (e *Engine) resetAccumulators() {
	e.dayStart = startOfDay(e.simTime)
	e.monthStart = startOfMonth(e.simTime)
	e.todayKWh = 0
	e.monthKWh = 0
	e.sum = Summary{}
	e.finished = false
}

// Seek jumps to a specific time and resets the energy summary.
func (e *Engine) Seek(t time.Time) {
	e.mu.Lock()
	if t.Before(e.timeRange.Start) {
		t = e.timeRange.Start
	}
	if t.After(e.timeRange.End) {
		t = e.timeRange.End
	}

	e.simTime = t
	e.resetAccumulators()
	e.mu.Unlock()

	e.broadcastState()
	e.broadcastSummary()
}

// SetTimeRange narrows the replay window and seeks to its start.
func (e *Engine) SetTimeRange(tr model.TimeRange) {
	e.mu.Lock()
	e.timeRange = tr
	e.mu.Unlock()
	e.Seek(tr.Start)
}

// TimeRange returns the replay window.
func (e *Engine) TimeRange() model.TimeRange {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeRange
}

// Summary returns the running totals.
func (e *Engine) Summary() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summaryLocked()
}

// Step advances the simulation by the given duration and emits hours.
// Useful for deterministic testing. Does not require Start().
func (e *Engine) Step(delta time.Duration) {
	e.mu.Lock()

	prevTime := e.simTime
	done := e.finished
	e.simTime = e.simTime.Add(delta)

	ended := false
	if !e.simTime.Before(e.timeRange.End) {
		e.simTime = e.timeRange.End
		e.finished = true
		ended = true
	}

	currentTime := e.simTime
	endTime := e.timeRange.End
	e.mu.Unlock()

	if !done {
		e.emitHours(prevTime, currentTime, endTime)
	}
	e.broadcastState()
	e.broadcastSummary()

	if ended {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		e.broadcastState()
	}
}

const tickInterval = 100 * time.Millisecond

func (e *Engine) loop() {
	e.mu.Lock()
	stopCh := e.stopCh
	e.mu.Unlock()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if e.tick() {
				return
			}
		}
	}
}

// tick advances one frame. Returns true if simulation reached the end.
func (e *Engine) tick() bool {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return true
	}

	simDelta := time.Duration(float64(tickInterval) * e.speed)
	prevTime := e.simTime
	done := e.finished
	e.simTime = e.simTime.Add(simDelta)

	ended := false
	if !e.simTime.Before(e.timeRange.End) {
		e.simTime = e.timeRange.End
		e.finished = true
		ended = true
	}

	currentTime := e.simTime
	endTime := e.timeRange.End
	e.mu.Unlock()

	if !done {
		e.emitHours(prevTime, currentTime, endTime)
	}
	e.broadcastState()
	e.broadcastSummary()

	if ended {
		e.mu.Lock()
		if e.running {
			e.running = false
			close(e.stopCh)
		}
		e.mu.Unlock()
		e.broadcastState()
		return true
	}

	return false
}

// emitHours simulates the samples in [prevTime, currentTime). The final
// sample is included once the clock reaches endTime; callers skip the call
// after that so it is counted once.
func (e *Engine) emitHours(prevTime, currentTime, endTime time.Time) {
	e.mu.Lock()
	series := e.series
	cfg := e.cfg
	e.mu.Unlock()

	queryEnd := currentTime
	if !currentTime.Before(endTime) {
		queryEnd = currentTime.Add(time.Nanosecond)
	}
	lo := sort.Search(len(series), func(i int) bool { return !series[i].Time.Before(prevTime) })
	hi := sort.Search(len(series), func(i int) bool { return !series[i].Time.Before(queryEnd) })

	for _, s := range series[lo:hi] {
		res, err := e.model.SimulateThermostatHour(cfg.Equipment, cfg.HeatLossFactor, cfg.Thermostat, s)
		if err != nil {
			slog.Warn("skipping replay hour", "time", s.Time.Format(time.RFC3339), "error", err)
			continue
		}
		e.callback.OnHour(HourUpdate{
			Timestamp:        s.Time.Format(time.RFC3339),
			OutdoorTempF:     s.OutdoorTempF,
			RelativeHumidity: s.RelativeHumidity,
			Result:           res,
		})
		e.updateEnergy(s.Time, res, cfg.Rates)
	}
}

func (e *Engine) updateEnergy(ts time.Time, res model.HourlyPerformanceResult, rates model.UtilityRates) {
	e.mu.Lock()
	defer e.mu.Unlock()

	kwh := res.ElectricKWh()
	newDay := startOfDay(ts)
	if newDay.After(e.dayStart) {
		e.dayStart = newDay
		e.todayKWh = 0
	}
	newMonth := startOfMonth(ts)
	if newMonth.After(e.monthStart) {
		e.monthStart = newMonth
		e.monthKWh = 0
	}
	e.todayKWh += kwh
	e.monthKWh += kwh

	s := &e.sum
	s.TotalKWh += kwh
	s.Hours++
	switch res.Mode {
	case model.ModeHeat:
		s.HeatingKWh += kwh
		s.AuxKWh += res.AuxEnergyKWh
		s.GasTherms += res.AuxTherms
		s.HeatHours++
	case model.ModeCool:
		s.CoolingKWh += kwh
		s.CoolHours++
	}
	if res.DefrostPenaltyApplied {
		s.DefrostHours++
	}
	if res.UnmetLoadBTU > 0 {
		s.UnmetHours++
	}
	s.ElectricCost += kwh * rates.ElectricPerKWh
	s.GasCost += res.AuxTherms * rates.GasPerTherm
}

// summaryLocked must be called with mu held.
func (e *Engine) summaryLocked() Summary {
	s := e.sum
	s.TodayKWh = e.todayKWh
	s.MonthKWh = e.monthKWh
	s.TotalCost = s.ElectricCost + s.GasCost
	return s
}

func (e *Engine) broadcastState() {
	e.callback.OnState(e.State())
}

func (e *Engine) broadcastSummary() {
	e.callback.OnSummary(e.Summary())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
