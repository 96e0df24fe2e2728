package ws

import (
	"encoding/json"
	"time"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/simulator"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client -> Server messages

type SetSpeedPayload struct {
	Speed float64 `json:"speed"`
}

type SeekPayload struct {
	Timestamp string `json:"timestamp"`
}

type SetSourcePayload struct {
	Source string `json:"source"`
}

// ConfigUpdatePayload changes the replayed house. Zero fields keep their
// current value.
type ConfigUpdatePayload struct {
	HeatSetpointF  float64 `json:"heat_setpoint_f"`
	CoolSetpointF  float64 `json:"cool_setpoint_f"`
	HeatLossFactor float64 `json:"heat_loss_factor"`
	ElectricPerKWh float64 `json:"electric_per_kwh"`
	GasPerTherm    float64 `json:"gas_per_therm"`
}

// Server -> Client messages

type SimStatePayload struct {
	Time    string  `json:"time"`
	Speed   float64 `json:"speed"`
	Running bool    `json:"running"`
}

type HourPayload struct {
	Timestamp        string  `json:"timestamp"`
	OutdoorTempF     float64 `json:"outdoor_temp_f"`
	RelativeHumidity float64 `json:"relative_humidity"`
	Mode             string  `json:"mode"`
	LoadBTU          float64 `json:"load_btu"`
	HeatPumpKWh      float64 `json:"heat_pump_kwh"`
	AuxKWh           float64 `json:"aux_kwh"`
	AuxTherms        float64 `json:"aux_therms"`
	COP              float64 `json:"cop"`
	UnmetBTU         float64 `json:"unmet_btu"`
	Defrost          bool    `json:"defrost"`
	LockedOut        bool    `json:"locked_out"`
}

type SummaryPayload struct {
	TodayKWh     float64 `json:"today_kwh"`
	MonthKWh     float64 `json:"month_kwh"`
	TotalKWh     float64 `json:"total_kwh"`
	HeatingKWh   float64 `json:"heating_kwh"`
	CoolingKWh   float64 `json:"cooling_kwh"`
	AuxKWh       float64 `json:"aux_kwh"`
	GasTherms    float64 `json:"gas_therms"`
	ElectricCost float64 `json:"electric_cost"`
	GasCost      float64 `json:"gas_cost"`
	TotalCost    float64 `json:"total_cost"`
	Hours        int     `json:"hours"`
	DefrostHours int     `json:"defrost_hours"`
	UnmetHours   int     `json:"unmet_hours"`
}

type TimeRangeInfo struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DataLoadedPayload struct {
	Sources   []string         `json:"sources"`
	TimeRange TimeRangeInfo    `json:"time_range"`
	Config    simulator.Config `json:"config"`
}

// Message type constants
const (
	// Client -> Server
	TypeSimStart     = "sim:start"
	TypeSimPause     = "sim:pause"
	TypeSimSetSpeed  = "sim:set_speed"
	TypeSimSeek      = "sim:seek"
	TypeSimSetSource = "sim:set_source"
	TypeConfigUpdate = "config:update"

	// Server -> Client
	TypeSimState      = "sim:state"
	TypeHourUpdate    = "hour:update"
	TypeSummaryUpdate = "summary:update"
	TypeDataLoaded    = "data:loaded"
)

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func SimStateFromEngine(s simulator.State) SimStatePayload {
	return SimStatePayload{
		Time:    s.Time.UTC().Format(time.RFC3339),
		Speed:   s.Speed,
		Running: s.Running,
	}
}

func HourFromEngine(h simulator.HourUpdate) HourPayload {
	r := h.Result
	return HourPayload{
		Timestamp:        h.Timestamp,
		OutdoorTempF:     h.OutdoorTempF,
		RelativeHumidity: h.RelativeHumidity,
		Mode:             string(r.Mode),
		LoadBTU:          r.RequiredLoadBTU,
		HeatPumpKWh:      r.HeatPumpEnergyKWh,
		AuxKWh:           r.AuxEnergyKWh,
		AuxTherms:        r.AuxTherms,
		COP:              r.EffectiveCOP,
		UnmetBTU:         r.UnmetLoadBTU,
		Defrost:          r.DefrostPenaltyApplied,
		LockedOut:        r.CompressorLockedOut,
	}
}

func SummaryFromEngine(s simulator.Summary) SummaryPayload {
	return SummaryPayload{
		TodayKWh:     s.TodayKWh,
		MonthKWh:     s.MonthKWh,
		TotalKWh:     s.TotalKWh,
		HeatingKWh:   s.HeatingKWh,
		CoolingKWh:   s.CoolingKWh,
		AuxKWh:       s.AuxKWh,
		GasTherms:    s.GasTherms,
		ElectricCost: s.ElectricCost,
		GasCost:      s.GasCost,
		TotalCost:    s.TotalCost,
		Hours:        s.Hours,
		DefrostHours: s.DefrostHours,
		UnmetHours:   s.UnmetHours,
	}
}
