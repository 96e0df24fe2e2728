package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/simulator"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler manages WebSocket connections and routes messages to the engine.
type Handler struct {
	hub          *Hub
	engine       *simulator.Engine
	sourceRanges map[string]model.TimeRange
}

// NewHandler serves the replay engine. sourceRanges names the windows a
// client may switch between, e.g. "forecast" or a single month.
func NewHandler(hub *Hub, engine *simulator.Engine, sourceRanges map[string]model.TimeRange) *Handler {
	return &Handler{hub: hub, engine: engine, sourceRanges: sourceRanges}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.hub.Register(client)
	go client.writePump()

	h.sendDataLoaded(client)
	h.sendSimState(client)

	h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read failed", "error", err)
			}
			return
		}

		h.handleMessage(msg)
	}
}

func (h *Handler) handleMessage(msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		slog.Warn("invalid websocket message", "error", err)
		return
	}

	switch env.Type {
	case TypeSimStart:
		h.engine.Start()

	case TypeSimPause:
		h.engine.Pause()

	case TypeSimSetSpeed:
		var p SetSpeedPayload
		if !decode(env, &p) {
			return
		}
		h.engine.SetSpeed(p.Speed)

	case TypeSimSeek:
		var p SeekPayload
		if !decode(env, &p) {
			return
		}
		t, err := time.Parse(time.RFC3339, p.Timestamp)
		if err != nil {
			slog.Warn("invalid seek timestamp", "timestamp", p.Timestamp, "error", err)
			return
		}
		h.engine.Seek(t)

	case TypeSimSetSource:
		var p SetSourcePayload
		if !decode(env, &p) {
			return
		}
		tr, ok := h.sourceRanges[p.Source]
		if !ok {
			slog.Warn("unknown replay source", "source", p.Source)
			return
		}
		h.engine.SetTimeRange(tr)
		h.broadcastDataLoaded()

	case TypeConfigUpdate:
		var p ConfigUpdatePayload
		if !decode(env, &p) {
			return
		}
		cfg := applyConfigUpdate(h.engine.Config(), p)
		if err := h.engine.SetConfig(cfg); err != nil {
			slog.Warn("rejected config update", "error", err)
			return
		}
		h.broadcastDataLoaded()

	default:
		slog.Warn("unknown message type", "type", env.Type)
	}
}

func decode(env Envelope, v any) bool {
	if err := json.Unmarshal(env.Payload, v); err != nil {
		slog.Warn("invalid payload", "type", env.Type, "error", err)
		return false
	}
	return true
}

func applyConfigUpdate(cfg simulator.Config, p ConfigUpdatePayload) simulator.Config {
	if p.HeatSetpointF > 0 {
		cfg.Thermostat.HeatSetpointF = p.HeatSetpointF
	}
	if p.CoolSetpointF > 0 {
		cfg.Thermostat.CoolSetpointF = p.CoolSetpointF
	}
	if p.HeatLossFactor > 0 {
		cfg.HeatLossFactor = p.HeatLossFactor
	}
	if p.ElectricPerKWh > 0 {
		cfg.Rates.ElectricPerKWh = p.ElectricPerKWh
	}
	if p.GasPerTherm > 0 {
		cfg.Rates.GasPerTherm = p.GasPerTherm
	}
	return cfg
}

func (h *Handler) broadcastDataLoaded() {
	msg, err := h.dataLoadedMessage()
	if err != nil {
		slog.Error("creating data:loaded message", "error", err)
		return
	}
	h.hub.Broadcast(msg)
}

func (h *Handler) dataLoadedMessage() ([]byte, error) {
	tr := h.engine.TimeRange()
	sources := make([]string, 0, len(h.sourceRanges))
	for name := range h.sourceRanges {
		sources = append(sources, name)
	}
	sort.Strings(sources)

	return NewEnvelope(TypeDataLoaded, DataLoadedPayload{
		Sources: sources,
		TimeRange: TimeRangeInfo{
			Start: tr.Start.Format(time.RFC3339),
			End:   tr.End.Format(time.RFC3339),
		},
		Config: h.engine.Config(),
	})
}

func (h *Handler) sendDataLoaded(c *Client) {
	msg, err := h.dataLoadedMessage()
	if err != nil {
		slog.Error("creating data:loaded message", "error", err)
		return
	}

	select {
	case c.send <- msg:
	default:
	}
}

func (h *Handler) sendSimState(c *Client) {
	msg, err := NewEnvelope(TypeSimState, SimStateFromEngine(h.engine.State()))
	if err != nil {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}
