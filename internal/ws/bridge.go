package ws

import (
	"log/slog"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/simulator"
)

// Bridge implements simulator.Callback and broadcasts events to the WebSocket hub.
type Bridge struct {
	hub *Hub
}

func NewBridge(hub *Hub) *Bridge {
	return &Bridge{hub: hub}
}

func (b *Bridge) OnState(s simulator.State) {
	b.send(TypeSimState, SimStateFromEngine(s))
}

func (b *Bridge) OnHour(h simulator.HourUpdate) {
	b.send(TypeHourUpdate, HourFromEngine(h))
}

func (b *Bridge) OnSummary(s simulator.Summary) {
	b.send(TypeSummaryUpdate, SummaryFromEngine(s))
}

func (b *Bridge) send(msgType string, payload any) {
	msg, err := NewEnvelope(msgType, payload)
	if err != nil {
		slog.Error("marshaling websocket message", "type", msgType, "error", err)
		return
	}
	b.hub.Broadcast(msg)
}
