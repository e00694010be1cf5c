package ws

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

const (
	EventJobsIngested   = "jobs_ingested"
	EventMatchesUpdated = "matches_updated"
)

type Event struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// Notifier publishes domain events to the hub's subscribers.
type Notifier struct {
	hub *Hub
	now func() time.Time
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub, now: time.Now}
}

func (n *Notifier) Publish(eventType string, data any) {
	if n == nil || n.hub == nil {
		return
	}
	b, err := json.Marshal(Event{
		Type:      eventType,
		Timestamp: n.now().UTC().Format(time.RFC3339),
		Data:      data,
	})
	if err != nil {
		n.hub.logger.Warn("event encode failed", zap.String("type", eventType), zap.Error(err))
		return
	}
	n.hub.Broadcast(b)
}
