package ws

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event types pushed to availability feed subscribers.
const (
	EventAvailabilityChanged = "asset.availability_changed"
	EventMaintenanceFlagged  = "asset.maintenance_flagged"
)

// Event is one availability feed message.
type Event struct {
	Type        string    `json:"type"`
	AssetID     int64     `json:"asset_id"`
	StationID   int64     `json:"station_id"`
	IsAvailable bool      `json:"is_available"`
	Fault       string    `json:"fault,omitempty"`
	At          time.Time `json:"at"`
}

type subscriber struct {
	send chan []byte
}

// Hub fans availability events out to connected subscribers. Slow
// subscribers drop messages rather than block publishers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	logger *zap.Logger
	now    func() time.Time
}

// NewHub builds hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[*subscriber]struct{}),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (h *Hub) subscribe() *subscriber {
	sub := &subscriber{send: make(chan []byte, 16)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.send)
	}
	h.mu.Unlock()
}

// Broadcast sends the event to every subscriber without blocking.
func (h *Hub) Broadcast(event Event) {
	if event.At.IsZero() {
		event.At = h.now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("failed to marshal availability event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.send <- data:
		default:
			h.logger.Warn("dropping availability event, subscriber buffer full")
		}
	}
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// PublishAvailability implements the service publisher contract.
func (h *Hub) PublishAvailability(assetID, stationID int64, available bool) {
	h.Broadcast(Event{
		Type:        EventAvailabilityChanged,
		AssetID:     assetID,
		StationID:   stationID,
		IsAvailable: available,
	})
}

// PublishMaintenance implements the service publisher contract.
func (h *Hub) PublishMaintenance(assetID, stationID int64, fault string) {
	h.Broadcast(Event{
		Type:      EventMaintenanceFlagged,
		AssetID:   assetID,
		StationID: stationID,
		Fault:     fault,
	})
}
