package ws

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop())
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	hub.now = func() time.Time { return at }

	sub := hub.subscribe()
	defer hub.unsubscribe(sub)

	hub.PublishAvailability(10, 100, false)

	select {
	case data := <-sub.send:
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if event.Type != EventAvailabilityChanged {
			t.Fatalf("expected %s, got %s", EventAvailabilityChanged, event.Type)
		}
		if event.AssetID != 10 || event.StationID != 100 || event.IsAvailable {
			t.Fatalf("unexpected event %+v", event)
		}
		if !event.At.Equal(at) {
			t.Fatalf("expected timestamp %s, got %s", at, event.At)
		}
	default:
		t.Fatalf("expected buffered event")
	}
}

func TestHubMaintenanceEvent(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sub := hub.subscribe()
	defer hub.unsubscribe(sub)

	hub.PublishMaintenance(10, 100, "connector latch broken")

	select {
	case data := <-sub.send:
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if event.Type != EventMaintenanceFlagged || event.Fault != "connector latch broken" {
			t.Fatalf("unexpected event %+v", event)
		}
	default:
		t.Fatalf("expected buffered event")
	}
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sub := hub.subscribe()
	defer hub.unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < cap(sub.send)+5; i++ {
			hub.PublishAvailability(10, 100, true)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("broadcast blocked on a slow subscriber")
	}
}

func TestHubUnsubscribeIdempotent(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sub := hub.subscribe()
	if hub.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.SubscriberCount())
	}

	hub.unsubscribe(sub)
	hub.unsubscribe(sub)
	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", hub.SubscriberCount())
	}
}
