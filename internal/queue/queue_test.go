package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestNewEvent(t *testing.T) {
	evt, err := NewEvent("attendance.recorded", map[string]any{"session_id": 7, "student_id": 12})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	if evt.ID == "" {
		t.Error("event id not set")
	}
	if evt.Type != "attendance.recorded" {
		t.Errorf("event type = %q", evt.Type)
	}
	var payload map[string]int
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if payload["session_id"] != 7 {
		t.Errorf("payload session_id = %d", payload["session_id"])
	}
}

func TestInMemoryRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	q := NewInMemory(4)
	msgs, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}

	want, _ := NewEvent("booking.decided", map[string]string{"status": "approved"})
	if err := q.Publish(ctx, want); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-msgs:
		if got.ID != want.ID || got.Type != want.Type {
			t.Errorf("got %+v, want %+v", got, want)
		}
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

func TestInMemoryPublishRespectsCancel(t *testing.T) {
	q := NewInMemory(1)
	ctx := context.Background()
	evt, _ := NewEvent("x", nil)
	if err := q.Publish(ctx, evt); err != nil {
		t.Fatalf("first publish: %v", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Publish(cancelled, evt); err == nil {
		t.Error("publish on full queue with cancelled context should fail")
	}
}
