package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: Validation("missing field"), want: http.StatusBadRequest},
		{name: "unauthorized", err: Unauthorized("missing token"), want: http.StatusUnauthorized},
		{name: "forbidden", err: Forbidden("admins only"), want: http.StatusForbidden},
		{name: "not enrolled", err: NotEnrolled("not enrolled"), want: http.StatusForbidden},
		{name: "not found", err: NotFound("no such booking"), want: http.StatusNotFound},
		{name: "unknown student", err: UnknownStudent("code not recognized"), want: http.StatusNotFound},
		{name: "insufficient stock", err: InsufficientStock("insufficient stock"), want: http.StatusConflict},
		{name: "schedule conflict", err: ScheduleConflict("conflict"), want: http.StatusConflict},
		{name: "invalid transition", err: InvalidTransition("already rejected"), want: http.StatusConflict},
		{name: "session not active", err: SessionNotActive("cancelled"), want: http.StatusConflict},
		{name: "timeout", err: Timeout("timed out"), want: http.StatusServiceUnavailable},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: http.StatusServiceUnavailable},
		{name: "wrapped deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), want: http.StatusServiceUnavailable},
		{name: "unknown error", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	if got := Message(ScheduleConflict("lab already booked for this slot")); got != "lab already booked for this slot" {
		t.Errorf("Message() = %q", got)
	}
	if got := Message(errors.New("pq: connection refused")); got != "internal server error" {
		t.Errorf("internal errors must be masked, got %q", got)
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("approve booking: %w", InvalidTransition("already rejected"))
	if KindOf(err) != KindInvalidTransition {
		t.Errorf("KindOf() = %v, want KindInvalidTransition", KindOf(err))
	}
}
