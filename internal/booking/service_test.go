package booking

import (
	"context"
	"testing"
	"time"

	"campushub/internal/apperr"
	"campushub/internal/timeslot"
)

type stock struct {
	available int
	total     int
}

type fakeStore struct {
	bookings map[int64]LabBooking
	requests map[int64]EquipmentRequest
	stocks   map[int64]stock
	labs     map[int64]bool
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookings: make(map[int64]LabBooking),
		requests: make(map[int64]EquipmentRequest),
		stocks:   make(map[int64]stock),
		labs:     make(map[int64]bool),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) InsertBooking(_ context.Context, b LabBooking) (LabBooking, error) {
	b.ID = f.id()
	b.CreatedAt = time.Now()
	f.bookings[b.ID] = b
	return b, nil
}

func (f *fakeStore) GetBooking(_ context.Context, id int64) (*LabBooking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeStore) SetBookingStatus(_ context.Context, id int64, status string, decidedBy int64) error {
	b := f.bookings[id]
	now := time.Now()
	b.Status, b.DecidedBy, b.DecidedAt = status, &decidedBy, &now
	f.bookings[id] = b
	return nil
}

func (f *fakeStore) HasApprovedOverlap(_ context.Context, labID int64, date, start, end string, excludeID int64) (bool, error) {
	want, err := timeslot.New(start, end)
	if err != nil {
		return false, err
	}
	for _, b := range f.bookings {
		if b.ID == excludeID || b.LabID != labID || b.SessionDate != date || b.Status != StatusApproved {
			continue
		}
		got, err := timeslot.New(b.StartTime, b.EndTime)
		if err != nil {
			return false, err
		}
		if want.Overlaps(got) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) LabExists(_ context.Context, id int64) (bool, error) {
	return f.labs[id], nil
}

func (f *fakeStore) ListBookingsByUser(_ context.Context, userID int64) ([]LabBooking, error) {
	var out []LabBooking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPendingBookings(_ context.Context) ([]LabBooking, error) {
	var out []LabBooking
	for _, b := range f.bookings {
		if b.Status == StatusPending {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertRequest(_ context.Context, q EquipmentRequest) (EquipmentRequest, error) {
	q.ID = f.id()
	q.CreatedAt = time.Now()
	f.requests[q.ID] = q
	return q, nil
}

func (f *fakeStore) GetRequest(_ context.Context, id int64) (*EquipmentRequest, error) {
	q, ok := f.requests[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (f *fakeStore) SetRequestStatus(_ context.Context, id int64, status string, decidedBy int64) error {
	q := f.requests[id]
	now := time.Now()
	q.Status, q.DecidedBy, q.DecidedAt = status, &decidedBy, &now
	f.requests[id] = q
	return nil
}

func (f *fakeStore) EquipmentStock(_ context.Context, id int64) (int, int, error) {
	s := f.stocks[id]
	return s.available, s.total, nil
}

func (f *fakeStore) CompareAndSwapStock(_ context.Context, id int64, expected, next int) (bool, error) {
	s := f.stocks[id]
	if s.available != expected {
		return false, nil
	}
	s.available = next
	f.stocks[id] = s
	return true, nil
}

func (f *fakeStore) ListRequestsByUser(_ context.Context, userID int64) ([]EquipmentRequest, error) {
	var out []EquipmentRequest
	for _, q := range f.requests {
		if q.UserID == userID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPendingRequests(_ context.Context) ([]EquipmentRequest, error) {
	var out []EquipmentRequest
	for _, q := range f.requests {
		if q.Status == StatusPending {
			out = append(out, q)
		}
	}
	return out, nil
}

func newTestService(f *fakeStore) *Service {
	return NewService(f, 2*time.Second)
}

func pendingRequest(f *fakeStore, equipmentID int64, qty int) EquipmentRequest {
	q, _ := f.InsertRequest(context.Background(), EquipmentRequest{
		EquipmentID: equipmentID,
		UserID:      7,
		Qty:         qty,
		RequestDate: "2026-03-02",
		Status:      StatusPending,
	})
	return q
}

func TestApproveRequestDebitsStock(t *testing.T) {
	f := newFakeStore()
	f.stocks[1] = stock{available: 5, total: 5}
	q := pendingRequest(f, 1, 3)
	svc := newTestService(f)

	got, err := svc.ApproveRequest(context.Background(), q.ID, 99)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != StatusApproved {
		t.Fatalf("status = %q, want approved", got.Status)
	}
	if s := f.stocks[1]; s.available != 2 {
		t.Fatalf("available = %d, want 2", s.available)
	}
}

func TestApproveRequestInsufficientStock(t *testing.T) {
	f := newFakeStore()
	f.stocks[1] = stock{available: 2, total: 5}
	q := pendingRequest(f, 1, 3)
	svc := newTestService(f)

	_, err := svc.ApproveRequest(context.Background(), q.ID, 99)
	if apperr.KindOf(err) != apperr.KindInsufficientStock {
		t.Fatalf("err = %v, want insufficient stock", err)
	}
	if s := f.stocks[1]; s.available != 2 {
		t.Fatalf("available = %d, stock must be untouched", s.available)
	}
	if f.requests[q.ID].Status != StatusPending {
		t.Fatalf("request left %q, want pending", f.requests[q.ID].Status)
	}
}

func TestApproveRequestIdempotent(t *testing.T) {
	f := newFakeStore()
	f.stocks[1] = stock{available: 5, total: 5}
	q := pendingRequest(f, 1, 2)
	svc := newTestService(f)

	if _, err := svc.ApproveRequest(context.Background(), q.ID, 99); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	got, err := svc.ApproveRequest(context.Background(), q.ID, 99)
	if err != nil {
		t.Fatalf("second approve: %v", err)
	}
	if got.Status != StatusApproved {
		t.Fatalf("status = %q, want approved", got.Status)
	}
	if s := f.stocks[1]; s.available != 3 {
		t.Fatalf("available = %d, stock must be debited once", s.available)
	}
}

func TestApproveRejectedRequest(t *testing.T) {
	f := newFakeStore()
	f.stocks[1] = stock{available: 5, total: 5}
	q := pendingRequest(f, 1, 2)
	svc := newTestService(f)

	if _, err := svc.RejectRequest(context.Background(), q.ID, 99); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err := svc.ApproveRequest(context.Background(), q.ID, 99)
	if apperr.KindOf(err) != apperr.KindInvalidTransition {
		t.Fatalf("err = %v, want invalid transition", err)
	}
	if s := f.stocks[1]; s.available != 5 {
		t.Fatalf("available = %d, want 5", s.available)
	}
}

func TestRejectRequestLeavesStock(t *testing.T) {
	f := newFakeStore()
	f.stocks[1] = stock{available: 4, total: 4}
	q := pendingRequest(f, 1, 4)
	svc := newTestService(f)

	got, err := svc.RejectRequest(context.Background(), q.ID, 99)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got.Status != StatusRejected {
		t.Fatalf("status = %q, want rejected", got.Status)
	}
	if s := f.stocks[1]; s.available != 4 {
		t.Fatalf("available = %d, want 4", s.available)
	}
}

func TestRequestEquipmentValidation(t *testing.T) {
	f := newFakeStore()
	f.stocks[1] = stock{available: 2, total: 2}
	svc := newTestService(f)

	tests := []struct {
		name string
		in   RequestEquipmentInput
	}{
		{"zero qty", RequestEquipmentInput{EquipmentID: 1, UserID: 7, Qty: 0}},
		{"negative qty", RequestEquipmentInput{EquipmentID: 1, UserID: 7, Qty: -1}},
		{"qty over total", RequestEquipmentInput{EquipmentID: 1, UserID: 7, Qty: 3}},
		{"missing user", RequestEquipmentInput{EquipmentID: 1, Qty: 1}},
		{"bad date", RequestEquipmentInput{EquipmentID: 1, UserID: 7, Qty: 1, RequestDate: "02-03-2026"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.RequestEquipment(context.Background(), tt.in); apperr.KindOf(err) != apperr.KindValidation {
				t.Fatalf("err = %v, want validation", err)
			}
		})
	}
}

func TestReturnEquipmentClampsAtTotal(t *testing.T) {
	f := newFakeStore()
	f.stocks[1] = stock{available: 3, total: 5}
	svc := newTestService(f)

	if err := svc.ReturnEquipment(context.Background(), 1, 10); err != nil {
		t.Fatalf("return: %v", err)
	}
	if s := f.stocks[1]; s.available != 5 {
		t.Fatalf("available = %d, want clamp at total 5", s.available)
	}
}

func approvedBooking(f *fakeStore, labID int64, date, start, end string) LabBooking {
	b, _ := f.InsertBooking(context.Background(), LabBooking{
		LabID: labID, UserID: 7, SessionDate: date,
		StartTime: start, EndTime: end, Status: StatusApproved,
	})
	return b
}

func TestBookLabRefusesOverlapWithApproved(t *testing.T) {
	f := newFakeStore()
	f.labs[1] = true
	approvedBooking(f, 1, "2026-03-02", "09:00", "10:00")
	svc := newTestService(f)

	_, err := svc.BookLab(context.Background(), BookLabInput{
		LabID: 1, UserID: 8, SessionDate: "2026-03-02", StartTime: "09:30", EndTime: "10:30",
	})
	if apperr.KindOf(err) != apperr.KindScheduleConflict {
		t.Fatalf("err = %v, want schedule conflict", err)
	}
}

func TestBookLabAllowsTouchingSlots(t *testing.T) {
	f := newFakeStore()
	f.labs[1] = true
	approvedBooking(f, 1, "2026-03-02", "09:00", "10:00")
	svc := newTestService(f)

	b, err := svc.BookLab(context.Background(), BookLabInput{
		LabID: 1, UserID: 8, SessionDate: "2026-03-02", StartTime: "10:00", EndTime: "11:00",
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if b.Status != StatusPending {
		t.Fatalf("status = %q, want pending", b.Status)
	}
}

func TestBookLabUnknownLab(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)

	_, err := svc.BookLab(context.Background(), BookLabInput{
		LabID: 9, UserID: 8, SessionDate: "2026-03-02", StartTime: "09:00", EndTime: "10:00",
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestApproveBookingConflict(t *testing.T) {
	f := newFakeStore()
	f.labs[1] = true
	svc := newTestService(f)

	first, err := svc.BookLab(context.Background(), BookLabInput{
		LabID: 1, UserID: 7, SessionDate: "2026-03-02", StartTime: "09:00", EndTime: "10:00",
	})
	if err != nil {
		t.Fatalf("book first: %v", err)
	}
	second, err := svc.BookLab(context.Background(), BookLabInput{
		LabID: 1, UserID: 8, SessionDate: "2026-03-02", StartTime: "09:30", EndTime: "10:30",
	})
	if err != nil {
		t.Fatalf("book second: %v", err)
	}

	if _, err := svc.ApproveBooking(context.Background(), first.ID, 99); err != nil {
		t.Fatalf("approve first: %v", err)
	}
	_, err = svc.ApproveBooking(context.Background(), second.ID, 99)
	if apperr.KindOf(err) != apperr.KindScheduleConflict {
		t.Fatalf("err = %v, want schedule conflict", err)
	}
	if f.bookings[second.ID].Status != StatusPending {
		t.Fatalf("second booking left %q, want pending", f.bookings[second.ID].Status)
	}
}

func TestApproveBookingIdempotent(t *testing.T) {
	f := newFakeStore()
	f.labs[1] = true
	svc := newTestService(f)

	b, err := svc.BookLab(context.Background(), BookLabInput{
		LabID: 1, UserID: 7, SessionDate: "2026-03-02", StartTime: "09:00", EndTime: "10:00",
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := svc.ApproveBooking(context.Background(), b.ID, 99); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	got, err := svc.ApproveBooking(context.Background(), b.ID, 99)
	if err != nil {
		t.Fatalf("second approve: %v", err)
	}
	if got.Status != StatusApproved {
		t.Fatalf("status = %q, want approved", got.Status)
	}
}

func TestRejectApprovedBooking(t *testing.T) {
	f := newFakeStore()
	f.labs[1] = true
	svc := newTestService(f)

	b, err := svc.BookLab(context.Background(), BookLabInput{
		LabID: 1, UserID: 7, SessionDate: "2026-03-02", StartTime: "09:00", EndTime: "10:00",
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := svc.ApproveBooking(context.Background(), b.ID, 99); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.RejectBooking(context.Background(), b.ID, 99); apperr.KindOf(err) != apperr.KindInvalidTransition {
		t.Fatalf("err = %v, want invalid transition", err)
	}
}

func TestBookLabSlotValidation(t *testing.T) {
	f := newFakeStore()
	f.labs[1] = true
	svc := newTestService(f)

	tests := []struct {
		name       string
		start, end string
	}{
		{"end before start", "10:00", "09:00"},
		{"zero length", "09:00", "09:00"},
		{"garbage start", "morning", "10:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.BookLab(context.Background(), BookLabInput{
				LabID: 1, UserID: 7, SessionDate: "2026-03-02", StartTime: tt.start, EndTime: tt.end,
			})
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Fatalf("err = %v, want validation", err)
			}
		})
	}
}
