package booking

import (
	"context"
	"fmt"
	"time"

	"campushub/internal/apperr"
	"campushub/internal/keylock"
	"campushub/internal/metrics"
	"campushub/internal/timeslot"
)

// Store is the persistence surface the service drives. Atomicity of stock
// updates is provided by CompareAndSwapStock; everything else is serialized
// through the service's keyed locks.
type Store interface {
	InsertBooking(ctx context.Context, b LabBooking) (LabBooking, error)
	GetBooking(ctx context.Context, id int64) (*LabBooking, error)
	SetBookingStatus(ctx context.Context, id int64, status string, decidedBy int64) error
	HasApprovedOverlap(ctx context.Context, labID int64, date, start, end string, excludeID int64) (bool, error)
	LabExists(ctx context.Context, id int64) (bool, error)
	ListBookingsByUser(ctx context.Context, userID int64) ([]LabBooking, error)
	ListPendingBookings(ctx context.Context) ([]LabBooking, error)

	InsertRequest(ctx context.Context, q EquipmentRequest) (EquipmentRequest, error)
	GetRequest(ctx context.Context, id int64) (*EquipmentRequest, error)
	SetRequestStatus(ctx context.Context, id int64, status string, decidedBy int64) error
	EquipmentStock(ctx context.Context, id int64) (available, total int, err error)
	CompareAndSwapStock(ctx context.Context, id int64, expected, next int) (bool, error)
	ListRequestsByUser(ctx context.Context, userID int64) ([]EquipmentRequest, error)
	ListPendingRequests(ctx context.Context) ([]EquipmentRequest, error)
}

type Service struct {
	store   Store
	locks   *keylock.KeyedMutex
	timeout time.Duration
}

func NewService(store Store, timeout time.Duration) *Service {
	return &Service{store: store, locks: keylock.New(), timeout: timeout}
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// casRetries bounds the compare-and-swap loop on stock updates. Contention on
// a single equipment row is rare enough that a handful of retries suffices.
const casRetries = 5

type BookLabInput struct {
	LabID        int64  `json:"lab_id"`
	UserID       int64  `json:"user_id"`
	DepartmentID *int64 `json:"department_id"`
	SessionDate  string `json:"session_date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}

// BookLab files a pending booking. Slots that overlap an already approved
// booking for the same lab and date are refused up front.
func (s *Service) BookLab(ctx context.Context, in BookLabInput) (LabBooking, error) {
	if in.LabID <= 0 || in.UserID <= 0 {
		return LabBooking{}, apperr.Validation("lab_id and user_id are required")
	}
	if _, err := time.Parse("2006-01-02", in.SessionDate); err != nil {
		return LabBooking{}, apperr.Validation("session_date must be YYYY-MM-DD")
	}
	slot, err := parseSlot(in.StartTime, in.EndTime)
	if err != nil {
		return LabBooking{}, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	ok, err := s.store.LabExists(ctx, in.LabID)
	if err != nil {
		return LabBooking{}, err
	}
	if !ok {
		return LabBooking{}, apperr.NotFound("lab not found")
	}

	unlock := s.locks.Lock(labKey(in.LabID))
	defer unlock()

	conflict, err := s.store.HasApprovedOverlap(ctx, in.LabID, in.SessionDate, slot.StartHHMM(), slot.EndHHMM(), 0)
	if err != nil {
		return LabBooking{}, err
	}
	if conflict {
		return LabBooking{}, apperr.ScheduleConflict("lab is already booked for that slot")
	}

	return s.store.InsertBooking(ctx, LabBooking{
		LabID:        in.LabID,
		UserID:       in.UserID,
		DepartmentID: in.DepartmentID,
		SessionDate:  in.SessionDate,
		StartTime:    slot.StartHHMM(),
		EndTime:      slot.EndHHMM(),
		Status:       StatusPending,
	})
}

// ApproveBooking moves a pending booking to approved after re-checking the
// schedule. Approving an already approved booking is a no-op; any other
// non-pending state refuses the transition.
func (s *Service) ApproveBooking(ctx context.Context, id, decidedBy int64) (LabBooking, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	unlock := s.locks.Lock(bookingKey(id))
	defer unlock()

	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return LabBooking{}, err
	}
	if b == nil {
		return LabBooking{}, apperr.NotFound("booking not found")
	}
	if b.Status == StatusApproved {
		return *b, nil
	}
	if b.Status != StatusPending {
		return LabBooking{}, apperr.InvalidTransition(fmt.Sprintf("cannot approve a %s booking", b.Status))
	}

	unlockLab := s.locks.Lock(labKey(b.LabID))
	defer unlockLab()

	conflict, err := s.store.HasApprovedOverlap(ctx, b.LabID, b.SessionDate, b.StartTime, b.EndTime, b.ID)
	if err != nil {
		return LabBooking{}, err
	}
	if conflict {
		metrics.DecisionsTotal.WithLabelValues("lab_booking", "conflict").Inc()
		return LabBooking{}, apperr.ScheduleConflict("an approved booking already occupies that slot")
	}

	if err := s.store.SetBookingStatus(ctx, id, StatusApproved, decidedBy); err != nil {
		return LabBooking{}, err
	}
	metrics.DecisionsTotal.WithLabelValues("lab_booking", "approved").Inc()
	return s.reloadBooking(ctx, id, *b, StatusApproved, decidedBy)
}

// RejectBooking moves a pending booking to rejected. Rejecting twice is a
// no-op; rejecting an approved booking refuses the transition.
func (s *Service) RejectBooking(ctx context.Context, id, decidedBy int64) (LabBooking, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	unlock := s.locks.Lock(bookingKey(id))
	defer unlock()

	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return LabBooking{}, err
	}
	if b == nil {
		return LabBooking{}, apperr.NotFound("booking not found")
	}
	if b.Status == StatusRejected {
		return *b, nil
	}
	if b.Status != StatusPending {
		return LabBooking{}, apperr.InvalidTransition(fmt.Sprintf("cannot reject a %s booking", b.Status))
	}

	if err := s.store.SetBookingStatus(ctx, id, StatusRejected, decidedBy); err != nil {
		return LabBooking{}, err
	}
	metrics.DecisionsTotal.WithLabelValues("lab_booking", "rejected").Inc()
	return s.reloadBooking(ctx, id, *b, StatusRejected, decidedBy)
}

func (s *Service) BookingsByUser(ctx context.Context, userID int64) ([]LabBooking, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.ListBookingsByUser(ctx, userID)
}

func (s *Service) PendingBookings(ctx context.Context) ([]LabBooking, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.ListPendingBookings(ctx)
}

type RequestEquipmentInput struct {
	EquipmentID  int64  `json:"equipment_id"`
	UserID       int64  `json:"user_id"`
	DepartmentID *int64 `json:"department_id"`
	Qty          int    `json:"qty"`
	RequestDate  string `json:"request_date"`
}

// RequestEquipment files a pending request. Stock is not reserved until the
// request is approved.
func (s *Service) RequestEquipment(ctx context.Context, in RequestEquipmentInput) (EquipmentRequest, error) {
	if in.EquipmentID <= 0 || in.UserID <= 0 {
		return EquipmentRequest{}, apperr.Validation("equipment_id and user_id are required")
	}
	if in.Qty <= 0 {
		return EquipmentRequest{}, apperr.Validation("qty must be positive")
	}
	if in.RequestDate == "" {
		in.RequestDate = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", in.RequestDate); err != nil {
		return EquipmentRequest{}, apperr.Validation("request_date must be YYYY-MM-DD")
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	_, total, err := s.store.EquipmentStock(ctx, in.EquipmentID)
	if err != nil {
		return EquipmentRequest{}, err
	}
	if total == 0 {
		return EquipmentRequest{}, apperr.NotFound("equipment not found")
	}
	if in.Qty > total {
		return EquipmentRequest{}, apperr.Validation(fmt.Sprintf("qty exceeds the %d units that exist", total))
	}

	return s.store.InsertRequest(ctx, EquipmentRequest{
		EquipmentID:  in.EquipmentID,
		UserID:       in.UserID,
		DepartmentID: in.DepartmentID,
		Qty:          in.Qty,
		RequestDate:  in.RequestDate,
		Status:       StatusPending,
	})
}

// ApproveRequest moves a pending request to approved and debits the stock in
// one decision. If the remaining stock cannot cover the quantity the request
// stays pending and the stock is untouched.
func (s *Service) ApproveRequest(ctx context.Context, id, decidedBy int64) (EquipmentRequest, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	unlock := s.locks.Lock(requestKey(id))
	defer unlock()

	q, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return EquipmentRequest{}, err
	}
	if q == nil {
		return EquipmentRequest{}, apperr.NotFound("request not found")
	}
	if q.Status == StatusApproved {
		return *q, nil
	}
	if q.Status != StatusPending {
		return EquipmentRequest{}, apperr.InvalidTransition(fmt.Sprintf("cannot approve a %s request", q.Status))
	}

	unlockEquip := s.locks.Lock(equipmentKey(q.EquipmentID))
	defer unlockEquip()

	if err := s.reserve(ctx, q.EquipmentID, q.Qty); err != nil {
		if apperr.KindOf(err) == apperr.KindInsufficientStock {
			metrics.DecisionsTotal.WithLabelValues("equipment_request", "insufficient_stock").Inc()
		}
		return EquipmentRequest{}, err
	}
	if err := s.store.SetRequestStatus(ctx, id, StatusApproved, decidedBy); err != nil {
		// Put the units back so a failed status write does not leak stock.
		s.release(ctx, q.EquipmentID, q.Qty)
		return EquipmentRequest{}, err
	}
	metrics.DecisionsTotal.WithLabelValues("equipment_request", "approved").Inc()
	return s.reloadRequest(ctx, id, *q, StatusApproved, decidedBy)
}

// RejectRequest moves a pending request to rejected. Stock is never touched.
func (s *Service) RejectRequest(ctx context.Context, id, decidedBy int64) (EquipmentRequest, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	unlock := s.locks.Lock(requestKey(id))
	defer unlock()

	q, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return EquipmentRequest{}, err
	}
	if q == nil {
		return EquipmentRequest{}, apperr.NotFound("request not found")
	}
	if q.Status == StatusRejected {
		return *q, nil
	}
	if q.Status != StatusPending {
		return EquipmentRequest{}, apperr.InvalidTransition(fmt.Sprintf("cannot reject a %s request", q.Status))
	}

	if err := s.store.SetRequestStatus(ctx, id, StatusRejected, decidedBy); err != nil {
		return EquipmentRequest{}, err
	}
	metrics.DecisionsTotal.WithLabelValues("equipment_request", "rejected").Inc()
	return s.reloadRequest(ctx, id, *q, StatusRejected, decidedBy)
}

// ReturnEquipment credits qty units back to the pool, clamped at the total
// so over-returns cannot inflate stock.
func (s *Service) ReturnEquipment(ctx context.Context, equipmentID int64, qty int) error {
	if qty <= 0 {
		return apperr.Validation("qty must be positive")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	unlock := s.locks.Lock(equipmentKey(equipmentID))
	defer unlock()
	return s.release(ctx, equipmentID, qty)
}

func (s *Service) RequestsByUser(ctx context.Context, userID int64) ([]EquipmentRequest, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.ListRequestsByUser(ctx, userID)
}

func (s *Service) PendingRequests(ctx context.Context) ([]EquipmentRequest, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.ListPendingRequests(ctx)
}

func (s *Service) reserve(ctx context.Context, equipmentID int64, qty int) error {
	for i := 0; i < casRetries; i++ {
		available, total, err := s.store.EquipmentStock(ctx, equipmentID)
		if err != nil {
			return err
		}
		if total == 0 {
			return apperr.NotFound("equipment not found")
		}
		if qty > available {
			return apperr.InsufficientStock(fmt.Sprintf("requested %d, only %d available", qty, available))
		}
		ok, err := s.store.CompareAndSwapStock(ctx, equipmentID, available, available-qty)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return apperr.Unavailable("stock is contended, try again")
}

func (s *Service) release(ctx context.Context, equipmentID int64, qty int) error {
	for i := 0; i < casRetries; i++ {
		available, total, err := s.store.EquipmentStock(ctx, equipmentID)
		if err != nil {
			return err
		}
		if total == 0 {
			return apperr.NotFound("equipment not found")
		}
		next := available + qty
		if next > total {
			next = total
		}
		ok, err := s.store.CompareAndSwapStock(ctx, equipmentID, available, next)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return apperr.Unavailable("stock is contended, try again")
}

func (s *Service) reloadBooking(ctx context.Context, id int64, prev LabBooking, status string, decidedBy int64) (LabBooking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil || b == nil {
		now := time.Now()
		prev.Status, prev.DecidedBy, prev.DecidedAt = status, &decidedBy, &now
		return prev, nil
	}
	return *b, nil
}

func (s *Service) reloadRequest(ctx context.Context, id int64, prev EquipmentRequest, status string, decidedBy int64) (EquipmentRequest, error) {
	q, err := s.store.GetRequest(ctx, id)
	if err != nil || q == nil {
		now := time.Now()
		prev.Status, prev.DecidedBy, prev.DecidedAt = status, &decidedBy, &now
		return prev, nil
	}
	return *q, nil
}

func parseSlot(start, end string) (timeslot.Slot, error) {
	slot, err := timeslot.New(start, end)
	if err != nil {
		return timeslot.Slot{}, apperr.Validation(err.Error())
	}
	return slot, nil
}

func labKey(id int64) string       { return fmt.Sprintf("lab:%d", id) }
func bookingKey(id int64) string   { return fmt.Sprintf("booking:%d", id) }
func requestKey(id int64) string   { return fmt.Sprintf("request:%d", id) }
func equipmentKey(id int64) string { return fmt.Sprintf("equipment:%d", id) }
