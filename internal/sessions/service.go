package sessions

import (
	"context"
	"fmt"
	"time"

	"campushub/internal/apperr"
	"campushub/internal/keylock"
	"campushub/internal/metrics"
	"campushub/internal/timeslot"
)

const (
	roleLecturer  = "lecturer"
	roleAssistant = "demo"
)

type Store interface {
	Insert(ctx context.Context, s Session) (Session, error)
	Get(ctx context.Context, id int64) (*Session, error)
	SetStatus(ctx context.Context, id int64, status string) error
	HasScheduledOverlap(ctx context.Context, locationID int64, date, start, end string, excludeID int64) (bool, error)
	ListByLecturer(ctx context.Context, lecturerID int64) ([]Session, error)
	ListByAssistant(ctx context.Context, assistantID int64) ([]Session, error)
}

// Registry answers subject-assignment questions; the catalog service
// satisfies it.
type Registry interface {
	IsAssigned(ctx context.Context, subjectID, userID int64, role string) (bool, error)
}

type Service struct {
	store    Store
	registry Registry
	locks    *keylock.KeyedMutex
	timeout  time.Duration
}

func NewService(store Store, registry Registry, timeout time.Duration) *Service {
	return &Service{store: store, registry: registry, locks: keylock.New(), timeout: timeout}
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

type CreateInput struct {
	SubjectID   int64  `json:"subject_id"`
	LecturerID  int64  `json:"lecturer_id"`
	AssistantID *int64 `json:"assistant_id"`
	LocationID  int64  `json:"location_id"`
	SessionDate string `json:"session_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// Create schedules a session. The lecturer must be assigned to the subject
// and the location must be free for the slot.
func (s *Service) Create(ctx context.Context, in CreateInput) (Session, error) {
	if in.SubjectID <= 0 || in.LecturerID <= 0 || in.LocationID <= 0 {
		return Session{}, apperr.Validation("subject_id, lecturer_id and location_id are required")
	}
	if _, err := time.Parse("2006-01-02", in.SessionDate); err != nil {
		return Session{}, apperr.Validation("session_date must be YYYY-MM-DD")
	}
	slot, err := timeslot.New(in.StartTime, in.EndTime)
	if err != nil {
		return Session{}, apperr.Validation(err.Error())
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	assigned, err := s.registry.IsAssigned(ctx, in.SubjectID, in.LecturerID, roleLecturer)
	if err != nil {
		return Session{}, err
	}
	if !assigned {
		return Session{}, apperr.Forbidden("lecturer is not assigned to this subject")
	}
	if in.AssistantID != nil {
		ok, err := s.registry.IsAssigned(ctx, in.SubjectID, *in.AssistantID, roleAssistant)
		if err != nil {
			return Session{}, err
		}
		if !ok {
			return Session{}, apperr.Validation("assistant is not assigned to this subject")
		}
	}

	unlock := s.locks.Lock(locationKey(in.LocationID))
	defer unlock()

	conflict, err := s.store.HasScheduledOverlap(ctx, in.LocationID, in.SessionDate, slot.StartHHMM(), slot.EndHHMM(), 0)
	if err != nil {
		return Session{}, err
	}
	if conflict {
		return Session{}, apperr.ScheduleConflict("location already has a session in that slot")
	}

	return s.store.Insert(ctx, Session{
		SubjectID:   in.SubjectID,
		LecturerID:  in.LecturerID,
		AssistantID: in.AssistantID,
		LocationID:  in.LocationID,
		SessionDate: in.SessionDate,
		StartTime:   slot.StartHHMM(),
		EndTime:     slot.EndHHMM(),
		Status:      StatusScheduled,
	})
}

// Cancel moves a scheduled session to cancelled. Cancelling twice is a no-op;
// a session that already ran cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, id int64) (Session, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	unlock := s.locks.Lock(sessionKey(id))
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if sess == nil {
		return Session{}, apperr.NotFound("session not found")
	}
	switch sess.Status {
	case StatusCancelled:
		return *sess, nil
	case StatusCompleted:
		return Session{}, apperr.InvalidTransition("cannot cancel a session that already ran")
	}

	if err := s.store.SetStatus(ctx, id, StatusCancelled); err != nil {
		return Session{}, err
	}
	metrics.DecisionsTotal.WithLabelValues("session", "cancelled").Inc()
	sess.Status = StatusCancelled
	return *sess, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Session, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.Get(ctx, id)
}

func (s *Service) ByLecturer(ctx context.Context, lecturerID int64) ([]Session, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.ListByLecturer(ctx, lecturerID)
}

func (s *Service) ByAssistant(ctx context.Context, assistantID int64) ([]Session, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.ListByAssistant(ctx, assistantID)
}

func locationKey(id int64) string { return fmt.Sprintf("location:%d", id) }
func sessionKey(id int64) string  { return fmt.Sprintf("session:%d", id) }
