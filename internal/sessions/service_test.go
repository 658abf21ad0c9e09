package sessions

import (
	"context"
	"testing"
	"time"

	"campushub/internal/apperr"
	"campushub/internal/timeslot"
)

type fakeStore struct {
	sessions map[int64]Session
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[int64]Session)}
}

func (f *fakeStore) Insert(_ context.Context, s Session) (Session, error) {
	f.nextID++
	s.ID = f.nextID
	s.CreatedAt = time.Now()
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (*Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeStore) SetStatus(_ context.Context, id int64, status string) error {
	s := f.sessions[id]
	s.Status = status
	f.sessions[id] = s
	return nil
}

func (f *fakeStore) HasScheduledOverlap(_ context.Context, locationID int64, date, start, end string, excludeID int64) (bool, error) {
	want, err := timeslot.New(start, end)
	if err != nil {
		return false, err
	}
	for _, s := range f.sessions {
		if s.ID == excludeID || s.LocationID != locationID || s.SessionDate != date || s.Status != StatusScheduled {
			continue
		}
		got, err := timeslot.New(s.StartTime, s.EndTime)
		if err != nil {
			return false, err
		}
		if want.Overlaps(got) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListByLecturer(_ context.Context, lecturerID int64) ([]Session, error) {
	var out []Session
	for _, s := range f.sessions {
		if s.LecturerID == lecturerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByAssistant(_ context.Context, assistantID int64) ([]Session, error) {
	var out []Session
	for _, s := range f.sessions {
		if s.AssistantID != nil && *s.AssistantID == assistantID {
			out = append(out, s)
		}
	}
	return out, nil
}

type assignment struct {
	subjectID int64
	userID    int64
	role      string
}

type fakeRegistry struct {
	assignments []assignment
}

func (f *fakeRegistry) IsAssigned(_ context.Context, subjectID, userID int64, role string) (bool, error) {
	for _, a := range f.assignments {
		if a.subjectID == subjectID && a.userID == userID && (role == "" || a.role == role) {
			return true, nil
		}
	}
	return false, nil
}

func newTestService(f *fakeStore, reg *fakeRegistry) *Service {
	return NewService(f, reg, 2*time.Second)
}

func validInput() CreateInput {
	return CreateInput{
		SubjectID:   1,
		LecturerID:  10,
		LocationID:  5,
		SessionDate: "2026-03-02",
		StartTime:   "09:00",
		EndTime:     "11:00",
	}
}

func TestCreateRequiresAssignment(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeRegistry{})

	_, err := svc.Create(context.Background(), validInput())
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestCreateSchedulesSession(t *testing.T) {
	f := newFakeStore()
	reg := &fakeRegistry{assignments: []assignment{{1, 10, roleLecturer}}}
	svc := newTestService(f, reg)

	s, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.Status != StatusScheduled {
		t.Fatalf("status = %q, want scheduled", s.Status)
	}
	if s.StartTime != "09:00" || s.EndTime != "11:00" {
		t.Fatalf("slot = %s-%s, want 09:00-11:00", s.StartTime, s.EndTime)
	}
}

func TestCreateRefusesLocationOverlap(t *testing.T) {
	f := newFakeStore()
	reg := &fakeRegistry{assignments: []assignment{{1, 10, roleLecturer}, {2, 11, roleLecturer}}}
	svc := newTestService(f, reg)

	if _, err := svc.Create(context.Background(), validInput()); err != nil {
		t.Fatalf("first create: %v", err)
	}

	in := validInput()
	in.SubjectID, in.LecturerID = 2, 11
	in.StartTime, in.EndTime = "10:00", "12:00"
	_, err := svc.Create(context.Background(), in)
	if apperr.KindOf(err) != apperr.KindScheduleConflict {
		t.Fatalf("err = %v, want schedule conflict", err)
	}
}

func TestCreateAllowsTouchingSlots(t *testing.T) {
	f := newFakeStore()
	reg := &fakeRegistry{assignments: []assignment{{1, 10, roleLecturer}}}
	svc := newTestService(f, reg)

	if _, err := svc.Create(context.Background(), validInput()); err != nil {
		t.Fatalf("first create: %v", err)
	}

	in := validInput()
	in.StartTime, in.EndTime = "11:00", "12:00"
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("back-to-back create: %v", err)
	}
}

func TestCreateIgnoresCancelledOverlap(t *testing.T) {
	f := newFakeStore()
	reg := &fakeRegistry{assignments: []assignment{{1, 10, roleLecturer}}}
	svc := newTestService(f, reg)

	s, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), s.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := svc.Create(context.Background(), validInput()); err != nil {
		t.Fatalf("re-create over cancelled: %v", err)
	}
}

func TestCreateChecksAssistantAssignment(t *testing.T) {
	f := newFakeStore()
	reg := &fakeRegistry{assignments: []assignment{{1, 10, roleLecturer}}}
	svc := newTestService(f, reg)

	assistant := int64(20)
	in := validInput()
	in.AssistantID = &assistant
	if _, err := svc.Create(context.Background(), in); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation", err)
	}

	reg.assignments = append(reg.assignments, assignment{1, assistant, roleAssistant})
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("create with assigned assistant: %v", err)
	}
}

func TestCancelIdempotent(t *testing.T) {
	f := newFakeStore()
	reg := &fakeRegistry{assignments: []assignment{{1, 10, roleLecturer}}}
	svc := newTestService(f, reg)

	s, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), s.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	got, err := svc.Cancel(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Fatalf("status = %q, want cancelled", got.Status)
	}
}

func TestCancelCompletedSession(t *testing.T) {
	f := newFakeStore()
	f.nextID = 1
	f.sessions[1] = Session{ID: 1, Status: StatusCompleted}
	svc := newTestService(f, &fakeRegistry{})

	_, err := svc.Cancel(context.Background(), 1)
	if apperr.KindOf(err) != apperr.KindInvalidTransition {
		t.Fatalf("err = %v, want invalid transition", err)
	}
}

func TestCancelUnknownSession(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeRegistry{})

	_, err := svc.Cancel(context.Background(), 42)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}
