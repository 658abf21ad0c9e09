package attendance

import (
	"context"
	"strconv"
	"time"

	"campushub/internal/apperr"
	"campushub/internal/metrics"
	"campushub/internal/sessions"
	"campushub/internal/users"
)

type Store interface {
	Upsert(ctx context.Context, rec Record) (Record, bool, error)
	ListBySession(ctx context.Context, sessionID int64) ([]Record, error)
}

// Sessions looks up the session being scanned; the sessions service satisfies it.
type Sessions interface {
	Get(ctx context.Context, id int64) (*sessions.Session, error)
}

// Registry answers enrollment and staff-assignment questions; the catalog
// service satisfies it.
type Registry interface {
	IsEnrolled(ctx context.Context, subjectID, studentID int64) (bool, error)
	IsAssigned(ctx context.Context, subjectID, userID int64, role string) (bool, error)
}

// Directory resolves scanned identities; the users repository satisfies it.
type Directory interface {
	GetByID(ctx context.Context, id int64) (*users.User, error)
	GetByCode(ctx context.Context, code string) (*users.User, error)
}

type Service struct {
	store    Store
	sessions Sessions
	registry Registry
	dir      Directory
	timeout  time.Duration
}

func NewService(store Store, sess Sessions, registry Registry, dir Directory, timeout time.Duration) *Service {
	return &Service{store: store, sessions: sess, registry: registry, dir: dir, timeout: timeout}
}

type ScanInput struct {
	SessionID int64
	Student   string // barcode user code, or a numeric user id
	ScannedBy int64
}

// Mark records a student as present at a session. The scanner must be the
// session's lecturer or assistant, staff assigned to the subject, or an
// admin. Rescans refresh the existing record; created reports whether this
// scan was the first.
func (s *Service) Mark(ctx context.Context, in ScanInput) (Record, bool, error) {
	if in.SessionID <= 0 || in.Student == "" {
		return Record{}, false, apperr.Validation("session_id and student_id are required")
	}
	if in.ScannedBy <= 0 {
		return Record{}, false, apperr.Unauthorized("scanner identity required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sess, err := s.sessions.Get(ctx, in.SessionID)
	if err != nil {
		return Record{}, false, err
	}
	if sess == nil {
		return Record{}, false, apperr.NotFound("session not found")
	}
	if sess.Status == sessions.StatusCancelled {
		metrics.ScansTotal.WithLabelValues("session_not_active").Inc()
		return Record{}, false, apperr.SessionNotActive("session is cancelled")
	}

	if err := s.authorizeScanner(ctx, sess, in.ScannedBy); err != nil {
		metrics.ScansTotal.WithLabelValues("forbidden").Inc()
		return Record{}, false, err
	}

	student, err := s.resolveStudent(ctx, in.Student)
	if err != nil {
		return Record{}, false, err
	}
	if student == nil {
		metrics.ScansTotal.WithLabelValues("unknown_student").Inc()
		return Record{}, false, apperr.UnknownStudent("no student matches that id")
	}

	enrolled, err := s.registry.IsEnrolled(ctx, sess.SubjectID, student.ID)
	if err != nil {
		return Record{}, false, err
	}
	if !enrolled {
		metrics.ScansTotal.WithLabelValues("not_enrolled").Inc()
		return Record{}, false, apperr.NotEnrolled("student is not enrolled in this subject")
	}

	rec, created, err := s.store.Upsert(ctx, Record{
		SessionID: in.SessionID,
		StudentID: student.ID,
		Status:    StatusPresent,
		ScannedBy: in.ScannedBy,
	})
	if err != nil {
		return Record{}, false, err
	}
	rec.StudentName = student.Name
	rec.StudentCode = student.UserCode
	if created {
		metrics.ScansTotal.WithLabelValues("recorded").Inc()
	} else {
		metrics.ScansTotal.WithLabelValues("rescan").Inc()
	}
	return rec, created, nil
}

func (s *Service) BySession(ctx context.Context, sessionID int64) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.ListBySession(ctx, sessionID)
}

func (s *Service) authorizeScanner(ctx context.Context, sess *sessions.Session, scannerID int64) error {
	if scannerID == sess.LecturerID {
		return nil
	}
	if sess.AssistantID != nil && *sess.AssistantID == scannerID {
		return nil
	}
	scanner, err := s.dir.GetByID(ctx, scannerID)
	if err != nil {
		return err
	}
	if scanner == nil {
		return apperr.Unauthorized("unknown scanner")
	}
	if scanner.Role == users.RoleAdmin {
		return nil
	}
	assigned, err := s.registry.IsAssigned(ctx, sess.SubjectID, scannerID, "")
	if err != nil {
		return err
	}
	if !assigned {
		return apperr.Forbidden("not allowed to record attendance for this session")
	}
	return nil
}

// resolveStudent accepts a barcode user code first, then falls back to a
// numeric user id, which is what some scanner clients send.
func (s *Service) resolveStudent(ctx context.Context, key string) (*users.User, error) {
	u, err := s.dir.GetByCode(ctx, key)
	if err != nil {
		return nil, err
	}
	if u == nil {
		if id, convErr := strconv.ParseInt(key, 10, 64); convErr == nil && id > 0 {
			u, err = s.dir.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
		}
	}
	if u == nil || u.Role != users.RoleStudent {
		return nil, nil
	}
	return u, nil
}
