package sessions

import (
	"context"
	"database/sql"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// derivedStatus folds past scheduled sessions into "completed" without ever
// writing that state back.
const derivedStatus = `CASE
	WHEN s.status = 'scheduled' AND (s.session_date + s.end_time) < now() THEN 'completed'
	ELSE s.status
END`

const sessionColumns = `s.id, s.subject_id, sub.name, s.lecturer_id, lec.name,
	s.assistant_id, asst.name, s.location_id, loc.name,
	s.session_date::text, to_char(s.start_time, 'HH24:MI'), to_char(s.end_time, 'HH24:MI'),
	` + derivedStatus + `, s.created_at`

const sessionJoins = `FROM sessions s
	JOIN subjects sub ON sub.id = s.subject_id
	JOIN users lec ON lec.id = s.lecturer_id
	LEFT JOIN users asst ON asst.id = s.assistant_id
	JOIN locations loc ON loc.id = s.location_id`

func scanSession(row interface{ Scan(...any) error }) (Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.SubjectID, &s.SubjectName, &s.LecturerID, &s.LecturerName,
		&s.AssistantID, &s.AssistantName, &s.LocationID, &s.LocationName,
		&s.SessionDate, &s.StartTime, &s.EndTime, &s.Status, &s.CreatedAt)
	return s, err
}

func (r *Repository) Insert(ctx context.Context, s Session) (Session, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO sessions (subject_id, lecturer_id, assistant_id, location_id, session_date, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5::date, $6::time, $7::time, $8)
		RETURNING id, created_at`,
		s.SubjectID, s.LecturerID, s.AssistantID, s.LocationID, s.SessionDate, s.StartTime, s.EndTime, s.Status,
	).Scan(&s.ID, &s.CreatedAt)
	return s, err
}

func (r *Repository) Get(ctx context.Context, id int64) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` `+sessionJoins+` WHERE s.id = $1`, id)
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) SetStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET status = $2 WHERE id = $1`, id, status)
	return err
}

// HasScheduledOverlap reports whether a scheduled session occupies the
// location for an overlapping slot on the given date.
func (r *Repository) HasScheduledOverlap(ctx context.Context, locationID int64, date, start, end string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM sessions
			WHERE location_id = $1 AND session_date = $2::date AND status = 'scheduled'
			  AND id <> $5
			  AND start_time < $4::time AND $3::time < end_time
		)`, locationID, date, start, end, excludeID).Scan(&exists)
	return exists, err
}

func (r *Repository) ListByLecturer(ctx context.Context, lecturerID int64) ([]Session, error) {
	return r.query(ctx, `SELECT `+sessionColumns+` `+sessionJoins+`
		WHERE s.lecturer_id = $1 ORDER BY s.session_date DESC, s.start_time DESC`, lecturerID)
}

func (r *Repository) ListByAssistant(ctx context.Context, assistantID int64) ([]Session, error) {
	return r.query(ctx, `SELECT `+sessionColumns+` `+sessionJoins+`
		WHERE s.assistant_id = $1 ORDER BY s.session_date DESC, s.start_time DESC`, assistantID)
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
