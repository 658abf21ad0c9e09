package attendance

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

// Upsert records a scan. A rescan of the same student refreshes scan_time and
// scanned_by on the existing row instead of creating a duplicate. created
// reports whether a new row was inserted.
func (r *Repository) Upsert(ctx context.Context, rec Record) (Record, bool, error) {
	var created bool
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (session_id, student_id, status, scanned_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, student_id)
		DO UPDATE SET scan_time = now(), scanned_by = EXCLUDED.scanned_by
		RETURNING id, scan_time, (xmax = 0)`,
		rec.SessionID, rec.StudentID, rec.Status, rec.ScannedBy,
	).Scan(&rec.ID, &rec.ScanTime, &created)
	return rec, created, err
}

// ListBySession returns all records for a session, newest scan first.
func (r *Repository) ListBySession(ctx context.Context, sessionID int64) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.session_id, a.student_id, u.name, u.user_code, a.status, a.scanned_by, a.scan_time
		FROM attendance_records a
		JOIN users u ON u.id = a.student_id
		WHERE a.session_id = $1
		ORDER BY a.scan_time DESC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &rec.StudentName,
			&rec.StudentCode, &rec.Status, &rec.ScannedBy, &rec.ScanTime); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
