package booking

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

const bookingColumns = `b.id, b.lab_id, l.name, b.user_id, u.name, b.department_id,
	b.session_date::text, to_char(b.start_time, 'HH24:MI'), to_char(b.end_time, 'HH24:MI'),
	b.status, b.decided_by, b.decided_at, b.created_at`

const bookingJoins = `FROM lab_bookings b
	JOIN locations l ON l.id = b.lab_id
	JOIN users u ON u.id = b.user_id`

func scanBooking(row interface{ Scan(...any) error }) (LabBooking, error) {
	var b LabBooking
	err := row.Scan(&b.ID, &b.LabID, &b.LabName, &b.UserID, &b.UserName, &b.DepartmentID,
		&b.SessionDate, &b.StartTime, &b.EndTime, &b.Status, &b.DecidedBy, &b.DecidedAt, &b.CreatedAt)
	return b, err
}

func (r *Repository) InsertBooking(ctx context.Context, b LabBooking) (LabBooking, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO lab_bookings (lab_id, user_id, department_id, session_date, start_time, end_time, status)
		VALUES ($1, $2, $3, $4::date, $5::time, $6::time, $7)
		RETURNING id, created_at`,
		b.LabID, b.UserID, b.DepartmentID, b.SessionDate, b.StartTime, b.EndTime, b.Status,
	).Scan(&b.ID, &b.CreatedAt)
	return b, err
}

func (r *Repository) GetBooking(ctx context.Context, id int64) (*LabBooking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` `+bookingJoins+` WHERE b.id = $1`, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) SetBookingStatus(ctx context.Context, id int64, status string, decidedBy int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE lab_bookings SET status = $2, decided_by = $3, decided_at = now() WHERE id = $1`,
		id, status, decidedBy)
	return err
}

// HasApprovedOverlap reports whether an approved booking for the lab on the
// given date overlaps [start, end). Bookings that only touch at a boundary do
// not overlap.
func (r *Repository) HasApprovedOverlap(ctx context.Context, labID int64, date, start, end string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM lab_bookings
			WHERE lab_id = $1 AND session_date = $2::date AND status = 'approved'
			  AND id <> $5
			  AND start_time < $4::time AND $3::time < end_time
		)`, labID, date, start, end, excludeID).Scan(&exists)
	return exists, err
}

func (r *Repository) LabExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM locations WHERE id = $1 AND loc_type = 'lab')`, id).Scan(&exists)
	return exists, err
}

func (r *Repository) ListBookingsByUser(ctx context.Context, userID int64) ([]LabBooking, error) {
	return r.queryBookings(ctx, `SELECT `+bookingColumns+` `+bookingJoins+`
		WHERE b.user_id = $1 ORDER BY b.created_at DESC`, userID)
}

func (r *Repository) ListPendingBookings(ctx context.Context) ([]LabBooking, error) {
	return r.queryBookings(ctx, `SELECT `+bookingColumns+` `+bookingJoins+`
		WHERE b.status = 'pending' ORDER BY b.created_at ASC`)
}

func (r *Repository) queryBookings(ctx context.Context, query string, args ...any) ([]LabBooking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LabBooking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

const requestColumns = `r.id, r.equipment_id, e.name, r.user_id, u.name, r.department_id,
	r.request_date::text, r.qty, r.status, r.decided_by, r.decided_at, r.created_at`

const requestJoins = `FROM equipment_requests r
	JOIN equipment e ON e.id = r.equipment_id
	JOIN users u ON u.id = r.user_id`

func scanRequest(row interface{ Scan(...any) error }) (EquipmentRequest, error) {
	var q EquipmentRequest
	err := row.Scan(&q.ID, &q.EquipmentID, &q.EquipName, &q.UserID, &q.UserName, &q.DepartmentID,
		&q.RequestDate, &q.Qty, &q.Status, &q.DecidedBy, &q.DecidedAt, &q.CreatedAt)
	return q, err
}

func (r *Repository) InsertRequest(ctx context.Context, q EquipmentRequest) (EquipmentRequest, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO equipment_requests (equipment_id, user_id, department_id, request_date, qty, status)
		VALUES ($1, $2, $3, $4::date, $5, $6)
		RETURNING id, created_at`,
		q.EquipmentID, q.UserID, q.DepartmentID, q.RequestDate, q.Qty, q.Status,
	).Scan(&q.ID, &q.CreatedAt)
	return q, err
}

func (r *Repository) GetRequest(ctx context.Context, id int64) (*EquipmentRequest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+requestColumns+` `+requestJoins+` WHERE r.id = $1`, id)
	q, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *Repository) SetRequestStatus(ctx context.Context, id int64, status string, decidedBy int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE equipment_requests SET status = $2, decided_by = $3, decided_at = now() WHERE id = $1`,
		id, status, decidedBy)
	return err
}

// EquipmentStock returns the current available and total quantities.
func (r *Repository) EquipmentStock(ctx context.Context, id int64) (available, total int, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT available_qty, total_qty FROM equipment WHERE id = $1`, id).Scan(&available, &total)
	if err == sql.ErrNoRows {
		return 0, 0, nil
	}
	return available, total, err
}

// CompareAndSwapStock sets available_qty to next only if it still equals
// expected. Returns false when another writer got there first.
func (r *Repository) CompareAndSwapStock(ctx context.Context, id int64, expected, next int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE equipment SET available_qty = $3 WHERE id = $1 AND available_qty = $2`,
		id, expected, next)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *Repository) ListRequestsByUser(ctx context.Context, userID int64) ([]EquipmentRequest, error) {
	return r.queryRequests(ctx, `SELECT `+requestColumns+` `+requestJoins+`
		WHERE r.user_id = $1 ORDER BY r.created_at DESC`, userID)
}

func (r *Repository) ListPendingRequests(ctx context.Context) ([]EquipmentRequest, error) {
	return r.queryRequests(ctx, `SELECT `+requestColumns+` `+requestJoins+`
		WHERE r.status = 'pending' ORDER BY r.created_at ASC`)
}

func (r *Repository) queryRequests(ctx context.Context, query string, args ...any) ([]EquipmentRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]EquipmentRequest, 0)
	for rows.Next() {
		q, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
