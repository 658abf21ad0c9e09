package dashboard

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

// AdminStats is the admin landing-page summary.
type AdminStats struct {
	TotalUsers           int            `json:"totalUsers"`
	TotalEquipment       int            `json:"totalEquipment"`
	PendingLabBookings   int            `json:"pendingLabBookings"`
	PendingEquipRequests int            `json:"pendingEquipRequests"`
	UsersByRole          map[string]int `json:"usersByRole"`
}

// LecturerStats summarizes a lecturer's teaching load.
type LecturerStats struct {
	TotalSubjects    int `json:"totalSubjects"`
	TotalSessions    int `json:"totalSessions"`
	UpcomingSessions int `json:"upcomingSessions"`
	TotalStudents    int `json:"totalStudents"`
}

// StudentStats summarizes a student's enrollment and attendance.
type StudentStats struct {
	EnrolledSubjects int `json:"enrolledSubjects"`
	AttendedSessions int `json:"attendedSessions"`
	UpcomingSessions int `json:"upcomingSessions"`
}

func (r *Repository) AdminStats(ctx context.Context) (AdminStats, error) {
	var s AdminStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM equipment),
			(SELECT COUNT(*) FROM lab_bookings WHERE status = 'pending'),
			(SELECT COUNT(*) FROM equipment_requests WHERE status = 'pending')`,
	).Scan(&s.TotalUsers, &s.TotalEquipment, &s.PendingLabBookings, &s.PendingEquipRequests)
	if err != nil {
		return AdminStats{}, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return AdminStats{}, err
	}
	defer rows.Close()

	s.UsersByRole = make(map[string]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return AdminStats{}, err
		}
		s.UsersByRole[role] = n
	}
	return s, rows.Err()
}

func (r *Repository) LecturerStats(ctx context.Context, lecturerID int64) (LecturerStats, error) {
	var s LecturerStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM subject_assignments WHERE user_id = $1 AND role = 'lecturer'),
			(SELECT COUNT(*) FROM sessions WHERE lecturer_id = $1 AND status <> 'cancelled'),
			(SELECT COUNT(*) FROM sessions WHERE lecturer_id = $1 AND status = 'scheduled'
				AND (session_date + end_time) >= now()),
			(SELECT COUNT(DISTINCT e.student_id)
				FROM enrollments e
				JOIN subject_assignments sa ON sa.subject_id = e.subject_id
				WHERE sa.user_id = $1 AND sa.role = 'lecturer')`,
		lecturerID,
	).Scan(&s.TotalSubjects, &s.TotalSessions, &s.UpcomingSessions, &s.TotalStudents)
	return s, err
}

func (r *Repository) StudentStats(ctx context.Context, studentID int64) (StudentStats, error) {
	var s StudentStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM enrollments WHERE student_id = $1),
			(SELECT COUNT(*) FROM attendance_records WHERE student_id = $1),
			(SELECT COUNT(*)
				FROM sessions se
				JOIN enrollments e ON e.subject_id = se.subject_id
				WHERE e.student_id = $1 AND se.status = 'scheduled'
				  AND (se.session_date + se.end_time) >= now())`,
		studentID,
	).Scan(&s.EnrolledSubjects, &s.AttendedSessions, &s.UpcomingSessions)
	return s, err
}
