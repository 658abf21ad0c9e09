package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists the catalogue and the enrollment/assignment registry.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// IsUniqueViolation reports whether err is a Postgres unique constraint error.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// -------- Departments --------

func (r *Repository) InsertDepartment(ctx context.Context, name string) (Department, error) {
	d := Department{Name: name}
	err := r.db.QueryRowContext(ctx, `INSERT INTO departments (name) VALUES ($1) RETURNING id`, name).Scan(&d.ID)
	return d, err
}

func (r *Repository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

func (r *Repository) UpdateDepartment(ctx context.Context, id int64, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE departments SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Repository) DeleteDepartment(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// -------- Courses --------

func (r *Repository) InsertCourse(ctx context.Context, c Course) (Course, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO courses (department_id, name) VALUES ($1, $2) RETURNING id
	`, c.DepartmentID, c.Name).Scan(&c.ID)
	return c, err
}

func (r *Repository) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, department_id, name FROM courses ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.DepartmentID, &c.Name); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r *Repository) UpdateCourse(ctx context.Context, c Course) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE courses SET department_id = $2, name = $3 WHERE id = $1
	`, c.ID, c.DepartmentID, c.Name)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Repository) DeleteCourse(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// -------- Subjects --------

func (r *Repository) InsertSubject(ctx context.Context, s Subject) (Subject, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO subjects (course_id, name, code) VALUES ($1, $2, $3) RETURNING id
	`, s.CourseID, s.Name, s.Code).Scan(&s.ID)
	return s, err
}

func (r *Repository) ListSubjects(ctx context.Context) ([]Subject, error) {
	return r.querySubjects(ctx, `SELECT id, course_id, name, code FROM subjects ORDER BY name`)
}

// ListSubjectsByDepartment returns subjects whose course belongs to the department.
func (r *Repository) ListSubjectsByDepartment(ctx context.Context, deptID int64) ([]Subject, error) {
	return r.querySubjects(ctx, `
		SELECT s.id, s.course_id, s.name, s.code
		FROM subjects s JOIN courses c ON c.id = s.course_id
		WHERE c.department_id = $1
		ORDER BY s.name
	`, deptID)
}

func (r *Repository) UpdateSubject(ctx context.Context, s Subject) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subjects SET course_id = $2, name = $3, code = $4 WHERE id = $1
	`, s.ID, s.CourseID, s.Name, s.Code)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Repository) DeleteSubject(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Repository) querySubjects(ctx context.Context, query string, args ...any) ([]Subject, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Subject
	for rows.Next() {
		var s Subject
		if err := rows.Scan(&s.ID, &s.CourseID, &s.Name, &s.Code); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// -------- Registry --------

// Assign binds a staff user to a subject; re-adding an existing pair is a no-op.
func (r *Repository) Assign(ctx context.Context, subjectID, userID int64, role string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subject_assignments (subject_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (subject_id, user_id, role) DO NOTHING
	`, subjectID, userID, role)
	return err
}

// Enroll binds a student to a subject; re-adding an existing pair is a no-op.
func (r *Repository) Enroll(ctx context.Context, subjectID, studentID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO enrollments (subject_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT (subject_id, student_id) DO NOTHING
	`, subjectID, studentID)
	return err
}

// Unenroll removes a student's enrollment.
func (r *Repository) Unenroll(ctx context.Context, subjectID, studentID int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM enrollments WHERE subject_id = $1 AND student_id = $2
	`, subjectID, studentID)
	return err
}

// IsEnrolled reports whether the student is enrolled in the subject.
func (r *Repository) IsEnrolled(ctx context.Context, subjectID, studentID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM enrollments WHERE subject_id = $1 AND student_id = $2)
	`, subjectID, studentID).Scan(&ok)
	return ok, err
}

// IsAssigned reports whether the user holds any staff assignment on the subject.
// When role is non-empty only that role counts.
func (r *Repository) IsAssigned(ctx context.Context, subjectID, userID int64, role string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM subject_assignments WHERE subject_id = $1 AND user_id = $2`
	args := []any{subjectID, userID}
	if role != "" {
		query += ` AND role = $3`
		args = append(args, role)
	}
	query += `)`
	var ok bool
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&ok)
	return ok, err
}

// ListAssignedSubjects returns subjects the user is assigned to in any role.
func (r *Repository) ListAssignedSubjects(ctx context.Context, userID int64) ([]Subject, error) {
	return r.querySubjects(ctx, `
		SELECT s.id, s.course_id, s.name, s.code
		FROM subjects s JOIN subject_assignments a ON a.subject_id = s.id
		WHERE a.user_id = $1
		ORDER BY s.name
	`, userID)
}

// ListEnrolledSubjects returns subjects the student is enrolled in.
func (r *Repository) ListEnrolledSubjects(ctx context.Context, studentID int64) ([]Subject, error) {
	return r.querySubjects(ctx, `
		SELECT s.id, s.course_id, s.name, s.code
		FROM subjects s JOIN enrollments e ON e.subject_id = s.id
		WHERE e.student_id = $1
		ORDER BY s.name
	`, studentID)
}

// ListAvailableSubjects returns subjects in the student's course the student is
// not yet enrolled in.
func (r *Repository) ListAvailableSubjects(ctx context.Context, studentID int64) ([]Subject, error) {
	return r.querySubjects(ctx, `
		SELECT s.id, s.course_id, s.name, s.code
		FROM subjects s
		JOIN users u ON u.course_id = s.course_id
		WHERE u.id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM enrollments e WHERE e.subject_id = s.id AND e.student_id = $1
		  )
		ORDER BY s.name
	`, studentID)
}
