package catalog

import (
	"context"
	"time"

	"campushub/internal/apperr"
)

// Service implements catalogue CRUD and the enrollment/assignment registry.
type Service struct {
	repo    *Repository
	timeout time.Duration
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{repo: repo, timeout: timeout}
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// -------- Departments --------

func (s *Service) AddDepartment(ctx context.Context, name string) (Department, error) {
	if name == "" {
		return Department{}, apperr.Validation("department name required")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	d, err := s.repo.InsertDepartment(ctx, name)
	if IsUniqueViolation(err) {
		return Department{}, apperr.Validation("department already exists")
	}
	return d, err
}

func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.ListDepartments(ctx)
}

func (s *Service) RenameDepartment(ctx context.Context, id int64, name string) error {
	if name == "" {
		return apperr.Validation("department name required")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	ok, err := s.repo.UpdateDepartment(ctx, id, name)
	if IsUniqueViolation(err) {
		return apperr.Validation("department already exists")
	}
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("department not found")
	}
	return nil
}

func (s *Service) RemoveDepartment(ctx context.Context, id int64) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	ok, err := s.repo.DeleteDepartment(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("department not found")
	}
	return nil
}

// -------- Courses --------

func (s *Service) AddCourse(ctx context.Context, c Course) (Course, error) {
	if c.Name == "" || c.DepartmentID == 0 {
		return Course{}, apperr.Validation("course name and department required")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.InsertCourse(ctx, c)
}

func (s *Service) ListCourses(ctx context.Context) ([]Course, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.ListCourses(ctx)
}

func (s *Service) UpdateCourse(ctx context.Context, c Course) error {
	if c.Name == "" || c.DepartmentID == 0 {
		return apperr.Validation("course name and department required")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	ok, err := s.repo.UpdateCourse(ctx, c)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("course not found")
	}
	return nil
}

func (s *Service) RemoveCourse(ctx context.Context, id int64) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	ok, err := s.repo.DeleteCourse(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("course not found")
	}
	return nil
}

// -------- Subjects --------

func (s *Service) AddSubject(ctx context.Context, sub Subject) (Subject, error) {
	if sub.Name == "" || sub.Code == "" || sub.CourseID == 0 {
		return Subject{}, apperr.Validation("subject name, code and course required")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	res, err := s.repo.InsertSubject(ctx, sub)
	if IsUniqueViolation(err) {
		return Subject{}, apperr.Validation("subject code already used in this course")
	}
	return res, err
}

func (s *Service) ListSubjects(ctx context.Context) ([]Subject, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.ListSubjects(ctx)
}

func (s *Service) ListSubjectsByDepartment(ctx context.Context, deptID int64) ([]Subject, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.ListSubjectsByDepartment(ctx, deptID)
}

func (s *Service) UpdateSubject(ctx context.Context, sub Subject) error {
	if sub.Name == "" || sub.Code == "" || sub.CourseID == 0 {
		return apperr.Validation("subject name, code and course required")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	ok, err := s.repo.UpdateSubject(ctx, sub)
	if IsUniqueViolation(err) {
		return apperr.Validation("subject code already used in this course")
	}
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("subject not found")
	}
	return nil
}

func (s *Service) RemoveSubject(ctx context.Context, id int64) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	ok, err := s.repo.DeleteSubject(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("subject not found")
	}
	return nil
}

// -------- Registry --------

// Assign binds staff users to a subject. Inserts are idempotent.
func (s *Service) Assign(ctx context.Context, subjectID int64, userIDs []int64, role string) error {
	if role != AssignLecturer && role != AssignDemo {
		return apperr.Validation("assignment role must be lecturer or demo")
	}
	if len(userIDs) == 0 {
		return apperr.Validation("at least one user required")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	for _, id := range userIDs {
		if err := s.repo.Assign(ctx, subjectID, id, role); err != nil {
			return err
		}
	}
	return nil
}

// Enroll binds students to a subject. Inserts are idempotent.
func (s *Service) Enroll(ctx context.Context, subjectID int64, studentIDs []int64) error {
	if len(studentIDs) == 0 {
		return apperr.Validation("at least one student required")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	for _, id := range studentIDs {
		if err := s.repo.Enroll(ctx, subjectID, id); err != nil {
			return err
		}
	}
	return nil
}

// Unenroll removes a student's enrollment.
func (s *Service) Unenroll(ctx context.Context, subjectID, studentID int64) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.Unenroll(ctx, subjectID, studentID)
}

// IsEnrolled reports whether the student is enrolled in the subject.
func (s *Service) IsEnrolled(ctx context.Context, subjectID, studentID int64) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.IsEnrolled(ctx, subjectID, studentID)
}

// IsAssigned reports whether the user is assigned to the subject.
func (s *Service) IsAssigned(ctx context.Context, subjectID, userID int64, role string) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.IsAssigned(ctx, subjectID, userID, role)
}

func (s *Service) ListAssignedSubjects(ctx context.Context, userID int64) ([]Subject, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.ListAssignedSubjects(ctx, userID)
}

func (s *Service) ListEnrolledSubjects(ctx context.Context, studentID int64) ([]Subject, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.ListEnrolledSubjects(ctx, studentID)
}

func (s *Service) ListAvailableSubjects(ctx context.Context, studentID int64) ([]Subject, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.ListAvailableSubjects(ctx, studentID)
}
