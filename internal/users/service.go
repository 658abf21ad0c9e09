package users

import (
	"context"
	"strings"
	"time"

	"campushub/internal/apperr"
	"campushub/internal/auth"
)

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, role string) ([]User, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Service implements directory operations.
type Service struct {
	store   Store
	timeout time.Duration
}

// NewService creates a service backed by a store.
func NewService(store Store, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{store: store, timeout: timeout}
}

// NewUserInput is the admin add-user payload.
type NewUserInput struct {
	UserCode     string `json:"user_id" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	Role         string `json:"role" binding:"required"`
	DepartmentID *int64 `json:"department_id"`
	CourseID     *int64 `json:"course_id"`
}

// Add creates a user with a hashed credential. Role is fixed at creation.
func (s *Service) Add(ctx context.Context, in NewUserInput) (User, error) {
	if !ValidRole(in.Role) {
		return User{}, apperr.Validation("unknown role: " + in.Role)
	}
	if !strings.Contains(in.Email, "@") {
		return User{}, apperr.Validation("invalid email")
	}
	if len(in.Password) < 6 {
		return User{}, apperr.Validation("password must be at least 6 characters")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.Insert(ctx, User{
		UserCode:     in.UserCode,
		Name:         in.Name,
		Email:        strings.ToLower(in.Email),
		PasswordHash: hash,
		Role:         in.Role,
		DepartmentID: in.DepartmentID,
		CourseID:     in.CourseID,
	})
}

// Authenticate verifies an email/password pair and returns the user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	u, err := s.store.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return User{}, err
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		return User{}, apperr.Unauthorized("invalid email or password")
	}
	return *u, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if u == nil {
		return User{}, apperr.NotFound("user not found")
	}
	return *u, nil
}

// List returns users, optionally filtered by role.
func (s *Service) List(ctx context.Context, role string) ([]User, error) {
	if role != "" && !ValidRole(role) {
		return nil, apperr.Validation("unknown role: " + role)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.List(ctx, role)
}

// Remove deletes a user; dependent enrollments and assignments cascade.
func (s *Service) Remove(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("user not found")
	}
	return nil
}
