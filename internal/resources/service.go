package resources

import (
	"context"
	"time"

	"campushub/internal/apperr"
)

// Service implements location and equipment management.
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

// AddLocation creates a location or lab.
func (s *Service) AddLocation(ctx context.Context, l Location) (Location, error) {
	if l.Name == "" {
		return Location{}, apperr.Validation("location name required")
	}
	if l.Capacity < 0 {
		return Location{}, apperr.Validation("capacity must not be negative")
	}
	if l.LocType == "" {
		l.LocType = TypeRoom
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.InsertLocation(ctx, l)
}

// ListLocations returns locations; locType/deptID filter when non-zero.
func (s *Service) ListLocations(ctx context.Context, locType string, deptID int64) ([]Location, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.ListLocations(ctx, locType, deptID)
}

// UpdateLocation replaces a location's fields.
func (s *Service) UpdateLocation(ctx context.Context, l Location) error {
	if l.Name == "" {
		return apperr.Validation("location name required")
	}
	if l.Capacity < 0 {
		return apperr.Validation("capacity must not be negative")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	ok, err := s.repo.UpdateLocation(ctx, l)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("location not found")
	}
	return nil
}

// RemoveLocation deletes a location.
func (s *Service) RemoveLocation(ctx context.Context, id int64) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	ok, err := s.repo.DeleteLocation(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("location not found")
	}
	return nil
}

// AddEquipment creates an equipment pool; available starts at total.
func (s *Service) AddEquipment(ctx context.Context, e Equipment) (Equipment, error) {
	if e.Name == "" {
		return Equipment{}, apperr.Validation("equipment name required")
	}
	if e.TotalQty < 0 {
		return Equipment{}, apperr.Validation("total quantity must not be negative")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.InsertEquipment(ctx, e)
}

// ListEquipment returns equipment, optionally scoped to a department.
func (s *Service) ListEquipment(ctx context.Context, deptID int64) ([]Equipment, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.ListEquipment(ctx, deptID)
}

// UpdateEquipment replaces an item's fields, preserving the stock invariant.
func (s *Service) UpdateEquipment(ctx context.Context, e Equipment) error {
	if e.Name == "" {
		return apperr.Validation("equipment name required")
	}
	if e.TotalQty < 0 {
		return apperr.Validation("total quantity must not be negative")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	ok, err := s.repo.UpdateEquipment(ctx, e)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("equipment not found")
	}
	return nil
}

// RemoveEquipment deletes an equipment pool.
func (s *Service) RemoveEquipment(ctx context.Context, id int64) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	ok, err := s.repo.DeleteEquipment(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("equipment not found")
	}
	return nil
}
