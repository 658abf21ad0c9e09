package resources

import (
	"context"
	"database/sql"
	"errors"
)

// Repository persists locations and equipment in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// -------- Locations --------

func (r *Repository) InsertLocation(ctx context.Context, l Location) (Location, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO locations (name, loc_type, capacity, department_id, available)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, l.Name, l.LocType, l.Capacity, l.DepartmentID, l.Available).Scan(&l.ID)
	return l, err
}

// ListLocations returns locations filtered by type and/or department when set.
func (r *Repository) ListLocations(ctx context.Context, locType string, deptID int64) ([]Location, error) {
	query := `SELECT id, name, loc_type, capacity, department_id, available FROM locations`
	args := []any{}
	clauses := []string{}
	if locType != "" {
		args = append(args, locType)
		clauses = append(clauses, "loc_type = $1")
	}
	if deptID != 0 {
		args = append(args, deptID)
		if len(args) == 1 {
			clauses = append(clauses, "department_id = $1")
		} else {
			clauses = append(clauses, "department_id = $2")
		}
	}
	for i, cl := range clauses {
		if i == 0 {
			query += " WHERE " + cl
		} else {
			query += " AND " + cl
		}
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.LocType, &l.Capacity, &l.DepartmentID, &l.Available); err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, rows.Err()
}

// GetLocation returns a location, or nil when not found.
func (r *Repository) GetLocation(ctx context.Context, id int64) (*Location, error) {
	var l Location
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, loc_type, capacity, department_id, available FROM locations WHERE id = $1
	`, id).Scan(&l.ID, &l.Name, &l.LocType, &l.Capacity, &l.DepartmentID, &l.Available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *Repository) UpdateLocation(ctx context.Context, l Location) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE locations
		SET name = $2, loc_type = $3, capacity = $4, department_id = $5, available = $6
		WHERE id = $1
	`, l.ID, l.Name, l.LocType, l.Capacity, l.DepartmentID, l.Available)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Repository) DeleteLocation(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// -------- Equipment --------

func (r *Repository) InsertEquipment(ctx context.Context, e Equipment) (Equipment, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO equipment (name, equip_type, total_qty, available_qty, department_id, description, image_url)
		VALUES ($1,$2,$3,$3,$4,$5,$6)
		RETURNING id, available_qty
	`, e.Name, e.EquipType, e.TotalQty, e.DepartmentID, e.Description, e.ImageURL).Scan(&e.ID, &e.AvailableQty)
	return e, err
}

// ListEquipment returns equipment, filtered by department when deptID != 0.
func (r *Repository) ListEquipment(ctx context.Context, deptID int64) ([]Equipment, error) {
	query := `SELECT id, name, equip_type, total_qty, available_qty, department_id, description, image_url FROM equipment`
	args := []any{}
	if deptID != 0 {
		query += ` WHERE department_id = $1`
		args = append(args, deptID)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Equipment
	for rows.Next() {
		var e Equipment
		if err := rows.Scan(&e.ID, &e.Name, &e.EquipType, &e.TotalQty, &e.AvailableQty, &e.DepartmentID, &e.Description, &e.ImageURL); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// GetEquipment returns an item, or nil when not found.
func (r *Repository) GetEquipment(ctx context.Context, id int64) (*Equipment, error) {
	var e Equipment
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, equip_type, total_qty, available_qty, department_id, description, image_url
		FROM equipment WHERE id = $1
	`, id).Scan(&e.ID, &e.Name, &e.EquipType, &e.TotalQty, &e.AvailableQty, &e.DepartmentID, &e.Description, &e.ImageURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// UpdateEquipment updates an item. When total_qty changes the available
// quantity shifts by the same delta, clamped so the stock invariant holds.
func (r *Repository) UpdateEquipment(ctx context.Context, e Equipment) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE equipment
		SET name = $2,
		    equip_type = $3,
		    available_qty = LEAST($4, GREATEST(0, available_qty + $4 - total_qty)),
		    total_qty = $4,
		    department_id = $5,
		    description = $6,
		    image_url = $7
		WHERE id = $1
	`, e.ID, e.Name, e.EquipType, e.TotalQty, e.DepartmentID, e.Description, e.ImageURL)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Repository) DeleteEquipment(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
