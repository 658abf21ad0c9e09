package booking

import "time"

// Approval statuses. Pending is the only state transitions start from.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// LabBooking is a request to reserve a lab for a time slot. Times are "HH:MM",
// the interval is half-open [start, end).
type LabBooking struct {
	ID           int64      `json:"id"`
	LabID        int64      `json:"lab_id"`
	LabName      string     `json:"lab_name,omitempty"`
	UserID       int64      `json:"user_id"`
	UserName     string     `json:"user_name,omitempty"`
	DepartmentID *int64     `json:"department_id,omitempty"`
	SessionDate  string     `json:"session_date"`
	StartTime    string     `json:"start_time"`
	EndTime      string     `json:"end_time"`
	Status       string     `json:"status"`
	DecidedBy    *int64     `json:"decided_by,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// EquipmentRequest is a request to borrow qty units of an equipment pool.
type EquipmentRequest struct {
	ID           int64      `json:"id"`
	EquipmentID  int64      `json:"equipment_id"`
	EquipName    string     `json:"equip_name,omitempty"`
	UserID       int64      `json:"user_id"`
	UserName     string     `json:"user_name,omitempty"`
	DepartmentID *int64     `json:"department_id,omitempty"`
	Qty          int        `json:"qty"`
	RequestDate  string     `json:"request_date"`
	Status       string     `json:"status"`
	DecidedBy    *int64     `json:"decided_by,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
