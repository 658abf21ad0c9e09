package users

import "time"

// Roles known to the engine. A user's role is fixed at creation.
const (
	RoleAdmin        = "admin"
	RoleLecturer     = "lecturer"
	RoleStudent      = "student"
	RoleDemo         = "demo"
	RoleLabAssistant = "lab_assistant"
	RoleOfficeStaff  = "office_staff"
)

// ValidRole reports whether role is one the engine accepts.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleLecturer, RoleStudent, RoleDemo, RoleLabAssistant, RoleOfficeStaff:
		return true
	}
	return false
}

// User is an account in the directory. UserCode is the barcode/QR identity
// payload printed on the campus card.
type User struct {
	ID           int64     `json:"id"`
	UserCode     string    `json:"user_code"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	DepartmentID *int64    `json:"department_id,omitempty"`
	CourseID     *int64    `json:"course_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
