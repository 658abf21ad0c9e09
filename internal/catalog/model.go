package catalog

// Department is the root aggregation for courses, locations and equipment.
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Course belongs to one department.
type Course struct {
	ID           int64  `json:"id"`
	DepartmentID int64  `json:"department_id"`
	Name         string `json:"name"`
}

// Subject belongs to one course; code is unique within the course.
type Subject struct {
	ID       int64  `json:"id"`
	CourseID int64  `json:"course_id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
}

// Assignment roles for subject staff.
const (
	AssignLecturer = "lecturer"
	AssignDemo     = "demo"
)
