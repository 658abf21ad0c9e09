package sessions

import "time"

// Session statuses. Completed is never stored; it is derived at read time
// from a scheduled session whose end has passed.
const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Session is a scheduled class meeting for a subject.
type Session struct {
	ID            int64     `json:"id"`
	SubjectID     int64     `json:"subject_id"`
	SubjectName   string    `json:"subject_name,omitempty"`
	LecturerID    int64     `json:"lecturer_id"`
	LecturerName  string    `json:"lecturer_name,omitempty"`
	AssistantID   *int64    `json:"assistant_id,omitempty"`
	AssistantName *string   `json:"assistant_name,omitempty"`
	LocationID    int64     `json:"location_id"`
	LocationName  string    `json:"location_name,omitempty"`
	SessionDate   string    `json:"session_date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
