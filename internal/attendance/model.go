package attendance

import "time"

// Record is one student's presence at one session. A student can hold at most
// one record per session; rescans refresh the existing one.
type Record struct {
	ID          int64     `json:"id"`
	SessionID   int64     `json:"session_id"`
	StudentID   int64     `json:"student_id"`
	StudentName string    `json:"student_name,omitempty"`
	StudentCode string    `json:"student_code,omitempty"`
	Status      string    `json:"status"`
	ScannedBy   int64     `json:"scanned_by"`
	ScanTime    time.Time `json:"scan_time"`
}

const StatusPresent = "present"
