package models

import "time"

// AttendanceStatus represents the status for attendance records. A missing
// record for a given date means "not yet marked", which is distinct from an
// explicit absent mark.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent:
		return true
	default:
		return false
	}
}

// Attendance is a per-day attendance row for an event participant. At most
// one row exists per (event, USN, date).
type Attendance struct {
	ID          int64             `db:"id" json:"id"`
	EventID     int64             `db:"event_id" json:"event_id"`
	USN         string            `db:"usn" json:"usn"`
	StudentName *string           `db:"student_name" json:"student_name,omitempty"`
	Date        time.Time         `db:"attendance_date" json:"attendance_date"`
	Status      *AttendanceStatus `db:"status" json:"status,omitempty"`
	MarkedBy    *int64            `db:"marked_by" json:"marked_by,omitempty"`
	MarkedAt    *time.Time        `db:"marked_at" json:"marked_at,omitempty"`
}

// AttendanceRosterRow pairs a selected participant with any attendance mark
// recorded for the requested date. Unmarked participants carry a nil status.
type AttendanceRosterRow struct {
	EventID     int64             `json:"event_id"`
	USN         string            `json:"usn"`
	StudentName string            `json:"student_name"`
	Date        time.Time         `json:"attendance_date"`
	Status      *AttendanceStatus `json:"status"`
	MarkedAt    *time.Time        `json:"marked_at,omitempty"`
}
