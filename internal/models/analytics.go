package models

// AnalyticsOverview carries the dashboard KPI figures.
type AnalyticsOverview struct {
	TotalStudents      int64   `json:"total_students"`
	TotalEvents        int64   `json:"total_events"`
	TotalRegistrations int64   `json:"total_registrations"`
	AvgAttendanceRate  float64 `json:"avg_attendance_rate"`
}

// EventParticipationCount pairs an event name with its selected-participant
// count.
type EventParticipationCount struct {
	Name         string `json:"name"`
	Participants int64  `json:"participants"`
}

// BranchCount is one slice of the branch distribution chart.
type BranchCount struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// SemesterCount is one bar of the semester distribution chart.
type SemesterCount struct {
	Semester string `json:"semester"`
	Count    int64  `json:"count"`
}

// ParticipationAnalytics breaks selections down per event and approved
// students down per branch and semester.
type ParticipationAnalytics struct {
	EventParticipation   []EventParticipationCount `json:"event_participation"`
	BranchDistribution   []BranchCount             `json:"branch_distribution"`
	SemesterDistribution []SemesterCount           `json:"semester_distribution"`
}

// EventTrendPoint places an event's selection count on its start date.
type EventTrendPoint struct {
	Date         string `json:"date"`
	Name         string `json:"name"`
	Participants int64  `json:"participants"`
}

// EventAnalytics carries the event timeline and the most popular events.
type EventAnalytics struct {
	EventTrend []EventTrendPoint         `json:"event_trend"`
	TopEvents  []EventParticipationCount `json:"top_events"`
}

// EventAttendanceRate is the per-event attendance summary.
type EventAttendanceRate struct {
	Name    string  `json:"name"`
	Rate    float64 `json:"rate"`
	Present int64   `json:"present"`
	Total   int64   `json:"total"`
}

// AttendanceAnalytics carries per-event attendance rates, best first.
type AttendanceAnalytics struct {
	AttendanceRates []EventAttendanceRate `json:"attendance_rates"`
}

// EventAttendanceStats is the raw per-event mark count aggregate.
type EventAttendanceStats struct {
	EventID int64 `db:"event_id" json:"event_id"`
	Total   int64 `db:"total" json:"total"`
	Present int64 `db:"present" json:"present"`
}
