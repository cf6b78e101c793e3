package database

import (
	"time"
)

// StoredEmbedding is one face embedding sample stored for a student.
// A student accumulates samples from enrollment and from active learning;
// the recognition gallery averages them into a single mean vector.
type StoredEmbedding struct {
	ID        int64
	StudentID string
	SchoolID  string
	Embedding []float32
	Source    string // "enrollment" or "active_learning"
	Dim       int
	CreatedAt time.Time
}

// Embedding source tags.
const (
	SourceEnrollment     = "enrollment"
	SourceActiveLearning = "active_learning"
)

// Student is an enrolled student. Only active students participate in
// gallery builds.
type Student struct {
	StudentID string
	SchoolID  string
	ClassID   string
	FirstName string
	LastName  string
	IsActive  bool
}

// FullName returns the student's display name.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// AttendanceResult is the outcome of an attendance mark attempt.
// Status is "success" for a new record, "exists" when the student was
// already marked today, and "error" for a failed write.
type AttendanceResult struct {
	Status           string
	Message          string
	StudentName      string
	ClassName        string
	AttendanceStatus string // "present" etc., or the existing record's status
	MarkedAt         time.Time
}

// Attendance result statuses.
const (
	MarkSuccess = "success"
	MarkExists  = "exists"
	MarkError   = "error"
)

// AttendanceRecord is a stored attendance log entry with joined
// student and class names for display.
type AttendanceRecord struct {
	ID          string
	StudentID   string
	StudentName string
	ClassName   string
	Timestamp   time.Time
	Status      string
	Confidence  float64
}

// DailyStat is one day of the weekly attendance series.
type DailyStat struct {
	Name       string // weekday name
	Attendance int    // distinct students marked present
	Absence    int    // enrolled students without a mark
	Total      int
}

// SchoolStats is the dashboard summary for one school.
type SchoolStats struct {
	TotalStudents int
	TotalClasses  int
	TodayCount    int
	Weekly        []DailyStat
}
