package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tkaraca/facegate/internal/database"
)

// AttendanceRepository provides PostgreSQL-backed attendance storage.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// MarkAttendance records a present mark for the student. One record per
// student per calendar day: a duplicate mark returns status "exists" with
// the original mark time instead of inserting a second record.
func (r *AttendanceRepository) MarkAttendance(ctx context.Context, studentID string, confidence float64) (*database.AttendanceResult, error) {
	var schoolID, firstName, lastName, className string
	var classID sql.NullString

	err := r.pool.QueryRow(ctx, `
		SELECT s.school_id, s.class_id, s.first_name, s.last_name, COALESCE(c.class_name, '')
		FROM students s
		LEFT JOIN classes c ON s.class_id = c.class_id
		WHERE s.student_id = $1
	`, studentID).Scan(&schoolID, &classID, &firstName, &lastName, &className)
	if errors.Is(err, sql.ErrNoRows) {
		return &database.AttendanceResult{
			Status:  database.MarkError,
			Message: "student not found",
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query student: %w", err)
	}

	studentName := firstName + " " + lastName

	var existingStatus string
	var existingTime time.Time
	err = r.pool.QueryRow(ctx, `
		SELECT status, marked_at FROM attendance
		WHERE student_id = $1 AND marked_at::date = CURRENT_DATE
	`, studentID).Scan(&existingStatus, &existingTime)
	if err == nil {
		return &database.AttendanceResult{
			Status:           database.MarkExists,
			Message:          fmt.Sprintf("already marked at %s", existingTime.Format("15:04")),
			StudentName:      studentName,
			ClassName:        className,
			AttendanceStatus: existingStatus,
			MarkedAt:         existingTime,
		}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check existing attendance: %w", err)
	}

	now := time.Now()
	_, err = r.pool.Exec(ctx, `
		INSERT INTO attendance (attendance_id, student_id, school_id, class_id, marked_at, status, verification_method, confidence_score)
		VALUES ($1, $2, $3, $4, $5, 'present', 'face', $6)
	`, uuid.NewString(), studentID, schoolID, classID, now, confidence)
	if err != nil {
		return nil, fmt.Errorf("insert attendance: %w", err)
	}

	return &database.AttendanceResult{
		Status:           database.MarkSuccess,
		Message:          "attendance recorded",
		StudentName:      studentName,
		ClassName:        className,
		AttendanceStatus: "present",
		MarkedAt:         now,
	}, nil
}

// ListRecords returns the school's attendance log, newest first.
func (r *AttendanceRepository) ListRecords(ctx context.Context, schoolID string) ([]database.AttendanceRecord, error) {
	query := `
		SELECT a.attendance_id, a.student_id,
		       COALESCE(s.first_name || ' ' || s.last_name, ''),
		       COALESCE(c.class_name, ''),
		       a.marked_at, a.status, COALESCE(a.confidence_score, 0)
		FROM attendance a
		LEFT JOIN students s ON a.student_id = s.student_id
		LEFT JOIN classes c ON a.class_id = c.class_id
		WHERE a.school_id = $1
		ORDER BY a.marked_at DESC
	`

	rows, err := r.pool.Query(ctx, query, schoolID)
	if err != nil {
		return nil, fmt.Errorf("query attendance records: %w", err)
	}
	defer rows.Close()

	var records []database.AttendanceRecord
	for rows.Next() {
		var rec database.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.StudentName, &rec.ClassName, &rec.Timestamp, &rec.Status, &rec.Confidence); err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}

	return records, nil
}

// Stats returns the school's dashboard summary including a last-7-days
// present/absent series.
func (r *AttendanceRepository) Stats(ctx context.Context, schoolID string) (*database.SchoolStats, error) {
	stats := &database.SchoolStats{}

	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM students WHERE school_id = $1", schoolID).Scan(&stats.TotalStudents)
	if err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}

	err = r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM classes WHERE school_id = $1", schoolID).Scan(&stats.TotalClasses)
	if err != nil {
		return nil, fmt.Errorf("count classes: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT student_id) FROM attendance
		WHERE school_id = $1 AND marked_at::date = CURRENT_DATE
	`, schoolID).Scan(&stats.TodayCount)
	if err != nil {
		return nil, fmt.Errorf("count today attendance: %w", err)
	}

	// Per-day distinct attendance for the last 7 days, keyed by date.
	rows, err := r.pool.Query(ctx, `
		SELECT marked_at::date, COUNT(DISTINCT student_id)
		FROM attendance
		WHERE school_id = $1 AND marked_at::date > CURRENT_DATE - 7
		GROUP BY marked_at::date
	`, schoolID)
	if err != nil {
		return nil, fmt.Errorf("query weekly attendance: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("scan weekly attendance: %w", err)
		}
		counts[day.Format("2006-01-02")] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weekly attendance: %w", err)
	}

	// Oldest day first.
	for i := 6; i >= 0; i-- {
		day := time.Now().AddDate(0, 0, -i)
		present := counts[day.Format("2006-01-02")]
		stats.Weekly = append(stats.Weekly, database.DailyStat{
			Name:       day.Weekday().String(),
			Attendance: present,
			Absence:    stats.TotalStudents - present,
			Total:      stats.TotalStudents,
		})
	}

	return stats, nil
}
