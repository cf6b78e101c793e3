package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tkaraca/facegate/internal/database"
)

// StudentRepository provides MariaDB-backed student storage.
type StudentRepository struct {
	pool *Pool
}

// NewStudentRepository creates a new MariaDB student repository.
func NewStudentRepository(pool *Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// CreateStudent inserts a new student record.
func (r *StudentRepository) CreateStudent(ctx context.Context, student database.Student) error {
	var classID any
	if student.ClassID != "" {
		classID = student.ClassID
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO students (student_id, school_id, class_id, first_name, last_name, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, student.StudentID, student.SchoolID, classID, student.FirstName, student.LastName, student.IsActive)
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

// GetStudent retrieves a student by ID, returns nil if not found.
func (r *StudentRepository) GetStudent(ctx context.Context, studentID string) (*database.Student, error) {
	var student database.Student
	var classID sql.NullString

	err := r.pool.db.QueryRowContext(ctx, `
		SELECT student_id, school_id, class_id, first_name, last_name, is_active
		FROM students
		WHERE student_id = ?
	`, studentID).Scan(&student.StudentID, &student.SchoolID, &classID, &student.FirstName, &student.LastName, &student.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query student: %w", err)
	}

	student.ClassID = classID.String
	return &student, nil
}

// EnsureClass inserts a class if it does not already exist.
func (r *StudentRepository) EnsureClass(ctx context.Context, classID, schoolID, className string) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT IGNORE INTO classes (class_id, school_id, class_name)
		VALUES (?, ?, ?)
	`, classID, schoolID, className)
	if err != nil {
		return fmt.Errorf("insert class: %w", err)
	}
	return nil
}
