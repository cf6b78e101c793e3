package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tkaraca/facegate/internal/database"
)

// StudentRepository provides PostgreSQL-backed student storage.
type StudentRepository struct {
	pool *Pool
}

// NewStudentRepository creates a new PostgreSQL student repository.
func NewStudentRepository(pool *Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// CreateStudent inserts a new student record.
func (r *StudentRepository) CreateStudent(ctx context.Context, student database.Student) error {
	var classID any
	if student.ClassID != "" {
		classID = student.ClassID
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO students (student_id, school_id, class_id, first_name, last_name, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
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

	err := r.pool.QueryRow(ctx, `
		SELECT student_id, school_id, class_id, first_name, last_name, is_active
		FROM students
		WHERE student_id = $1
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
	_, err := r.pool.Exec(ctx, `
		INSERT INTO classes (class_id, school_id, class_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (class_id) DO NOTHING
	`, classID, schoolID, className)
	if err != nil {
		return fmt.Errorf("insert class: %w", err)
	}
	return nil
}
