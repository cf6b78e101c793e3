package database

import (
	"context"
)

// EmbeddingReader provides read-only access to stored face embeddings.
type EmbeddingReader interface {
	// ListActiveEmbeddings returns all embedding samples belonging to active
	// students of the given school, in insertion order.
	ListActiveEmbeddings(ctx context.Context, schoolID string) ([]StoredEmbedding, error)
	// CountByStudent returns the number of stored samples for a student.
	CountByStudent(ctx context.Context, studentID string) (int, error)
}

// EmbeddingWriter provides write access to stored face embeddings.
type EmbeddingWriter interface {
	EmbeddingReader

	// AppendEmbedding stores a new embedding sample for a student with the
	// given source tag ("enrollment" or "active_learning").
	AppendEmbedding(ctx context.Context, studentID string, embedding []float32, source string) error
}

// AttendanceWriter records attendance marks. Marking is idempotent per
// student per calendar day: a duplicate mark returns status "exists".
type AttendanceWriter interface {
	MarkAttendance(ctx context.Context, studentID string, confidence float64) (*AttendanceResult, error)
}

// AttendanceReader provides read access to attendance logs and stats.
type AttendanceReader interface {
	// ListRecords returns the school's attendance log, newest first.
	ListRecords(ctx context.Context, schoolID string) ([]AttendanceRecord, error)
	// Stats returns the school's dashboard summary.
	Stats(ctx context.Context, schoolID string) (*SchoolStats, error)
}

// StudentStore manages student and class records. Used by the enrollment
// CLI and the student management endpoints.
type StudentStore interface {
	CreateStudent(ctx context.Context, student Student) error
	GetStudent(ctx context.Context, studentID string) (*Student, error)
	// EnsureClass inserts a class if it does not already exist.
	EnsureClass(ctx context.Context, classID, schoolID, className string) error
}
