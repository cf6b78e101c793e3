// Package mock provides in-memory implementations of the database
// interfaces for testing.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/tkaraca/facegate/internal/database"
)

// EmbeddingStore is an in-memory database.EmbeddingWriter.
type EmbeddingStore struct {
	mu         sync.RWMutex
	nextID     int64
	embeddings []database.StoredEmbedding
	students   map[string]database.Student
	classes    map[string]string // classID -> className

	// Error injection
	ListError   error
	CountError  error
	AppendError error
	CreateError error
	GetError    error
	ClassError  error
}

// NewEmbeddingStore creates a new in-memory embedding store.
func NewEmbeddingStore() *EmbeddingStore {
	return &EmbeddingStore{
		students: make(map[string]database.Student),
		classes:  make(map[string]string),
	}
}

// AddStudent registers a student so its samples show up in school listings.
func (m *EmbeddingStore) AddStudent(student database.Student) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students[student.StudentID] = student
}

// AddSample stores a sample directly, bypassing error injection.
func (m *EmbeddingStore) AddSample(studentID string, embedding []float32, source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.append(studentID, embedding, source)
}

func (m *EmbeddingStore) append(studentID string, embedding []float32, source string) {
	m.nextID++
	student := m.students[studentID]
	m.embeddings = append(m.embeddings, database.StoredEmbedding{
		ID:        m.nextID,
		StudentID: studentID,
		SchoolID:  student.SchoolID,
		Embedding: embedding,
		Source:    source,
		Dim:       len(embedding),
		CreatedAt: time.Now(),
	})
}

// ListActiveEmbeddings returns samples of active students in the school,
// in insertion order.
func (m *EmbeddingStore) ListActiveEmbeddings(ctx context.Context, schoolID string) ([]database.StoredEmbedding, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []database.StoredEmbedding
	for _, emb := range m.embeddings {
		student, ok := m.students[emb.StudentID]
		if !ok || student.SchoolID != schoolID || !student.IsActive {
			continue
		}
		result = append(result, emb)
	}
	return result, nil
}

// CountByStudent returns the number of stored samples for a student.
func (m *EmbeddingStore) CountByStudent(ctx context.Context, studentID string) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, emb := range m.embeddings {
		if emb.StudentID == studentID {
			count++
		}
	}
	return count, nil
}

// AppendEmbedding stores a new sample.
func (m *EmbeddingStore) AppendEmbedding(ctx context.Context, studentID string, embedding []float32, source string) error {
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.append(studentID, embedding, source)
	return nil
}

// CreateStudent registers a new student.
func (m *EmbeddingStore) CreateStudent(ctx context.Context, student database.Student) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students[student.StudentID] = student
	return nil
}

// EnsureClass registers a class, keeping the first name it was given.
func (m *EmbeddingStore) EnsureClass(ctx context.Context, classID, schoolID, className string) error {
	if m.ClassError != nil {
		return m.ClassError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classes[classID]; !ok {
		m.classes[classID] = className
	}
	return nil
}

// ClassName returns the stored display name for a class, empty when unknown.
func (m *EmbeddingStore) ClassName(classID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.classes[classID]
}

// GetStudent returns a student, or nil when unknown.
func (m *EmbeddingStore) GetStudent(ctx context.Context, studentID string) (*database.Student, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	student, ok := m.students[studentID]
	if !ok {
		return nil, nil
	}
	return &student, nil
}

// AttendanceLog is an in-memory database.AttendanceWriter that records
// one mark per student per day.
type AttendanceLog struct {
	mu    sync.Mutex
	marks map[string]time.Time // studentID -> first mark today

	// Results returned for known students.
	Names map[string]string

	// Read-side fixtures
	Records     []database.AttendanceRecord
	StatsResult *database.SchoolStats

	// Error injection
	MarkError  error
	ListError  error
	StatsError error
}

// NewAttendanceLog creates a new in-memory attendance log.
func NewAttendanceLog() *AttendanceLog {
	return &AttendanceLog{
		marks: make(map[string]time.Time),
		Names: make(map[string]string),
	}
}

// MarkAttendance records a present mark, idempotent per student.
func (m *AttendanceLog) MarkAttendance(ctx context.Context, studentID string, confidence float64) (*database.AttendanceResult, error) {
	if m.MarkError != nil {
		return nil, m.MarkError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	name := m.Names[studentID]
	if existing, ok := m.marks[studentID]; ok {
		return &database.AttendanceResult{
			Status:      database.MarkExists,
			StudentName: name,
			MarkedAt:    existing,
		}, nil
	}

	now := time.Now()
	m.marks[studentID] = now
	return &database.AttendanceResult{
		Status:           database.MarkSuccess,
		StudentName:      name,
		AttendanceStatus: "present",
		MarkedAt:         now,
	}, nil
}

// Records and StatsResult feed the read side for handler tests.
var _ database.AttendanceReader = (*AttendanceLog)(nil)

// ListRecords returns the injected record list.
func (m *AttendanceLog) ListRecords(ctx context.Context, schoolID string) ([]database.AttendanceRecord, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Records, nil
}

// Stats returns the injected stats summary.
func (m *AttendanceLog) Stats(ctx context.Context, schoolID string) (*database.SchoolStats, error) {
	if m.StatsError != nil {
		return nil, m.StatsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StatsResult != nil {
		return m.StatsResult, nil
	}
	return &database.SchoolStats{}, nil
}

// Marked returns whether a mark exists for the student.
func (m *AttendanceLog) Marked(studentID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.marks[studentID]
	return ok
}
