package postgres

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/tkaraca/facegate/internal/database"
)

// EmbeddingRepository provides PostgreSQL-backed face embedding storage
// using pgvector columns.
type EmbeddingRepository struct {
	pool *Pool
}

// NewEmbeddingRepository creates a new PostgreSQL embedding repository.
func NewEmbeddingRepository(pool *Pool) *EmbeddingRepository {
	return &EmbeddingRepository{pool: pool}
}

// ListActiveEmbeddings returns all embedding samples belonging to active
// students of the given school, in insertion order.
func (r *EmbeddingRepository) ListActiveEmbeddings(ctx context.Context, schoolID string) ([]database.StoredEmbedding, error) {
	query := `
		SELECT fe.id, fe.student_id, s.school_id, fe.embedding, fe.source, fe.dim, fe.created_at
		FROM face_embeddings fe
		JOIN students s ON fe.student_id = s.student_id
		WHERE s.school_id = $1 AND s.is_active
		ORDER BY fe.id
	`

	rows, err := r.pool.Query(ctx, query, schoolID)
	if err != nil {
		return nil, fmt.Errorf("query active embeddings: %w", err)
	}
	defer rows.Close()

	var embeddings []database.StoredEmbedding
	for rows.Next() {
		var emb database.StoredEmbedding
		var vec pgvector.Vector

		if err := rows.Scan(&emb.ID, &emb.StudentID, &emb.SchoolID, &vec, &emb.Source, &emb.Dim, &emb.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		emb.Embedding = vec.Slice()
		embeddings = append(embeddings, emb)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embeddings: %w", err)
	}

	return embeddings, nil
}

// CountByStudent returns the number of stored samples for a student.
func (r *EmbeddingRepository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM face_embeddings WHERE student_id = $1", studentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count embeddings: %w", err)
	}
	return count, nil
}

// AppendEmbedding stores a new embedding sample for a student.
func (r *EmbeddingRepository) AppendEmbedding(ctx context.Context, studentID string, embedding []float32, source string) error {
	query := `
		INSERT INTO face_embeddings (student_id, embedding, source, dim)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, studentID, pgvector.NewVector(embedding), source, len(embedding))
	if err != nil {
		return fmt.Errorf("insert embedding: %w", err)
	}
	return nil
}
