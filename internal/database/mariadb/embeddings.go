package mariadb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tkaraca/facegate/internal/database"
)

// EmbeddingRepository provides MariaDB-backed embedding storage with
// JSON-encoded vectors.
type EmbeddingRepository struct {
	pool *Pool
}

// NewEmbeddingRepository creates a new MariaDB embedding repository.
func NewEmbeddingRepository(pool *Pool) *EmbeddingRepository {
	return &EmbeddingRepository{pool: pool}
}

// ListActiveEmbeddings returns all embedding samples belonging to active
// students of the given school, in insertion order. Samples with malformed
// JSON are skipped rather than failing the whole gallery build.
func (r *EmbeddingRepository) ListActiveEmbeddings(ctx context.Context, schoolID string) ([]database.StoredEmbedding, error) {
	query := `
		SELECT fe.id, fe.student_id, s.school_id, fe.embedding, fe.source, fe.dim, fe.created_at
		FROM face_embeddings fe
		JOIN students s ON fe.student_id = s.student_id
		WHERE s.school_id = ? AND COALESCE(s.is_active, 1) = 1
		ORDER BY fe.id
	`

	rows, err := r.pool.db.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, fmt.Errorf("query active embeddings: %w", err)
	}
	defer rows.Close()

	var embeddings []database.StoredEmbedding
	for rows.Next() {
		var emb database.StoredEmbedding
		var raw []byte

		if err := rows.Scan(&emb.ID, &emb.StudentID, &emb.SchoolID, &raw, &emb.Source, &emb.Dim, &emb.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		if err := json.Unmarshal(raw, &emb.Embedding); err != nil {
			continue
		}
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
	err := r.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM face_embeddings WHERE student_id = ?", studentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count embeddings: %w", err)
	}
	return count, nil
}

// AppendEmbedding stores a new JSON-encoded embedding sample for a student.
func (r *EmbeddingRepository) AppendEmbedding(ctx context.Context, studentID string, embedding []float32, source string) error {
	raw, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("encode embedding: %w", err)
	}

	_, err = r.pool.db.ExecContext(ctx, `
		INSERT INTO face_embeddings (student_id, embedding, source, dim)
		VALUES (?, ?, ?, ?)
	`, studentID, raw, source, len(embedding))
	if err != nil {
		return fmt.Errorf("insert embedding: %w", err)
	}
	return nil
}
