package recognition

import (
	"context"
	"fmt"
	"log"

	"github.com/tkaraca/facegate/internal/config"
	"github.com/tkaraca/facegate/internal/database"
)

// Learner feeds high-confidence accepted observations back into the
// embedding store so future gallery rebuilds track how a face changes
// over time.
type Learner struct {
	store         database.EmbeddingWriter
	threshold     float64
	maxPerStudent int
}

// NewLearner creates a learner over the given embedding store.
func NewLearner(store database.EmbeddingWriter, cfg config.RecognitionConfig) *Learner {
	return &Learner{
		store:         store,
		threshold:     cfg.LearningThreshold,
		maxPerStudent: cfg.MaxEmbeddingsPerStudent,
	}
}

// MaybeLearn stores the observed embedding when the match confidence is
// high enough and the student is under the sample cap. The in-memory
// gallery is not touched; the next rebuild picks the sample up.
func (l *Learner) MaybeLearn(ctx context.Context, studentID string, embedding []float32, confidence float64) error {
	if confidence < l.threshold {
		return nil
	}

	count, err := l.store.CountByStudent(ctx, studentID)
	if err != nil {
		return fmt.Errorf("counting samples for student %s: %w", studentID, err)
	}
	if count >= l.maxPerStudent {
		// TODO: evict the oldest active_learning sample instead of
		// stopping, so long-enrolled students keep adapting.
		return nil
	}

	if err := l.store.AppendEmbedding(ctx, studentID, embedding, database.SourceActiveLearning); err != nil {
		return fmt.Errorf("appending sample for student %s: %w", studentID, err)
	}

	log.Printf("active learning: stored sample for student %s (confidence %.4f)", studentID, confidence)
	return nil
}
