package recognition

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/tkaraca/facegate/internal/database"
)

func testSnapshot(t *testing.T, students map[string][]float32) *GallerySnapshot {
	t.Helper()

	var rows []database.StoredEmbedding
	id := int64(0)
	for _, sid := range []string{"s1", "s2", "s3"} {
		emb, ok := students[sid]
		if !ok {
			continue
		}
		id++
		rows = append(rows, database.StoredEmbedding{
			ID:        id,
			StudentID: sid,
			Embedding: emb,
			Source:    database.SourceEnrollment,
		})
	}
	return buildSnapshot("school-a", rows, 4, time.Now())
}

func TestSearchEmptyGallery(t *testing.T) {
	snap := buildSnapshot("school-a", nil, 4, time.Now())

	result, err := Search([]float32{1, 0, 0, 0}, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.BestID != "" {
		t.Errorf("expected no match, got %s", result.BestID)
	}
}

func TestSearchNearestAndRunnerUp(t *testing.T) {
	snap := testSnapshot(t, map[string][]float32{
		"s1": {1, 0, 0, 0},
		"s2": {0, 1, 0, 0},
	})

	result, err := Search([]float32{1, 0.2, 0, 0}, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.BestID != "s1" {
		t.Errorf("expected s1, got %s", result.BestID)
	}
	if !result.HasSecond {
		t.Fatal("expected a runner-up")
	}
	if result.BestDistance >= result.SecondDistance {
		t.Errorf("best distance %f not below second %f", result.BestDistance, result.SecondDistance)
	}

	// cos(q, s1) = 1/sqrt(1.04)
	wantBest := 1 - 1/math.Sqrt(1.04)
	if math.Abs(result.BestDistance-wantBest) > 1e-6 {
		t.Errorf("best distance = %f, want %f", result.BestDistance, wantBest)
	}
}

func TestSearchSingleIdentity(t *testing.T) {
	snap := testSnapshot(t, map[string][]float32{
		"s1": {1, 0, 0, 0},
	})

	result, err := Search([]float32{1, 0, 0, 0}, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.BestID != "s1" {
		t.Errorf("expected s1, got %s", result.BestID)
	}
	if result.HasSecond {
		t.Error("expected no runner-up for a single-identity gallery")
	}
	if result.BestDistance > 1e-6 {
		t.Errorf("expected near-zero distance, got %f", result.BestDistance)
	}
}

func TestSearchDimensionMismatch(t *testing.T) {
	snap := testSnapshot(t, map[string][]float32{
		"s1": {1, 0, 0, 0},
	})

	_, err := Search([]float32{1, 0, 0}, snap)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestLinearSearchOrder(t *testing.T) {
	snap := testSnapshot(t, map[string][]float32{
		"s1": {1, 0, 0, 0},
		"s2": {0, 1, 0, 0},
		"s3": {0, 0, 1, 0},
	})

	result := linearSearch(Normalize([]float32{0, 1, 0.3, 0}), snap)

	if result.BestID != "s2" {
		t.Errorf("expected s2, got %s", result.BestID)
	}
	if !result.HasSecond {
		t.Fatal("expected a runner-up")
	}
	if result.BestDistance >= result.SecondDistance {
		t.Errorf("best %f not below second %f", result.BestDistance, result.SecondDistance)
	}
}

func TestLinearSearchClampsAntiCorrelated(t *testing.T) {
	snap := testSnapshot(t, map[string][]float32{
		"s1": {1, 0, 0, 0},
	})

	// The linear path clamps similarity to [0, 1]; an opposite vector is
	// maximally dissimilar at distance 1.0 rather than 2.0.
	result := linearSearch(Normalize([]float32{-1, 0, 0, 0}), snap)
	if math.Abs(result.BestDistance-1.0) > 1e-6 {
		t.Errorf("expected clamped distance 1.0, got %f", result.BestDistance)
	}
}

func TestSearchIndexedAntiCorrelatedRange(t *testing.T) {
	snap := testSnapshot(t, map[string][]float32{
		"s1": {1, 0, 0, 0},
		"s2": {0, 1, 0, 0},
	})

	// The indexed path keeps the full [0, 2] cosine distance range.
	result, err := Search([]float32{-1, 0, 0, 0}, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.BestID != "s2" {
		t.Errorf("expected s2 (orthogonal) over s1 (opposite), got %s", result.BestID)
	}
	if math.Abs(result.BestDistance-1.0) > 1e-6 {
		t.Errorf("expected distance 1.0 for the orthogonal match, got %f", result.BestDistance)
	}
	if math.Abs(result.SecondDistance-2.0) > 1e-6 {
		t.Errorf("expected distance 2.0 for the opposite vector, got %f", result.SecondDistance)
	}
}
