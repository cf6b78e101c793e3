package recognition

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/tkaraca/facegate/internal/database"
	"github.com/tkaraca/facegate/internal/database/mock"
)

func newTestStore() *mock.EmbeddingStore {
	store := mock.NewEmbeddingStore()
	store.AddStudent(database.Student{StudentID: "s1", SchoolID: "school-a", IsActive: true})
	store.AddStudent(database.Student{StudentID: "s2", SchoolID: "school-a", IsActive: true})
	store.AddStudent(database.Student{StudentID: "s3", SchoolID: "school-a", IsActive: false})
	store.AddStudent(database.Student{StudentID: "s4", SchoolID: "school-b", IsActive: true})
	return store
}

func TestGalleryMeanPerStudent(t *testing.T) {
	store := newTestStore()
	store.AddSample("s1", []float32{2, 0, 0, 0}, database.SourceEnrollment)
	store.AddSample("s2", []float32{0, 0, 2, 0}, database.SourceEnrollment)
	store.AddSample("s1", []float32{0, 2, 0, 0}, database.SourceEnrollment)

	cache := NewGalleryCache(store, 4, 10*time.Minute)
	snap := cache.Get(context.Background(), "school-a", false)

	if len(snap.Entries) != 2 {
		t.Fatalf("expected 2 identities, got %d", len(snap.Entries))
	}

	// First-appearance order.
	if snap.Entries[0].StudentID != "s1" || snap.Entries[1].StudentID != "s2" {
		t.Errorf("unexpected entry order: %s, %s", snap.Entries[0].StudentID, snap.Entries[1].StudentID)
	}

	s1 := snap.Entries[0]
	if s1.SampleCount != 2 {
		t.Errorf("expected 2 samples for s1, got %d", s1.SampleCount)
	}
	if s1.MeanEmbedding[0] != 1 || s1.MeanEmbedding[1] != 1 {
		t.Errorf("unexpected mean for s1: %v", s1.MeanEmbedding)
	}

	want := float32(1 / math.Sqrt(2))
	if math.Abs(float64(s1.Normalized[0]-want)) > 1e-6 {
		t.Errorf("unexpected normalized mean for s1: %v", s1.Normalized)
	}

	if !snap.Indexed() {
		t.Error("expected accelerated index to be built")
	}
}

func TestGalleryExcludesInactiveAndForeign(t *testing.T) {
	store := newTestStore()
	store.AddSample("s1", []float32{1, 0, 0, 0}, database.SourceEnrollment)
	store.AddSample("s3", []float32{0, 1, 0, 0}, database.SourceEnrollment) // inactive
	store.AddSample("s4", []float32{0, 0, 1, 0}, database.SourceEnrollment) // other school

	cache := NewGalleryCache(store, 4, 10*time.Minute)
	snap := cache.Get(context.Background(), "school-a", false)

	if len(snap.Entries) != 1 {
		t.Fatalf("expected 1 identity, got %d", len(snap.Entries))
	}
	if snap.Entries[0].StudentID != "s1" {
		t.Errorf("expected s1, got %s", snap.Entries[0].StudentID)
	}
}

func TestGallerySkipsMismatchedDimensions(t *testing.T) {
	store := newTestStore()
	store.AddSample("s1", []float32{1, 0, 0, 0}, database.SourceEnrollment)
	store.AddSample("s1", []float32{1, 0}, database.SourceEnrollment)

	cache := NewGalleryCache(store, 4, 10*time.Minute)
	snap := cache.Get(context.Background(), "school-a", false)

	if len(snap.Entries) != 1 {
		t.Fatalf("expected 1 identity, got %d", len(snap.Entries))
	}
	if snap.Entries[0].SampleCount != 1 {
		t.Errorf("expected the short sample to be skipped, got %d samples", snap.Entries[0].SampleCount)
	}
}

func TestGalleryCacheTTL(t *testing.T) {
	store := newTestStore()
	store.AddSample("s1", []float32{1, 0, 0, 0}, database.SourceEnrollment)

	cache := NewGalleryCache(store, 4, 10*time.Minute)

	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	current := base
	cache.now = func() time.Time { return current }

	first := cache.Get(context.Background(), "school-a", false)

	current = base.Add(9*time.Minute + 59*time.Second)
	cached := cache.Get(context.Background(), "school-a", false)
	if cached != first {
		t.Error("expected the cached snapshot within the TTL")
	}

	current = base.Add(10*time.Minute + 1*time.Second)
	rebuilt := cache.Get(context.Background(), "school-a", false)
	if rebuilt == first {
		t.Error("expected a rebuilt snapshot after the TTL")
	}
	if !rebuilt.BuiltAt.Equal(current) {
		t.Errorf("rebuilt snapshot BuiltAt = %v, want %v", rebuilt.BuiltAt, current)
	}
}

func TestGalleryForceRefresh(t *testing.T) {
	store := newTestStore()
	cache := NewGalleryCache(store, 4, 10*time.Minute)
	ctx := context.Background()

	first := cache.Get(ctx, "school-a", false)
	if !first.Empty() {
		t.Fatal("expected an empty gallery")
	}

	store.AddSample("s1", []float32{1, 0, 0, 0}, database.SourceEnrollment)

	// Still within the TTL, so only a forced refresh sees the new sample.
	if snap := cache.Get(ctx, "school-a", false); !snap.Empty() {
		t.Error("expected the stale cached snapshot without force")
	}
	if snap := cache.Get(ctx, "school-a", true); snap.Empty() {
		t.Error("expected the new sample after a forced refresh")
	}
}

func TestGalleryStoreFailureNotCached(t *testing.T) {
	store := newTestStore()
	store.AddSample("s1", []float32{1, 0, 0, 0}, database.SourceEnrollment)
	ctx := context.Background()

	cache := NewGalleryCache(store, 4, 10*time.Minute)

	store.ListError = errors.New("connection refused")
	snap := cache.Get(ctx, "school-a", false)
	if !snap.Empty() {
		t.Fatal("expected an empty snapshot on store failure")
	}

	// The failure snapshot must not be cached: once the store recovers the
	// next lookup sees the data immediately.
	store.ListError = nil
	snap = cache.Get(ctx, "school-a", false)
	if snap.Empty() {
		t.Error("expected a rebuilt snapshot after the store recovered")
	}
}

func TestGallerySnapshotsPerSchool(t *testing.T) {
	store := newTestStore()
	store.AddSample("s1", []float32{1, 0, 0, 0}, database.SourceEnrollment)
	store.AddSample("s4", []float32{0, 1, 0, 0}, database.SourceEnrollment)
	ctx := context.Background()

	cache := NewGalleryCache(store, 4, 10*time.Minute)

	a := cache.Get(ctx, "school-a", false)
	b := cache.Get(ctx, "school-b", false)

	if len(a.Entries) != 1 || a.Entries[0].StudentID != "s1" {
		t.Errorf("unexpected school-a gallery: %+v", a.Entries)
	}
	if len(b.Entries) != 1 || b.Entries[0].StudentID != "s4" {
		t.Errorf("unexpected school-b gallery: %+v", b.Entries)
	}
}
