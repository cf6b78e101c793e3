package recognition

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/tkaraca/facegate/internal/database"
)

// IdentityRecord is one known identity in a gallery: the mean of all
// stored samples for a student, plus the normalized copy used for search.
type IdentityRecord struct {
	StudentID     string
	MeanEmbedding []float32
	Normalized    []float32
	SampleCount   int
}

// GallerySnapshot is the searchable gallery for one school. Snapshots are
// immutable once built and replaced wholesale on refresh, so concurrent
// scans may share one freely.
type GallerySnapshot struct {
	SchoolID string
	Entries  []IdentityRecord // insertion order of first appearance
	BuiltAt  time.Time
	Dim      int

	index *galleryIndex // nil when the gallery is empty or the build failed
}

// Empty reports whether the snapshot has no known identities.
func (s *GallerySnapshot) Empty() bool {
	return s == nil || len(s.Entries) == 0
}

// Indexed reports whether the accelerated index is available.
func (s *GallerySnapshot) Indexed() bool {
	return s != nil && s.index != nil
}

// GalleryCache holds one time-bounded snapshot per school.
type GalleryCache struct {
	store database.EmbeddingReader
	ttl   time.Duration
	dim   int

	mu        sync.RWMutex
	snapshots map[string]*GallerySnapshot

	now func() time.Time // swapped out in tests
}

// NewGalleryCache creates a cache backed by the given embedding store.
func NewGalleryCache(store database.EmbeddingReader, dim int, ttl time.Duration) *GalleryCache {
	return &GalleryCache{
		store:     store,
		ttl:       ttl,
		dim:       dim,
		snapshots: make(map[string]*GallerySnapshot),
		now:       time.Now,
	}
}

// Get returns the school's gallery snapshot, rebuilding it when the cached
// copy is older than the TTL or forceRefresh is set. A store failure yields
// an empty, uncached snapshot so the caller degrades to "no gallery"
// instead of failing mid-scan.
func (c *GalleryCache) Get(ctx context.Context, schoolID string, forceRefresh bool) *GallerySnapshot {
	if !forceRefresh {
		c.mu.RLock()
		snap := c.snapshots[schoolID]
		c.mu.RUnlock()

		if snap != nil && c.now().Sub(snap.BuiltAt) < c.ttl {
			return snap
		}
	}
	return c.rebuild(ctx, schoolID)
}

func (c *GalleryCache) rebuild(ctx context.Context, schoolID string) *GallerySnapshot {
	rows, err := c.store.ListActiveEmbeddings(ctx, schoolID)
	if err != nil {
		log.Printf("gallery rebuild for school %s failed: %v", schoolID, err)
		return &GallerySnapshot{SchoolID: schoolID, BuiltAt: c.now(), Dim: c.dim}
	}

	snap := buildSnapshot(schoolID, rows, c.dim, c.now())

	// Concurrent rebuilds for the same school race benignly: rebuilds are
	// idempotent functions of store contents, last writer wins.
	c.mu.Lock()
	c.snapshots[schoolID] = snap
	c.mu.Unlock()

	return snap
}

// buildSnapshot groups samples by student, averages them component-wise
// into one mean vector per identity, and builds the accelerated index over
// the normalized means.
func buildSnapshot(schoolID string, rows []database.StoredEmbedding, dim int, builtAt time.Time) *GallerySnapshot {
	sums := make(map[string][]float64)
	counts := make(map[string]int)
	var order []string

	for _, row := range rows {
		if len(row.Embedding) == 0 {
			continue
		}
		if dim > 0 && len(row.Embedding) != dim {
			log.Printf("skipping sample %d for student %s: dimension %d, want %d",
				row.ID, row.StudentID, len(row.Embedding), dim)
			continue
		}

		sum, ok := sums[row.StudentID]
		if !ok {
			sum = make([]float64, len(row.Embedding))
			sums[row.StudentID] = sum
			order = append(order, row.StudentID)
		}
		for i, v := range row.Embedding {
			sum[i] += float64(v)
		}
		counts[row.StudentID]++
	}

	snap := &GallerySnapshot{SchoolID: schoolID, BuiltAt: builtAt, Dim: dim}
	for _, studentID := range order {
		sum := sums[studentID]
		n := counts[studentID]

		mean := make([]float32, len(sum))
		for i, v := range sum {
			mean[i] = float32(v / float64(n))
		}

		snap.Entries = append(snap.Entries, IdentityRecord{
			StudentID:     studentID,
			MeanEmbedding: mean,
			Normalized:    Normalize(mean),
			SampleCount:   n,
		})
	}

	idx, err := buildGalleryIndex(snap.Entries)
	if err != nil {
		log.Printf("gallery index build for school %s failed, linear search only: %v", schoolID, err)
	} else {
		snap.index = idx
	}

	return snap
}
