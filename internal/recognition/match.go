package recognition

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/tkaraca/facegate/internal/database"
)

// ErrDimensionMismatch means the query embedding does not match the gallery
// dimension. It fails the single scan that produced the query, not the
// service.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// MatchResult holds the two nearest gallery identities for a query.
// HasSecond is false when the gallery contains a single identity.
type MatchResult struct {
	BestID         string
	BestDistance   float64
	SecondDistance float64
	HasSecond      bool
}

// Search finds the nearest and second-nearest gallery identities for the
// query embedding. Uses the accelerated index when available, falling back
// to a linear scan on index failure. An empty gallery returns a zero
// result without error.
func Search(query []float32, gallery *GallerySnapshot) (MatchResult, error) {
	if gallery.Empty() {
		return MatchResult{}, nil
	}
	if gallery.Dim > 0 && len(query) != gallery.Dim {
		return MatchResult{}, fmt.Errorf("%w: query has %d dimensions, gallery has %d",
			ErrDimensionMismatch, len(query), gallery.Dim)
	}

	q := Normalize(query)

	if gallery.index != nil {
		k := 2
		if len(gallery.Entries) < 2 {
			k = 1
		}

		neighbors, err := gallery.index.search(q, k)
		if err == nil && len(neighbors) > 0 {
			result := MatchResult{
				BestID:       neighbors[0].studentID,
				BestDistance: neighbors[0].distance,
			}
			if len(neighbors) > 1 {
				result.SecondDistance = neighbors[1].distance
				result.HasSecond = true
			}
			return result, nil
		}
		if err != nil {
			log.Printf("gallery index query failed, falling back to linear search: %v", err)
		}
	}

	return linearSearch(q, gallery), nil
}

// linearSearch scans the gallery entries in insertion order. Similarity is
// clamped to [0, 1] before the distance conversion, so anti-correlated
// vectors land at the maximum distance 1.0 here while the indexed path
// keeps the full [0, 2] range.
func linearSearch(query []float32, gallery *GallerySnapshot) MatchResult {
	result := MatchResult{
		BestDistance:   math.MaxFloat64,
		SecondDistance: math.MaxFloat64,
	}

	for i := range gallery.Entries {
		entry := &gallery.Entries[i]

		sim := 1 - database.CosineDistance(query, entry.Normalized)
		if sim < 0 {
			sim = 0
		}
		dist := 1 - sim

		switch {
		case dist < result.BestDistance:
			if result.BestID != "" {
				result.SecondDistance = result.BestDistance
				result.HasSecond = true
			}
			result.BestDistance = dist
			result.BestID = entry.StudentID
		case dist < result.SecondDistance:
			result.SecondDistance = dist
			result.HasSecond = true
		}
	}

	return result
}
