package recognition

import (
	"errors"
	"fmt"

	"github.com/coder/hnsw"
	"github.com/tkaraca/facegate/internal/database"
)

// hnswMaxNeighbors (M) is the maximum number of neighbors per graph node.
// Higher values improve recall but increase memory and build time.
const hnswMaxNeighbors = 16

// galleryIndex is the accelerated nearest-neighbor structure over a
// snapshot's normalized mean embeddings. On normalized vectors cosine
// distance search is equivalent to an inner-product search.
type galleryIndex struct {
	graph *hnsw.Graph[string]
}

// neighbor is a single accelerated search result.
type neighbor struct {
	studentID string
	distance  float64
}

// buildGalleryIndex builds an HNSW graph over the snapshot entries.
// Returns nil without error for an empty gallery.
func buildGalleryIndex(entries []IdentityRecord) (idx *galleryIndex, err error) {
	if len(entries) == 0 {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			idx = nil
			err = fmt.Errorf("building gallery index: %v", r)
		}
	}()

	g := hnsw.NewGraph[string]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.CosineDistance

	for i := range entries {
		e := &entries[i]
		if len(e.Normalized) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(e.StudentID, e.Normalized))
	}

	return &galleryIndex{graph: g}, nil
}

// search finds the k nearest entries to the query embedding.
func (ix *galleryIndex) search(query []float32, k int) (result []neighbor, err error) {
	if ix == nil || ix.graph == nil {
		return nil, errors.New("index not initialized")
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("gallery index search: %v", r)
		}
	}()

	neighbors := ix.graph.Search(query, k)

	result = make([]neighbor, 0, len(neighbors))
	for _, n := range neighbors {
		// Recompute the clamped cosine distance from the stored vector;
		// the graph does not surface its internal distances.
		result = append(result, neighbor{
			studentID: n.Key,
			distance:  database.CosineDistance(query, n.Value),
		})
	}
	return result, nil
}
