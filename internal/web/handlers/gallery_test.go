package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tkaraca/facegate/internal/config"
	"github.com/tkaraca/facegate/internal/database"
	"github.com/tkaraca/facegate/internal/database/mock"
	"github.com/tkaraca/facegate/internal/recognition"
)

func newGalleryFixture() (*GalleryHandler, *mock.EmbeddingStore) {
	store := mock.NewEmbeddingStore()
	store.AddStudent(database.Student{StudentID: "s1", SchoolID: "school-a", IsActive: true})
	store.AddSample("s1", []float32{1, 0, 0, 0}, database.SourceEnrollment)

	cache := recognition.NewGalleryCache(store, 4, 10*time.Minute)
	engine := recognition.NewEngine(config.RecognitionConfig{
		DistanceThreshold: 0.32,
		StrictFallback:    0.25,
		Margin:            0.05,
		WindowSize:        5,
		ConsensusCount:    3,
		UnknownFrames:     3,
	}, nil)

	return NewGalleryHandler(cache, engine), store
}

func TestGalleryInfo(t *testing.T) {
	handler, _ := newGalleryFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gallery/info?school_id=school-a", nil)
	rec := httptest.NewRecorder()
	handler.Info(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp galleryInfoResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Identities != 1 {
		t.Errorf("identities = %d, want 1", resp.Identities)
	}
	if resp.SchoolID != "school-a" {
		t.Errorf("school = %s", resp.SchoolID)
	}
}

func TestGalleryRefreshPicksUpNewStudents(t *testing.T) {
	handler, store := newGalleryFixture()

	// Prime the cache.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/gallery/info?school_id=school-a", nil)
	handler.Info(httptest.NewRecorder(), req)

	store.AddStudent(database.Student{StudentID: "s2", SchoolID: "school-a", IsActive: true})
	store.AddSample("s2", []float32{0, 1, 0, 0}, database.SourceEnrollment)

	body := strings.NewReader(`{"school_id": "school-a"}`)
	refreshReq := httptest.NewRequest(http.MethodPost, "/api/v1/gallery/refresh", body)
	rec := httptest.NewRecorder()
	handler.Refresh(rec, refreshReq)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp galleryInfoResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Identities != 2 {
		t.Errorf("identities = %d, want 2 after refresh", resp.Identities)
	}
}

func TestGalleryRefreshRequiresSchool(t *testing.T) {
	handler, _ := newGalleryFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/gallery/refresh", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.Refresh(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
