package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/tkaraca/facegate/internal/database"
	"github.com/tkaraca/facegate/internal/database/mock"
)

// requestWithChiParams attaches chi URL parameters to a request.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestStudentsCreate(t *testing.T) {
	store := mock.NewEmbeddingStore()
	handler := NewStudentsHandler(store, store)

	body := `{"school_id": "school-a", "class_id": "5-A", "first_name": "Ada", "last_name": "Lovelace"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/students", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	var resp studentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.StudentID == "" {
		t.Error("expected a generated student ID")
	}
	if !resp.IsActive {
		t.Error("new students must start active")
	}

	stored, err := store.GetStudent(context.Background(), resp.StudentID)
	if err != nil || stored == nil {
		t.Fatalf("student not persisted: %v", err)
	}
	if stored.FullName() != "Ada Lovelace" {
		t.Errorf("name = %q", stored.FullName())
	}
	if store.ClassName("5-A") != "5-A" {
		t.Error("expected the class to be created alongside the student")
	}
}

func TestStudentsCreateValidation(t *testing.T) {
	store := mock.NewEmbeddingStore()
	handler := NewStudentsHandler(store, store)

	body := `{"school_id": "school-a", "first_name": "Ada"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/students", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStudentsGet(t *testing.T) {
	store := mock.NewEmbeddingStore()
	store.AddStudent(database.Student{
		StudentID: "s1",
		SchoolID:  "school-a",
		FirstName: "Ada",
		LastName:  "Lovelace",
		IsActive:  true,
	})
	store.AddSample("s1", []float32{1, 0, 0, 0}, database.SourceEnrollment)
	store.AddSample("s1", []float32{0, 1, 0, 0}, database.SourceActiveLearning)

	handler := NewStudentsHandler(store, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/s1", nil)
	req = requestWithChiParams(req, map[string]string{"id": "s1"})
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp studentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Samples != 2 {
		t.Errorf("samples = %d, want 2", resp.Samples)
	}
}

func TestStudentsGetNotFound(t *testing.T) {
	store := mock.NewEmbeddingStore()
	handler := NewStudentsHandler(store, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/ghost", nil)
	req = requestWithChiParams(req, map[string]string{"id": "ghost"})
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
