package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tkaraca/facegate/internal/database"
)

// StudentsHandler handles student management endpoints.
type StudentsHandler struct {
	students   database.StudentStore
	embeddings database.EmbeddingWriter
}

// NewStudentsHandler creates a new students handler.
func NewStudentsHandler(students database.StudentStore, embeddings database.EmbeddingWriter) *StudentsHandler {
	return &StudentsHandler{students: students, embeddings: embeddings}
}

type createStudentRequest struct {
	SchoolID  string `json:"school_id"`
	ClassID   string `json:"class_id"`
	ClassName string `json:"class_name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type studentResponse struct {
	StudentID string `json:"student_id"`
	SchoolID  string `json:"school_id"`
	ClassID   string `json:"class_id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  bool   `json:"is_active"`
	Samples   int    `json:"samples"`
}

// Create registers a new student. Face samples are added afterwards via
// the enrollment CLI.
func (h *StudentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.SchoolID == "" || req.FirstName == "" || req.LastName == "" {
		respondError(w, http.StatusBadRequest, "school_id, first_name and last_name are required")
		return
	}

	if req.ClassID != "" {
		className := req.ClassName
		if className == "" {
			className = req.ClassID
		}
		if err := h.students.EnsureClass(r.Context(), req.ClassID, req.SchoolID, className); err != nil {
			log.Printf("ensuring class %s: %v", sanitizeForLog(req.ClassID), err)
			respondError(w, http.StatusInternalServerError, "failed to create student")
			return
		}
	}

	student := database.Student{
		StudentID: uuid.NewString(),
		SchoolID:  req.SchoolID,
		ClassID:   req.ClassID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  true,
	}

	if err := h.students.CreateStudent(r.Context(), student); err != nil {
		log.Printf("creating student: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create student")
		return
	}

	respondJSON(w, http.StatusCreated, studentResponse{
		StudentID: student.StudentID,
		SchoolID:  student.SchoolID,
		ClassID:   student.ClassID,
		FirstName: student.FirstName,
		LastName:  student.LastName,
		IsActive:  student.IsActive,
	})
}

// Get returns one student with their stored sample count.
func (h *StudentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")

	student, err := h.students.GetStudent(r.Context(), studentID)
	if err != nil {
		log.Printf("loading student %s: %v", sanitizeForLog(studentID), err)
		respondError(w, http.StatusInternalServerError, "failed to load student")
		return
	}
	if student == nil {
		respondError(w, http.StatusNotFound, "student not found")
		return
	}

	samples, err := h.embeddings.CountByStudent(r.Context(), studentID)
	if err != nil {
		log.Printf("counting samples for student %s: %v", sanitizeForLog(studentID), err)
		respondError(w, http.StatusInternalServerError, "failed to load student")
		return
	}

	respondJSON(w, http.StatusOK, studentResponse{
		StudentID: student.StudentID,
		SchoolID:  student.SchoolID,
		ClassID:   student.ClassID,
		FirstName: student.FirstName,
		LastName:  student.LastName,
		IsActive:  student.IsActive,
		Samples:   samples,
	})
}
