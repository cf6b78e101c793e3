package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/tkaraca/facegate/internal/database"
)

// RecordsHandler handles attendance log and stats endpoints.
type RecordsHandler struct {
	store database.AttendanceReader
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(store database.AttendanceReader) *RecordsHandler {
	return &RecordsHandler{store: store}
}

// recordResponse is one attendance log entry.
type recordResponse struct {
	ID          string  `json:"id"`
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	ClassName   string  `json:"class_name,omitempty"`
	Timestamp   string  `json:"timestamp"`
	Status      string  `json:"status"`
	Confidence  float64 `json:"confidence"`
}

// List returns the school's attendance log, newest first.
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	schoolID := r.URL.Query().Get("school_id")
	if schoolID == "" {
		respondError(w, http.StatusBadRequest, "school_id is required")
		return
	}

	records, err := h.store.ListRecords(r.Context(), schoolID)
	if err != nil {
		log.Printf("listing records for school %s: %v", sanitizeForLog(schoolID), err)
		respondError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, recordResponse{
			ID:          rec.ID,
			StudentID:   rec.StudentID,
			StudentName: rec.StudentName,
			ClassName:   rec.ClassName,
			Timestamp:   rec.Timestamp.Format(time.RFC3339),
			Status:      rec.Status,
			Confidence:  rec.Confidence,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"records": out,
		"count":   len(out),
	})
}

// statsResponse is the dashboard summary.
type statsResponse struct {
	TotalStudents int        `json:"total_students"`
	TotalClasses  int        `json:"total_classes"`
	TodayCount    int        `json:"today_count"`
	Weekly        []weekStat `json:"weekly"`
}

type weekStat struct {
	Name       string `json:"name"`
	Attendance int    `json:"attendance"`
	Absence    int    `json:"absence"`
	Total      int    `json:"total"`
}

// Stats returns the school's attendance dashboard summary.
func (h *RecordsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	schoolID := r.URL.Query().Get("school_id")
	if schoolID == "" {
		respondError(w, http.StatusBadRequest, "school_id is required")
		return
	}

	stats, err := h.store.Stats(r.Context(), schoolID)
	if err != nil {
		log.Printf("loading stats for school %s: %v", sanitizeForLog(schoolID), err)
		respondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	resp := statsResponse{
		TotalStudents: stats.TotalStudents,
		TotalClasses:  stats.TotalClasses,
		TodayCount:    stats.TodayCount,
		Weekly:        make([]weekStat, 0, len(stats.Weekly)),
	}
	for _, day := range stats.Weekly {
		resp.Weekly = append(resp.Weekly, weekStat{
			Name:       day.Name,
			Attendance: day.Attendance,
			Absence:    day.Absence,
			Total:      day.Total,
		})
	}

	respondJSON(w, http.StatusOK, resp)
}
