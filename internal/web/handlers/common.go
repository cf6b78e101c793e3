package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tkaraca/facegate/internal/database"
	"github.com/tkaraca/facegate/internal/recognition"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// FrameScanner runs the recognition pipeline for one camera frame.
// Implemented by recognition.Scanner.
type FrameScanner interface {
	ProcessScan(ctx context.Context, schoolID string, frame []byte) (*recognition.ScanOutcome, error)
}

// Dependencies carries everything the API handlers need.
type Dependencies struct {
	Scanner    FrameScanner
	Gallery    *recognition.GalleryCache
	Engine     *recognition.Engine
	Attendance database.AttendanceReader
	Students   database.StudentStore
	Embeddings database.EmbeddingWriter
}

// readJSON decodes a JSON request body into dst.
func readJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
