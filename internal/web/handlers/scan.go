package handlers

import (
	"encoding/base64"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/tkaraca/facegate/internal/recognition"
)

// maxFrameBytes caps a single uploaded camera frame.
const maxFrameBytes = 10 << 20

// ScanHandler handles the camera frame scan endpoint.
type ScanHandler struct {
	scanner FrameScanner
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(scanner FrameScanner) *ScanHandler {
	return &ScanHandler{scanner: scanner}
}

// scanJSONRequest is the JSON alternative to a multipart upload, used by
// kiosk clients that capture frames as data URLs.
type scanJSONRequest struct {
	SchoolID string `json:"school_id"`
	Frame    string `json:"frame"` // base64
}

// Scan accepts one camera frame (multipart "frame" field or JSON base64)
// and runs it through the recognition pipeline.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	schoolID, frame, ok := h.readFrame(w, r)
	if !ok {
		return
	}

	outcome, err := h.scanner.ProcessScan(r.Context(), schoolID, frame)
	if err != nil {
		if errors.Is(err, recognition.ErrDimensionMismatch) {
			respondError(w, http.StatusUnprocessableEntity, "embedding dimension mismatch")
			return
		}
		log.Printf("scan failed for school %s: %v", sanitizeForLog(schoolID), err)
		respondError(w, http.StatusInternalServerError, "scan failed")
		return
	}

	respondJSON(w, http.StatusOK, outcome)
}

func (h *ScanHandler) readFrame(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	if err := r.ParseMultipartForm(maxFrameBytes); err == nil {
		schoolID := r.FormValue("school_id")
		if schoolID == "" {
			respondError(w, http.StatusBadRequest, "school_id is required")
			return "", nil, false
		}

		file, _, err := r.FormFile("frame")
		if err != nil {
			respondError(w, http.StatusBadRequest, "frame file is required")
			return "", nil, false
		}
		defer file.Close()

		frame, err := io.ReadAll(io.LimitReader(file, maxFrameBytes))
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read frame")
			return "", nil, false
		}
		return schoolID, frame, true
	}

	// Fall back to the JSON body form.
	var req scanJSONRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return "", nil, false
	}
	if req.SchoolID == "" {
		respondError(w, http.StatusBadRequest, "school_id is required")
		return "", nil, false
	}

	frame, err := base64.StdEncoding.DecodeString(req.Frame)
	if err != nil || len(frame) == 0 {
		respondError(w, http.StatusBadRequest, "frame must be base64 image data")
		return "", nil, false
	}
	return req.SchoolID, frame, true
}
