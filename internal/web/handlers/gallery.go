package handlers

import (
	"net/http"
	"time"

	"github.com/tkaraca/facegate/internal/recognition"
)

// GalleryHandler exposes gallery snapshot inspection and refresh.
type GalleryHandler struct {
	gallery *recognition.GalleryCache
	engine  *recognition.Engine
}

// NewGalleryHandler creates a new gallery handler.
func NewGalleryHandler(gallery *recognition.GalleryCache, engine *recognition.Engine) *GalleryHandler {
	return &GalleryHandler{gallery: gallery, engine: engine}
}

type galleryInfoResponse struct {
	SchoolID   string `json:"school_id"`
	Identities int    `json:"identities"`
	Indexed    bool   `json:"indexed"`
	BuiltAt    string `json:"built_at"`
}

// Info returns the current snapshot's summary for a school.
func (h *GalleryHandler) Info(w http.ResponseWriter, r *http.Request) {
	schoolID := r.URL.Query().Get("school_id")
	if schoolID == "" {
		respondError(w, http.StatusBadRequest, "school_id is required")
		return
	}

	snap := h.gallery.Get(r.Context(), schoolID, false)

	respondJSON(w, http.StatusOK, galleryInfoResponse{
		SchoolID:   snap.SchoolID,
		Identities: len(snap.Entries),
		Indexed:    snap.Indexed(),
		BuiltAt:    snap.BuiltAt.Format(time.RFC3339),
	})
}

// Refresh forces an immediate gallery rebuild for a school, typically
// after enrolling new students. The school's temporal verification state
// is reset so stale observations do not vote on the new gallery.
func (h *GalleryHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SchoolID string `json:"school_id"`
	}
	if err := readJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.SchoolID == "" {
		respondError(w, http.StatusBadRequest, "school_id is required")
		return
	}

	snap := h.gallery.Get(r.Context(), req.SchoolID, true)
	h.engine.Reset(req.SchoolID)

	respondJSON(w, http.StatusOK, galleryInfoResponse{
		SchoolID:   snap.SchoolID,
		Identities: len(snap.Entries),
		Indexed:    snap.Indexed(),
		BuiltAt:    snap.BuiltAt.Format(time.RFC3339),
	})
}
