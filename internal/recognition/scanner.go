package recognition

import (
	"context"
	"log"

	"github.com/tkaraca/facegate/internal/database"
)

// BoundingBox is a detected face location in frame pixel coordinates.
type BoundingBox struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// DetectedFace is one face found in a frame.
type DetectedFace struct {
	Embedding []float32
	Box       BoundingBox
}

// Detector finds faces in a camera frame and returns their embeddings.
// Implemented by the embedder HTTP client.
type Detector interface {
	DetectAndEmbed(ctx context.Context, frame []byte) ([]DetectedFace, error)
}

// ScanOutcome is the combined result of one frame scan. When a match is
// accepted the attendance write's status and names are merged in, so
// Status is one of pending, UNKNOWN, success, exists, or error.
type ScanOutcome struct {
	Status           string       `json:"status"`
	Message          string       `json:"message,omitempty"`
	StudentID        string       `json:"student_id,omitempty"`
	StudentName      string       `json:"student_name,omitempty"`
	ClassName        string       `json:"class_name,omitempty"`
	Confidence       float64      `json:"confidence,omitempty"`
	AttendanceStatus string       `json:"attendance_status,omitempty"`
	MarkedAt         string       `json:"marked_at,omitempty"`
	Box              *BoundingBox `json:"box,omitempty"`
}

// Scanner composes detection, gallery lookup, matching, the decision
// engine, active learning, and attendance recording for one camera frame.
type Scanner struct {
	detector   Detector
	gallery    *GalleryCache
	engine     *Engine
	learner    *Learner
	attendance database.AttendanceWriter
}

// NewScanner wires the scan pipeline together.
func NewScanner(detector Detector, gallery *GalleryCache, engine *Engine, learner *Learner, attendance database.AttendanceWriter) *Scanner {
	return &Scanner{
		detector:   detector,
		gallery:    gallery,
		engine:     engine,
		learner:    learner,
		attendance: attendance,
	}
}

// ProcessScan evaluates a single frame from the school's camera stream.
// Faces are tried in detector order and the first non-pending verdict
// wins; if every face stays pending the frame as a whole is pending.
func (s *Scanner) ProcessScan(ctx context.Context, schoolID string, frame []byte) (*ScanOutcome, error) {
	faces, err := s.detector.DetectAndEmbed(ctx, frame)
	if err != nil {
		log.Printf("face detection failed: %v", err)
		faces = nil
	}
	if len(faces) == 0 {
		return &ScanOutcome{Status: string(StatusPending), Message: "no face detected"}, nil
	}

	gallery := s.gallery.Get(ctx, schoolID, false)

	pending := &ScanOutcome{Status: string(StatusPending), Message: "still verifying"}

	for i := range faces {
		face := &faces[i]

		match, err := Search(face.Embedding, gallery)
		if err != nil {
			return nil, err
		}

		verdict := s.engine.Evaluate(schoolID, match)

		switch verdict.Status {
		case StatusAccept:
			return s.accept(ctx, verdict, face), nil
		case StatusUnknown:
			return &ScanOutcome{
				Status:  string(StatusUnknown),
				Message: verdict.Message,
				Box:     &face.Box,
			}, nil
		default:
			pending.Message = verdict.Message
		}
	}

	return pending, nil
}

// accept records attendance for a consensus match. An attendance write
// failure degrades the outcome to an error status but keeps the match
// details; the verdict itself already happened.
func (s *Scanner) accept(ctx context.Context, verdict Verdict, face *DetectedFace) *ScanOutcome {
	if err := s.learner.MaybeLearn(ctx, verdict.StudentID, face.Embedding, verdict.Confidence); err != nil {
		log.Printf("active learning failed for student %s: %v", verdict.StudentID, err)
	}

	outcome := &ScanOutcome{
		StudentID:  verdict.StudentID,
		Confidence: verdict.Confidence,
		Box:        &face.Box,
	}

	result, err := s.attendance.MarkAttendance(ctx, verdict.StudentID, verdict.Confidence)
	if err != nil {
		log.Printf("attendance write failed for student %s: %v", verdict.StudentID, err)
		outcome.Status = database.MarkError
		outcome.Message = "attendance write failed"
		return outcome
	}

	outcome.Status = result.Status
	outcome.Message = result.Message
	outcome.StudentName = result.StudentName
	outcome.ClassName = result.ClassName
	outcome.AttendanceStatus = result.AttendanceStatus
	if !result.MarkedAt.IsZero() {
		outcome.MarkedAt = result.MarkedAt.Format("15:04")
	}
	return outcome
}
