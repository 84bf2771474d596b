package dto

import (
	"time"

	"github.com/yigit/registrar/internal/pkg/facerec"
)

// StartScanRequest opens a face scan session
type StartScanRequest struct {
	ClassID   int64 `json:"classId" binding:"required,gt=0"`
	SubjectID int64 `json:"subjectId" binding:"required,gt=0"`
	// Force starts the session even if the pair is not scheduled today
	Force bool `json:"force"`
}

// ScanSessionResponse describes an open session
type ScanSessionResponse struct {
	ID          string    `json:"id"`
	ClassID     int64     `json:"classId"`
	SubjectID   int64     `json:"subjectId"`
	Date        string    `json:"date"`
	GallerySize int       `json:"gallerySize"`
	Total       int       `json:"total"`
	Skipped     []string  `json:"skipped,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
}

// Face scan outcomes
const (
	ScanFaceMarked        = "marked"
	ScanFaceAlreadyMarked = "already_marked"
	ScanFaceUnknown       = "unknown"
)

// ScanFace is one detected face of a frame
type ScanFace struct {
	Box       facerec.Box `json:"box"`
	StudentID *int64      `json:"studentId,omitempty"`
	Name      string      `json:"name"`
	Distance  float64     `json:"distance"`
	Result    string      `json:"result"`
}

// ScanFrameResponse is the outcome of one posted frame
type ScanFrameResponse struct {
	SessionID  string     `json:"sessionId"`
	Faces      []ScanFace `json:"faces"`
	Recognized int        `json:"recognized"`
	Total      int        `json:"total"`
	// Throttled is set when the frame arrived faster than the session rate
	Throttled bool   `json:"throttled,omitempty"`
	FramePath string `json:"framePath,omitempty"`
}

// ScanMarkedStudent is a student marked present by a session
type ScanMarkedStudent struct {
	StudentID int64     `json:"studentId"`
	Name      string    `json:"name"`
	MarkedAt  time.Time `json:"markedAt"`
}

// ScanSummaryResponse is returned when a session closes
type ScanSummaryResponse struct {
	SessionID  string              `json:"sessionId"`
	Recognized int                 `json:"recognized"`
	Total      int                 `json:"total"`
	Marked     []ScanMarkedStudent `json:"marked"`
}
