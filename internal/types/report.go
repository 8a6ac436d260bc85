package types

import (
	"errors"
	"strings"
)

// ReportStatus is the moderation state of a report.
type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportReviewed ReportStatus = "reviewed"
	ReportResolved ReportStatus = "resolved"
)

// Report is a user-submitted observation tied to one lake.
type Report struct {
	ID          string       `json:"id"`
	LakeID      string       `json:"lake_id"`
	UserID      string       `json:"user_id"`
	UserName    string       `json:"user_name"`
	Description string       `json:"description"`
	ImageBase64 string       `json:"image_base64,omitempty"`
	VideoBase64 string       `json:"video_base64,omitempty"`
	CreatedAt   Timestamp    `json:"created_at"`
	Status      ReportStatus `json:"status"`
}

// HasMedia reports whether an image or video is attached.
func (r Report) HasMedia() bool {
	return r.ImageBase64 != "" || r.VideoBase64 != ""
}

var (
	ErrNoLakeSelected   = errors.New("no lake selected")
	ErrEmptyDescription = errors.New("description is empty")
)

// NewReport is the payload of a report submission.
type NewReport struct {
	LakeID      string `json:"lake_id"`
	Description string `json:"description"`
	ImageBase64 string `json:"image_base64,omitempty"`
	VideoBase64 string `json:"video_base64,omitempty"`
}

// Validate checks the only constraints enforced client-side.
func (n NewReport) Validate() error {
	if strings.TrimSpace(n.LakeID) == "" {
		return ErrNoLakeSelected
	}
	if strings.TrimSpace(n.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}
