// Package schedule turns free-form schedule descriptions into normalized
// class records by prompting the model provider and defensively parsing
// its JSON output.
package schedule

import "errors"

// Modality tags the kind of schedule input supplied by the caller.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
	ModalityAudio Modality = "audio"
)

// ErrInvalidInput marks a modality/payload mismatch. It is raised before
// any external call is made.
var ErrInvalidInput = errors.New("invalid extraction input")

// ExtractionRequest is one schedule-extraction job. Exactly one payload
// kind must be set, and it must agree with the modality: text needs Text,
// image and audio need Data plus MimeType.
type ExtractionRequest struct {
	Modality Modality
	Text     string
	Data     []byte
	MimeType string
}

// ClassEntry is the canonical output unit of the pipeline. Times stay in
// whatever format the source used; no timezone normalization happens here.
// MapLink is always derived from FullAddress, never supplied independently.
type ClassEntry struct {
	ClassName   string `json:"class_name"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	FullAddress string `json:"full_address"`
	MapLink     string `json:"map_link"`
}
