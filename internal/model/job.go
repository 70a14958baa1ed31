package model

import (
	"context"
	"path/filepath"
	"strings"
	"time"
)

// Job is a single listing as returned by the sponsorship service.
// The client never mutates it, only displays it.
type Job struct {
	JobTitle           string `json:"job_title"`
	Company            string `json:"company"`
	Location           string `json:"location"`
	SponsorshipDetails string `json:"sponsorship_details"`
}

// QueryResponse is the answer to a free-text question. RelevantJobs is in
// server relevance order and must be displayed in that order.
type QueryResponse struct {
	Summary      string `json:"summary"`
	RelevantJobs []Job  `json:"relevant_jobs"`
}

// UploadResponse acknowledges an uploaded job listings file.
type UploadResponse struct {
	Message string `json:"message"`
	NumJobs int    `json:"num_jobs"`
}

// FileRef points at a local job listings file chosen by the user.
type FileRef struct {
	Path string // path used to read the file
	Name string // base name shown to the user
}

// NewFileRef builds a FileRef from a path, deriving the display name.
func NewFileRef(path string) FileRef {
	return FileRef{Path: path, Name: filepath.Base(path)}
}

// IsZero reports whether no file is referenced.
func (f FileRef) IsZero() bool {
	return f.Path == ""
}

// IsCSV reports whether the file has a .csv extension (case-insensitive).
func (f FileRef) IsCSV() bool {
	return strings.EqualFold(filepath.Ext(f.Path), ".csv")
}

// JobService is the remote upload-processing and question-answering service.
type JobService interface {
	Upload(ctx context.Context, file FileRef) (UploadResponse, error)
	Query(ctx context.Context, text string) (QueryResponse, error)
}

// Flow identifies which orchestrator an action belongs to.
type Flow string

const (
	FlowUpload Flow = "upload"
	FlowQuery  Flow = "query"
)

// Outcome is how a settled action ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// HistoryEntry is one settled action in the current session.
type HistoryEntry struct {
	Seq       uint64
	Flow      Flow
	Outcome   Outcome
	Detail    string // file name or query text
	Result    string // summary, acknowledgement or error message
	NumJobs   int    // jobs uploaded or jobs returned
	SettledAt time.Time
}

// HistoryStore records settled actions for the lifetime of the session.
type HistoryStore interface {
	Record(entry HistoryEntry) error
	Recent(limit int) ([]HistoryEntry, error)
}
