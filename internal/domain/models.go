package domain

import (
	"time"
)

// UploadedImage is the in-memory form of one upload. It lives for the
// duration of a single analysis request and is never written to disk.
type UploadedImage struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Base64      string `json:"-"`
}

// DataURL returns the data URL consumed by the completion API.
func (img UploadedImage) DataURL() string {
	return "data:" + img.ContentType + ";base64," + img.Base64
}

// Credentials carries the caller's API key for the lifetime of one request.
type Credentials struct {
	APIKey string
}

// AnalysisRequest is the encoded image plus the instruction sent to the model.
// Immutable once built.
type AnalysisRequest struct {
	Instruction string
	ImageURL    string
}

// SearchResult is a single reference returned by the search client.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Report is the terminal-success output of one pipeline run. Text is the
// merged, renderable report; Analysis and References keep the raw parts.
type Report struct {
	ID         string         `json:"id"`
	Filename   string         `json:"filename"`
	Analysis   string         `json:"analysis"`
	References []SearchResult `json:"references,omitempty"`
	Text       string         `json:"text"`
	CreatedAt  time.Time      `json:"created_at"`
}
