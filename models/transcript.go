package models

import (
	"github.com/nijaru/yt-transcript/errors"
)

// Status is the lifecycle of one request. The idle form page has no result.
type Status string

const (
	StatusFetching Status = "fetching"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
)

// View selects how a transcript is reduced before display.
type View string

const (
	ViewFull       View = "full"
	ViewHighlights View = "highlights"
)

// ParseView maps a form value to a View, defaulting to ViewFull.
func ParseView(s string) View {
	if View(s) == ViewHighlights {
		return ViewHighlights
	}
	return ViewFull
}

// VideoReference is the user-supplied URL and the identifier extracted from it.
type VideoReference struct {
	URL     string `json:"url"`
	VideoID string `json:"video_id,omitempty"`
}

// Failure carries the kind and user-facing message of a failed request.
type Failure struct {
	Kind    errors.Kind `json:"kind"`
	Message string      `json:"message"`
}

// TranscriptResult is either a joined transcript or a Failure, never both.
type TranscriptResult struct {
	Video        VideoReference `json:"video"`
	Text         string         `json:"transcription,omitempty"`
	SegmentCount int            `json:"segment_count,omitempty"`
	Failure      *Failure       `json:"failure,omitempty"`
}

func Success(ref VideoReference, text string, segments int) TranscriptResult {
	return TranscriptResult{Video: ref, Text: text, SegmentCount: segments}
}

// Failed converts err into a failure result. Only AppError messages are kept;
// any other error is reported with a generic message.
func Failed(ref VideoReference, err error) TranscriptResult {
	f := &Failure{Kind: errors.KindOf(err), Message: "Something went wrong. Please try again."}
	if appErr, ok := errors.AsAppError(err); ok {
		f.Message = appErr.Message
	}
	return TranscriptResult{Video: ref, Failure: f}
}

func (r TranscriptResult) Status() Status {
	if r.Failure != nil {
		return StatusFailed
	}
	return StatusSuccess
}

func (r TranscriptResult) IsSuccess() bool { return r.Failure == nil }
