package present

import (
	"net/http"
	"strings"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/models"
)

// View is what the page or API shows for a result.
type View struct {
	Text    string `json:"text"`
	IsError bool   `json:"is_error"`
	Status  int    `json:"-"`
}

var messages = map[errors.Kind]string{
	errors.KindInvalidURL:            "That doesn't look like a supported video link. Paste a watch page URL (…/watch?v=ID) or a short link (…/ID).",
	errors.KindTranscriptUnavailable: "This video has no transcript available.",
	errors.KindRetrievalFailed:       "The transcript could not be retrieved right now. Please try again later.",
	errors.KindInvalidInput:          "The request could not be understood.",
	errors.KindInternal:              "Something went wrong. Please try again.",
}

var statuses = map[errors.Kind]int{
	errors.KindInvalidURL:            http.StatusBadRequest,
	errors.KindTranscriptUnavailable: http.StatusNotFound,
	errors.KindRetrievalFailed:       http.StatusBadGateway,
	errors.KindInvalidInput:          http.StatusBadRequest,
	errors.KindInternal:              http.StatusInternalServerError,
}

// Render maps a result to a View. Transcript text is passed through untouched;
// failures show their reason, or the message for their kind when it is empty.
func Render(result models.TranscriptResult) View {
	if result.Failure == nil {
		return View{Text: result.Text, Status: http.StatusOK}
	}

	text := strings.TrimSpace(result.Failure.Message)
	if text == "" {
		text = Message(result.Failure.Kind)
	}
	return View{
		Text:    text,
		IsError: true,
		Status:  StatusCode(result.Failure.Kind),
	}
}

func Message(kind errors.Kind) string {
	if msg, ok := messages[kind]; ok {
		return msg
	}
	return messages[errors.KindInternal]
}

func StatusCode(kind errors.Kind) int {
	if code, ok := statuses[kind]; ok {
		return code
	}
	return http.StatusInternalServerError
}
