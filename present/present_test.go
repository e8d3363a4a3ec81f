package present

import (
	"net/http"
	"strings"
	"testing"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/models"
	pkgerrors "github.com/pkg/errors"
)

func TestRenderSuccess(t *testing.T) {
	long := strings.Repeat("word ", 20000)
	ref := models.VideoReference{URL: "https://example.com/watch?v=abc123", VideoID: "abc123"}

	v := Render(models.Success(ref, long, 20000))
	if v.IsError {
		t.Error("expected success view")
	}
	if v.Text != long {
		t.Error("expected transcript text to be shown verbatim")
	}
	if v.Status != http.StatusOK {
		t.Errorf("expected status 200, got %d", v.Status)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	ref := models.VideoReference{URL: "https://example.com/watch?v=abc123", VideoID: "abc123"}
	results := []models.TranscriptResult{
		models.Success(ref, "hello world !", 3),
		models.Failed(ref, errors.RetrievalFailed("op", pkgerrors.New("boom"), "failed")),
	}

	for _, r := range results {
		if first, second := Render(r), Render(r); first != second {
			t.Errorf("expected identical renders, got %+v and %+v", first, second)
		}
	}
}

func TestRenderFailures(t *testing.T) {
	ref := models.VideoReference{URL: "x"}

	tests := []struct {
		name   string
		err    error
		status int
		want   string
	}{
		{"invalid url", errors.InvalidURL("op", nil, "The URL does not contain a video id."), http.StatusBadRequest, "The URL does not contain a video id."},
		{"unavailable", errors.TranscriptUnavailable("op", nil, "No transcript is available for this video."), http.StatusNotFound, "No transcript is available for this video."},
		{"private video", errors.RetrievalFailed("op", nil, "This video is private"), http.StatusBadGateway, "This video is private"},
		{"cause not shown", errors.RetrievalFailed("op", pkgerrors.New("dial tcp 10.0.0.1:443"), "down"), http.StatusBadGateway, "down"},
		{"empty reason", errors.RetrievalFailed("op", nil, "  "), http.StatusBadGateway, Message(errors.KindRetrievalFailed)},
		{"unclassified", pkgerrors.New("dial tcp 10.0.0.1:443: secret detail"), http.StatusInternalServerError, Message(errors.KindInternal)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Render(models.Failed(ref, tt.err))
			if !v.IsError {
				t.Fatal("expected error view")
			}
			if v.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, v.Status)
			}
			if v.Text != tt.want {
				t.Errorf("expected %q, got %q", tt.want, v.Text)
			}
			if strings.Contains(v.Text, "10.0.0.1") {
				t.Error("internal error detail leaked into the view")
			}
		})
	}
}

func TestMessageUnknownKind(t *testing.T) {
	if got := Message("Bogus"); got != Message(errors.KindInternal) {
		t.Errorf("expected internal message for unknown kind, got %q", got)
	}
}
