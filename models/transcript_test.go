package models

import (
	"testing"

	"github.com/nijaru/yt-transcript/errors"
	pkgerrors "github.com/pkg/errors"
)

func TestParseView(t *testing.T) {
	tests := map[string]View{
		"":           ViewFull,
		"full":       ViewFull,
		"highlights": ViewHighlights,
		"bogus":      ViewFull,
	}
	for in, want := range tests {
		if got := ParseView(in); got != want {
			t.Errorf("ParseView(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResultVariants(t *testing.T) {
	ref := VideoReference{URL: "https://youtu.be/abc123", VideoID: "abc123"}

	ok := Success(ref, "hello", 1)
	if !ok.IsSuccess() || ok.Status() != StatusSuccess || ok.Failure != nil {
		t.Errorf("unexpected success result %+v", ok)
	}

	failed := Failed(ref, errors.TranscriptUnavailable("op", nil, "none"))
	if failed.IsSuccess() || failed.Status() != StatusFailed {
		t.Errorf("unexpected failed result %+v", failed)
	}
	if failed.Text != "" {
		t.Error("failed result must not carry text")
	}
	if failed.Failure.Kind != errors.KindTranscriptUnavailable || failed.Failure.Message != "none" {
		t.Errorf("unexpected failure %+v", failed.Failure)
	}
}

func TestFailedHidesUnclassifiedErrors(t *testing.T) {
	result := Failed(VideoReference{}, pkgerrors.New("dial tcp: secret"))
	if result.Failure.Kind != errors.KindInternal {
		t.Errorf("expected Internal kind, got %s", result.Failure.Kind)
	}
	if result.Failure.Message == "dial tcp: secret" {
		t.Error("expected generic message for unclassified error")
	}
}
