package transcript

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nijaru/yt-transcript/errors"
	pkgerrors "github.com/pkg/errors"
)

const DefaultTimeout = 10 * time.Second

// ErrNoTranscript is returned, possibly wrapped, by providers when a video has no captions.
var ErrNoTranscript = pkgerrors.New("no transcript available")

// Segment is one timed caption entry. Start and Duration are in seconds.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

type Provider interface {
	FetchTranscript(ctx context.Context, videoID string) ([]Segment, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, videoID string) ([]Segment, error)

func (f ProviderFunc) FetchTranscript(ctx context.Context, videoID string) ([]Segment, error) {
	return f(ctx, videoID)
}

type Retriever struct {
	provider          Provider
	timeout           time.Duration
	includeTimestamps bool
}

type Option func(*Retriever)

func WithTimeout(d time.Duration) Option {
	return func(r *Retriever) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithTimestamps(enabled bool) Option {
	return func(r *Retriever) {
		r.includeTimestamps = enabled
	}
}

func NewRetriever(provider Provider, opts ...Option) *Retriever {
	r := &Retriever{provider: provider, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch calls the provider once and returns the normalized, non-empty segments
// in provider order. The call is abandoned when the timeout expires, whether or
// not the provider watches ctx.
func (r *Retriever) Fetch(ctx context.Context, videoID string) ([]Segment, error) {
	const op = "Retriever.Fetch"

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type fetchResult struct {
		segments []Segment
		err      error
	}
	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fetchResult{err: pkgerrors.Errorf("provider panic: %v", p)}
			}
		}()
		segments, err := r.provider.FetchTranscript(ctx, videoID)
		done <- fetchResult{segments: segments, err: err}
	}()

	var res fetchResult
	select {
	case res = <-done:
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.RetrievalFailed(op, ctx.Err(), "The transcript service took too long to respond.")
		}
		return nil, errors.RetrievalFailed(op, ctx.Err(), "The transcript request was cancelled.")
	}

	segments, err := res.segments, res.err
	if err != nil {
		if pkgerrors.Is(err, ErrNoTranscript) {
			return nil, errors.TranscriptUnavailable(op, err, "No transcript is available for this video.")
		}
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.RetrievalFailed(op, err, "The transcript service took too long to respond.")
		}
		if appErr, ok := errors.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, errors.RetrievalFailed(op, err, "The transcript could not be retrieved.")
	}

	segments = Normalize(segments)
	if len(segments) == 0 {
		return nil, errors.TranscriptUnavailable(op, ErrNoTranscript, "No transcript is available for this video.")
	}
	return segments, nil
}

// Retrieve returns the joined transcript text and the number of segments in it.
func (r *Retriever) Retrieve(ctx context.Context, videoID string) (string, int, error) {
	segments, err := r.Fetch(ctx, videoID)
	if err != nil {
		return "", 0, err
	}
	return r.join(segments), len(segments), nil
}

// RetrieveHighlights is Retrieve restricted to Highlights. A transcript with no
// highlighted segments is returned in full.
func (r *Retriever) RetrieveHighlights(ctx context.Context, videoID string, maxChars int) (string, int, error) {
	segments, err := r.Fetch(ctx, videoID)
	if err != nil {
		return "", 0, err
	}
	if selected := Highlights(segments, maxChars); len(selected) > 0 {
		segments = selected
	}
	return r.join(segments), len(segments), nil
}

func (r *Retriever) join(segments []Segment) string {
	if r.includeTimestamps {
		return JoinWithTimestamps(segments)
	}
	return Join(segments)
}

// Normalize collapses whitespace inside each segment and drops empty ones.
func Normalize(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, s := range segments {
		s.Text = strings.Join(strings.Fields(s.Text), " ")
		if s.Text == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Join concatenates segment texts separated by a single space.
func Join(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}

func JoinWithTimestamps(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, "["+FormatTimestamp(s.Start)+"] "+s.Text)
	}
	return strings.Join(parts, " ")
}

// FormatTimestamp renders seconds as mm:ss, or h:mm:ss from one hour on.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
