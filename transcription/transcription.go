package transcription

import (
	"context"
	"strings"
	"time"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/journal"
	"github.com/nijaru/yt-transcript/models"
	"github.com/nijaru/yt-transcript/transcript"
	"github.com/nijaru/yt-transcript/validation"
	"github.com/sirupsen/logrus"
)

const finishTimeout = 5 * time.Second

// Request is one submission from the form or the API.
type Request struct {
	URL  string
	View models.View
}

// Retriever is satisfied by *transcript.Retriever.
type Retriever interface {
	Retrieve(ctx context.Context, videoID string) (string, int, error)
	RetrieveHighlights(ctx context.Context, videoID string, maxChars int) (string, int, error)
}

type Service struct {
	validator         *validation.Validator
	retriever         Retriever
	recorder          journal.Recorder
	logger            *logrus.Logger
	highlightMaxChars int
}

type Option func(*Service)

func WithValidator(v *validation.Validator) Option {
	return func(s *Service) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithRecorder journals each request. A nil recorder disables journaling.
func WithRecorder(r journal.Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithHighlightMaxChars(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.highlightMaxChars = n
		}
	}
}

func NewService(retriever Retriever, opts ...Option) *Service {
	s := &Service{
		validator:         validation.NewValidator(),
		retriever:         retriever,
		logger:            logrus.StandardLogger(),
		highlightMaxChars: transcript.DefaultHighlightMaxChars,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle runs one request through extraction and retrieval. Every failure is
// returned as a failed result.
func (s *Service) Handle(ctx context.Context, req Request) models.TranscriptResult {
	ref := models.VideoReference{URL: strings.TrimSpace(req.URL)}
	log := s.logger.WithField("url", ref.URL)

	videoID, err := s.validator.ExtractVideoID(ref.URL)
	if err != nil {
		log.WithError(err).Info("Rejected URL")
		return models.Failed(ref, err)
	}
	ref.VideoID = videoID
	log = log.WithField("video_id", videoID)

	journalID := s.begin(ctx, log, ref.URL)
	log.WithField("status", models.StatusFetching).Info("Fetching transcript")

	start := time.Now()
	result := s.retrieve(ctx, ref, req.View)

	fields := logrus.Fields{
		"status":   result.Status(),
		"duration": time.Since(start).String(),
	}
	if result.Failure != nil {
		log.WithFields(fields).WithField("kind", result.Failure.Kind).Warn("Transcript request failed")
	} else {
		log.WithFields(fields).WithField("segments", result.SegmentCount).Info("Transcript retrieved")
	}

	s.finish(ctx, log, journalID, result)
	return result
}

func (s *Service) retrieve(ctx context.Context, ref models.VideoReference, view models.View) models.TranscriptResult {
	var (
		text  string
		count int
		err   error
	)
	if view == models.ViewHighlights {
		text, count, err = s.retriever.RetrieveHighlights(ctx, ref.VideoID, s.highlightMaxChars)
	} else {
		text, count, err = s.retriever.Retrieve(ctx, ref.VideoID)
	}

	if err != nil {
		if _, ok := errors.AsAppError(err); !ok {
			err = errors.RetrievalFailed("Service.retrieve", err, "The transcript could not be retrieved.")
		}
		return models.Failed(ref, err)
	}
	return models.Success(ref, text, count)
}

func (s *Service) begin(ctx context.Context, log *logrus.Entry, url string) string {
	if s.recorder == nil {
		return ""
	}
	id, err := s.recorder.Begin(ctx, url)
	if err != nil {
		log.WithError(err).Error("Failed to journal request")
		return ""
	}
	return id
}

func (s *Service) finish(ctx context.Context, log *logrus.Entry, id string, result models.TranscriptResult) {
	if s.recorder == nil || id == "" {
		return
	}
	// The row must leave fetching even when the request was cancelled.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()

	if err := s.recorder.Finish(ctx, id, result); err != nil {
		log.WithError(err).WithField("journal_id", id).Error("Failed to journal result")
	}
}
