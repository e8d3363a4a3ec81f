package handlers

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"mime"
	"net/http"
	"time"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/middleware"
	"github.com/nijaru/yt-transcript/models"
	"github.com/nijaru/yt-transcript/present"
	"github.com/nijaru/yt-transcript/transcription"
	"github.com/nijaru/yt-transcript/utils"
	"github.com/sirupsen/logrus"
)

const maxFormBytes = 64 << 10

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Transcriber is satisfied by *transcription.Service.
type Transcriber interface {
	Handle(ctx context.Context, req transcription.Request) models.TranscriptResult
}

type Handler struct {
	service   Transcriber
	logger    *logrus.Logger
	version   string
	debug     bool
	startTime time.Time
}

type Option func(*Handler)

func WithLogger(logger *logrus.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithVersion(version string, debug bool) Option {
	return func(h *Handler) {
		h.version = version
		h.debug = debug
	}
}

func New(service Transcriber, opts ...Option) *Handler {
	h := &Handler{
		service:   service,
		logger:    logrus.StandardLogger(),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("POST /{$}", h.Submit)
	mux.HandleFunc("POST /transcribe", h.Transcribe)
	mux.HandleFunc("GET /health", h.Health)
	return mux
}

type pageData struct {
	URL        string
	Highlights bool
	Output     *present.View
}

// Index serves the empty form.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, pageData{})
}

// Submit runs the form submission and renders the page with its output.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		view := present.Render(models.Failed(models.VideoReference{},
			errors.InvalidInput("Handler.Submit", err, "The form submission could not be read.")))
		h.renderPage(w, r, view.Status, pageData{Output: &view})
		return
	}

	req := transcription.Request{
		URL:  r.PostFormValue("url"),
		View: models.ParseView(r.PostFormValue("view")),
	}
	view := present.Render(h.service.Handle(r.Context(), req))

	h.renderPage(w, r, view.Status, pageData{
		URL:        req.URL,
		Highlights: req.View == models.ViewHighlights,
		Output:     &view,
	})
}

type transcribeRequest struct {
	URL  string `json:"url"`
	View string `json:"view"`
}

// Transcribe is the JSON API. It accepts a JSON body or form values.
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	body, err := decodeTranscribeRequest(r)
	if err != nil {
		h.logger.WithError(err).WithField("request_id", middleware.GetRequestID(r.Context())).Info("Invalid transcribe request")
		utils.HandleError(w, present.Message(errors.KindInvalidInput), http.StatusBadRequest)
		return
	}

	result := h.service.Handle(r.Context(), transcription.Request{
		URL:  body.URL,
		View: models.ParseView(body.View),
	})
	view := present.Render(result)

	if view.IsError {
		utils.HandleError(w, view.Text, view.Status)
		return
	}
	utils.RespondJSON(w, view.Status, map[string]string{"transcription": view.Text})
}

func decodeTranscribeRequest(r *http.Request) (transcribeRequest, error) {
	var body transcribeRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return body, err
		}
		return body, nil
	}

	if err := r.ParseForm(); err != nil {
		return body, err
	}
	body.URL = r.PostFormValue("url")
	body.View = r.PostFormValue("view")
	return body, nil
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
	}
	if h.version != "" {
		status["version"] = h.version
	}
	if h.debug {
		status["debug"] = true
	}
	utils.RespondJSON(w, http.StatusOK, status)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, statusCode int, data pageData) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		h.logger.WithError(err).WithField("request_id", middleware.GetRequestID(r.Context())).Error("Failed to render page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	buf.WriteTo(w)
}
