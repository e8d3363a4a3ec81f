package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nijaru/yt-transcript/config"
	"github.com/nijaru/yt-transcript/handlers"
	"github.com/nijaru/yt-transcript/journal"
	"github.com/nijaru/yt-transcript/logger"
	"github.com/nijaru/yt-transcript/middleware"
	"github.com/nijaru/yt-transcript/transcript"
	"github.com/nijaru/yt-transcript/transcription"
	"github.com/nijaru/yt-transcript/validation"
	"github.com/nijaru/yt-transcript/youtube"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logger")
	}

	provider := youtube.NewClient(
		youtube.WithBaseURL(cfg.YouTube.BaseURL),
		youtube.WithLanguages(cfg.YouTube.Languages...),
		youtube.WithRateLimit(cfg.YouTube.RequestsPerSecond, cfg.YouTube.Burst),
		youtube.WithLogger(log),
	)

	retriever := transcript.NewRetriever(provider,
		transcript.WithTimeout(cfg.Transcript.ProviderTimeout),
		transcript.WithTimestamps(cfg.Transcript.IncludeTimestamps),
	)

	opts := []transcription.Option{
		transcription.WithLogger(log),
		transcription.WithValidator(validation.NewValidator(validation.WithAllowedHosts(cfg.Transcript.AllowedHosts...))),
		transcription.WithHighlightMaxChars(cfg.Transcript.HighlightMaxChars),
	}

	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			log.WithError(err).Fatal("Failed to open request journal")
		}
		defer func() {
			if err := j.Close(); err != nil {
				log.WithError(err).Error("Failed to close request journal")
			}
		}()
		opts = append(opts, transcription.WithRecorder(j))
		log.WithField("path", cfg.Journal.Path).Info("Request journal enabled")
	}

	service := transcription.NewService(retriever, opts...)
	h := handlers.New(service, handlers.WithLogger(log), handlers.WithVersion(cfg.Version, cfg.Debug))

	handler := middleware.Chain(h.Routes(),
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Logging(log),
		middleware.CORS(cfg.CORS),
	)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":    cfg.ServerPort,
			"version": cfg.Version,
		}).Info("Listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.WithError(err).Error("Server failed")
		return
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("Shutting down the server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
}
