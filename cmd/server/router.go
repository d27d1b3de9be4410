package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/brocketdesign/chatlamix/internal/api"
	apiMiddleware "github.com/brocketdesign/chatlamix/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func setupRouter(
	generateHandler *api.GenerateHandler,
	webhookHandler *api.WebhookHandler,
	eventsHandler *api.EventsHandler,
	log *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate/video", generateHandler.GenerateVideo)
		r.Post("/generate/face-merge", generateHandler.GenerateFaceMerge)
		r.Get("/events", eventsHandler.StreamEvents)
	})

	// Providers call back here with the signed token minted at submission.
	r.Post("/webhooks/generation/{token}", webhookHandler.HandleGenerationWebhook)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
