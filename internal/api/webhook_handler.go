package api

import (
	"net/http"

	"github.com/brocketdesign/chatlamix/internal/api/shared"
	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/brocketdesign/chatlamix/internal/provider"
	"github.com/brocketdesign/chatlamix/internal/task"
	"github.com/go-chi/chi/v5"
)

// WebhookHandler handles completion notifications from async providers.
type WebhookHandler struct {
	signer     *provider.CallbackSigner
	completion *task.CompletionHandler
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(signer *provider.CallbackSigner, completion *task.CompletionHandler) *WebhookHandler {
	return &WebhookHandler{signer: signer, completion: completion}
}

// HandleGenerationWebhook handles POST /webhooks/generation/{token}. The
// token in the path is the signed JWT minted at submission time; only
// URLs this service generated can reach the completion path. Duplicate
// deliveries are acknowledged with 200 so providers stop retrying.
func (h *WebhookHandler) HandleGenerationWebhook(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	claims, err := h.signer.Verify(token)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusUnauthorized, "Invalid callback token", err)
		return
	}

	var payload WebhookPayload
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	sig := task.Signal{
		TaskID:        payload.TaskID,
		PlaceholderID: payload.PlaceholderID,
		FailureReason: payload.Error,
	}
	// The token claims are the trusted correlation source; payload fields
	// only fill gaps the claims do not cover.
	if sig.PlaceholderID == "" {
		sig.PlaceholderID = claims.PlaceholderID
	}
	if payload.MediaURL != "" {
		sig.Result = &domain.TaskResult{
			MediaURL:        payload.MediaURL,
			DurationSeconds: payload.DurationSeconds,
			SizeBytes:       payload.SizeBytes,
		}
	}

	if sig.TaskID == "" && sig.PlaceholderID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing task correlation keys")
		return
	}

	if _, err := h.completion.HandleCompletion(r.Context(), sig); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, WebhookResponse{
		Status: "ok",
		TaskID: sig.TaskID,
	})
}
