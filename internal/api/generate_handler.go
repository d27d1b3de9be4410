package api

import (
	"net/http"

	"github.com/brocketdesign/chatlamix/internal/api/shared"
	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/brocketdesign/chatlamix/internal/task"
)

// GenerateHandler handles generation submission requests.
type GenerateHandler struct {
	service *task.GenerationService
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(service *task.GenerationService) *GenerateHandler {
	return &GenerateHandler{service: service}
}

// GenerateVideo handles POST /api/generate/video. The submission is
// asynchronous: the response acknowledges the accepted task and the
// outcome arrives later on the realtime channel.
func (h *GenerateHandler) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req GenerateVideoRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	h.generate(w, r, task.GenerateRequest{
		Kind:             domain.TaskKindImageToVideo,
		OwnerID:          req.OwnerID,
		ConversationID:   req.ConversationID,
		SourceArtifactID: req.SourceArtifactID,
		PlaceholderID:    req.PlaceholderID,
		Prompt:           req.Prompt,
		SourceImageURL:   req.SourceImageURL,
	})
}

// GenerateFaceMerge handles POST /api/generate/face-merge. The provider
// is synchronous, so a success response carries the finished artifact.
func (h *GenerateHandler) GenerateFaceMerge(w http.ResponseWriter, r *http.Request) {
	var req GenerateFaceMergeRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	h.generate(w, r, task.GenerateRequest{
		Kind:             domain.TaskKindFaceMerge,
		OwnerID:          req.OwnerID,
		ConversationID:   req.ConversationID,
		SourceArtifactID: req.SourceArtifactID,
		PlaceholderID:    req.PlaceholderID,
		Prompt:           req.Prompt,
		SourceImageURL:   req.SourceImageURL,
		TargetImageURL:   req.TargetImageURL,
	})
}

func (h *GenerateHandler) generate(w http.ResponseWriter, r *http.Request, req task.GenerateRequest) {
	result, err := h.service.Generate(r.Context(), req)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	status := http.StatusAccepted
	if result.Status == domain.TaskStatusCompleted {
		status = http.StatusOK
	}

	shared.RespondWithJSON(w, r, status, GenerateResponse{
		TaskID:   result.TaskID,
		Status:   result.Status,
		Artifact: result.Artifact,
	})
}
