package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/brocketdesign/chatlamix/internal/mocks"
	"github.com/brocketdesign/chatlamix/internal/provider"
	"github.com/brocketdesign/chatlamix/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGenerateRouter(p *pipeline) http.Handler {
	r := chi.NewRouter()
	handler := NewGenerateHandler(p.service)
	r.Post("/api/generate/video", handler.GenerateVideo)
	r.Post("/api/generate/face-merge", handler.GenerateFaceMerge)
	return r
}

func postJSON(router http.Handler, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validVideoRequest() GenerateVideoRequest {
	return GenerateVideoRequest{
		OwnerID:          uuid.New(),
		ConversationID:   uuid.New(),
		SourceArtifactID: uuid.New(),
		PlaceholderID:    "ph-1",
		Prompt:           "make it wave",
		SourceImageURL:   "https://cdn.example.com/src.png",
	}
}

func TestGenerateVideo_Accepted(t *testing.T) {
	t.Parallel()

	adapter := &mocks.MockAdapter{
		KindValue: domain.TaskKindImageToVideo,
		SubmitFn: func(ctx context.Context, req provider.SubmitRequest) (*provider.SubmitResult, error) {
			return &provider.SubmitResult{Mode: provider.ModeAsync, TaskID: "vid-1"}, nil
		},
	}
	p := newPipeline(t, adapter)
	router := newGenerateRouter(p)

	w := postJSON(router, "/api/generate/video", validVideoRequest())

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "vid-1", resp.TaskID)
	assert.Equal(t, domain.TaskStatusPending, resp.Status)
	assert.Nil(t, resp.Artifact)

	require.NotNil(t, p.tasks.Get(store.TaskSelector{TaskID: "vid-1"}))
}

func TestGenerateFaceMerge_CompletedInline(t *testing.T) {
	t.Parallel()

	adapter := &mocks.MockAdapter{
		KindValue: domain.TaskKindFaceMerge,
		SubmitFn: func(ctx context.Context, req provider.SubmitRequest) (*provider.SubmitResult, error) {
			return &provider.SubmitResult{
				Mode:   provider.ModeSync,
				TaskID: "merge-1",
				Result: &domain.TaskResult{MediaURL: "https://cdn.example.com/m1.png"},
			}, nil
		},
	}
	p := newPipeline(t, adapter)
	router := newGenerateRouter(p)

	w := postJSON(router, "/api/generate/face-merge", GenerateFaceMergeRequest{
		OwnerID:          uuid.New(),
		ConversationID:   uuid.New(),
		SourceArtifactID: uuid.New(),
		PlaceholderID:    "ph-1",
		SourceImageURL:   "https://cdn.example.com/a.png",
		TargetImageURL:   "https://cdn.example.com/b.png",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.TaskStatusCompleted, resp.Status)
	require.NotNil(t, resp.Artifact)
	assert.Equal(t, "https://cdn.example.com/m1.png", resp.Artifact.MediaURL)
}

func TestGenerateVideo_ValidationError(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, &mocks.MockAdapter{KindValue: domain.TaskKindImageToVideo})
	router := newGenerateRouter(p)

	req := validVideoRequest()
	req.SourceImageURL = "not a url"
	w := postJSON(router, "/api/generate/video", req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateVideo_MalformedBody(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, &mocks.MockAdapter{KindValue: domain.TaskKindImageToVideo})
	router := newGenerateRouter(p)

	req := httptest.NewRequest(http.MethodPost, "/api/generate/video",
		bytes.NewReader([]byte("{broken")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateVideo_NoAdapterConfigured(t *testing.T) {
	t.Parallel()

	p := newPipeline(t) // no adapters registered
	router := newGenerateRouter(p)

	w := postJSON(router, "/api/generate/video", validVideoRequest())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateVideo_ProviderFailure(t *testing.T) {
	t.Parallel()

	adapter := &mocks.MockAdapter{
		KindValue: domain.TaskKindImageToVideo,
		SubmitFn: func(ctx context.Context, req provider.SubmitRequest) (*provider.SubmitResult, error) {
			return nil, provider.NewStatusError("videogen", 500, "internal renderer error")
		},
	}
	p := newPipeline(t, adapter)
	router := newGenerateRouter(p)

	w := postJSON(router, "/api/generate/video", validVideoRequest())

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "internal renderer error",
		"upstream error details must not leak to the caller")
}
