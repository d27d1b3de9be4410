package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVideoGenerator(t *testing.T, handler http.HandlerFunc) (*VideoGenerator, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	gen := NewVideoGenerator(srv.URL, "test-key", srv.Client(), 20, "default motion", logger)

	return gen, srv
}

func TestVideoGeneratorSubmit(t *testing.T) {
	t.Parallel()

	t.Run("submits normalized prompt and returns provider task id", func(t *testing.T) {
		var got videoSubmitRequest

		gen, _ := newVideoGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/generations", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_ = json.NewEncoder(w).Encode(videoSubmitResponse{TaskID: "vid-42"})
		})

		res, err := gen.Submit(context.Background(), SubmitRequest{
			Prompt:         "  make it dance  ",
			SourceImageURL: "https://cdn.example.com/src.png",
			CallbackURL:    "https://app.example.com/webhooks/generation/tok",
		})

		require.NoError(t, err)
		assert.Equal(t, ModeAsync, res.Mode)
		assert.Equal(t, "vid-42", res.TaskID)
		assert.Nil(t, res.Result)
		assert.Equal(t, "make it dance", got.Prompt)
		assert.Equal(t, "https://cdn.example.com/src.png", got.ImageURL)
		assert.Equal(t, "https://app.example.com/webhooks/generation/tok", got.WebhookURL)
	})

	t.Run("substitutes default for empty prompt", func(t *testing.T) {
		var got videoSubmitRequest

		gen, _ := newVideoGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_ = json.NewEncoder(w).Encode(videoSubmitResponse{TaskID: "vid-43"})
		})

		_, err := gen.Submit(context.Background(), SubmitRequest{Prompt: "   "})

		require.NoError(t, err)
		assert.Equal(t, "default motion", got.Prompt)
	})

	t.Run("classifies provider rejection as status error", func(t *testing.T) {
		gen, _ := newVideoGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		})

		_, err := gen.Submit(context.Background(), SubmitRequest{Prompt: "x"})

		var pErr *Error
		require.ErrorAs(t, err, &pErr)
		assert.Equal(t, ErrorKindStatus, pErr.Kind)
		assert.Equal(t, http.StatusTooManyRequests, pErr.StatusCode)
		assert.Contains(t, pErr.Reason, "quota exceeded")
	})

	t.Run("classifies unreachable provider as transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // connection now refused

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		gen := NewVideoGenerator(srv.URL, "k", http.DefaultClient, 20, "d", logger)

		_, err := gen.Submit(context.Background(), SubmitRequest{Prompt: "x"})

		var pErr *Error
		require.ErrorAs(t, err, &pErr)
		assert.Equal(t, ErrorKindTransport, pErr.Kind)
		assert.True(t, IsTransient(err))
	})

	t.Run("missing task id is a response error", func(t *testing.T) {
		gen, _ := newVideoGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(videoSubmitResponse{})
		})

		_, err := gen.Submit(context.Background(), SubmitRequest{Prompt: "x"})

		var pErr *Error
		require.ErrorAs(t, err, &pErr)
		assert.Equal(t, ErrorKindResponse, pErr.Kind)
		assert.False(t, IsTransient(err))
	})
}

func TestVideoGeneratorPoll(t *testing.T) {
	t.Parallel()

	t.Run("pending task maps to ErrOutcomePending", func(t *testing.T) {
		gen, _ := newVideoGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(videoStatusResponse{TaskID: "vid-1", Status: "processing"})
		})

		_, err := gen.Poll(context.Background(), "vid-1")

		assert.ErrorIs(t, err, ErrOutcomePending)
	})

	t.Run("completed task yields result outcome", func(t *testing.T) {
		gen, _ := newVideoGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/generations/vid-1", r.URL.Path)
			_ = json.NewEncoder(w).Encode(videoStatusResponse{
				TaskID:          "vid-1",
				Status:          "completed",
				VideoURL:        "https://cdn.example.com/v/1.mp4",
				DurationSeconds: 5,
			})
		})

		outcome, err := gen.Poll(context.Background(), "vid-1")

		require.NoError(t, err)
		require.NotNil(t, outcome.Result)
		assert.Equal(t, &domain.TaskResult{MediaURL: "https://cdn.example.com/v/1.mp4", DurationSeconds: 5}, outcome.Result)
		assert.Empty(t, outcome.FailureReason)
	})

	t.Run("failed task yields failure outcome, not an error", func(t *testing.T) {
		gen, _ := newVideoGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(videoStatusResponse{
				TaskID: "vid-1",
				Status: "failed",
				Error:  "content rejected",
			})
		})

		outcome, err := gen.Poll(context.Background(), "vid-1")

		require.NoError(t, err)
		assert.Nil(t, outcome.Result)
		assert.Equal(t, "content rejected", outcome.FailureReason)
	})

	t.Run("completion without result is a failure outcome", func(t *testing.T) {
		gen, _ := newVideoGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(videoStatusResponse{TaskID: "vid-1", Status: "completed"})
		})

		outcome, err := gen.Poll(context.Background(), "vid-1")

		require.NoError(t, err)
		assert.Nil(t, outcome.Result)
		assert.NotEmpty(t, outcome.FailureReason)
	})
}
