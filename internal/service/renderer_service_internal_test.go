package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"quote-web-server/config"
	"quote-web-server/internal/model"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(serverURL string) *RendererService {
	svc := NewRendererService(&config.RendererConfig{
		APIURL:     serverURL,
		APIKey:     "test-key",
		TemplateID: "tpl-1",
	})
	svc.pollInterval = 0
	return svc
}

func statusResponse(id, status, downloadURL string) string {
	return fmt.Sprintf(`{"document":{"id":%q,"status":%q,"download_url":%q}}`, id, status, downloadURL)
}

func TestTriggerRender_ReturnsTaskID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/documents", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req renderTriggerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tpl-1", req.Document.TemplateID)
		assert.Equal(t, "Q-2025-0042", req.Document.Payload["quote_number"])

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, statusResponse("doc-1", "pending", ""))
	}))
	defer server.Close()

	svc := newTestRenderer(server.URL)
	quote := &model.Quote{
		QuoteNumber: "Q-2025-0042",
		Items:       []byte(`[]`),
		ExpiryDate:  time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC),
	}

	result, err := svc.TriggerRender(context.Background(), quote, model.SenderContext{CompanyName: "ЭлектроМонтаж"}, false)

	require.NoError(t, err)
	assert.Equal(t, "doc-1", result.DocumentID)
	assert.Empty(t, result.URL)
}

func TestTriggerRender_ImmediateURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, statusResponse("doc-1", "success", "https://cdn.example/a.pdf"))
	}))
	defer server.Close()

	svc := newTestRenderer(server.URL)

	result, err := svc.TriggerRender(context.Background(), &model.Quote{Items: []byte(`[]`)}, model.SenderContext{}, false)

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/a.pdf", result.URL)
}

func TestTriggerRender_FailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"document":{"id":"doc-1","status":"failure","failure_cause":"bad template"}}`)
	}))
	defer server.Close()

	svc := newTestRenderer(server.URL)

	_, err := svc.TriggerRender(context.Background(), &model.Quote{Items: []byte(`[]`)}, model.SenderContext{}, false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad template")
}

func TestCheckStatus_PendingReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents/doc-1", r.URL.Path)
		fmt.Fprint(w, statusResponse("doc-1", "generating", ""))
	}))
	defer server.Close()

	svc := newTestRenderer(server.URL)

	url, err := svc.CheckStatus(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestPollForArtifact_StopsAtAttemptCeiling(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, statusResponse("doc-1", "pending", ""))
	}))
	defer server.Close()

	svc := newTestRenderer(server.URL)

	url, err := svc.PollForArtifact(context.Background(), "doc-1")

	// исчерпание потолка — мягкий отказ, а не ошибка
	require.NoError(t, err)
	assert.Empty(t, url)
	assert.EqualValues(t, defaultPollAttempts, calls.Load())
}

func TestPollForArtifact_ShortCircuitsOnReady(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) >= 10 {
			fmt.Fprint(w, statusResponse("doc-1", "success", "https://cdn.example/a.pdf"))
			return
		}
		fmt.Fprint(w, statusResponse("doc-1", "pending", ""))
	}))
	defer server.Close()

	svc := newTestRenderer(server.URL)

	url, err := svc.PollForArtifact(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/a.pdf", url)
	assert.EqualValues(t, 10, calls.Load())
}

func TestPollForArtifact_FailedChecksConsumeAttempts(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1, 2:
			w.WriteHeader(http.StatusInternalServerError)
		default:
			fmt.Fprint(w, statusResponse("doc-1", "success", "https://cdn.example/a.pdf"))
		}
	}))
	defer server.Close()

	svc := newTestRenderer(server.URL)

	url, err := svc.PollForArtifact(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/a.pdf", url)
	assert.EqualValues(t, 3, calls.Load())
}

func TestPollForArtifact_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, statusResponse("doc-1", "pending", ""))
	}))
	defer server.Close()

	svc := newTestRenderer(server.URL)
	svc.pollInterval = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := svc.PollForArtifact(ctx, "doc-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchArtifact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.pdf" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("%PDF-1.7 data"))
	}))
	defer server.Close()

	svc := newTestRenderer(server.URL)

	data, err := svc.FetchArtifact(context.Background(), server.URL+"/ok.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7 data"), data)

	_, err = svc.FetchArtifact(context.Background(), server.URL+"/missing.pdf")
	require.Error(t, err)
}
