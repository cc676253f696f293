package parser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req summarizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.DoSample, "摘要生成必须是确定性的")
		assert.Equal(t, 30, req.MinLength)
		assert.Equal(t, 150, req.MaxLength)

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(summarizeResponse{
			SummaryText: "A concise summary.",
		}))
	}))
	defer server.Close()

	client, err := NewSummarizerClient(server.URL, "bart", 30, 150, 5*time.Second)
	require.NoError(t, err)

	result := client.Summarize(context.Background(), "A very long text that needs summarizing.")
	assert.False(t, result.Unavailable)
	assert.Equal(t, "A concise summary.", result.Text)
}

// TestSummarizeFailureIsNonFatal 模型失败收敛为Unavailable，不产生error
func TestSummarizeFailureIsNonFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewSummarizerClient(server.URL, "bart", 30, 150, 5*time.Second)
	require.NoError(t, err)

	result := client.Summarize(context.Background(), "some text")
	assert.True(t, result.Unavailable)
	assert.NotEmpty(t, result.Reason)
}

// TestSummarizeUnreachableServer 服务完全不可达同样不抛错
func TestSummarizeUnreachableServer(t *testing.T) {
	client, err := NewSummarizerClient("http://unreachable.invalid", "bart", 30, 150, time.Second)
	require.NoError(t, err)

	result := client.Summarize(context.Background(), "some text")
	assert.True(t, result.Unavailable)
}

func TestSummarizeEmptyText(t *testing.T) {
	client, err := NewSummarizerClient("http://unreachable.invalid", "bart", 30, 150, time.Second)
	require.NoError(t, err)

	result := client.Summarize(context.Background(), "")
	assert.True(t, result.Unavailable)
}

func TestNewSummarizerClientRejectsBadBounds(t *testing.T) {
	_, err := NewSummarizerClient("http://localhost", "bart", 200, 150, time.Second)
	require.Error(t, err)
}
