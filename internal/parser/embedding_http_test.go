package parser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWordVector 把单词映射到确定性的3维向量，同词必同向量
func fakeWordVector(word string) []float64 {
	var a, b, c float64
	for i, r := range word {
		switch i % 3 {
		case 0:
			a += float64(r)
		case 1:
			b += float64(r)
		case 2:
			c += float64(r)
		}
	}
	// 归一化量级，避免长词主导
	n := float64(len(word) + 1)
	return []float64{a / n, b / n, c / n}
}

// newFakeEncodeServer 构造假的嵌入模型服务：按空白切词，
// 每个词一个确定性token向量
func newFakeEncodeServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/encode", r.URL.Path)

		var req encodeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Truncation, "编码请求必须要求截断")
		assert.Equal(t, 512, req.MaxLength)

		resp := encodeResponse{HiddenStates: make([][][]float64, len(req.Inputs))}
		for i, input := range req.Inputs {
			words := strings.Fields(strings.ToLower(input))
			states := make([][]float64, 0, len(words))
			for _, word := range words {
				states = append(states, fakeWordVector(strings.Trim(word, ".,!?")))
			}
			resp.HiddenStates[i] = states
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newTestEmbedder(t *testing.T, serverURL, pooling string) *HTTPTextEmbedder {
	t.Helper()
	embedder, err := NewHTTPTextEmbedder(serverURL, "test-model", pooling, 512, 3, 5*time.Second)
	require.NoError(t, err)
	return embedder
}

func TestEmbedStringsMeanPooling(t *testing.T) {
	server := newFakeEncodeServer(t)
	defer server.Close()

	embedder := newTestEmbedder(t, server.URL, PoolingMean)

	vectors, err := embedder.EmbedStrings(context.Background(), []string{"hello world", "hello"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Len(t, vectors[0], 3)
}

// TestSelfSimilarityIsMaximal 文本与自身的相似度应达到相似度区间的上限
func TestSelfSimilarityIsMaximal(t *testing.T) {
	server := newFakeEncodeServer(t)
	defer server.Close()

	embedder := newTestEmbedder(t, server.URL, PoolingMean)

	text := "Python is a great programming language."
	vectors, err := embedder.EmbedStrings(context.Background(), []string{text, text})
	require.NoError(t, err)

	score := CosineSimilarity(vectors[0], vectors[1])
	assert.InDelta(t, 1.0, score, 1e-9)
}

// TestNearDuplicateScoresHigherThanUnrelated 近似句的相似度应明显高于无关句
func TestNearDuplicateScoresHigherThanUnrelated(t *testing.T) {
	server := newFakeEncodeServer(t)
	defer server.Close()

	embedder := newTestEmbedder(t, server.URL, PoolingMean)

	texts := []string{
		"Python is a great programming language.",
		"I love coding in Python!",
		"The weather in Bergen is rainy today.",
	}
	vectors, err := embedder.EmbedStrings(context.Background(), texts)
	require.NoError(t, err)

	similar := CosineSimilarity(vectors[0], vectors[1])
	unrelated := CosineSimilarity(vectors[0], vectors[2])

	assert.Greater(t, similar, unrelated, "近似句应比无关句得分高")
	for _, score := range []float64{similar, unrelated} {
		assert.GreaterOrEqual(t, score, -1.0-1e-9)
		assert.LessOrEqual(t, score, 1.0+1e-9)
	}
}

func TestEmbedStringsEmptyInput(t *testing.T) {
	embedder := newTestEmbedder(t, "http://unreachable.invalid", PoolingMean)

	vectors, err := embedder.EmbedStrings(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestEmbedStringsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	embedder := newTestEmbedder(t, server.URL, PoolingMean)

	_, err := embedder.EmbedStrings(context.Background(), []string{"text"})
	require.Error(t, err)
}

func TestNewHTTPTextEmbedderRejectsBadPooling(t *testing.T) {
	_, err := NewHTTPTextEmbedder("http://localhost", "m", "max", 512, 3, time.Second)
	require.Error(t, err)
}
