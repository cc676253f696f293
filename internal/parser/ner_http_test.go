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

// newFakeNERServer 构造一个假的NER模型服务
// loadableModels 中的模型可被加载，其余模型加载返回404
func newFakeNERServer(t *testing.T, loadableModels map[string]bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/models/load", func(w http.ResponseWriter, r *http.Request) {
		var req nerLoadRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if !loadableModels[req.Model] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/ner", func(w http.ResponseWriter, r *http.Request) {
		var req nerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp := nerResponse{}
		// 固定的识别结果，够测试用
		resp.Entities = append(resp.Entities, struct {
			Text  string `json:"text"`
			Label string `json:"label"`
		}{Text: "John Doe", Label: "PERSON"})
		resp.Entities = append(resp.Entities, struct {
			Text  string `json:"text"`
			Label string `json:"label"`
		}{Text: "Google", Label: "ORG"})
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	return httptest.NewServer(mux)
}

func TestNERClientEnsureModelPreferred(t *testing.T) {
	server := newFakeNERServer(t, map[string]bool{"en_core_web_trf": true})
	defer server.Close()

	client, err := NewNERClient(server.URL, "en_core_web_trf", "en_core_web_sm", 5*time.Second)
	require.NoError(t, err)

	require.NoError(t, client.EnsureModel(context.Background()))
	assert.Equal(t, "en_core_web_trf", client.Model())
}

// TestNERClientFallback 首选模型不可用时降级到fallback，启动不失败
func TestNERClientFallback(t *testing.T) {
	server := newFakeNERServer(t, map[string]bool{"en_core_web_sm": true})
	defer server.Close()

	client, err := NewNERClient(server.URL, "en_core_web_trf", "en_core_web_sm", 5*time.Second)
	require.NoError(t, err)

	require.NoError(t, client.EnsureModel(context.Background()))
	assert.Equal(t, "en_core_web_sm", client.Model(), "应降级到fallback模型")
}

// TestNERClientBothModelsUnavailable 首选和fallback都不可用才报错
func TestNERClientBothModelsUnavailable(t *testing.T) {
	server := newFakeNERServer(t, nil)
	defer server.Close()

	client, err := NewNERClient(server.URL, "en_core_web_trf", "en_core_web_sm", 5*time.Second)
	require.NoError(t, err)

	require.Error(t, client.EnsureModel(context.Background()))
}

func TestNERClientExtractEntities(t *testing.T) {
	server := newFakeNERServer(t, map[string]bool{"en_core_web_trf": true})
	defer server.Close()

	client, err := NewNERClient(server.URL, "en_core_web_trf", "", 5*time.Second)
	require.NoError(t, err)

	entities, err := client.ExtractEntities(context.Background(), "John Doe worked at Google in California.")
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "John Doe", entities[0].Text)
	assert.Equal(t, "PERSON", entities[0].Label)
	assert.Equal(t, "ORG", entities[1].Label)
}

// TestNERClientEmptyText 空文本直接返回空结果，不请求服务
func TestNERClientEmptyText(t *testing.T) {
	client, err := NewNERClient("http://unreachable.invalid", "m", "", time.Second)
	require.NoError(t, err)

	entities, err := client.ExtractEntities(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, entities)
}

// TestNERClientServerError 模型内部错误要向上传播
func TestNERClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewNERClient(server.URL, "m", "", 5*time.Second)
	require.NoError(t, err)

	_, err = client.ExtractEntities(context.Background(), "some text")
	require.Error(t, err)
}
