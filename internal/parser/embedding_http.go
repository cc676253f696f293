package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"resume-ranker/internal/logger"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/rs/zerolog"
)

// 池化策略取值
const (
	PoolingMean = "mean" // 对全部token隐状态取均值
	PoolingCLS  = "cls"  // 取首token（CLS位）
)

// HTTPTextEmbedder 嵌入模型服务的客户端，实现 cloudwego/eino 的
// embedding.Embedder 接口。服务端负责分词（截断到maxTokens、padding）
// 并返回逐token隐状态，池化在客户端按配置的策略完成。
type HTTPTextEmbedder struct {
	baseURL    string
	model      string
	pooling    string
	maxTokens  int
	dimensions int
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewHTTPTextEmbedder 创建嵌入客户端
func NewHTTPTextEmbedder(baseURL, model, pooling string, maxTokens, dimensions int, timeout time.Duration) (*HTTPTextEmbedder, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("嵌入服务地址不能为空")
	}
	if pooling != PoolingMean && pooling != PoolingCLS {
		return nil, fmt.Errorf("不支持的池化策略: %q", pooling)
	}
	if maxTokens <= 0 {
		maxTokens = 512
	}

	return &HTTPTextEmbedder{
		baseURL:    baseURL,
		model:      model,
		pooling:    pooling,
		maxTokens:  maxTokens,
		dimensions: dimensions,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Logger.With().Str("component", "text_embedder").Logger(),
	}, nil
}

// GetDimensions 返回嵌入向量的维度
func (e *HTTPTextEmbedder) GetDimensions() int {
	return e.dimensions
}

// Pooling 返回配置的池化策略
func (e *HTTPTextEmbedder) Pooling() string {
	return e.pooling
}

// Model 返回模型标识
func (e *HTTPTextEmbedder) Model() string {
	return e.model
}

// encodeRequest 编码请求：服务端按max_length截断、padding后推理
type encodeRequest struct {
	Model      string   `json:"model"`
	Inputs     []string `json:"inputs"`
	MaxLength  int      `json:"max_length"`
	Truncation bool     `json:"truncation"`
	Padding    bool     `json:"padding"`
}

// encodeResponse 编码响应：每个输入一组逐token隐状态
type encodeResponse struct {
	HiddenStates [][][]float64 `json:"hidden_states"`
	Error        string        `json:"error,omitempty"`
}

// EmbedStrings 将文本批量转换为池化后的定长向量
// 实现 cloudwego/eino 的 embedding.Embedder 接口
func (e *HTTPTextEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	options := &embedding.Options{}
	embedding.GetCommonOptions(options, opts...)

	effectiveModel := e.model
	if options.Model != nil && *options.Model != "" {
		effectiveModel = *options.Model
	}

	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	body, err := json.Marshal(encodeRequest{
		Model:      effectiveModel,
		Inputs:     texts,
		MaxLength:  e.maxTokens,
		Truncation: true,
		Padding:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("序列化编码请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/encode", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("构造编码请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求嵌入服务失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("嵌入服务返回状态 %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed encodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("解析编码响应失败: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("嵌入模型处理失败: %s", parsed.Error)
	}
	if len(parsed.HiddenStates) != len(texts) {
		return nil, fmt.Errorf("编码结果数量不符: 期望 %d, 实际 %d", len(texts), len(parsed.HiddenStates))
	}

	vectors := make([][]float64, len(parsed.HiddenStates))
	for i, tokenStates := range parsed.HiddenStates {
		vectors[i] = PoolTokenStates(tokenStates, e.pooling)
	}

	e.logger.Debug().
		Int("texts", len(texts)).
		Str("model", effectiveModel).
		Str("pooling", e.pooling).
		Msg("文本编码完成")

	return vectors, nil
}
