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
	"resume-ranker/internal/types"

	"github.com/rs/zerolog"
)

// SummarizerClient 摘要模型服务的客户端
// 摘要是尽力而为的增强功能：任何失败都收敛为 SummaryResult 的
// Unavailable 状态并记日志，不向流水线抛错
type SummarizerClient struct {
	baseURL    string
	model      string
	minLength  int
	maxLength  int
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewSummarizerClient 创建摘要客户端
func NewSummarizerClient(baseURL, model string, minLength, maxLength int, timeout time.Duration) (*SummarizerClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("摘要服务地址不能为空")
	}
	if minLength > maxLength {
		return nil, fmt.Errorf("摘要长度下限 %d 不能大于上限 %d", minLength, maxLength)
	}

	return &SummarizerClient{
		baseURL:    baseURL,
		model:      model,
		minLength:  minLength,
		maxLength:  maxLength,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Logger.With().Str("component", "summarizer").Logger(),
	}, nil
}

// summarizeRequest 摘要请求，DoSample恒为false保证确定性生成
type summarizeRequest struct {
	Model     string `json:"model"`
	Text      string `json:"text"`
	MinLength int    `json:"min_length"`
	MaxLength int    `json:"max_length"`
	DoSample  bool   `json:"do_sample"`
}

// summarizeResponse 摘要响应
type summarizeResponse struct {
	SummaryText string `json:"summary_text"`
	Error       string `json:"error,omitempty"`
}

// Summarize 生成文本摘要
// 失败不返回error：结果以Unavailable+Reason表达，由展示层决定兜底文案
func (c *SummarizerClient) Summarize(ctx context.Context, text string) types.SummaryResult {
	if text == "" {
		return types.SummaryUnavailable("输入文本为空")
	}

	body, err := json.Marshal(summarizeRequest{
		Model:     c.model,
		Text:      text,
		MinLength: c.minLength,
		MaxLength: c.maxLength,
		DoSample:  false,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("序列化摘要请求失败")
		return types.SummaryUnavailable(err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/summarize", bytes.NewReader(body))
	if err != nil {
		c.logger.Warn().Err(err).Msg("构造摘要请求失败")
		return types.SummaryUnavailable(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("请求摘要服务失败")
		return types.SummaryUnavailable(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		reason := fmt.Sprintf("摘要服务返回状态 %d: %s", resp.StatusCode, string(respBody))
		c.logger.Warn().Int("status", resp.StatusCode).Msg("摘要服务返回非200状态")
		return types.SummaryUnavailable(reason)
	}

	var parsed summarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.Warn().Err(err).Msg("解析摘要响应失败")
		return types.SummaryUnavailable(err.Error())
	}
	if parsed.Error != "" {
		c.logger.Warn().Str("model_error", parsed.Error).Msg("摘要模型处理失败")
		return types.SummaryUnavailable(parsed.Error)
	}

	return types.NewSummary(parsed.SummaryText)
}
