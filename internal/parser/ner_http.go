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

// NERClient 命名实体识别模型服务的客户端
// 模型在服务端常驻，客户端在启动时通过 EnsureModel 确认一次模型可用，
// 之后每次调用只做推理，不会触发重复加载
type NERClient struct {
	baseURL    string
	model      string // 实际生效的模型，EnsureModel 可能降级到fallback
	fallback   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewNERClient 创建NER客户端
func NewNERClient(baseURL, model, fallback string, timeout time.Duration) (*NERClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("NER服务地址不能为空")
	}
	if model == "" {
		return nil, fmt.Errorf("NER模型标识不能为空")
	}

	return &NERClient{
		baseURL:    baseURL,
		model:      model,
		fallback:   fallback,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Logger.With().Str("component", "ner_client").Logger(),
	}, nil
}

// nerLoadRequest 模型加载/确认请求
type nerLoadRequest struct {
	Model string `json:"model"`
}

// nerRequest 实体识别请求
type nerRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

// nerResponse 实体识别响应
type nerResponse struct {
	Entities []struct {
		Text  string `json:"text"`
		Label string `json:"label"`
	} `json:"entities"`
	Error string `json:"error,omitempty"`
}

// EnsureModel 启动时确认首选模型已就绪
// 首选模型不可用时降级到fallback模型：记录警告但不让启动失败。
// 首选和fallback都不可用才返回错误。
func (c *NERClient) EnsureModel(ctx context.Context) error {
	if err := c.loadModel(ctx, c.model); err != nil {
		if c.fallback == "" || c.fallback == c.model {
			return fmt.Errorf("加载NER模型 %q 失败: %w", c.model, err)
		}
		c.logger.Warn().
			Err(err).
			Str("preferred", c.model).
			Str("fallback", c.fallback).
			Msg("首选NER模型不可用，降级到fallback模型")
		if fbErr := c.loadModel(ctx, c.fallback); fbErr != nil {
			return fmt.Errorf("加载NER fallback模型 %q 失败: %w", c.fallback, fbErr)
		}
		c.model = c.fallback
	}
	c.logger.Info().Str("model", c.model).Msg("NER模型就绪")
	return nil
}

// Model 当前生效的模型标识
func (c *NERClient) Model() string {
	return c.model
}

func (c *NERClient) loadModel(ctx context.Context, model string) error {
	body, err := json.Marshal(nerLoadRequest{Model: model})
	if err != nil {
		return fmt.Errorf("序列化模型加载请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/models/load", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("构造模型加载请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求NER服务失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("NER服务返回状态 %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// ExtractEntities 对文本运行已加载的NER模型，返回按出现顺序排列的实体
// 空文本直接返回空切片，不请求服务
func (c *NERClient) ExtractEntities(ctx context.Context, text string) ([]types.EntitySpan, error) {
	if text == "" {
		return []types.EntitySpan{}, nil
	}

	body, err := json.Marshal(nerRequest{Model: c.model, Text: text})
	if err != nil {
		return nil, fmt.Errorf("序列化NER请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ner", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("构造NER请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求NER服务失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("NER服务返回状态 %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed nerResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("解析NER响应失败: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("NER模型处理失败: %s", parsed.Error)
	}

	entities := make([]types.EntitySpan, 0, len(parsed.Entities))
	for _, ent := range parsed.Entities {
		entities = append(entities, types.EntitySpan{Text: ent.Text, Label: ent.Label})
	}
	return entities, nil
}
