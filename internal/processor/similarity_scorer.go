package processor

import (
	"context"
	"fmt"

	"resume-ranker/internal/logger"
	"resume-ranker/internal/parser"
	"resume-ranker/internal/storage"

	"github.com/rs/zerolog"
)

// EmbeddingSimilarityScorer 默认的相似度评分实现：
// 嵌入两段文本后取池化向量的余弦相似度。
// 岗位描述向量走缓存，同一批次内只编码一次；缓存失效只损失性能。
type EmbeddingSimilarityScorer struct {
	embedder TextEmbedder
	jdCache  storage.JDVectorCache
	logger   zerolog.Logger
}

// NewEmbeddingSimilarityScorer 创建评分器，jdCache为nil时不启用缓存
func NewEmbeddingSimilarityScorer(embedder TextEmbedder, jdCache storage.JDVectorCache) (*EmbeddingSimilarityScorer, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder不能为空")
	}
	return &EmbeddingSimilarityScorer{
		embedder: embedder,
		jdCache:  jdCache,
		logger:   logger.Logger.With().Str("component", "similarity_scorer").Logger(),
	}, nil
}

// ComputeSimilarity 计算简历文本与岗位描述的余弦相似度
// 每个文本至多编码一次；零向量（如空文本）兜底为0.0
func (s *EmbeddingSimilarityScorer) ComputeSimilarity(ctx context.Context, resumeText, jobDescription string) (float64, error) {
	jdVector, err := s.jobDescriptionVector(ctx, jobDescription)
	if err != nil {
		return 0, err
	}

	resumeVectors, err := s.embedder.EmbedStrings(ctx, []string{resumeText})
	if err != nil {
		return 0, fmt.Errorf("编码简历文本失败: %w", err)
	}
	if len(resumeVectors) != 1 {
		return 0, fmt.Errorf("编码结果数量不符: 期望1, 实际%d", len(resumeVectors))
	}

	return parser.CosineSimilarity(resumeVectors[0], jdVector), nil
}

// jobDescriptionVector 取岗位描述向量，优先走缓存
func (s *EmbeddingSimilarityScorer) jobDescriptionVector(ctx context.Context, jobDescription string) ([]float64, error) {
	var key string
	if s.jdCache != nil {
		key = storage.JDCacheKey(s.embedder.Model(), s.embedder.Pooling(), jobDescription)
		if vector, hit := s.jdCache.Get(ctx, key); hit {
			s.logger.Debug().Msg("JD向量缓存命中")
			return vector, nil
		}
	}

	vectors, err := s.embedder.EmbedStrings(ctx, []string{jobDescription})
	if err != nil {
		return nil, fmt.Errorf("编码岗位描述失败: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("编码结果数量不符: 期望1, 实际%d", len(vectors))
	}

	if s.jdCache != nil {
		s.jdCache.Put(ctx, key, vectors[0])
	}
	return vectors[0], nil
}
