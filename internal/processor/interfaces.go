package processor

import (
	"context"
	"io"

	"resume-ranker/internal/types"

	"github.com/cloudwego/eino/components/embedding"
)

//
// 候选人流水线依赖的组件契约
// 模型内部是外部资源，这里只约定调用契约
//

// TextExtractor 文档文本提取接口
type TextExtractor interface {
	// ExtractText 按文件名后缀从字节流提取unicode文本
	ExtractText(ctx context.Context, filename string, reader io.Reader) (string, error)
}

// EntityRecognizer 命名实体识别接口
// 模型在启动时加载一次，调用方仅做推理；空文本返回空结果
type EntityRecognizer interface {
	ExtractEntities(ctx context.Context, text string) ([]types.EntitySpan, error)
}

// SkillMatcher 技能词匹配接口，纯函数，无失败路径
type SkillMatcher interface {
	ExtractSkills(text string) []string
}

// TextEmbedder 文本向量化接口 (符合 cloudwego/eino 规范)
// Model/Pooling 用于构造JD向量缓存键
type TextEmbedder interface {
	EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error)
	GetDimensions() int
	Model() string
	Pooling() string
}

// SimilarityScorer 两段文本的语义相似度接口，返回[-1,1]内的标量
type SimilarityScorer interface {
	ComputeSimilarity(ctx context.Context, resumeText, jobDescription string) (float64, error)
}

// Summarizer 摘要接口，尽力而为：失败表达在结果类型里而非error
type Summarizer interface {
	Summarize(ctx context.Context, text string) types.SummaryResult
}
