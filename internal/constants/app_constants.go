package constants

import "time"

const (
	// PreviewMaxChars 详情页中简历正文预览的最大字符数
	PreviewMaxChars = 300
	// SummaryMaxChars 展示层对摘要文本的截断长度
	SummaryMaxChars = 300
	// ScorePrecision 相似度分数保留的小数位数
	ScorePrecision = 4

	// DefaultMaxTokens 嵌入模型的默认截断长度(token数)
	DefaultMaxTokens = 512

	// JD向量缓存相关
	JDVectorCachePrefix   = "rr:jd:vector:" // Redis Key前缀，后接 (model,pooling,jd文本) 的SHA-256
	DefaultJDCacheTTL     = 24 * time.Hour
	DefaultRequestTimeout = 30 * time.Second
)
