package types

// EntitySpan 命名实体识别结果中的一个实体片段
type EntitySpan struct {
	Text  string `json:"text"`  // 实体原文
	Label string `json:"label"` // 实体类别，由模型定义，如 PERSON / ORG / GPE
}

// CandidateRecord 一份简历处理完成后的聚合记录
// 由 CandidateStore 独占持有，写入后不再修改
type CandidateRecord struct {
	ID             uint64       `json:"id"`              // 自增ID，进程内单调递增，永不复用
	Filename       string       `json:"filename"`        // 原始文件名，仅用于展示
	ResumeText     string       `json:"resume_text"`     // 提取出的完整文本，供详情页使用
	Entities       []EntitySpan `json:"entities"`        // 按出现顺序排列的实体
	Skills         []string     `json:"skills"`          // 命中的技能词，顺序无语义
	MatchScore     float64      `json:"match_score"`     // 与岗位描述的相似度，保留4位小数
	JobDescription string       `json:"job_description"` // 该记录评分时使用的岗位描述
}

// CandidateSummary 排行列表中的一行
type CandidateSummary struct {
	ID       uint64  `json:"id"`
	Filename string  `json:"filename"`
	Score    float64 `json:"score"`
}

// SummaryResult 摘要组件的结果类型
// 摘要是尽力而为的增强功能，失败不携带error跨越流水线边界，
// 而是以 Unavailable + Reason 的形式表达
type SummaryResult struct {
	Text        string // 摘要文本，Unavailable 为 true 时为空
	Unavailable bool   // 摘要不可用（模型失败、文本过短、未启用等）
	Reason      string // 不可用原因，仅用于日志
}

// NewSummary 构造一个成功的摘要结果
func NewSummary(text string) SummaryResult {
	return SummaryResult{Text: text}
}

// SummaryUnavailable 构造一个不可用的摘要结果
func SummaryUnavailable(reason string) SummaryResult {
	return SummaryResult{Unavailable: true, Reason: reason}
}
