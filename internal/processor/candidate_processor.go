package processor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"

	"resume-ranker/internal/constants"
	"resume-ranker/internal/logger"
	"resume-ranker/internal/storage"
	"resume-ranker/internal/tracing"
	"resume-ranker/internal/types"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// 流水线专用tracer
var pipelineTracer = otel.Tracer("resume-ranker/processor")

// Document 一份待处理的文档：原始字节流加文件名
// 只被消费一次，提取出的文本之外不保留原始内容
type Document struct {
	Filename string
	Reader   io.Reader
}

// DocumentSource 批处理时的惰性文档来源
// Open到失败为止都不占用文件句柄，逐个打开逐个关闭
type DocumentSource struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// Components 聚合流水线的全部组件依赖，便于集中管理和测试替换
type Components struct {
	Extractor  TextExtractor
	Recognizer EntityRecognizer
	Skills     SkillMatcher
	Scorer     SimilarityScorer
	Summarizer Summarizer // 可选，nil表示未启用摘要

	// 候选人表由流水线独占写入
	Store *storage.CandidateStore
}

// Settings 纯配置项
type Settings struct {
	MaxDocumentBytes int64 // 单文档大小上限，0表示不限制
}

// CandidateProcessor 候选人排序流水线
// 单文档：提取 → 实体/技能/相似度 → 组装记录 → 入表。
// 三个NLP步骤互相独立，顺序执行；批处理逐文档串行，单文档失败跳过不中断。
type CandidateProcessor struct {
	components *Components
	settings   Settings
	logger     zerolog.Logger
}

// NewCandidateProcessor 创建流水线
func NewCandidateProcessor(components *Components, settings Settings) (*CandidateProcessor, error) {
	if components == nil {
		return nil, fmt.Errorf("components不能为空")
	}
	if components.Extractor == nil || components.Recognizer == nil ||
		components.Skills == nil || components.Scorer == nil || components.Store == nil {
		return nil, fmt.Errorf("流水线缺少必需组件")
	}
	return &CandidateProcessor{
		components: components,
		settings:   settings,
		logger:     logger.Logger.With().Str("component", "candidate_processor").Logger(),
	}, nil
}

// ProcessDocument 处理单份文档并入表，返回完整记录
// 提取失败或模型失败只影响这一份文档；错误分类由 errors.Is 区分
func (p *CandidateProcessor) ProcessDocument(ctx context.Context, doc Document, jobDescription string) (*types.CandidateRecord, error) {
	ctx, span := pipelineTracer.Start(ctx, "processor.ProcessDocument",
		trace.WithAttributes(attribute.String("document.filename", doc.Filename)))
	defer span.End()

	if jobDescription == "" {
		err := NewValidationError("岗位描述不能为空")
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	// 1. 读入字节并检查大小上限
	data, err := p.readLimited(doc.Reader, doc.Filename)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	// 2. 提取文本
	resumeText, err := p.components.Extractor.ExtractText(ctx, doc.Filename, bytes.NewReader(data))
	if err != nil {
		wrapped := NewExtractionError(doc.Filename, err.Error())
		tracing.RecordError(span, wrapped, tracing.ErrorTypeExtraction)
		return nil, wrapped
	}
	span.SetAttributes(
		attribute.Int("document.text_chars", len(resumeText)),
		attribute.String("document.text_preview", tracing.SafeResumeContent(resumeText)),
		attribute.String("job.description_preview", tracing.SafeJDContent(jobDescription)),
	)

	// 3. 实体、技能、相似度：互相独立的纯函数，顺序无关
	entities, err := p.components.Recognizer.ExtractEntities(ctx, resumeText)
	if err != nil {
		wrapped := NewNLPError(doc.Filename, "ner", err.Error())
		tracing.RecordErrorWithInfo(span, wrapped, tracing.ErrorTypeModel,
			attribute.String("model.op", "ner"))
		return nil, wrapped
	}

	skills := p.components.Skills.ExtractSkills(resumeText)

	score, err := p.components.Scorer.ComputeSimilarity(ctx, resumeText, jobDescription)
	if err != nil {
		wrapped := NewNLPError(doc.Filename, "similarity", err.Error())
		tracing.RecordErrorWithInfo(span, wrapped, tracing.ErrorTypeModel,
			attribute.String("model.op", "similarity"))
		return nil, wrapped
	}

	// 4. 组装记录并入表；ID在临界区内分配，单调递增
	record := &types.CandidateRecord{
		Filename:       doc.Filename,
		ResumeText:     resumeText,
		Entities:       entities,
		Skills:         skills,
		MatchScore:     roundScore(score),
		JobDescription: jobDescription,
	}
	id := p.components.Store.Insert(record)

	span.SetAttributes(
		attribute.Int64("candidate.id", int64(id)),
		attribute.Float64("candidate.score", record.MatchScore),
		attribute.Int("candidate.entities", len(entities)),
		attribute.Int("candidate.skills", len(skills)),
	)

	p.logger.Info().
		Uint64("candidate_id", id).
		Str("filename", doc.Filename).
		Float64("score", record.MatchScore).
		Int("entities", len(entities)).
		Int("skills", len(skills)).
		Msg("候选人入表")

	return record, nil
}

// ProcessBatch 逐个处理一批文档来源，返回成功入表的数量
// 单个文档失败记日志后跳过，绝不中断批次：N份中M份完好就得到M条记录
func (p *CandidateProcessor) ProcessBatch(ctx context.Context, sources []DocumentSource, jobDescription string) (int, error) {
	if jobDescription == "" {
		return 0, NewValidationError("岗位描述不能为空")
	}

	batchID := newBatchID()
	ctx, span := pipelineTracer.Start(ctx, "processor.ProcessBatch",
		trace.WithAttributes(
			attribute.String("batch.id", batchID),
			attribute.Int("batch.total", len(sources)),
		))
	defer span.End()

	batchLogger := p.logger.With().Str("batch_id", batchID).Logger()

	ingested := 0
	for _, source := range sources {
		if err := p.processSource(ctx, source, jobDescription); err != nil {
			batchLogger.Warn().
				Err(err).
				Str("filename", source.Filename).
				Msg("文档处理失败，跳过")
			continue
		}
		ingested++
	}

	span.SetAttributes(attribute.Int("batch.ingested", ingested))
	batchLogger.Info().
		Int("total", len(sources)).
		Int("ingested", ingested).
		Msg("批处理完成")

	return ingested, nil
}

// processSource 打开、处理并关闭一个文档来源
func (p *CandidateProcessor) processSource(ctx context.Context, source DocumentSource, jobDescription string) error {
	reader, err := source.Open()
	if err != nil {
		return NewExtractionError(source.Filename, fmt.Sprintf("打开文件失败: %v", err))
	}
	defer reader.Close()

	_, err = p.ProcessDocument(ctx, Document{Filename: source.Filename, Reader: reader}, jobDescription)
	return err
}

// ListCandidates 按分数降序的候选人列表，同分保持入表顺序
func (p *CandidateProcessor) ListCandidates() []types.CandidateSummary {
	return p.components.Store.List()
}

// GetCandidate 按ID取完整记录
func (p *CandidateProcessor) GetCandidate(id uint64) (*types.CandidateRecord, error) {
	record, err := p.components.Store.Get(id)
	if err != nil {
		return nil, &ProcessError{Op: "get", BaseErr: ErrNotFound, Detail: fmt.Sprintf("id=%d", id)}
	}
	return record, nil
}

// Summarize 对文本生成摘要；未配置摘要组件时返回不可用
// 摘要失败永远不影响流水线结果
func (p *CandidateProcessor) Summarize(ctx context.Context, text string) types.SummaryResult {
	if p.components.Summarizer == nil {
		return types.SummaryUnavailable("摘要组件未启用")
	}
	return p.components.Summarizer.Summarize(ctx, text)
}

// readLimited 读入全部字节，超出大小上限时返回ResourceLimitError
func (p *CandidateProcessor) readLimited(reader io.Reader, filename string) ([]byte, error) {
	if p.settings.MaxDocumentBytes <= 0 {
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, NewExtractionError(filename, fmt.Sprintf("读取字节流失败: %v", err))
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(reader, p.settings.MaxDocumentBytes+1))
	if err != nil {
		return nil, NewExtractionError(filename, fmt.Sprintf("读取字节流失败: %v", err))
	}
	if int64(len(data)) > p.settings.MaxDocumentBytes {
		return nil, NewResourceLimitError(filename,
			fmt.Sprintf("超过%d字节上限", p.settings.MaxDocumentBytes))
	}
	return data, nil
}

// roundScore 分数按配置的精度取整(4位小数)
func roundScore(score float64) float64 {
	factor := math.Pow10(constants.ScorePrecision)
	return math.Round(score*factor) / factor
}

// newBatchID 生成批次日志关联ID，失败时退化为固定值
func newBatchID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "batch-unknown"
	}
	return id.String()
}
