package handler

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"resume-ranker/internal/config"
	"resume-ranker/internal/constants"
	"resume-ranker/internal/logger"
	"resume-ranker/internal/processor"
	"resume-ranker/internal/types"

	"github.com/rs/zerolog"
)

// CandidateHandler 候选人请求处理器，负责请求校验和展示层组装
// 业务语义全部委托给流水线
type CandidateHandler struct {
	cfg       *config.Config
	processor *processor.CandidateProcessor
	logger    zerolog.Logger
}

// NewCandidateHandler 创建候选人处理器
func NewCandidateHandler(cfg *config.Config, proc *processor.CandidateProcessor) *CandidateHandler {
	return &CandidateHandler{
		cfg:       cfg,
		processor: proc,
		logger:    logger.Logger.With().Str("component", "candidate_handler").Logger(),
	}
}

// CandidateDetailResponse 单候选人的展示记录
type CandidateDetailResponse struct {
	ID            uint64             `json:"id"`
	Filename      string             `json:"filename"`
	ResumePreview string             `json:"resume_preview"`
	Entities      []types.EntitySpan `json:"entities"`
	Skills        []string           `json:"skills"`
	Score         float64            `json:"score"`
	ResumeSummary string             `json:"resume_summary,omitempty"`
	JobSummary    string             `json:"job_summary,omitempty"`
}

// FolderIngestResponse 批处理结果
type FolderIngestResponse struct {
	Ingested int `json:"ingested"`
}

// HandleUpload 处理单份简历上传：校验 → 流水线处理 → 组装展示记录
// 摘要是尽力而为的：失败时对应字段留空，不影响请求成功
func (h *CandidateHandler) HandleUpload(ctx context.Context, reader io.Reader, fileSize int64,
	filename string, jobDescription string) (*CandidateDetailResponse, error) {

	if filename == "" {
		return nil, processor.NewValidationError("未选择文件")
	}
	if !h.cfg.AllowedExtension(filename) {
		return nil, processor.NewValidationError(
			fmt.Sprintf("不支持的文件类型: %s (仅支持 %v)", filename, h.cfg.Limits.AllowedExtensions))
	}
	if jobDescription == "" {
		return nil, processor.NewValidationError("岗位描述不能为空")
	}
	if fileSize > h.cfg.MaxFileSizeBytes() {
		return nil, processor.NewResourceLimitError(filename,
			fmt.Sprintf("文件大小上限为%dMB", h.cfg.Limits.MaxFileSizeMB))
	}

	record, err := h.processor.ProcessDocument(ctx,
		processor.Document{Filename: filename, Reader: reader}, jobDescription)
	if err != nil {
		return nil, err
	}

	resp := h.detailFromRecord(record)

	// 摘要仅在单文档模式下生成，展示层统一截断
	resumeSummary := h.processor.Summarize(ctx, record.ResumeText)
	if !resumeSummary.Unavailable {
		resp.ResumeSummary = truncateRunes(resumeSummary.Text, constants.SummaryMaxChars)
	}
	jobSummary := h.processor.Summarize(ctx, jobDescription)
	if !jobSummary.Unavailable {
		resp.JobSummary = truncateRunes(jobSummary.Text, constants.SummaryMaxChars)
	}

	return resp, nil
}

// HandleFolder 处理文件夹批量导入
// 只接收扩展名在白名单内的文件；其余文件静默跳过
func (h *CandidateHandler) HandleFolder(ctx context.Context, folderPath, jobDescription string) (*FolderIngestResponse, error) {
	if folderPath == "" {
		return nil, processor.NewValidationError("文件夹路径不能为空")
	}
	if jobDescription == "" {
		return nil, processor.NewValidationError("岗位描述不能为空")
	}

	info, err := os.Stat(folderPath)
	if err != nil || !info.IsDir() {
		return nil, processor.NewValidationError(
			fmt.Sprintf("无效的文件夹路径: %s", folderPath))
	}

	entries, err := os.ReadDir(folderPath)
	if err != nil {
		return nil, processor.NewValidationError(
			fmt.Sprintf("读取文件夹失败: %s", folderPath))
	}

	sources := make([]processor.DocumentSource, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !h.cfg.AllowedExtension(entry.Name()) {
			continue
		}
		fullPath := filepath.Join(folderPath, entry.Name())
		filename := entry.Name()
		sources = append(sources, processor.DocumentSource{
			Filename: filename,
			Open: func() (io.ReadCloser, error) {
				return os.Open(fullPath)
			},
		})
	}

	ingested, err := h.processor.ProcessBatch(ctx, sources, jobDescription)
	if err != nil {
		return nil, err
	}
	return &FolderIngestResponse{Ingested: ingested}, nil
}

// HandleList 按分数降序的候选人列表
func (h *CandidateHandler) HandleList() []types.CandidateSummary {
	return h.processor.ListCandidates()
}

// HandleDetail 按ID返回候选人详情；详情页不重新生成摘要
func (h *CandidateHandler) HandleDetail(id uint64) (*CandidateDetailResponse, error) {
	record, err := h.processor.GetCandidate(id)
	if err != nil {
		return nil, err
	}
	return h.detailFromRecord(record), nil
}

// detailFromRecord 由完整记录组装展示记录
func (h *CandidateHandler) detailFromRecord(record *types.CandidateRecord) *CandidateDetailResponse {
	return &CandidateDetailResponse{
		ID:            record.ID,
		Filename:      record.Filename,
		ResumePreview: truncateRunes(record.ResumeText, constants.PreviewMaxChars),
		Entities:      record.Entities,
		Skills:        record.Skills,
		Score:         record.MatchScore,
	}
}

// truncateRunes 按rune截断，避免把多字节字符切坏
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
