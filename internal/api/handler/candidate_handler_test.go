package handler

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-ranker/internal/config"
	"resume-ranker/internal/processor"
	"resume-ranker/internal/storage"
	"resume-ranker/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// 测试用mock组件
//

type fakeExtractor struct{}

func (fakeExtractor) ExtractText(_ context.Context, filename string, reader io.Reader) (string, error) {
	if strings.HasPrefix(filename, "corrupt") {
		return "", errors.New("corrupt document")
	}
	data, err := io.ReadAll(reader)
	return string(data), err
}

type fakeRecognizer struct{}

func (fakeRecognizer) ExtractEntities(_ context.Context, text string) ([]types.EntitySpan, error) {
	return []types.EntitySpan{{Text: "Acme", Label: "ORG"}}, nil
}

type fakeSkills struct{}

func (fakeSkills) ExtractSkills(string) []string { return []string{"Go"} }

type fakeScorer struct{}

func (fakeScorer) ComputeSimilarity(context.Context, string, string) (float64, error) {
	return 0.75, nil
}

type fakeSummarizer struct {
	text string
}

func (f fakeSummarizer) Summarize(_ context.Context, _ string) types.SummaryResult {
	if f.text == "" {
		return types.SummaryUnavailable("unavailable")
	}
	return types.NewSummary(f.text)
}

func newTestHandler(t *testing.T, summarizer processor.Summarizer) *CandidateHandler {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Limits.MaxFileSizeMB = 1

	proc, err := processor.NewCandidateProcessor(&processor.Components{
		Extractor:  fakeExtractor{},
		Recognizer: fakeRecognizer{},
		Skills:     fakeSkills{},
		Scorer:     fakeScorer{},
		Summarizer: summarizer,
		Store:      storage.NewCandidateStore(),
	}, processor.Settings{MaxDocumentBytes: cfg.MaxFileSizeBytes()})
	require.NoError(t, err)

	return NewCandidateHandler(cfg, proc)
}

func TestHandleUpload(t *testing.T) {
	h := newTestHandler(t, fakeSummarizer{text: "short summary"})

	resp, err := h.HandleUpload(context.Background(),
		strings.NewReader("resume body"), 11, "resume.txt", "backend engineer")
	require.NoError(t, err)

	assert.Equal(t, uint64(1), resp.ID)
	assert.Equal(t, "resume.txt", resp.Filename)
	assert.Equal(t, "resume body", resp.ResumePreview)
	assert.Equal(t, 0.75, resp.Score)
	assert.Equal(t, []string{"Go"}, resp.Skills)
	assert.Equal(t, "short summary", resp.ResumeSummary)
	assert.Equal(t, "short summary", resp.JobSummary)
}

// TestHandleUploadPreviewTruncated 预览截断到300字符
func TestHandleUploadPreviewTruncated(t *testing.T) {
	h := newTestHandler(t, nil)

	longBody := strings.Repeat("a", 500)
	resp, err := h.HandleUpload(context.Background(),
		strings.NewReader(longBody), int64(len(longBody)), "resume.txt", "jd")
	require.NoError(t, err)
	assert.Len(t, resp.ResumePreview, 300)
}

// TestHandleUploadSummaryUnavailable 摘要失败时字段留空，请求仍成功
func TestHandleUploadSummaryUnavailable(t *testing.T) {
	h := newTestHandler(t, fakeSummarizer{})

	resp, err := h.HandleUpload(context.Background(),
		strings.NewReader("body"), 4, "resume.txt", "jd")
	require.NoError(t, err)
	assert.Empty(t, resp.ResumeSummary)
	assert.Empty(t, resp.JobSummary)
}

func TestHandleUploadValidation(t *testing.T) {
	h := newTestHandler(t, nil)

	tests := []struct {
		name     string
		filename string
		jd       string
		size     int64
		wantErr  error
	}{
		{"缺少文件名", "", "jd", 10, processor.ErrValidation},
		{"不支持的扩展名", "resume.docx", "jd", 10, processor.ErrValidation},
		{"缺少岗位描述", "resume.txt", "", 10, processor.ErrValidation},
		{"文件过大", "resume.txt", "jd", 10 << 20, processor.ErrResourceLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.HandleUpload(context.Background(),
				strings.NewReader("body"), tt.size, tt.filename, tt.jd)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHandleFolder(t *testing.T) {
	h := newTestHandler(t, nil)

	tmpDir, err := os.MkdirTemp("", "resumes")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	// 2份合法、1份损坏、1份扩展名不在白名单
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "a.txt"), []byte("resume a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "b.txt"), []byte("resume b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "corrupt.txt"), []byte("junk"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "ignored.docx"), []byte("nope"), 0644))

	resp, err := h.HandleFolder(context.Background(), tmpDir, "jd")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Ingested)

	summaries := h.HandleList()
	assert.Len(t, summaries, 2)
}

func TestHandleFolderInvalidPath(t *testing.T) {
	h := newTestHandler(t, nil)

	_, err := h.HandleFolder(context.Background(), "/definitely/not/a/dir", "jd")
	require.Error(t, err)
	assert.ErrorIs(t, err, processor.ErrValidation)
}

func TestHandleFolderEmptyJobDescription(t *testing.T) {
	h := newTestHandler(t, nil)

	tmpDir, err := os.MkdirTemp("", "resumes")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	_, err = h.HandleFolder(context.Background(), tmpDir, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, processor.ErrValidation)
}

func TestHandleDetail(t *testing.T) {
	h := newTestHandler(t, nil)

	uploaded, err := h.HandleUpload(context.Background(),
		strings.NewReader("body"), 4, "resume.txt", "jd")
	require.NoError(t, err)

	detail, err := h.HandleDetail(uploaded.ID)
	require.NoError(t, err)
	assert.Equal(t, uploaded.ID, detail.ID)
	assert.Equal(t, "resume.txt", detail.Filename)
	// 详情页不重新生成摘要
	assert.Empty(t, detail.ResumeSummary)
}

func TestHandleDetailNotFound(t *testing.T) {
	h := newTestHandler(t, nil)

	_, err := h.HandleDetail(12345)
	require.Error(t, err)
	assert.ErrorIs(t, err, processor.ErrNotFound)
}
