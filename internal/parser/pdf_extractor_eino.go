package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"resume-ranker/internal/logger"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/rs/zerolog"
)

// EinoPDFTextExtractor 使用 Eino PDF Parser 提取简历文本
type EinoPDFTextExtractor struct {
	parser  *pdf.PDFParser
	logger  zerolog.Logger
	timeout time.Duration
}

// EinoPDFOption PDF提取器的配置选项
type EinoPDFOption func(*EinoPDFTextExtractor)

// WithEinoLogger 配置自定义日志记录器
func WithEinoLogger(l zerolog.Logger) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.logger = l
	}
}

// WithEinoTimeout 配置单次解析的超时时间
func WithEinoTimeout(d time.Duration) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.timeout = d
	}
}

// NewEinoPDFTextExtractor 初始化 Eino PDF 文本提取器
// 配置为按页解析，各页文本以换行符拼接，保持页序
func NewEinoPDFTextExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: true, // 每页一个文档，便于按页序拼接
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}

	extractor := &EinoPDFTextExtractor{
		parser:  p,
		logger:  logger.Logger.With().Str("component", "pdf_extractor").Logger(),
		timeout: 30 * time.Second,
	}

	for _, option := range options {
		option(extractor)
	}

	return extractor, nil
}

// ExtractText 从 io.Reader 中提取PDF全文
// 各页内容按页序以"\n"拼接；无法提取文本的页贡献空段而非报错
func (e *EinoPDFTextExtractor) ExtractText(ctx context.Context, reader io.Reader, uri string) (string, error) {
	startTime := time.Now()
	e.logger.Debug().Str("uri", uri).Msg("开始从Reader提取PDF文本")

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	docs, err := e.parser.Parse(ctx, reader,
		einoParser.WithURI(uri),
	)

	duration := time.Since(startTime)
	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("uri", uri).
			Dur("duration", duration).
			Msg("PDF解析失败")
		return "", fmt.Errorf("eino PDF parser failed for URI %s: %w", uri, err)
	}

	// 按页序拼接；扫描页等无文本的页保留为空段
	pages := make([]string, 0, len(docs))
	for _, doc := range docs {
		pages = append(pages, doc.Content)
	}
	fullText := strings.Join(pages, "\n")

	e.logger.Debug().
		Str("uri", uri).
		Int("pages", len(docs)).
		Int("chars", len(fullText)).
		Dur("duration", duration).
		Msg("PDF提取完成")

	return fullText, nil
}

// ExtractTextFromBytes 从字节数组提取PDF全文
func (e *EinoPDFTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, error) {
	return e.ExtractText(ctx, bytes.NewReader(data), uri)
}
