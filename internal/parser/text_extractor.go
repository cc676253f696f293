package parser

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// PDFExtractor 按页提取PDF文本的能力
type PDFExtractor interface {
	ExtractText(ctx context.Context, reader io.Reader, uri string) (string, error)
}

// TextExtractor 按文件名后缀分发的文档文本提取器
// .pdf 走PDF解析路径，其余一律按UTF-8文本处理（非法字节序列以
// 替换符兜底，后缀误判不会导致流水线崩溃）
type TextExtractor struct {
	pdfExtractor PDFExtractor
}

// NewTextExtractor 创建文本提取器
func NewTextExtractor(pdfExtractor PDFExtractor) *TextExtractor {
	return &TextExtractor{pdfExtractor: pdfExtractor}
}

// ExtractText 从文档内容中提取unicode文本
// 底层字节流完全不可读（如损坏的PDF结构）时返回错误，由调用方决定传播策略
func (t *TextExtractor) ExtractText(ctx context.Context, filename string, reader io.Reader) (string, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		if t.pdfExtractor == nil {
			return "", fmt.Errorf("PDF提取器未初始化")
		}
		return t.pdfExtractor.ExtractText(ctx, reader, filename)
	}
	return t.extractPlainText(reader)
}

// extractPlainText 纯文本路径：读取全部字节后做容错UTF-8解码
func (t *TextExtractor) extractPlainText(reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("读取文件内容失败: %w", err)
	}
	// 非法序列替换为U+FFFD，解码永不失败
	return strings.ToValidUTF8(string(data), "�"), nil
}
