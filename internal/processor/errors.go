package processor

import (
	"errors"
	"fmt"
)

// 基础错误类型
var (
	ErrExtraction    = errors.New("文档文本提取失败")
	ErrNLPProcessing = errors.New("NLP模型处理失败")
	ErrNotFound      = errors.New("候选人记录不存在")
	ErrValidation    = errors.New("请求参数无效")
	ErrResourceLimit = errors.New("文档超出大小限制")
)

// ProcessError 携带文件名和操作上下文的处理错误
type ProcessError struct {
	Filename string
	Op       string
	BaseErr  error
	Detail   string
}

func (e *ProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 文件:%s): %s", e.BaseErr, e.Op, e.Filename, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 文件:%s)", e.BaseErr, e.Op, e.Filename)
}

func (e *ProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 支持 errors.Is 按基础错误类型比较
func (e *ProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数

func NewExtractionError(filename, detail string) error {
	return &ProcessError{Filename: filename, Op: "extract", BaseErr: ErrExtraction, Detail: detail}
}

func NewNLPError(filename, op, detail string) error {
	return &ProcessError{Filename: filename, Op: op, BaseErr: ErrNLPProcessing, Detail: detail}
}

func NewValidationError(detail string) error {
	return &ProcessError{Op: "validate", BaseErr: ErrValidation, Detail: detail}
}

func NewResourceLimitError(filename, detail string) error {
	return &ProcessError{Filename: filename, Op: "limit", BaseErr: ErrResourceLimit, Detail: detail}
}
