package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey 唯一约束冲突（records.name / equipment.sn）
	ErrDuplicateKey = errors.New("数据违反唯一约束")
	// ErrValidation 导入行字段校验失败
	ErrValidation = errors.New("行数据校验失败")
)

// RowError 导入批次中单行的问题，Row 为数据行序号（从 1 开始，不含表头）
// Kind 为 ErrValidation 或 ErrDuplicateKey，可用 errors.Is 判断
type RowError struct {
	Row   int
	Field string
	SN    string
	Kind  error
	Msg   string
}

// NewValidationError 创建校验类行错误
func NewValidationError(row int, field, msg string) *RowError {
	return &RowError{Row: row, Field: field, Kind: ErrValidation, Msg: msg}
}

// NewDuplicateError 创建序列号重复类行错误
func NewDuplicateError(row int, field, sn, msg string) *RowError {
	return &RowError{Row: row, Field: field, SN: sn, Kind: ErrDuplicateKey, Msg: msg}
}

func (e *RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Msg)
	}
	return fmt.Sprintf("row %d (%s): %s", e.Row, e.Field, e.Msg)
}

func (e *RowError) Unwrap() error { return e.Kind }
