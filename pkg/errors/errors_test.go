package errors

import (
	"errors"
	"testing"
)

func TestRowError_Is(t *testing.T) {
	v := NewValidationError(3, "SN", "Row 3: missing required field SN")
	if !errors.Is(v, ErrValidation) || errors.Is(v, ErrDuplicateKey) {
		t.Errorf("校验错误分类不符: %v", v)
	}
	if v.Error() != "row 3 (SN): Row 3: missing required field SN" {
		t.Errorf("错误文案不符: %s", v.Error())
	}

	d := NewDuplicateError(4, "SN", "X-1", "exists")
	if !errors.Is(d, ErrDuplicateKey) {
		t.Errorf("重复错误分类不符: %v", d)
	}

	var re *RowError
	if !errors.As(error(d), &re) || re.SN != "X-1" {
		t.Error("应可通过 errors.As 取回 RowError")
	}
}
