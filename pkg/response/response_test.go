package response

import "testing"

func TestNewPagination(t *testing.T) {
	tests := []struct {
		total     int64
		pageSize  int
		wantPages int
	}{
		{0, 10, 0},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{5, 0, 0},
	}
	for _, tt := range tests {
		p := NewPagination(tt.total, 1, tt.pageSize)
		if p.TotalPages != tt.wantPages {
			t.Errorf("total=%d pageSize=%d: 期望 %d 页，实际 %d", tt.total, tt.pageSize, tt.wantPages, p.TotalPages)
		}
	}
}
