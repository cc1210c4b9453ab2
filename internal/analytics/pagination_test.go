package analytics

import "testing"

func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		page       int
		pageSize   int
		totalPages int
		hasPrev    bool
		hasNext    bool
	}{
		{"middle page of 25", 25, 2, 10, 3, true, true},
		{"first page", 25, 1, 10, 3, false, true},
		{"last page", 25, 3, 10, 3, true, false},
		{"exact fit", 20, 2, 10, 2, true, false},
		{"empty result", 0, 1, 10, 0, false, false},
		{"single page", 5, 1, 10, 1, false, false},
		{"page beyond end", 10, 5, 10, 1, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := NewPageInfo(tt.total, tt.page, tt.pageSize)
			if info.TotalPages != tt.totalPages {
				t.Errorf("TotalPages = %d, want %d", info.TotalPages, tt.totalPages)
			}
			if info.HasPreviousPage != tt.hasPrev {
				t.Errorf("HasPreviousPage = %v, want %v", info.HasPreviousPage, tt.hasPrev)
			}
			if info.HasNextPage != tt.hasNext {
				t.Errorf("HasNextPage = %v, want %v", info.HasNextPage, tt.hasNext)
			}
			if info.TotalCount != tt.total {
				t.Errorf("TotalCount = %d, want %d", info.TotalCount, tt.total)
			}
		})
	}
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name         string
		page, size   int
		wantPage     int
		wantPageSize int
	}{
		{"defaults applied", 0, 0, 1, DefaultPageSize},
		{"negative page", -3, 10, 1, 10},
		{"oversized page size", 1, 500, 1, MaxPageSize},
		{"valid passthrough", 4, 25, 4, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size := NormalizePage(tt.page, tt.size)
			if page != tt.wantPage || size != tt.wantPageSize {
				t.Errorf("NormalizePage(%d, %d) = (%d, %d), want (%d, %d)",
					tt.page, tt.size, page, size, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}
