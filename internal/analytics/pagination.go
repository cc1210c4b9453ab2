package analytics

// Pagination defaults and bounds for list queries
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageInfo carries the pagination envelope the dashboard expects
type PageInfo struct {
	TotalCount      int64 `json:"totalCount"`
	PageNumber      int   `json:"pageNumber"`
	PageSize        int   `json:"pageSize"`
	TotalPages      int   `json:"totalPages"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	HasNextPage     bool  `json:"hasNextPage"`
}

// NormalizePage clamps page/pageSize to sane bounds
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// NewPageInfo computes the envelope for a page over totalCount rows
func NewPageInfo(totalCount int64, page, pageSize int) PageInfo {
	totalPages := int(totalCount / int64(pageSize))
	if totalCount%int64(pageSize) != 0 {
		totalPages++
	}
	return PageInfo{
		TotalCount:      totalCount,
		PageNumber:      page,
		PageSize:        pageSize,
		TotalPages:      totalPages,
		HasPreviousPage: page > 1,
		HasNextPage:     page < totalPages,
	}
}
