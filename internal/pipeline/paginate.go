package pipeline

// DefaultPageSize is the number of results shown per page.
const DefaultPageSize = 10

// PageMeta describes one page of a paginated result list.
type PageMeta struct {
	CurrentPage int  `json:"current_page"`
	PageSize    int  `json:"page_size"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// Paginate returns the items on the given 1-based page. There is always at
// least one page. A page outside [1, TotalPages] yields an empty slice.
func Paginate[T any](items []T, page, pageSize int) ([]T, PageMeta) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	meta := PageMeta{
		CurrentPage: page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasPrevious: page > 1,
		HasNext:     page >= 1 && page < totalPages,
	}

	if page < 1 || page > totalPages {
		return []T{}, meta
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	return items[start:end:end], meta
}
