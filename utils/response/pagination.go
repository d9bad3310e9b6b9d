package response

// PaginationMeta contains pagination metadata
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
}

// HasPrev reports whether a previous page exists
func (p PaginationMeta) HasPrev() bool {
	return p.CurrentPage > 1
}

// HasNext reports whether a next page exists
func (p PaginationMeta) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// PrevPage returns the previous page number
func (p PaginationMeta) PrevPage() int {
	return p.CurrentPage - 1
}

// NextPage returns the next page number
func (p PaginationMeta) NextPage() int {
	return p.CurrentPage + 1
}

// Pages returns a window of at most five page numbers around the current page
func (p PaginationMeta) Pages() []int {
	start := p.CurrentPage - 2
	if start < 1 {
		start = 1
	}
	end := start + 4
	if end > p.TotalPages {
		end = p.TotalPages
		start = end - 4
		if start < 1 {
			start = 1
		}
	}

	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// Offset returns the number of rows to skip for the current page
func (p PaginationMeta) Offset() int {
	return (p.CurrentPage - 1) * p.PerPage
}

// CalculatePagination calculates pagination metadata
func CalculatePagination(page, limit int, total int64) PaginationMeta {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return PaginationMeta{
		CurrentPage: page,
		PerPage:     limit,
		Total:       total,
		TotalPages:  totalPages,
	}
}
