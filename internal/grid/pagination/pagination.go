// Package pagination windows a processed row sequence into pages.
package pagination

// State is the caller-visible page position. Page is 1-based.
type State struct {
	Page     int `json:"page" yaml:"page"`
	PageSize int `json:"page_size" yaml:"page_size"`
}

// Paginate returns rows[(page-1)*size : page*size], clipped to the slice.
// Out-of-range pages and non-positive sizes yield an empty slice. The result
// shares the input's backing array but cannot append into it.
func Paginate[T any](rows []T, page, size int) []T {
	if page < 1 || size <= 0 {
		return rows[:0:0]
	}
	start := (page - 1) * size
	if start >= len(rows) || start < 0 {
		return rows[:0:0]
	}
	end := min(start+size, len(rows))
	return rows[start:end:end]
}

// PageCount is ceil(total/size), and at least 1 so that an empty result
// still has a current page.
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// ClampPage keeps page within [1, PageCount(total, size)].
func ClampPage(page, total, size int) int {
	return max(1, min(page, PageCount(total, size)))
}

// Bounds returns the 1-based first and last row numbers shown on page, or
// zeros when the page is empty.
func Bounds(page, size, total int) (first, last int) {
	if page < 1 || size <= 0 {
		return 0, 0
	}
	start := (page - 1) * size
	if start >= total {
		return 0, 0
	}
	return start + 1, min(start+size, total)
}
