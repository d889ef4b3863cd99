package pagination

const (
	// DefaultPageSize is the storefront grid size when none is configured.
	DefaultPageSize = 8
	// MaxPageSize caps how many products a single page may hold.
	MaxPageSize = 100
)

// NormalizePageSize applies the fallback for non-positive sizes and the maximum cap.
func NormalizePageSize(size, fallback int) int {
	if fallback <= 0 {
		fallback = DefaultPageSize
	}
	if size <= 0 {
		size = fallback
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// TotalPages returns ceil(count/pageSize), never less than one.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// Bounds returns the half-open slice window for a 1-indexed page. Pages
// outside the data yield ok=false and an empty window; they are not clamped.
func Bounds(page, pageSize, count int) (start, end int, ok bool) {
	if page < 1 || pageSize <= 0 {
		return 0, 0, false
	}
	start = (page - 1) * pageSize
	if start >= count {
		return 0, 0, false
	}
	end = start + pageSize
	if end > count {
		end = count
	}
	return start, end, true
}
