package service

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps page and size and returns the matching limit/offset.
func normalizePage(page, pageSize int) (int, int, int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize, pageSize, (page - 1) * pageSize
}
