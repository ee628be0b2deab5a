package repository

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// normalizePage applies pagination defaults and returns the offset
func normalizePage(page, limit int) (int, int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, (page - 1) * limit
}
