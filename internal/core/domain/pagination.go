package domain

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page - параметры постраничной выборки.
type Page struct {
	Limit  int
	Offset int
}

// NewPage нормализует page/perPage из запроса в limit/offset.
func NewPage(page, perPage int) Page {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > MaxPageSize {
		perPage = DefaultPageSize
	}
	return Page{Limit: perPage, Offset: (page - 1) * perPage}
}

func (p Page) Number() int {
	if p.Limit <= 0 {
		return 1
	}
	return p.Offset/p.Limit + 1
}

// Paginated - результат постраничной выборки.
type Paginated[T any] struct {
	Items      []T
	TotalCount int64
	Page       int
	PerPage    int
}

// TotalPages считает количество страниц для ответа клиенту.
func (p Paginated[T]) TotalPages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return int((p.TotalCount + int64(p.PerPage) - 1) / int64(p.PerPage))
}
