package dto

// Paginated wraps one page of a list endpoint.
type Paginated[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageQuery is bound from ?page=&page_size=.
type PageQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search" binding:"omitempty,max=150"`
}

const DefaultPageSize = 20

// Normalize fills in the defaults for missing paging parameters.
func (q *PageQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
}

func NewPaginated[T any](data []T, total int64, page, pageSize int) *Paginated[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	return &Paginated[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// MapSlice converts each element with fn.
func MapSlice[M any, T any](in []M, fn func(*M) T) []T {
	out := make([]T, 0, len(in))
	for i := range in {
		out = append(out, fn(&in[i]))
	}
	return out
}
