package domain

type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByDueDate   SortField = "due_date"
	SortByPriority  SortField = "priority"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

func ParseSortField(value string) SortField {
	switch SortField(value) {
	case SortByCreatedAt, SortByDueDate, SortByPriority:
		return SortField(value)
	default:
		return SortByCreatedAt
	}
}

func ParseSortOrder(value string) SortOrder {
	if SortOrder(value) == OrderAsc {
		return OrderAsc
	}

	return OrderDesc
}

// TodoQuery describes one page of todos. Build it with Normalize before use
// so defaults and bounds are applied.
type TodoQuery struct {
	Status     *TodoStatus
	Priority   *TodoPriority
	Search     string
	CategoryID int64
	Sort       SortField
	Order      SortOrder
	Page       int
	Limit      int
}

func (q TodoQuery) Normalize() TodoQuery {
	q.Sort = ParseSortField(string(q.Sort))
	q.Order = ParseSortOrder(string(q.Order))

	if q.Page < 1 {
		q.Page = 1
	}

	switch {
	case q.Limit == 0:
		q.Limit = DefaultPageSize
	case q.Limit < 1:
		q.Limit = 1
	case q.Limit > MaxPageSize:
		q.Limit = MaxPageSize
	}

	return q
}

func (q TodoQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

func (q TodoQuery) WithCategory(id int64) TodoQuery {
	q.CategoryID = id
	return q
}
