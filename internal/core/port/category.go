package port

import (
	"context"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
)

type CategoryRepository interface {
	All(ctx context.Context) ([]domain.Category, error)
	FindByID(ctx context.Context, id int64) (domain.Category, error)
	Create(ctx context.Context, category domain.Category) (int64, error)
	Update(ctx context.Context, category domain.Category) error
	Delete(ctx context.Context, id int64) error
	// ExistingIDs returns the subset of ids that reference a stored category.
	ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
}

type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, id int64) (domain.Category, error)
	Create(ctx context.Context, req *request.CategoryRequest) (domain.Category, error)
	Update(ctx context.Context, id int64, req *request.CategoryRequest) (domain.Category, error)
	Delete(ctx context.Context, id int64) error
	Todos(ctx context.Context, id int64, filter *request.TodoFilter) (domain.Page[domain.Todo], error)
}
