package port

import (
	"context"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
)

type TodoRepository interface {
	List(ctx context.Context, query domain.TodoQuery) (domain.Page[domain.Todo], error)
	FindByID(ctx context.Context, id int64) (domain.Todo, error)
	Create(ctx context.Context, todo domain.Todo) (int64, error)
	Update(ctx context.Context, todo domain.Todo) error
	UpdateStatus(ctx context.Context, id int64, status domain.TodoStatus) error
	SoftDelete(ctx context.Context, id int64) error
	SyncCategories(ctx context.Context, todoID int64, categoryIDs []int64) error
}

type TodoService interface {
	List(ctx context.Context, filter *request.TodoFilter) (domain.Page[domain.Todo], error)
	Search(ctx context.Context, filter *request.TodoFilter) (domain.Page[domain.Todo], error)
	Get(ctx context.Context, id int64) (domain.Todo, error)
	Create(ctx context.Context, req *request.TodoRequest) (domain.Todo, error)
	Update(ctx context.Context, id int64, req *request.TodoRequest) (domain.Todo, error)
	UpdateStatus(ctx context.Context, id int64, req *request.TodoStatusRequest) (domain.Todo, error)
	Delete(ctx context.Context, id int64) error
}
