package port

import (
	"context"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
)

type ValidationMode int

const (
	ModeCreate ValidationMode = iota
	ModeUpdate
)

// Validator turns raw requests into domain input. Failures are returned as
// *domain.ValidationError.
type Validator interface {
	ValidateTodo(ctx context.Context, req *request.TodoRequest, mode ValidationMode) (domain.TodoInput, error)
	ValidateStatus(req *request.TodoStatusRequest) (domain.TodoStatus, error)
	ValidateCategory(req *request.CategoryRequest, mode ValidationMode) (domain.CategoryInput, error)
	ValidateTodoFilter(filter *request.TodoFilter) (domain.TodoQuery, error)
}
