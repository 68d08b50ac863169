package service

import (
	"context"
	"time"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

type CategoryService struct {
	repo      port.CategoryRepository
	todos     port.TodoRepository
	validator port.Validator
	tx        port.Transactor
	telemetry port.Telemetry
	now       func() time.Time
}

func NewCategoryService(repo port.CategoryRepository, todos port.TodoRepository, validator port.Validator, tx port.Transactor, telemetry port.Telemetry) *CategoryService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &CategoryService{
		repo:      repo,
		todos:     todos,
		validator: validator,
		tx:        tx,
		telemetry: telemetry,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (cs *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	ctx, op := tel.StartServiceOperation(ctx, cs.telemetry, "category", "List", nil)

	categories, err := cs.repo.All(ctx)
	return categories, op.End(err)
}

func (cs *CategoryService) Get(ctx context.Context, id int64) (domain.Category, error) {
	ctx, op := tel.StartServiceOperation(ctx, cs.telemetry, "category", "Get", map[string]interface{}{
		"category.id": id,
	})

	category, err := cs.repo.FindByID(ctx, id)
	return category, op.End(err)
}

func (cs *CategoryService) Create(ctx context.Context, req *request.CategoryRequest) (domain.Category, error) {
	ctx, op := tel.StartServiceOperation(ctx, cs.telemetry, "category", "Create", nil)

	input, err := cs.validator.ValidateCategory(req, port.ModeCreate)
	if err != nil {
		return domain.Category{}, op.End(err)
	}

	now := cs.now()
	category := domain.Category{
		Color:     domain.DefaultCategoryColor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	input.ApplyTo(&category)

	id, err := cs.repo.Create(ctx, category)
	if err != nil {
		return domain.Category{}, op.End(err)
	}

	category, err = cs.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Category{}, op.End(err)
	}

	cs.telemetry.RecordBusinessEvent(ctx, "created", "category", id, map[string]interface{}{
		"color": category.Color,
	})

	return category, op.End(nil)
}

func (cs *CategoryService) Update(ctx context.Context, id int64, req *request.CategoryRequest) (domain.Category, error) {
	ctx, op := tel.StartServiceOperation(ctx, cs.telemetry, "category", "Update", map[string]interface{}{
		"category.id": id,
	})

	input, err := cs.validator.ValidateCategory(req, port.ModeUpdate)
	if err != nil {
		return domain.Category{}, op.End(err)
	}

	var changed []string

	err = cs.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		category, err := cs.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		changed = input.ApplyTo(&category)
		category.UpdatedAt = cs.now()

		return cs.repo.Update(ctx, category)
	})
	if err != nil {
		return domain.Category{}, op.End(err)
	}

	category, err := cs.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Category{}, op.End(err)
	}

	cs.telemetry.RecordBusinessEvent(ctx, "updated", "category", id, map[string]interface{}{
		"changed": changed,
	})

	return category, op.End(nil)
}

// Delete removes the category and its associations. Linked todos are kept.
func (cs *CategoryService) Delete(ctx context.Context, id int64) error {
	ctx, op := tel.StartServiceOperation(ctx, cs.telemetry, "category", "Delete", map[string]interface{}{
		"category.id": id,
	})

	err := cs.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return cs.repo.Delete(ctx, id)
	})
	if err != nil {
		return op.End(err)
	}

	cs.telemetry.RecordBusinessEvent(ctx, "deleted", "category", id, nil)

	return op.End(nil)
}

// Todos lists the non-deleted todos linked to the category, with the same
// filters and paging as the todo list.
func (cs *CategoryService) Todos(ctx context.Context, id int64, filter *request.TodoFilter) (domain.Page[domain.Todo], error) {
	ctx, op := tel.StartServiceOperation(ctx, cs.telemetry, "category", "Todos", map[string]interface{}{
		"category.id": id,
	})

	if _, err := cs.repo.FindByID(ctx, id); err != nil {
		return domain.Page[domain.Todo]{}, op.End(err)
	}

	query, err := cs.validator.ValidateTodoFilter(filter)
	if err != nil {
		return domain.Page[domain.Todo]{}, op.End(err)
	}

	page, err := cs.todos.List(ctx, query.WithCategory(id))
	return page, op.End(err)
}
