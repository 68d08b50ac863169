package service

import (
	"context"
	"time"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

type TodoService struct {
	repo      port.TodoRepository
	validator port.Validator
	tx        port.Transactor
	telemetry port.Telemetry
	now       func() time.Time
}

func NewTodoService(repo port.TodoRepository, validator port.Validator, tx port.Transactor, telemetry port.Telemetry) *TodoService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoService{
		repo:      repo,
		validator: validator,
		tx:        tx,
		telemetry: telemetry,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (ts *TodoService) List(ctx context.Context, filter *request.TodoFilter) (domain.Page[domain.Todo], error) {
	ctx, op := tel.StartServiceOperation(ctx, ts.telemetry, "todo", "List", nil)

	query, err := ts.validator.ValidateTodoFilter(filter)
	if err != nil {
		return domain.Page[domain.Todo]{}, op.End(err)
	}

	page, err := ts.repo.List(ctx, query)
	return page, op.End(err)
}

// Search is List with the term taken from q. A blank term lists everything.
func (ts *TodoService) Search(ctx context.Context, filter *request.TodoFilter) (domain.Page[domain.Todo], error) {
	ctx, op := tel.StartServiceOperation(ctx, ts.telemetry, "todo", "Search", nil)

	query, err := ts.validator.ValidateTodoFilter(filter)
	if err != nil {
		return domain.Page[domain.Todo]{}, op.End(err)
	}

	op.SetAttributes(map[string]interface{}{"search.term": query.Search})

	page, err := ts.repo.List(ctx, query)
	return page, op.End(err)
}

func (ts *TodoService) Get(ctx context.Context, id int64) (domain.Todo, error) {
	ctx, op := tel.StartServiceOperation(ctx, ts.telemetry, "todo", "Get", map[string]interface{}{
		"todo.id": id,
	})

	todo, err := ts.repo.FindByID(ctx, id)
	return todo, op.End(err)
}

func (ts *TodoService) Create(ctx context.Context, req *request.TodoRequest) (domain.Todo, error) {
	ctx, op := tel.StartServiceOperation(ctx, ts.telemetry, "todo", "Create", nil)

	input, err := ts.validator.ValidateTodo(ctx, req, port.ModeCreate)
	if err != nil {
		return domain.Todo{}, op.End(err)
	}

	var id int64

	err = ts.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		todo := domain.NewTodo(ts.now())
		input.ApplyTo(&todo)

		created, err := ts.repo.Create(ctx, todo)
		if err != nil {
			return err
		}

		id = created

		if input.CategoriesSet {
			return ts.repo.SyncCategories(ctx, id, input.Categories)
		}

		return nil
	})
	if err != nil {
		return domain.Todo{}, op.End(err)
	}

	todo, err := ts.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Todo{}, op.End(err)
	}

	ts.telemetry.RecordBusinessEvent(ctx, "created", "todo", todo.ID, map[string]interface{}{
		"status":     string(todo.Status),
		"priority":   string(todo.Priority),
		"categories": len(todo.Categories),
	})

	return todo, op.End(nil)
}

// Update applies only the submitted fields. Categories are re-synced only
// when the key was present in the payload.
func (ts *TodoService) Update(ctx context.Context, id int64, req *request.TodoRequest) (domain.Todo, error) {
	ctx, op := tel.StartServiceOperation(ctx, ts.telemetry, "todo", "Update", map[string]interface{}{
		"todo.id": id,
	})

	input, err := ts.validator.ValidateTodo(ctx, req, port.ModeUpdate)
	if err != nil {
		return domain.Todo{}, op.End(err)
	}

	var changed []string

	err = ts.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		todo, err := ts.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		changed = input.ApplyTo(&todo)
		todo.UpdatedAt = ts.now()

		if err := ts.repo.Update(ctx, todo); err != nil {
			return err
		}

		if input.CategoriesSet {
			changed = append(changed, "categories")
			return ts.repo.SyncCategories(ctx, id, input.Categories)
		}

		return nil
	})
	if err != nil {
		return domain.Todo{}, op.End(err)
	}

	todo, err := ts.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Todo{}, op.End(err)
	}

	ts.telemetry.RecordBusinessEvent(ctx, "updated", "todo", id, map[string]interface{}{
		"changed": changed,
	})

	return todo, op.End(nil)
}

func (ts *TodoService) UpdateStatus(ctx context.Context, id int64, req *request.TodoStatusRequest) (domain.Todo, error) {
	ctx, op := tel.StartServiceOperation(ctx, ts.telemetry, "todo", "UpdateStatus", map[string]interface{}{
		"todo.id": id,
	})

	status, err := ts.validator.ValidateStatus(req)
	if err != nil {
		return domain.Todo{}, op.End(err)
	}

	if _, err := ts.repo.FindByID(ctx, id); err != nil {
		return domain.Todo{}, op.End(err)
	}

	if err := ts.repo.UpdateStatus(ctx, id, status); err != nil {
		return domain.Todo{}, op.End(err)
	}

	todo, err := ts.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Todo{}, op.End(err)
	}

	ts.telemetry.RecordBusinessEvent(ctx, "status_changed", "todo", id, map[string]interface{}{
		"status": string(status),
	})

	return todo, op.End(nil)
}

func (ts *TodoService) Delete(ctx context.Context, id int64) error {
	ctx, op := tel.StartServiceOperation(ctx, ts.telemetry, "todo", "Delete", map[string]interface{}{
		"todo.id": id,
	})

	if err := ts.repo.SoftDelete(ctx, id); err != nil {
		return op.End(err)
	}

	ts.telemetry.RecordBusinessEvent(ctx, "deleted", "todo", id, nil)

	return op.End(nil)
}
