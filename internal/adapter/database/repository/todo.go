package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"todoapi/internal/adapter/database"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

var todoColumns = []string{
	"todos.id",
	"todos.title",
	"todos.description",
	"todos.status",
	"todos.priority",
	"todos.due_date",
	"todos.created_at",
	"todos.updated_at",
	"todos.deleted_at",
}

type TodoRepository struct {
	db        *database.DB
	telemetry port.Telemetry
}

func NewTodoRepository(db *database.DB, telemetry port.Telemetry) port.TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{
		db:        db,
		telemetry: telemetry,
	}
}

func (tr *TodoRepository) FindByID(ctx context.Context, id int64) (domain.Todo, error) {
	ctx, op := tel.StartOperation(ctx, tr.telemetry, "FindByID", "todo", map[string]interface{}{
		"db.system": string(tr.db.Dialect),
		"db.table":  "todos",
		"todo.id":   id,
	})

	query, args, err := tr.db.QueryBuilder.Select(todoColumns...).
		From("todos").
		Where(sq.Eq{"todos.id": id}).
		Where("todos.deleted_at IS NULL").
		Limit(1).
		ToSql()
	if err != nil {
		return domain.Todo{}, op.End(fmt.Errorf("build todo lookup: %w", err))
	}

	op.Query(query, args)

	var todo domain.Todo
	if err := sqlx.GetContext(ctx, tr.db.Executor(ctx), &todo, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Todo{}, op.End(domain.TodoNotFound(id))
		}

		return domain.Todo{}, op.End(fmt.Errorf("find todo %d: %w", id, err))
	}

	todos := []domain.Todo{todo}
	if err := tr.attachCategories(ctx, todos); err != nil {
		return domain.Todo{}, op.End(err)
	}

	return todos[0], op.End(nil)
}

func (tr *TodoRepository) Create(ctx context.Context, todo domain.Todo) (int64, error) {
	ctx, op := tel.StartOperation(ctx, tr.telemetry, "Create", "todo", map[string]interface{}{
		"db.system":    string(tr.db.Dialect),
		"db.table":     "todos",
		"db.operation": "INSERT",
		"todo.title":   todo.Title,
	})

	query, args, err := tr.db.QueryBuilder.Insert("todos").
		Columns("title", "description", "status", "priority", "due_date", "created_at", "updated_at").
		Values(todo.Title, todo.Description, string(todo.Status), string(todo.Priority), todo.DueDate, todo.CreatedAt, todo.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, op.End(fmt.Errorf("build todo insert: %w", err))
	}

	op.Query(query, args)

	var id int64
	if err := tr.db.Executor(ctx).QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, op.End(fmt.Errorf("insert todo: %w", err))
	}

	op.SetAttributes(map[string]interface{}{"todo.id": id})

	return id, op.End(nil)
}

func (tr *TodoRepository) Update(ctx context.Context, todo domain.Todo) error {
	ctx, op := tel.StartOperation(ctx, tr.telemetry, "Update", "todo", map[string]interface{}{
		"db.system":    string(tr.db.Dialect),
		"db.table":     "todos",
		"db.operation": "UPDATE",
		"todo.id":      todo.ID,
	})

	query, args, err := tr.db.QueryBuilder.Update("todos").
		Set("title", todo.Title).
		Set("description", todo.Description).
		Set("status", string(todo.Status)).
		Set("priority", string(todo.Priority)).
		Set("due_date", todo.DueDate).
		Set("updated_at", todo.UpdatedAt).
		Where(sq.Eq{"id": todo.ID}).
		Where("deleted_at IS NULL").
		ToSql()
	if err != nil {
		return op.End(fmt.Errorf("build todo update: %w", err))
	}

	return op.End(tr.execAffectingOne(ctx, op, todo.ID, query, args))
}

func (tr *TodoRepository) UpdateStatus(ctx context.Context, id int64, status domain.TodoStatus) error {
	ctx, op := tel.StartOperation(ctx, tr.telemetry, "UpdateStatus", "todo", map[string]interface{}{
		"db.system":    string(tr.db.Dialect),
		"db.table":     "todos",
		"db.operation": "UPDATE",
		"todo.id":      id,
		"todo.status":  string(status),
	})

	query, args, err := tr.db.QueryBuilder.Update("todos").
		Set("status", string(status)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		Where("deleted_at IS NULL").
		ToSql()
	if err != nil {
		return op.End(fmt.Errorf("build todo status update: %w", err))
	}

	return op.End(tr.execAffectingOne(ctx, op, id, query, args))
}

func (tr *TodoRepository) SoftDelete(ctx context.Context, id int64) error {
	ctx, op := tel.StartOperation(ctx, tr.telemetry, "SoftDelete", "todo", map[string]interface{}{
		"db.system":    string(tr.db.Dialect),
		"db.table":     "todos",
		"db.operation": "UPDATE",
		"todo.id":      id,
	})

	now := time.Now().UTC()

	query, args, err := tr.db.QueryBuilder.Update("todos").
		Set("deleted_at", now).
		Set("updated_at", now).
		Where(sq.Eq{"id": id}).
		Where("deleted_at IS NULL").
		ToSql()
	if err != nil {
		return op.End(fmt.Errorf("build todo delete: %w", err))
	}

	return op.End(tr.execAffectingOne(ctx, op, id, query, args))
}

// SyncCategories replaces the todo's associations with categoryIDs.
func (tr *TodoRepository) SyncCategories(ctx context.Context, todoID int64, categoryIDs []int64) error {
	ctx, op := tel.StartOperation(ctx, tr.telemetry, "SyncCategories", "todo", map[string]interface{}{
		"db.system":        string(tr.db.Dialect),
		"db.table":         "todo_category",
		"todo.id":          todoID,
		"categories.count": len(categoryIDs),
	})

	exec := tr.db.Executor(ctx)

	query, args, err := tr.db.QueryBuilder.Delete("todo_category").
		Where(sq.Eq{"todo_id": todoID}).
		ToSql()
	if err != nil {
		return op.End(fmt.Errorf("build association delete: %w", err))
	}

	op.Query(query, args)

	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return op.End(fmt.Errorf("clear categories of todo %d: %w", todoID, err))
	}

	ids := uniqueIDs(categoryIDs)
	if len(ids) == 0 {
		return op.End(nil)
	}

	insert := tr.db.QueryBuilder.Insert("todo_category").Columns("todo_id", "category_id")
	for _, categoryID := range ids {
		insert = insert.Values(todoID, categoryID)
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return op.End(fmt.Errorf("build association insert: %w", err))
	}

	op.Query(query, args)

	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return op.End(fmt.Errorf("attach categories to todo %d: %w", todoID, err))
	}

	return op.End(nil)
}

func (tr *TodoRepository) execAffectingOne(ctx context.Context, op *tel.Operation, id int64, query string, args []interface{}) error {
	op.Query(query, args)

	result, err := tr.db.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("write todo %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("write todo %d: %w", id, err)
	}

	op.SetAttributes(map[string]interface{}{"db.rows_affected": rowsAffected})

	if rowsAffected == 0 {
		return domain.TodoNotFound(id)
	}

	return nil
}

type todoCategoryRow struct {
	TodoID int64 `db:"todo_id"`
	domain.Category
}

// attachCategories loads the categories of all todos with a single query.
func (tr *TodoRepository) attachCategories(ctx context.Context, todos []domain.Todo) error {
	if len(todos) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(todos))
	for i := range todos {
		todos[i].Categories = []domain.Category{}
		ids = append(ids, todos[i].ID)
	}

	query, args, err := tr.db.QueryBuilder.Select(
		"todo_category.todo_id",
		"categories.id",
		"categories.name",
		"categories.color",
		"categories.created_at",
		"categories.updated_at",
	).
		From("categories").
		Join("todo_category ON todo_category.category_id = categories.id").
		Where(sq.Eq{"todo_category.todo_id": ids}).
		OrderBy("categories.id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build category eager load: %w", err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "attachCategories", "todo", query, args)

	var rows []todoCategoryRow
	if err := sqlx.SelectContext(ctx, tr.db.Executor(ctx), &rows, query, args...); err != nil {
		return fmt.Errorf("load todo categories: %w", err)
	}

	byTodo := make(map[int64][]domain.Category, len(todos))
	for _, row := range rows {
		byTodo[row.TodoID] = append(byTodo[row.TodoID], row.Category)
	}

	for i := range todos {
		if categories, ok := byTodo[todos[i].ID]; ok {
			todos[i].Categories = categories
		}
	}

	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	unique := make([]int64, 0, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}

		seen[id] = true
		unique = append(unique, id)
	}

	return unique
}
