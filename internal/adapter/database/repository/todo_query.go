package repository

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"todoapi/internal/core/domain"
	tel "todoapi/internal/core/telemetry"
)

// List returns one page of non-deleted todos matching q, with categories
// loaded. Totals are computed over the filtered set.
func (tr *TodoRepository) List(ctx context.Context, q domain.TodoQuery) (domain.Page[domain.Todo], error) {
	q = q.Normalize()

	ctx, op := tel.StartOperation(ctx, tr.telemetry, "List", "todo", map[string]interface{}{
		"db.system":        string(tr.db.Dialect),
		"db.table":         "todos",
		"query.sort":       string(q.Sort),
		"query.order":      string(q.Order),
		"query.search":     q.Search != "",
		"query.category":   q.CategoryID,
		"pagination.page":  q.Page,
		"pagination.limit": q.Limit,
	})

	exec := tr.db.Executor(ctx)

	countQuery, countArgs, err := applyTodoFilters(tr.db.QueryBuilder.Select("COUNT(*)").From("todos"), q).ToSql()
	if err != nil {
		return domain.Page[domain.Todo]{}, op.End(fmt.Errorf("build todo count: %w", err))
	}

	op.Query(countQuery, countArgs)

	var total int
	if err := sqlx.GetContext(ctx, exec, &total, countQuery, countArgs...); err != nil {
		return domain.Page[domain.Todo]{}, op.End(fmt.Errorf("count todos: %w", err))
	}

	query, args, err := applyTodoFilters(tr.db.QueryBuilder.Select(todoColumns...).From("todos"), q).
		OrderBy(orderClause(q)).
		Limit(uint64(q.Limit)).
		Offset(uint64(q.Offset())).
		ToSql()
	if err != nil {
		return domain.Page[domain.Todo]{}, op.End(fmt.Errorf("build todo list: %w", err))
	}

	op.Query(query, args)

	todos := []domain.Todo{}
	if err := sqlx.SelectContext(ctx, exec, &todos, query, args...); err != nil {
		return domain.Page[domain.Todo]{}, op.End(fmt.Errorf("list todos: %w", err))
	}

	if err := tr.attachCategories(ctx, todos); err != nil {
		return domain.Page[domain.Todo]{}, op.End(err)
	}

	op.SetAttributes(map[string]interface{}{
		"db.rows_returned": len(todos),
		"db.total":         total,
	})

	return domain.NewPage(todos, total, q.Page, q.Limit), op.End(nil)
}

func applyTodoFilters(builder sq.SelectBuilder, q domain.TodoQuery) sq.SelectBuilder {
	builder = builder.Where("todos.deleted_at IS NULL")

	if q.CategoryID > 0 {
		builder = builder.
			Join("todo_category ON todo_category.todo_id = todos.id").
			Where(sq.Eq{"todo_category.category_id": q.CategoryID})
	}

	if q.Status != nil {
		builder = builder.Where(sq.Eq{"todos.status": string(*q.Status)})
	}

	if q.Priority != nil {
		builder = builder.Where(sq.Eq{"todos.priority": string(*q.Priority)})
	}

	if term := strings.TrimSpace(q.Search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		builder = builder.Where(sq.Or{
			sq.Like{"LOWER(todos.title)": pattern},
			sq.Like{"LOWER(todos.description)": pattern},
		})
	}

	return builder
}

// orderClause maps the sort allow-list to SQL. Priority sorts by rank rather
// than by its text. No tie-break column is appended.
func orderClause(q domain.TodoQuery) string {
	direction := "DESC"
	if q.Order == domain.OrderAsc {
		direction = "ASC"
	}

	switch q.Sort {
	case domain.SortByPriority:
		return "CASE todos.priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 ELSE 0 END " + direction
	case domain.SortByDueDate:
		return "todos.due_date " + direction
	default:
		return "todos.created_at " + direction
	}
}
