package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"todoapi/internal/adapter/database"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

var categoryColumns = []string{"id", "name", "color", "created_at", "updated_at"}

type CategoryRepository struct {
	db        *database.DB
	telemetry port.Telemetry
}

func NewCategoryRepository(db *database.DB, telemetry port.Telemetry) port.CategoryRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &CategoryRepository{
		db:        db,
		telemetry: telemetry,
	}
}

func (cr *CategoryRepository) All(ctx context.Context) ([]domain.Category, error) {
	ctx, op := tel.StartOperation(ctx, cr.telemetry, "All", "category", map[string]interface{}{
		"db.system": string(cr.db.Dialect),
		"db.table":  "categories",
	})

	query, args, err := cr.db.QueryBuilder.Select(categoryColumns...).
		From("categories").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, op.End(fmt.Errorf("build category list: %w", err))
	}

	op.Query(query, args)

	categories := []domain.Category{}
	if err := sqlx.SelectContext(ctx, cr.db.Executor(ctx), &categories, query, args...); err != nil {
		return nil, op.End(fmt.Errorf("list categories: %w", err))
	}

	return categories, op.End(nil)
}

func (cr *CategoryRepository) FindByID(ctx context.Context, id int64) (domain.Category, error) {
	ctx, op := tel.StartOperation(ctx, cr.telemetry, "FindByID", "category", map[string]interface{}{
		"db.system":   string(cr.db.Dialect),
		"db.table":    "categories",
		"category.id": id,
	})

	query, args, err := cr.db.QueryBuilder.Select(categoryColumns...).
		From("categories").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.Category{}, op.End(fmt.Errorf("build category lookup: %w", err))
	}

	op.Query(query, args)

	var category domain.Category
	if err := sqlx.GetContext(ctx, cr.db.Executor(ctx), &category, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Category{}, op.End(domain.CategoryNotFound(id))
		}

		return domain.Category{}, op.End(fmt.Errorf("find category %d: %w", id, err))
	}

	return category, op.End(nil)
}

func (cr *CategoryRepository) Create(ctx context.Context, category domain.Category) (int64, error) {
	ctx, op := tel.StartOperation(ctx, cr.telemetry, "Create", "category", map[string]interface{}{
		"db.system":    string(cr.db.Dialect),
		"db.table":     "categories",
		"db.operation": "INSERT",
	})

	query, args, err := cr.db.QueryBuilder.Insert("categories").
		Columns("name", "color", "created_at", "updated_at").
		Values(category.Name, category.Color, category.CreatedAt, category.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, op.End(fmt.Errorf("build category insert: %w", err))
	}

	op.Query(query, args)

	var id int64
	if err := cr.db.Executor(ctx).QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, op.End(fmt.Errorf("insert category: %w", err))
	}

	return id, op.End(nil)
}

func (cr *CategoryRepository) Update(ctx context.Context, category domain.Category) error {
	ctx, op := tel.StartOperation(ctx, cr.telemetry, "Update", "category", map[string]interface{}{
		"db.system":    string(cr.db.Dialect),
		"db.table":     "categories",
		"db.operation": "UPDATE",
		"category.id":  category.ID,
	})

	query, args, err := cr.db.QueryBuilder.Update("categories").
		Set("name", category.Name).
		Set("color", category.Color).
		Set("updated_at", category.UpdatedAt).
		Where(sq.Eq{"id": category.ID}).
		ToSql()
	if err != nil {
		return op.End(fmt.Errorf("build category update: %w", err))
	}

	return op.End(cr.execAffectingOne(ctx, op, category.ID, query, args))
}

// Delete removes the category and its association rows. Todos are kept.
func (cr *CategoryRepository) Delete(ctx context.Context, id int64) error {
	ctx, op := tel.StartOperation(ctx, cr.telemetry, "Delete", "category", map[string]interface{}{
		"db.system":    string(cr.db.Dialect),
		"db.table":     "categories",
		"db.operation": "DELETE",
		"category.id":  id,
	})

	query, args, err := cr.db.QueryBuilder.Delete("todo_category").
		Where(sq.Eq{"category_id": id}).
		ToSql()
	if err != nil {
		return op.End(fmt.Errorf("build association delete: %w", err))
	}

	op.Query(query, args)

	if _, err := cr.db.Executor(ctx).ExecContext(ctx, query, args...); err != nil {
		return op.End(fmt.Errorf("detach category %d: %w", id, err))
	}

	query, args, err = cr.db.QueryBuilder.Delete("categories").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return op.End(fmt.Errorf("build category delete: %w", err))
	}

	return op.End(cr.execAffectingOne(ctx, op, id, query, args))
}

func (cr *CategoryRepository) ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	existing := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	ctx, op := tel.StartOperation(ctx, cr.telemetry, "ExistingIDs", "category", map[string]interface{}{
		"db.system":      string(cr.db.Dialect),
		"db.table":       "categories",
		"category.count": len(ids),
	})

	query, args, err := cr.db.QueryBuilder.Select("id").
		From("categories").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, op.End(fmt.Errorf("build category existence check: %w", err))
	}

	op.Query(query, args)

	var found []int64
	if err := sqlx.SelectContext(ctx, cr.db.Executor(ctx), &found, query, args...); err != nil {
		return nil, op.End(fmt.Errorf("check categories: %w", err))
	}

	for _, id := range found {
		existing[id] = true
	}

	return existing, op.End(nil)
}

func (cr *CategoryRepository) execAffectingOne(ctx context.Context, op *tel.Operation, id int64, query string, args []interface{}) error {
	op.Query(query, args)

	result, err := cr.db.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("write category %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("write category %d: %w", id, err)
	}

	if rowsAffected == 0 {
		return domain.CategoryNotFound(id)
	}

	return nil
}
