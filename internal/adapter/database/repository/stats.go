package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"todoapi/internal/adapter/database"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

type StatsRepository struct {
	db        *database.DB
	telemetry port.Telemetry
}

func NewStatsRepository(db *database.DB, telemetry port.Telemetry) port.StatsRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &StatsRepository{
		db:        db,
		telemetry: telemetry,
	}
}

func (sr *StatsRepository) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	counts := []domain.StatusCount{}
	if err := sr.countBy(ctx, "CountByStatus", "status", &counts); err != nil {
		return nil, err
	}

	return counts, nil
}

func (sr *StatsRepository) CountByPriority(ctx context.Context) ([]domain.PriorityCount, error) {
	counts := []domain.PriorityCount{}
	if err := sr.countBy(ctx, "CountByPriority", "priority", &counts); err != nil {
		return nil, err
	}

	return counts, nil
}

// countBy groups non-deleted todos by column. Groups with no rows are absent.
func (sr *StatsRepository) countBy(ctx context.Context, operation string, column string, dest interface{}) error {
	ctx, op := tel.StartOperation(ctx, sr.telemetry, operation, "todo", map[string]interface{}{
		"db.system": string(sr.db.Dialect),
		"db.table":  "todos",
		"group.by":  column,
	})

	query, args, err := sr.db.QueryBuilder.Select(column, "COUNT(*) AS count").
		From("todos").
		Where("deleted_at IS NULL").
		GroupBy(column).
		OrderBy(column + " ASC").
		ToSql()
	if err != nil {
		return op.End(fmt.Errorf("build %s stats: %w", column, err))
	}

	op.Query(query, args)

	if err := sqlx.SelectContext(ctx, sr.db.Executor(ctx), dest, query, args...); err != nil {
		return op.End(fmt.Errorf("count todos by %s: %w", column, err))
	}

	return op.End(nil)
}
