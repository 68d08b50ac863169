package port

import (
	"context"

	"todoapi/internal/core/domain"
)

type StatsRepository interface {
	CountByStatus(ctx context.Context) ([]domain.StatusCount, error)
	CountByPriority(ctx context.Context) ([]domain.PriorityCount, error)
}

type StatsService interface {
	TodosByStatus(ctx context.Context) ([]domain.StatusCount, error)
	TodosByPriority(ctx context.Context) ([]domain.PriorityCount, error)
}
