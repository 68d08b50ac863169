package service

import (
	"context"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

type StatsService struct {
	repo      port.StatsRepository
	telemetry port.Telemetry
}

func NewStatsService(repo port.StatsRepository, telemetry port.Telemetry) *StatsService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &StatsService{repo: repo, telemetry: telemetry}
}

func (ss *StatsService) TodosByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	ctx, op := tel.StartServiceOperation(ctx, ss.telemetry, "stats", "TodosByStatus", nil)

	counts, err := ss.repo.CountByStatus(ctx)
	return counts, op.End(err)
}

func (ss *StatsService) TodosByPriority(ctx context.Context) ([]domain.PriorityCount, error) {
	ctx, op := tel.StartServiceOperation(ctx, ss.telemetry, "stats", "TodosByPriority", nil)

	counts, err := ss.repo.CountByPriority(ctx)
	return counts, op.End(err)
}
