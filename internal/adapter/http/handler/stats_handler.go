package handler

import (
	"net/http"

	. "todoapi/internal/adapter/http/helper"
	"todoapi/internal/core/port"
	"todoapi/pkg/logger"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	baseHandler
	svc port.StatsService
}

func NewStatsHandler(svc port.StatsService, log *logger.LokiLogger) *StatsHandler {
	return &StatsHandler{
		baseHandler: baseHandler{Logger: log},
		svc:         svc,
	}
}

func (h *StatsHandler) Todos(c *gin.Context) {
	ctx, span := h.startSpan(c, "stats.Todos")
	defer span.End()

	counts, err := h.svc.TodosByStatus(ctx)
	if err != nil {
		h.fail(c, ctx, span, "stats.Todos", err)
		return
	}

	SendSuccess(c, http.StatusOK, counts)
}

func (h *StatsHandler) Priorities(c *gin.Context) {
	ctx, span := h.startSpan(c, "stats.Priorities")
	defer span.End()

	counts, err := h.svc.TodosByPriority(ctx)
	if err != nil {
		h.fail(c, ctx, span, "stats.Priorities", err)
		return
	}

	SendSuccess(c, http.StatusOK, counts)
}
