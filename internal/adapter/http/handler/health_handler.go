package handler

import (
	"context"
	"net/http"
	"time"

	. "todoapi/internal/adapter/http/helper"
	"todoapi/internal/core/model/response"
	"todoapi/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *sql.DB and *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	baseHandler
	db Pinger
}

func NewHealthHandler(db Pinger, log *logger.LokiLogger) *HealthHandler {
	return &HealthHandler{
		baseHandler: baseHandler{Logger: log},
		db:          db,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, span := h.startSpan(c, "health.Check")
	defer span.End()

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(pingCtx); err != nil {
		h.fail(c, ctx, span, "health.Check", err)
		return
	}

	SendSuccess(c, http.StatusOK, response.HealthResponse{Status: "ok"})
}
