package handler

import (
	"net/http"

	. "todoapi/internal/adapter/http/helper"
	"todoapi/internal/core/model/request"
	"todoapi/internal/core/port"
	"todoapi/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type TodoHandler struct {
	baseHandler
	svc port.TodoService
}

func NewTodoHandler(svc port.TodoService, log *logger.LokiLogger) *TodoHandler {
	return &TodoHandler{
		baseHandler: baseHandler{Logger: log},
		svc:         svc,
	}
}

func (t *TodoHandler) List(c *gin.Context) {
	ctx, span := t.startSpan(c, "todo.List")
	defer span.End()

	var filter request.TodoFilter
	if err := BindQuery(c, &filter); err != nil {
		t.fail(c, ctx, span, "todo.List", err)
		return
	}

	page, err := t.svc.List(ctx, &filter)
	if err != nil {
		t.fail(c, ctx, span, "todo.List", err)
		return
	}

	span.SetAttributes(
		attribute.Int("todo.total", page.Total),
		attribute.Int("http.status_code", http.StatusOK),
	)

	SendSuccess(c, http.StatusOK, page)
}

func (t *TodoHandler) Search(c *gin.Context) {
	ctx, span := t.startSpan(c, "todo.Search")
	defer span.End()

	var filter request.TodoFilter
	if err := BindQuery(c, &filter); err != nil {
		t.fail(c, ctx, span, "todo.Search", err)
		return
	}

	page, err := t.svc.Search(ctx, &filter)
	if err != nil {
		t.fail(c, ctx, span, "todo.Search", err)
		return
	}

	SendSuccess(c, http.StatusOK, page)
}

func (t *TodoHandler) Show(c *gin.Context) {
	ctx, span := t.startSpan(c, "todo.Show")
	defer span.End()

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	todo, err := t.svc.Get(ctx, id)
	if err != nil {
		t.fail(c, ctx, span, "todo.Show", err)
		return
	}

	SendSuccess(c, http.StatusOK, todo)
}

func (t *TodoHandler) Create(c *gin.Context) {
	ctx, span := t.startSpan(c, "todo.Create")
	defer span.End()

	var req request.TodoRequest
	if err := BindJSON(c, &req); err != nil {
		t.fail(c, ctx, span, "todo.Create", err)
		return
	}

	todo, err := t.svc.Create(ctx, &req)
	if err != nil {
		t.fail(c, ctx, span, "todo.Create", err)
		return
	}

	span.SetAttributes(attribute.Int64("todo.id", todo.ID))

	SendSuccess(c, http.StatusCreated, todo, "Todo created successfully")
}

func (t *TodoHandler) Update(c *gin.Context) {
	ctx, span := t.startSpan(c, "todo.Update")
	defer span.End()

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req request.TodoRequest
	if err := BindJSON(c, &req); err != nil {
		t.fail(c, ctx, span, "todo.Update", err)
		return
	}

	todo, err := t.svc.Update(ctx, id, &req)
	if err != nil {
		t.fail(c, ctx, span, "todo.Update", err)
		return
	}

	SendSuccess(c, http.StatusOK, todo, "Todo updated successfully")
}

func (t *TodoHandler) UpdateStatus(c *gin.Context) {
	ctx, span := t.startSpan(c, "todo.UpdateStatus")
	defer span.End()

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req request.TodoStatusRequest
	if err := BindJSON(c, &req); err != nil {
		t.fail(c, ctx, span, "todo.UpdateStatus", err)
		return
	}

	todo, err := t.svc.UpdateStatus(ctx, id, &req)
	if err != nil {
		t.fail(c, ctx, span, "todo.UpdateStatus", err)
		return
	}

	SendSuccess(c, http.StatusOK, todo, "Todo status updated successfully")
}

func (t *TodoHandler) Delete(c *gin.Context) {
	ctx, span := t.startSpan(c, "todo.Delete")
	defer span.End()

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := t.svc.Delete(ctx, id); err != nil {
		t.fail(c, ctx, span, "todo.Delete", err)
		return
	}

	SendSuccess(c, http.StatusNoContent, nil, "Todo deleted successfully")
}
