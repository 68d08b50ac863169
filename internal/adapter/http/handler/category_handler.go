package handler

import (
	"net/http"

	. "todoapi/internal/adapter/http/helper"
	"todoapi/internal/core/model/request"
	"todoapi/internal/core/port"
	"todoapi/pkg/logger"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	baseHandler
	svc port.CategoryService
}

func NewCategoryHandler(svc port.CategoryService, log *logger.LokiLogger) *CategoryHandler {
	return &CategoryHandler{
		baseHandler: baseHandler{Logger: log},
		svc:         svc,
	}
}

func (h *CategoryHandler) List(c *gin.Context) {
	ctx, span := h.startSpan(c, "category.List")
	defer span.End()

	categories, err := h.svc.List(ctx)
	if err != nil {
		h.fail(c, ctx, span, "category.List", err)
		return
	}

	SendSuccess(c, http.StatusOK, categories)
}

func (h *CategoryHandler) Show(c *gin.Context) {
	ctx, span := h.startSpan(c, "category.Show")
	defer span.End()

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	category, err := h.svc.Get(ctx, id)
	if err != nil {
		h.fail(c, ctx, span, "category.Show", err)
		return
	}

	SendSuccess(c, http.StatusOK, category)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	ctx, span := h.startSpan(c, "category.Create")
	defer span.End()

	var req request.CategoryRequest
	if err := BindJSON(c, &req); err != nil {
		h.fail(c, ctx, span, "category.Create", err)
		return
	}

	category, err := h.svc.Create(ctx, &req)
	if err != nil {
		h.fail(c, ctx, span, "category.Create", err)
		return
	}

	SendSuccess(c, http.StatusCreated, category, "Category created successfully")
}

func (h *CategoryHandler) Update(c *gin.Context) {
	ctx, span := h.startSpan(c, "category.Update")
	defer span.End()

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req request.CategoryRequest
	if err := BindJSON(c, &req); err != nil {
		h.fail(c, ctx, span, "category.Update", err)
		return
	}

	category, err := h.svc.Update(ctx, id, &req)
	if err != nil {
		h.fail(c, ctx, span, "category.Update", err)
		return
	}

	SendSuccess(c, http.StatusOK, category, "Category updated successfully")
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	ctx, span := h.startSpan(c, "category.Delete")
	defer span.End()

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(ctx, id); err != nil {
		h.fail(c, ctx, span, "category.Delete", err)
		return
	}

	SendSuccess(c, http.StatusNoContent, nil, "Category deleted successfully")
}

func (h *CategoryHandler) Todos(c *gin.Context) {
	ctx, span := h.startSpan(c, "category.Todos")
	defer span.End()

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var filter request.TodoFilter
	if err := BindQuery(c, &filter); err != nil {
		h.fail(c, ctx, span, "category.Todos", err)
		return
	}

	page, err := h.svc.Todos(ctx, id, &filter)
	if err != nil {
		h.fail(c, ctx, span, "category.Todos", err)
		return
	}

	SendSuccess(c, http.StatusOK, page)
}
