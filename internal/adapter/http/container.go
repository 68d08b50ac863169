package http

import (
	"todoapi/internal/adapter/database"
	"todoapi/internal/adapter/database/repository"
	"todoapi/internal/adapter/http/handler"
	"todoapi/internal/adapter/http/routes"
	"todoapi/internal/adapter/http/validation"
	"todoapi/internal/core/port"
	"todoapi/internal/core/service"
	"todoapi/pkg/logger"
)

type Container struct {
	DB         *database.DB
	Transactor port.Transactor
	Validator  port.Validator

	TodoRepo     port.TodoRepository
	CategoryRepo port.CategoryRepository
	StatsRepo    port.StatsRepository

	TodoService     port.TodoService
	CategoryService port.CategoryService
	StatsService    port.StatsService

	Handlers routes.Handlers
}

func NewContainer(db *database.DB, log *logger.LokiLogger, probe port.Telemetry) *Container {
	tx := database.NewTransactionManager(db)

	todoRepo := repository.NewTodoRepository(db, probe)
	categoryRepo := repository.NewCategoryRepository(db, probe)
	statsRepo := repository.NewStatsRepository(db, probe)

	validator := validation.NewRequestValidator(categoryRepo)

	todoSvc := service.NewTodoService(todoRepo, validator, tx, probe)
	categorySvc := service.NewCategoryService(categoryRepo, todoRepo, validator, tx, probe)
	statsSvc := service.NewStatsService(statsRepo, probe)

	return &Container{
		DB:         db,
		Transactor: tx,
		Validator:  validator,

		TodoRepo:     todoRepo,
		CategoryRepo: categoryRepo,
		StatsRepo:    statsRepo,

		TodoService:     todoSvc,
		CategoryService: categorySvc,
		StatsService:    statsSvc,

		Handlers: routes.Handlers{
			Todo:     handler.NewTodoHandler(todoSvc, log),
			Category: handler.NewCategoryHandler(categorySvc, log),
			Stats:    handler.NewStatsHandler(statsSvc, log),
			Health:   handler.NewHealthHandler(db, log),
		},
	}
}
