package seed

import (
	"context"
	"fmt"
	"time"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
)

type categorySeed struct {
	Name  string
	Color string
}

type todoSeed struct {
	Title       string
	Description string
	Status      domain.TodoStatus
	Priority    domain.TodoPriority
	DueIn       time.Duration
	Categories  []int
}

var categories = []categorySeed{
	{Name: "Work", Color: "#FF5733"},
	{Name: "Personal", Color: "#33FF57"},
	{Name: "Shopping", Color: "#3357FF"},
	{Name: "Health", Color: "#F033FF"},
	{Name: "Education", Color: "#FF9933"},
}

// Categories reference entries of the categories slice by index.
var todos = []todoSeed{
	{
		Title:       "Attend the project meeting",
		Description: "Prepare for the sprint planning meeting",
		Status:      domain.TodoStatusPending,
		Priority:    domain.TodoPriorityHigh,
		DueIn:       48 * time.Hour,
		Categories:  []int{0},
	},
	{
		Title:       "Prepare the shopping list",
		Description: "Write down the weekly shopping list",
		Status:      domain.TodoStatusPending,
		Priority:    domain.TodoPriorityMedium,
		DueIn:       24 * time.Hour,
		Categories:  []int{2},
	},
	{
		Title:       "Book a doctor appointment",
		Description: "Schedule the yearly health check",
		Status:      domain.TodoStatusInProgress,
		Priority:    domain.TodoPriorityMedium,
		DueIn:       5 * 24 * time.Hour,
		Categories:  []int{3},
	},
	{
		Title:       "Study for the exam",
		Description: "Go through the material for next week's exam",
		Status:      domain.TodoStatusInProgress,
		Priority:    domain.TodoPriorityHigh,
		DueIn:       7 * 24 * time.Hour,
		Categories:  []int{4},
	},
	{
		Title:       "Read a book",
		Description: "Read for 30 minutes",
		Status:      domain.TodoStatusCompleted,
		Priority:    domain.TodoPriorityLow,
		DueIn:       -24 * time.Hour,
		Categories:  []int{1, 4},
	},
}

type Seeder struct {
	categories port.CategoryRepository
	todos      port.TodoRepository
	tx         port.Transactor
	now        func() time.Time
}

func NewSeeder(categories port.CategoryRepository, todos port.TodoRepository, tx port.Transactor) *Seeder {
	return &Seeder{
		categories: categories,
		todos:      todos,
		tx:         tx,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type Result struct {
	Categories int
	Todos      int
}

// Run inserts the sample categories and todos in one transaction.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var result Result

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := s.now()
		categoryIDs := make([]int64, 0, len(categories))

		for _, seed := range categories {
			id, err := s.categories.Create(ctx, domain.Category{
				Name:      seed.Name,
				Color:     seed.Color,
				CreatedAt: now,
				UpdatedAt: now,
			})
			if err != nil {
				return fmt.Errorf("seed category %q: %w", seed.Name, err)
			}

			categoryIDs = append(categoryIDs, id)
		}

		for _, seed := range todos {
			description := seed.Description
			dueDate := now.Add(seed.DueIn)

			todo := domain.NewTodo(now)
			todo.Title = seed.Title
			todo.Description = &description
			todo.Status = seed.Status
			todo.Priority = seed.Priority
			todo.DueDate = &dueDate

			id, err := s.todos.Create(ctx, todo)
			if err != nil {
				return fmt.Errorf("seed todo %q: %w", seed.Title, err)
			}

			linked := make([]int64, 0, len(seed.Categories))
			for _, index := range seed.Categories {
				linked = append(linked, categoryIDs[index])
			}

			if err := s.todos.SyncCategories(ctx, id, linked); err != nil {
				return err
			}
		}

		result = Result{Categories: len(categoryIDs), Todos: len(todos)}
		return nil
	})

	return result, err
}
