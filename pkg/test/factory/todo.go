package factory

import (
	"fmt"
	"sync/atomic"
	"time"

	fab "github.com/Goldziher/fabricator"

	"todoapi/internal/core/domain"
)

var sequence atomic.Int64

type todoAttributes struct {
	Title       string
	Description string
	Status      string
	Priority    string
}

// NewTodo builds an unsaved todo. Overrides use the todoAttributes field
// names; DueDate (time.Time) is applied directly.
func NewTodo(customData ...map[string]any) domain.Todo {
	n := sequence.Add(1)

	attrs := map[string]any{
		"Title":    fmt.Sprintf("Todo number %d", n),
		"Status":   string(domain.TodoStatusPending),
		"Priority": string(domain.TodoPriorityMedium),
	}

	var dueDate *time.Time
	for _, data := range customData {
		for key, value := range data {
			if key == "DueDate" {
				if due, ok := value.(time.Time); ok {
					dueDate = &due
				}
				continue
			}
			attrs[key] = value
		}
	}

	built := fab.New(todoAttributes{}).Build(attrs)

	todo := domain.NewTodo(time.Now().UTC())
	todo.Title = built.Title
	todo.Status = domain.TodoStatus(built.Status)
	todo.Priority = domain.TodoPriority(built.Priority)
	todo.DueDate = dueDate

	if _, ok := attrs["Description"]; ok {
		description := built.Description
		todo.Description = &description
	}

	return todo
}
