package domain

import (
	"time"
)

type TodoStatus string

const (
	TodoStatusPending    TodoStatus = "pending"
	TodoStatusInProgress TodoStatus = "in_progress"
	TodoStatusCompleted  TodoStatus = "completed"
	TodoStatusCancelled  TodoStatus = "cancelled"
)

var TodoStatuses = []TodoStatus{
	TodoStatusPending,
	TodoStatusInProgress,
	TodoStatusCompleted,
	TodoStatusCancelled,
}

func (s TodoStatus) IsValid() bool {
	for _, status := range TodoStatuses {
		if s == status {
			return true
		}
	}

	return false
}

func (s TodoStatus) String() string {
	return string(s)
}

type TodoPriority string

const (
	TodoPriorityLow    TodoPriority = "low"
	TodoPriorityMedium TodoPriority = "medium"
	TodoPriorityHigh   TodoPriority = "high"
)

var TodoPriorities = []TodoPriority{
	TodoPriorityLow,
	TodoPriorityMedium,
	TodoPriorityHigh,
}

func (p TodoPriority) IsValid() bool {
	for _, priority := range TodoPriorities {
		if p == priority {
			return true
		}
	}

	return false
}

// Rank orders priorities from low to high. Unknown values rank 0.
func (p TodoPriority) Rank() int {
	for i, priority := range TodoPriorities {
		if p == priority {
			return i + 1
		}
	}

	return 0
}

func (p TodoPriority) String() string {
	return string(p)
}

type Todo struct {
	ID          int64        `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Description *string      `db:"description" json:"description"`
	Status      TodoStatus   `db:"status" json:"status"`
	Priority    TodoPriority `db:"priority" json:"priority"`
	DueDate     *time.Time   `db:"due_date" json:"due_date"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time   `db:"deleted_at" json:"-"`
	Categories  []Category   `db:"-" json:"categories"`
}

func NewTodo(now time.Time) Todo {
	return Todo{
		Status:     TodoStatusPending,
		Priority:   TodoPriorityMedium,
		CreatedAt:  now,
		UpdatedAt:  now,
		Categories: []Category{},
	}
}

func (t *Todo) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(t.Categories))

	for _, category := range t.Categories {
		ids = append(ids, category.ID)
	}

	return ids
}

// TodoInput is a validated create/update payload. Nil pointers mean the
// field was not submitted; the *Set flags distinguish an explicit null
// from an absent key for the nullable columns.
type TodoInput struct {
	Title          *string
	Description    *string
	DescriptionSet bool
	Status         *TodoStatus
	Priority       *TodoPriority
	DueDate        *time.Time
	DueDateSet     bool
	Categories     []int64
	CategoriesSet  bool
}

// ApplyTo copies the submitted fields onto t and reports which columns changed.
func (in TodoInput) ApplyTo(t *Todo) []string {
	var changed []string

	if in.Title != nil && *in.Title != t.Title {
		t.Title = *in.Title
		changed = append(changed, "title")
	}

	if in.DescriptionSet {
		t.Description = in.Description
		changed = append(changed, "description")
	}

	if in.Status != nil && *in.Status != t.Status {
		t.Status = *in.Status
		changed = append(changed, "status")
	}

	if in.Priority != nil && *in.Priority != t.Priority {
		t.Priority = *in.Priority
		changed = append(changed, "priority")
	}

	if in.DueDateSet {
		t.DueDate = in.DueDate
		changed = append(changed, "due_date")
	}

	return changed
}
