package validation_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"todoapi/internal/adapter/http/validation"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
	"todoapi/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

type categoryLookup struct {
	port.CategoryRepository
	known map[int64]bool
	err   error
	calls int
}

func (c *categoryLookup) ExistingIDs(_ context.Context, ids []int64) (map[int64]bool, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}

	found := map[int64]bool{}
	for _, id := range ids {
		if c.known[id] {
			found[id] = true
		}
	}
	return found, nil
}

func newValidator(known ...int64) (*validation.RequestValidator, *categoryLookup) {
	lookup := &categoryLookup{known: map[int64]bool{}}
	for _, id := range known {
		lookup.known[id] = true
	}

	return validation.NewRequestValidatorWithClock(lookup, func() time.Time { return fixedNow }), lookup
}

func decodeTodo(t *testing.T, body string) *request.TodoRequest {
	var req request.TodoRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func validationErrors(t *testing.T, err error) map[string][]string {
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)
	return verr.Errors
}

func TestValidateTodo_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		mode    port.ValidationMode
		field   string
		message string
	}{
		{"missing title on create", `{}`, port.ModeCreate, "title", "The title field is required."},
		{"blank title", `{"title":"   "}`, port.ModeCreate, "title", "The title field is required."},
		{"null title on update", `{"title":null}`, port.ModeUpdate, "title", "The title field is required."},
		{"short title", `{"title":"ab"}`, port.ModeCreate, "title", "The title field must be at least 3 characters."},
		{"long title", `{"title":"` + strings.Repeat("a", 101) + `"}`, port.ModeCreate, "title", "The title field must not be greater than 100 characters."},
		{"long description", `{"title":"abc","description":"` + strings.Repeat("d", 501) + `"}`, port.ModeCreate, "description", "The description field must not be greater than 500 characters."},
		{"unknown status", `{"title":"abc","status":"done"}`, port.ModeCreate, "status", "The selected status is invalid."},
		{"unknown priority", `{"title":"abc","priority":"urgent"}`, port.ModeCreate, "priority", "The selected priority is invalid."},
		{"unparseable due date", `{"title":"abc","due_date":"soon"}`, port.ModeCreate, "due_date", "The due date field must be a valid date."},
		{"past due date", `{"title":"abc","due_date":"2029-12-31"}`, port.ModeCreate, "due_date", "The due date field must be a date after now."},
		{"non-positive category", `{"title":"abc","categories":[0]}`, port.ModeCreate, "categories.0", "The categories.0 field must be greater than 0."},
		{"unknown category", `{"title":"abc","categories":[1,42]}`, port.ModeCreate, "categories.1", "The selected categories.1 is invalid."},
		{"null status on update", `{"status":null}`, port.ModeUpdate, "status", "The selected status is invalid."},
		{"null priority on create", `{"title":"abc","priority":null}`, port.ModeCreate, "priority", "The selected priority is invalid."},
		{"null categories on update", `{"categories":null}`, port.ModeUpdate, "categories", "The categories field must be an array."},
		{"null categories on create", `{"title":"abc","categories":null}`, port.ModeCreate, "categories", "The categories field must be an array."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := newValidator(1)

			_, err := v.ValidateTodo(context.Background(), decodeTodo(t, tt.body), tt.mode)

			errs := validationErrors(t, err)
			assert.Equal(t, []string{tt.message}, errs[tt.field])
		})
	}
}

func TestValidateTodo_CollectsEveryField(t *testing.T) {
	v, _ := newValidator()

	_, err := v.ValidateTodo(context.Background(), decodeTodo(t, `{"title":"ab","status":"x","priority":"y"}`), port.ModeCreate)

	errs := validationErrors(t, err)
	assert.Len(t, errs, 3)
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "status")
	assert.Contains(t, errs, "priority")
}

func TestValidateTodo_AcceptsFullPayload(t *testing.T) {
	v, _ := newValidator(1, 2)

	input, err := v.ValidateTodo(context.Background(), decodeTodo(t, `{
		"title": "  Ship it  ",
		"description": "release notes",
		"status": "in_progress",
		"priority": "high",
		"due_date": "2030-02-01 09:30:00",
		"categories": [1, 2]
	}`), port.ModeCreate)

	require.NoError(t, err)
	assert.Equal(t, "Ship it", *input.Title)
	assert.Equal(t, "release notes", *input.Description)
	assert.Equal(t, domain.TodoStatusInProgress, *input.Status)
	assert.Equal(t, domain.TodoPriorityHigh, *input.Priority)
	assert.Equal(t, time.Date(2030, 2, 1, 9, 30, 0, 0, time.UTC), *input.DueDate)
	assert.True(t, input.CategoriesSet)
	assert.Equal(t, []int64{1, 2}, input.Categories)
}

func TestValidateTodo_ThreeCharacterTitle(t *testing.T) {
	v, lookup := newValidator()

	input, err := v.ValidateTodo(context.Background(), decodeTodo(t, `{"title":"abc"}`), port.ModeCreate)

	require.NoError(t, err)
	assert.Equal(t, "abc", *input.Title)
	assert.False(t, input.DescriptionSet)
	assert.False(t, input.DueDateSet)
	assert.False(t, input.CategoriesSet)
	assert.Zero(t, lookup.calls)
}

func TestValidateTodo_UpdateTracksExplicitNulls(t *testing.T) {
	v, _ := newValidator()

	input, err := v.ValidateTodo(context.Background(), decodeTodo(t, `{"description":null,"due_date":"","categories":[]}`), port.ModeUpdate)

	require.NoError(t, err)
	assert.Nil(t, input.Title)
	assert.True(t, input.DescriptionSet)
	assert.Nil(t, input.Description)
	assert.True(t, input.DueDateSet)
	assert.Nil(t, input.DueDate)
	assert.True(t, input.CategoriesSet)
	assert.Equal(t, []int64{}, input.Categories)
}

func TestValidateTodo_OmittedKeysAreNotNulls(t *testing.T) {
	v, _ := newValidator()

	input, err := v.ValidateTodo(context.Background(), decodeTodo(t, `{"description":"notes"}`), port.ModeUpdate)

	require.NoError(t, err)
	assert.Nil(t, input.Status)
	assert.Nil(t, input.Priority)
	assert.False(t, input.CategoriesSet)
}

func TestValidateTodo_CategoryLookupFailure(t *testing.T) {
	v, lookup := newValidator()
	lookup.err = errors.New("database is gone")

	_, err := v.ValidateTodo(context.Background(), decodeTodo(t, `{"title":"abc","categories":[3]}`), port.ModeCreate)

	assert.EqualError(t, err, "database is gone")
}

func TestValidateStatus(t *testing.T) {
	v, _ := newValidator()

	status := "completed"
	got, err := v.ValidateStatus(&request.TodoStatusRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.TodoStatusCompleted, got)

	_, err = v.ValidateStatus(&request.TodoStatusRequest{})
	assert.Equal(t, []string{"The status field is required."}, validationErrors(t, err)["status"])

	done := "done"
	_, err = v.ValidateStatus(&request.TodoStatusRequest{Status: &done})
	assert.Equal(t, []string{"The selected status is invalid."}, validationErrors(t, err)["status"])
}

func TestValidateCategory(t *testing.T) {
	v, _ := newValidator()
	str := func(s string) *string { return &s }

	input, err := v.ValidateCategory(&request.CategoryRequest{Name: str(" Work "), Color: str("#aBc123")}, port.ModeCreate)
	require.NoError(t, err)
	assert.Equal(t, "Work", *input.Name)
	assert.Equal(t, "#aBc123", *input.Color)

	_, err = v.ValidateCategory(&request.CategoryRequest{}, port.ModeCreate)
	assert.Equal(t, []string{"The name field is required."}, validationErrors(t, err)["name"])

	input, err = v.ValidateCategory(&request.CategoryRequest{}, port.ModeUpdate)
	require.NoError(t, err)
	assert.Nil(t, input.Name)

	_, err = v.ValidateCategory(&request.CategoryRequest{Name: str("Work"), Color: str("#ZZZZZZ")}, port.ModeCreate)
	assert.Equal(t, []string{"The color field format is invalid."}, validationErrors(t, err)["color"])

	_, err = v.ValidateCategory(&request.CategoryRequest{Name: str("Work"), Color: str("#FFF")}, port.ModeCreate)
	assert.Contains(t, validationErrors(t, err), "color")
}

func TestValidateTodoFilter(t *testing.T) {
	v, _ := newValidator()

	query, err := v.ValidateTodoFilter(&request.TodoFilter{})
	require.NoError(t, err)
	assert.Equal(t, domain.SortByCreatedAt, query.Sort)
	assert.Equal(t, domain.OrderDesc, query.Order)
	assert.Equal(t, 1, query.Page)
	assert.Equal(t, domain.DefaultPageSize, query.Limit)
	assert.Nil(t, query.Status)

	query, err = v.ValidateTodoFilter(&request.TodoFilter{
		Status:   "completed",
		Priority: "low",
		Search:   "  milk ",
		Sort:     "priority",
		Order:    "asc",
		Page:     "2",
		Limit:    "999",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TodoStatusCompleted, *query.Status)
	assert.Equal(t, domain.TodoPriorityLow, *query.Priority)
	assert.Equal(t, "milk", query.Search)
	assert.Equal(t, domain.SortByPriority, query.Sort)
	assert.Equal(t, domain.OrderAsc, query.Order)
	assert.Equal(t, 2, query.Page)
	assert.Equal(t, domain.MaxPageSize, query.Limit)

	query, err = v.ValidateTodoFilter(&request.TodoFilter{Sort: "title", Order: "sideways", Page: "abc", Limit: "-3"})
	require.NoError(t, err)
	assert.Equal(t, domain.SortByCreatedAt, query.Sort)
	assert.Equal(t, domain.OrderDesc, query.Order)
	assert.Equal(t, 1, query.Page)
	assert.Equal(t, 1, query.Limit)

	query, err = v.ValidateTodoFilter(&request.TodoFilter{Limit: "0"})
	require.NoError(t, err)
	assert.Equal(t, 1, query.Limit)

	query, err = v.ValidateTodoFilter(&request.TodoFilter{Limit: "ten"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPageSize, query.Limit)

	_, err = v.ValidateTodoFilter(&request.TodoFilter{Status: "done"})
	assert.Equal(t, []string{"The selected status is invalid."}, validationErrors(t, err)["status"])
}

func TestParseDate(t *testing.T) {
	tests := map[string]time.Time{
		"2030-03-04":                time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC),
		"2030-03-04T10:20:30Z":      time.Date(2030, 3, 4, 10, 20, 30, 0, time.UTC),
		"2030-03-04T10:20:30+02:00": time.Date(2030, 3, 4, 8, 20, 30, 0, time.UTC),
		"2030-03-04 10:20":          time.Date(2030, 3, 4, 10, 20, 0, 0, time.UTC),
	}

	for value, expected := range tests {
		parsed, ok := validation.ParseDate(value)
		assert.True(t, ok, value)
		assert.True(t, expected.Equal(parsed), value)
	}

	_, ok := validation.ParseDate("next tuesday")
	assert.False(t, ok)
}
