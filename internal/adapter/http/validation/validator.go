package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
	"todoapi/internal/core/port"
)

var hexColorPattern = regexp.MustCompile(`(?i)^#[0-9A-F]{6}$`)

// Accepted due_date layouts. Values without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

var messages = map[string]string{
	"required":  "The {0} field is required.",
	"min":       "The {0} field must be at least {1} characters.",
	"max":       "The {0} field must not be greater than {1} characters.",
	"len":       "The {0} field must be {1} characters.",
	"oneof":     "The selected {0} is invalid.",
	"gt":        "The {0} field must be greater than {1}.",
	"hex_color": "The {0} field format is invalid.",
	"todo_date": "The {0} field must be a valid date.",
	"after_now": "The {0} field must be a date after now.",
	"exists":    "The selected {0} is invalid.",
	"array":     "The {0} field must be an array.",
}

type RequestValidator struct {
	validate   *validator.Validate
	translator ut.Translator
	categories port.CategoryRepository
	now        func() time.Time
}

func NewRequestValidator(categories port.CategoryRepository) *RequestValidator {
	return NewRequestValidatorWithClock(categories, time.Now)
}

func NewRequestValidatorWithClock(categories port.CategoryRepository, now func() time.Time) *RequestValidator {
	v := &RequestValidator{
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		categories: categories,
		now:        now,
	}

	english := en.New()
	uni := ut.New(english, english)

	translator, found := uni.GetTranslator("en")
	if !found {
		panic("translator en not found")
	}

	v.translator = translator

	if err := en_translations.RegisterDefaultTranslations(v.validate, translator); err != nil {
		panic(err)
	}

	v.validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		}

		if name == "-" || name == "" {
			return field.Name
		}

		return name
	})

	v.registerCustomValidations()
	v.addCustomTranslations()

	return v
}

func (v *RequestValidator) registerCustomValidations() {
	v.validate.RegisterValidation("hex_color", func(fl validator.FieldLevel) bool {
		return hexColorPattern.MatchString(fl.Field().String())
	})

	v.validate.RegisterValidation("todo_date", func(fl validator.FieldLevel) bool {
		_, ok := ParseDate(fl.Field().String())
		return ok
	})

	v.validate.RegisterValidation("after_now", func(fl validator.FieldLevel) bool {
		date, ok := ParseDate(fl.Field().String())
		return ok && date.After(v.now())
	})
}

func (v *RequestValidator) addCustomTranslations() {
	for tag, message := range messages {
		v.validate.RegisterTranslation(tag, v.translator, func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fieldLabel(fieldKey(fe.Field())), fe.Param())
			return t
		})
	}
}

// Message renders the translated message for tag on field.
func (v *RequestValidator) Message(tag string, field string, params ...string) string {
	args := append([]string{fieldLabel(field)}, params...)

	t, err := v.translator.T(tag, args...)
	if err != nil {
		return fmt.Sprintf("The %s field is invalid.", fieldLabel(field))
	}

	return t
}

func (v *RequestValidator) ValidateTodo(ctx context.Context, req *request.TodoRequest, mode port.ValidationMode) (domain.TodoInput, error) {
	if req == nil {
		req = &request.TodoRequest{}
	}

	r := *req
	r.Title = trimmed(r.Title)
	r.Description = nullIfBlank(trimmed(r.Description))
	r.DueDate = nullIfBlank(trimmed(r.DueDate))

	errs := domain.NewValidationError()

	titleBlank := r.Title != nil && *r.Title == ""
	if titleBlank || (r.Title == nil && (mode == port.ModeCreate || r.Has("title"))) {
		errs.Add("title", v.Message("required", "title"))
		r.Title = nil
	}

	if err := v.collect(v.validate.Struct(&r), errs); err != nil {
		return domain.TodoInput{}, err
	}

	// omitnil lets an explicit null through; a sent key must carry a value.
	if r.Status == nil && r.Has("status") {
		errs.Add("status", v.Message("oneof", "status"))
	}
	if r.Priority == nil && r.Has("priority") {
		errs.Add("priority", v.Message("oneof", "priority"))
	}
	if r.Categories == nil && r.Has("categories") {
		errs.Add("categories", v.Message("array", "categories"))
	}

	if err := v.checkCategoriesExist(ctx, r.Categories, errs); err != nil {
		return domain.TodoInput{}, err
	}

	if errs.HasErrors() {
		return domain.TodoInput{}, errs
	}

	input := domain.TodoInput{
		Title:          r.Title,
		Description:    r.Description,
		DescriptionSet: r.Description != nil || r.Has("description"),
		DueDateSet:     r.DueDate != nil || r.Has("due_date"),
		CategoriesSet:  r.Categories != nil,
		Categories:     r.Categories,
	}

	if r.Status != nil {
		status := domain.TodoStatus(*r.Status)
		input.Status = &status
	}

	if r.Priority != nil {
		priority := domain.TodoPriority(*r.Priority)
		input.Priority = &priority
	}

	if r.DueDate != nil {
		dueDate, _ := ParseDate(*r.DueDate)
		input.DueDate = &dueDate
	}

	return input, nil
}

func (v *RequestValidator) ValidateStatus(req *request.TodoStatusRequest) (domain.TodoStatus, error) {
	if req == nil {
		req = &request.TodoStatusRequest{}
	}

	errs := domain.NewValidationError()
	if err := v.collect(v.validate.Struct(req), errs); err != nil {
		return "", err
	}

	if errs.HasErrors() {
		return "", errs
	}

	return domain.TodoStatus(*req.Status), nil
}

func (v *RequestValidator) ValidateCategory(req *request.CategoryRequest, mode port.ValidationMode) (domain.CategoryInput, error) {
	if req == nil {
		req = &request.CategoryRequest{}
	}

	r := *req
	r.Name = trimmed(r.Name)

	errs := domain.NewValidationError()

	nameBlank := r.Name != nil && *r.Name == ""
	if nameBlank || (r.Name == nil && mode == port.ModeCreate) {
		errs.Add("name", v.Message("required", "name"))
		r.Name = nil
	}

	if err := v.collect(v.validate.Struct(&r), errs); err != nil {
		return domain.CategoryInput{}, err
	}

	if errs.HasErrors() {
		return domain.CategoryInput{}, errs
	}

	return domain.CategoryInput{Name: r.Name, Color: r.Color}, nil
}

// ValidateTodoFilter rejects unknown status and priority values and turns the
// rest of the query string into a normalized TodoQuery. Malformed paging and
// sort values fall back to their defaults.
func (v *RequestValidator) ValidateTodoFilter(filter *request.TodoFilter) (domain.TodoQuery, error) {
	if filter == nil {
		filter = &request.TodoFilter{}
	}

	errs := domain.NewValidationError()
	if err := v.collect(v.validate.Struct(filter), errs); err != nil {
		return domain.TodoQuery{}, err
	}

	if errs.HasErrors() {
		return domain.TodoQuery{}, errs
	}

	// An explicit limit is clamped like any other; only a missing or
	// malformed one falls back to the default page size.
	limit := atoiOr(filter.Limit, domain.DefaultPageSize)
	if limit < 1 {
		limit = 1
	}

	query := domain.TodoQuery{
		Search: strings.TrimSpace(filter.Search),
		Sort:   domain.ParseSortField(filter.Sort),
		Order:  domain.ParseSortOrder(filter.Order),
		Page:   atoiOr(filter.Page, 1),
		Limit:  limit,
	}

	if filter.Status != "" {
		status := domain.TodoStatus(filter.Status)
		query.Status = &status
	}

	if filter.Priority != "" {
		priority := domain.TodoPriority(filter.Priority)
		query.Priority = &priority
	}

	return query.Normalize(), nil
}

func (v *RequestValidator) checkCategoriesExist(ctx context.Context, ids []int64, errs *domain.ValidationError) error {
	candidates := make([]int64, 0, len(ids))
	for i, id := range ids {
		if id > 0 && !errs.Has(indexKey("categories", i)) {
			candidates = append(candidates, id)
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	existing, err := v.categories.ExistingIDs(ctx, candidates)
	if err != nil {
		return err
	}

	for i, id := range ids {
		key := indexKey("categories", i)
		if id > 0 && !errs.Has(key) && !existing[id] {
			errs.Add(key, v.Message("exists", key))
		}
	}

	return nil
}

// collect moves validator field errors into errs. Anything that is not a
// field error is returned as is.
func (v *RequestValidator) collect(err error, errs *domain.ValidationError) error {
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	for _, fe := range fieldErrors {
		errs.Add(fieldKey(fe.Field()), fe.Translate(v.translator))
	}

	return nil
}

func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), true
		}
	}

	return time.Time{}, false
}

// fieldKey turns "categories[0]" into "categories.0".
func fieldKey(field string) string {
	field = strings.ReplaceAll(field, "[", ".")
	return strings.ReplaceAll(field, "]", "")
}

func fieldLabel(key string) string {
	if strings.Contains(key, ".") {
		return key
	}

	return strings.ReplaceAll(key, "_", " ")
}

func indexKey(field string, index int) string {
	return field + "." + strconv.Itoa(index)
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}

	s := strings.TrimSpace(*value)
	return &s
}

func nullIfBlank(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}

	return value
}

func atoiOr(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}

	return parsed
}
