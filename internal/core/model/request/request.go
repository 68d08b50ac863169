package request

import (
	"encoding/json"
)

type TodoRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=3,max=100"`
	Description *string `json:"description" validate:"omitnil,max=500"`
	Status      *string `json:"status" validate:"omitnil,oneof=pending in_progress completed cancelled"`
	Priority    *string `json:"priority" validate:"omitnil,oneof=low medium high"`
	DueDate     *string `json:"due_date" validate:"omitnil,todo_date,after_now"`
	Categories  []int64 `json:"categories" validate:"omitempty,dive,gt=0"`

	present map[string]bool
}

// UnmarshalJSON decodes the payload and remembers which keys were sent, so an
// explicit null can be told apart from an omitted field.
func (r *TodoRequest) UnmarshalJSON(data []byte) error {
	type plain TodoRequest

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	*r = TodoRequest(decoded)
	r.present = make(map[string]bool, len(keys))

	for key := range keys {
		r.present[key] = true
	}

	return nil
}

func (r *TodoRequest) Has(field string) bool {
	return r.present[field]
}

type TodoStatusRequest struct {
	Status *string `json:"status" validate:"required,oneof=pending in_progress completed cancelled"`
}

type CategoryRequest struct {
	Name  *string `json:"name" validate:"omitnil,max=100"`
	Color *string `json:"color" validate:"omitnil,len=7,hex_color"`
}

// TodoFilter holds the raw list/search query string.
type TodoFilter struct {
	Status   string `form:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority string `form:"priority" validate:"omitempty,oneof=low medium high"`
	Search   string `form:"q"`
	Sort     string `form:"sort"`
	Order    string `form:"order"`
	Page     string `form:"page"`
	Limit    string `form:"limit"`
}
