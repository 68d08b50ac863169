package domain

import "time"

const DefaultCategoryColor = "#808080"

type Category struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Color     string    `db:"color" json:"color"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type CategoryInput struct {
	Name  *string
	Color *string
}

func (in CategoryInput) ApplyTo(c *Category) []string {
	var changed []string

	if in.Name != nil && *in.Name != c.Name {
		c.Name = *in.Name
		changed = append(changed, "name")
	}

	if in.Color != nil && *in.Color != c.Color {
		c.Color = *in.Color
		changed = append(changed, "color")
	}

	return changed
}
