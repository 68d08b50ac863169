package factory

import (
	"fmt"
	"time"

	fab "github.com/Goldziher/fabricator"

	"todoapi/internal/core/domain"
)

type categoryAttributes struct {
	Name  string
	Color string
}

func NewCategory(customData ...map[string]any) domain.Category {
	n := sequence.Add(1)

	attrs := map[string]any{
		"Name":  fmt.Sprintf("Category %d", n),
		"Color": domain.DefaultCategoryColor,
	}

	for _, data := range customData {
		for key, value := range data {
			attrs[key] = value
		}
	}

	built := fab.New(categoryAttributes{}).Build(attrs)
	now := time.Now().UTC()

	return domain.Category{
		Name:      built.Name,
		Color:     built.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
