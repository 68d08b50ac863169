package seed_test

import (
	"context"
	"testing"

	. "todoapi/pkg/test"

	"todoapi/internal/adapter/database"
	"todoapi/internal/adapter/database/repository"
	"todoapi/internal/adapter/database/seed"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/telemetry"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/require"
)

func TestSeeder_Run(t *testing.T) {
	RegisterTestingT(t)

	db := InitTestDB()
	defer db.Close()

	probe := telemetry.NewNoOpProbe()
	categories := repository.NewCategoryRepository(db, probe)
	todos := repository.NewTodoRepository(db, probe)

	result, err := seed.NewSeeder(categories, todos, database.NewTransactionManager(db)).Run(context.Background())
	require.NoError(t, err)

	Expect(result.Categories).To(Equal(5))
	Expect(result.Todos).To(Equal(5))

	all, err := categories.All(context.Background())
	Expect(err).To(BeNil())
	Expect(all).To(HaveLen(5))
	Expect(all[0].Name).To(Equal("Work"))

	page, err := todos.List(context.Background(), domain.TodoQuery{})
	Expect(err).To(BeNil())
	Expect(page.Total).To(Equal(5))

	for _, todo := range page.Data {
		Expect(todo.Categories).ToNot(BeEmpty(), todo.Title)
		Expect(todo.DueDate).ToNot(BeNil())
	}
}
