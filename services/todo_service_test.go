package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"daymark-app/daymark/database"
	"daymark-app/daymark/models"
	"daymark-app/daymark/testutils"
)

func mustCreateTodo(t *testing.T, db *database.Database, todo models.Todo) models.Todo {
	t.Helper()
	created, err := TodoServiceInstance.CreateTodo(db, todo)
	assert.NoError(t, err)
	return created
}

func localDT(year int, month time.Month, day, hour, min int) *models.LocalDateTime {
	return models.LocalDateTimePtr(time.Date(year, month, day, hour, min, 0, 0, time.Local))
}

func TestCreateTodoRequiresTitle(t *testing.T) {
	db, cleanup := testutils.OpenTestDB()
	defer cleanup()

	_, err := TodoServiceInstance.CreateTodo(db, models.Todo{Title: "   "})
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestGetTodoByIdNotFound(t *testing.T) {
	db, cleanup := testutils.OpenTestDB()
	defer cleanup()

	_, err := TodoServiceInstance.GetTodoById(db, 999)
	assert.ErrorIs(t, err, ErrTodoNotFound)
}

func TestUncompletedTodoOrdering(t *testing.T) {
	db, cleanup := testutils.OpenTestDB()
	defer cleanup()

	// Dated todos come first ordered by due date; undated ones follow ordered
	// by creation, newest first.
	mustCreateTodo(t, db, models.Todo{
		Title:     "undated old",
		CreatedAt: models.NewLocalDateTime(time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)),
	})
	mustCreateTodo(t, db, models.Todo{
		Title:     "undated new",
		CreatedAt: models.NewLocalDateTime(time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)),
	})
	mustCreateTodo(t, db, models.Todo{
		Title:     "due later",
		CreatedAt: models.NewLocalDateTime(time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)),
		DueDate:   localDT(2024, 3, 10, 12, 0),
	})
	mustCreateTodo(t, db, models.Todo{
		Title:     "due soon",
		CreatedAt: models.NewLocalDateTime(time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)),
		DueDate:   localDT(2024, 2, 1, 8, 0),
	})

	todos, err := TodoServiceInstance.GetUncompletedTodos(db)
	assert.NoError(t, err)

	titles := make([]string, len(todos))
	for i, todo := range todos {
		titles[i] = todo.Title
	}
	assert.Equal(t, []string{"due soon", "due later", "undated new", "undated old"}, titles)
}

func TestCompletedAndUncompletedArePartitioned(t *testing.T) {
	db, cleanup := testutils.OpenTestDB()
	defer cleanup()

	open := mustCreateTodo(t, db, models.Todo{Title: "open"})
	done := mustCreateTodo(t, db, models.Todo{Title: "done"})
	done.IsCompleted = true
	_, err := TodoServiceInstance.UpdateTodo(db, done)
	assert.NoError(t, err)

	uncompleted, err := TodoServiceInstance.GetUncompletedTodos(db)
	assert.NoError(t, err)
	assert.Len(t, uncompleted, 1)
	assert.Equal(t, open.ID, uncompleted[0].ID)

	completed, err := TodoServiceInstance.GetCompletedTodos(db)
	assert.NoError(t, err)
	assert.Len(t, completed, 1)
	assert.Equal(t, done.ID, completed[0].ID)
}

func TestUpdateTodoPreservesCreatedAt(t *testing.T) {
	db, cleanup := testutils.OpenTestDB()
	defer cleanup()

	createdAt := models.NewLocalDateTime(time.Date(2024, 1, 1, 10, 30, 0, 0, time.Local))
	todo := mustCreateTodo(t, db, models.Todo{Title: "original", CreatedAt: createdAt})

	todo.Title = "renamed"
	todo.CreatedAt = models.LocalDateTime{}
	updated, err := TodoServiceInstance.UpdateTodo(db, todo)
	assert.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, createdAt.String(), updated.CreatedAt.String())
}

func TestGetTodosByDate(t *testing.T) {
	db, cleanup := testutils.OpenTestDB()
	defer cleanup()

	mustCreateTodo(t, db, models.Todo{Title: "on day", DueDate: localDT(2024, 1, 15, 9, 0)})
	mustCreateTodo(t, db, models.Todo{Title: "other day", DueDate: localDT(2024, 1, 16, 9, 0)})
	mustCreateTodo(t, db, models.Todo{Title: "no date"})

	todos, err := TodoServiceInstance.GetTodosByDate(db, "2024-01-15")
	assert.NoError(t, err)
	assert.Len(t, todos, 1)
	assert.Equal(t, "on day", todos[0].Title)
}

func TestDayOrderingByTimeThenPriority(t *testing.T) {
	db, cleanup := testutils.OpenTestDB()
	defer cleanup()

	mustCreateTodo(t, db, models.Todo{
		Title: "noon low", Priority: models.PriorityLow,
		DueDate: localDT(2024, 1, 15, 12, 0),
	})
	mustCreateTodo(t, db, models.Todo{
		Title: "morning", Priority: models.PriorityLow,
		DueDate: localDT(2024, 1, 15, 8, 0),
	})
	mustCreateTodo(t, db, models.Todo{
		Title: "noon high", Priority: models.PriorityHigh,
		DueDate: localDT(2024, 1, 15, 12, 0),
	})

	todos, err := TodoServiceInstance.GetTodosByDate(db, "2024-01-15")
	assert.NoError(t, err)

	titles := make([]string, len(todos))
	for i, todo := range todos {
		titles[i] = todo.Title
	}
	assert.Equal(t, []string{"morning", "noon high", "noon low"}, titles)
}

func TestGetTodoDatesInMonth(t *testing.T) {
	db, cleanup := testutils.OpenTestDB()
	defer cleanup()

	mustCreateTodo(t, db, models.Todo{Title: "a", DueDate: localDT(2024, 1, 5, 10, 0)})
	mustCreateTodo(t, db, models.Todo{Title: "b", DueDate: localDT(2024, 1, 5, 18, 0)})
	mustCreateTodo(t, db, models.Todo{Title: "c", DueDate: localDT(2024, 1, 20, 9, 0)})
	mustCreateTodo(t, db, models.Todo{Title: "d", DueDate: localDT(2024, 2, 1, 9, 0)})
	mustCreateTodo(t, db, models.Todo{Title: "e"})

	dates, err := TodoServiceInstance.GetTodoDatesInMonth(db, "2024-01")
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"2024-01-05", "2024-01-20"}, dates)
}

func TestGetTodosByMonth(t *testing.T) {
	db, cleanup := testutils.OpenTestDB()
	defer cleanup()

	mustCreateTodo(t, db, models.Todo{Title: "jan", DueDate: localDT(2024, 1, 5, 10, 0)})
	mustCreateTodo(t, db, models.Todo{Title: "feb", DueDate: localDT(2024, 2, 5, 10, 0)})

	todos, err := TodoServiceInstance.GetTodosByMonth(db, "2024-01")
	assert.NoError(t, err)
	assert.Len(t, todos, 1)
	assert.Equal(t, "jan", todos[0].Title)
}

func TestGetPendingReminders(t *testing.T) {
	db, cleanup := testutils.OpenTestDB()
	defer cleanup()

	mustCreateTodo(t, db, models.Todo{
		Title: "with reminder", EnableReminder: true,
		DueDate: localDT(2030, 1, 1, 9, 0),
	})
	mustCreateTodo(t, db, models.Todo{
		Title: "flag without date", EnableReminder: true,
	})
	mustCreateTodo(t, db, models.Todo{
		Title: "date without flag", DueDate: localDT(2030, 1, 1, 9, 0),
	})

	pending, err := TodoServiceInstance.GetPendingReminders(db)
	assert.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, "with reminder", pending[0].Title)
}

func TestCountTodosByDate(t *testing.T) {
	db, cleanup := testutils.OpenTestDB()
	defer cleanup()

	mustCreateTodo(t, db, models.Todo{Title: "a", DueDate: localDT(2024, 1, 15, 9, 0)})
	done := mustCreateTodo(t, db, models.Todo{Title: "b", DueDate: localDT(2024, 1, 15, 10, 0)})
	done.IsCompleted = true
	_, err := TodoServiceInstance.UpdateTodo(db, done)
	assert.NoError(t, err)

	total, completed, err := TodoServiceInstance.CountTodosByDate(db, "2024-01-15")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1), completed)
}

func TestDeleteTodo(t *testing.T) {
	db, cleanup := testutils.OpenTestDB()
	defer cleanup()

	todo := mustCreateTodo(t, db, models.Todo{Title: "gone soon"})
	assert.NoError(t, TodoServiceInstance.DeleteTodo(db, todo.ID))

	_, err := TodoServiceInstance.GetTodoById(db, todo.ID)
	assert.ErrorIs(t, err, ErrTodoNotFound)

	assert.ErrorIs(t, TodoServiceInstance.DeleteTodo(db, todo.ID), ErrTodoNotFound)
}

func TestTodoTagPreload(t *testing.T) {
	db, cleanup := testutils.OpenTestDB()
	defer cleanup()

	tag, err := TagServiceInstance.CreateTag(db, models.Tag{Name: "work", Color: 0xFF0000FF})
	assert.NoError(t, err)

	todo := mustCreateTodo(t, db, models.Todo{Title: "tagged", TagID: &tag.ID})

	loaded, err := TodoServiceInstance.GetTodoById(db, todo.ID)
	assert.NoError(t, err)
	if assert.NotNil(t, loaded.Tag) {
		assert.Equal(t, "work", loaded.Tag.Name)
	}
}
