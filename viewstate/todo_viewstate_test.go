package viewstate

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"daymark-app/daymark/database"
	"daymark-app/daymark/scheduler"
	"daymark-app/daymark/services"
	"daymark-app/daymark/testutils"
)

type silentNotifier struct{}

func (silentNotifier) Notify(int64, string) error { return nil }

func newTodoViewState(t *testing.T) (*TodoViewState, *scheduler.ReminderScheduler, *database.Database, func()) {
	t.Helper()
	db, closeDB := testutils.OpenTestDB()
	reminders := scheduler.NewReminderScheduler(silentNotifier{})
	vs := NewTodoViewState(db, services.TodoServiceInstance, services.TagServiceInstance, reminders)
	return vs, reminders, db, func() {
		vs.Close()
		reminders.Stop()
		closeDB()
	}
}

func farFuture() *time.Time {
	due := time.Date(2030, 6, 1, 9, 0, 0, 0, time.Local)
	return &due
}

func TestAddTodoAppearsInDerivedList(t *testing.T) {
	vs, _, _, cleanup := newTodoViewState(t)
	defer cleanup()

	created, err := vs.AddTodo(TodoInput{Title: "buy milk"})
	assert.NoError(t, err)
	assert.NotZero(t, created.ID)

	todos := vs.Todos().Get()
	assert.Len(t, todos, 1)
	assert.Equal(t, "buy milk", todos[0].Title)
	assert.Equal(t, 1, vs.Count().Get())
}

func TestCompletedTodosHiddenByDefault(t *testing.T) {
	vs, _, _, cleanup := newTodoViewState(t)
	defer cleanup()

	todo, err := vs.AddTodo(TodoInput{Title: "done soon"})
	assert.NoError(t, err)
	assert.NoError(t, vs.ToggleTodo(todo))

	assert.Empty(t, vs.Todos().Get())

	vs.SetShowCompleted(true)
	todos := vs.Todos().Get()
	assert.Len(t, todos, 1)
	assert.True(t, todos[0].IsCompleted)
}

func TestTagFilterAndSearch(t *testing.T) {
	vs, _, _, cleanup := newTodoViewState(t)
	defer cleanup()

	assert.NoError(t, vs.AddTag("work", 1))
	tags := vs.Tags().Get()
	assert.Len(t, tags, 1)
	workID := tags[0].ID

	_, err := vs.AddTodo(TodoInput{Title: "Write report", TagID: &workID})
	assert.NoError(t, err)
	_, err = vs.AddTodo(TodoInput{Title: "walk the dog"})
	assert.NoError(t, err)

	vs.SelectTag(&workID)
	todos := vs.Todos().Get()
	assert.Len(t, todos, 1)
	assert.Equal(t, "Write report", todos[0].Title)

	vs.SelectTag(nil)
	vs.SetSearchQuery("WALK")
	todos = vs.Todos().Get()
	assert.Len(t, todos, 1)
	assert.Equal(t, "walk the dog", todos[0].Title)

	// Every filtered list is a subset of the full set.
	vs.SetSearchQuery("")
	assert.Len(t, vs.Todos().Get(), 2)
}

func TestAddTodoSchedulesReminderOnlyWithFlagAndDate(t *testing.T) {
	vs, reminders, _, cleanup := newTodoViewState(t)
	defer cleanup()

	withBoth, err := vs.AddTodo(TodoInput{
		Title: "remind me", DueDate: farFuture(), EnableReminder: true,
	})
	assert.NoError(t, err)
	assert.True(t, reminders.Pending(withBoth.ID))

	flagOnly, err := vs.AddTodo(TodoInput{Title: "flag only", EnableReminder: true})
	assert.NoError(t, err)
	assert.False(t, reminders.Pending(flagOnly.ID))

	dateOnly, err := vs.AddTodo(TodoInput{Title: "date only", DueDate: farFuture()})
	assert.NoError(t, err)
	assert.False(t, reminders.Pending(dateOnly.ID))
}

func TestUpdateTodoReschedulesReminder(t *testing.T) {
	vs, reminders, _, cleanup := newTodoViewState(t)
	defer cleanup()

	todo, err := vs.AddTodo(TodoInput{
		Title: "meeting", DueDate: farFuture(), EnableReminder: true,
	})
	assert.NoError(t, err)

	newDue := time.Date(2031, 3, 15, 14, 0, 0, 0, time.Local)
	updated, err := vs.UpdateTodo(todo, TodoInput{
		Title: "meeting", DueDate: &newDue, EnableReminder: true,
	})
	assert.NoError(t, err)

	assert.Equal(t, 1, reminders.PendingCount())
	dueAt, ok := reminders.DueAt(updated.ID)
	assert.True(t, ok)
	assert.True(t, dueAt.Equal(newDue))

	// Dropping the flag cancels the pending job.
	_, err = vs.UpdateTodo(updated, TodoInput{
		Title: "meeting", DueDate: &newDue, EnableReminder: false,
	})
	assert.NoError(t, err)
	assert.False(t, reminders.Pending(updated.ID))
}

func TestCancelReminderIsIdempotentAndPersists(t *testing.T) {
	vs, reminders, db, cleanup := newTodoViewState(t)
	defer cleanup()

	todo, err := vs.AddTodo(TodoInput{
		Title: "cancel me", DueDate: farFuture(), EnableReminder: true,
	})
	assert.NoError(t, err)

	assert.NoError(t, vs.CancelReminder(todo))
	assert.False(t, reminders.Pending(todo.ID))

	stored, err := services.TodoServiceInstance.GetTodoById(db, todo.ID)
	assert.NoError(t, err)
	assert.False(t, stored.EnableReminder)

	// A second cancel on the already-disabled todo is a no-op.
	assert.NoError(t, vs.CancelReminder(stored))
}

func TestDeleteTodoCancelsReminder(t *testing.T) {
	vs, reminders, _, cleanup := newTodoViewState(t)
	defer cleanup()

	todo, err := vs.AddTodo(TodoInput{
		Title: "short lived", DueDate: farFuture(), EnableReminder: true,
	})
	assert.NoError(t, err)
	assert.True(t, reminders.Pending(todo.ID))

	assert.NoError(t, vs.DeleteTodo(todo))
	assert.False(t, reminders.Pending(todo.ID))
	assert.Empty(t, vs.Todos().Get())
}

func TestDeleteTagUnlinksTodos(t *testing.T) {
	vs, _, db, cleanup := newTodoViewState(t)
	defer cleanup()

	assert.NoError(t, vs.AddTag("home", 3))
	tag := vs.Tags().Get()[0]

	tagged, err := vs.AddTodo(TodoInput{Title: "tagged", TagID: &tag.ID})
	assert.NoError(t, err)
	plain, err := vs.AddTodo(TodoInput{Title: "plain"})
	assert.NoError(t, err)

	assert.NoError(t, vs.DeleteTag(tag))
	assert.Empty(t, vs.Tags().Get())

	stored, err := services.TodoServiceInstance.GetTodoById(db, tagged.ID)
	assert.NoError(t, err)
	assert.Nil(t, stored.TagID)

	// The unrelated todo is untouched and both records survive.
	_, err = services.TodoServiceInstance.GetTodoById(db, plain.ID)
	assert.NoError(t, err)
	assert.Len(t, vs.Todos().Get(), 2)
}

func TestStoreFailureLandsInErrorSlot(t *testing.T) {
	db, _, closeDB := testutils.SetupMockDB()
	defer closeDB()

	reminders := scheduler.NewReminderScheduler(silentNotifier{})
	defer reminders.Stop()

	// Every query against the unprimed mock fails; the initial reloads must
	// surface that through the error slot instead of panicking.
	vs := NewTodoViewState(db, services.TodoServiceInstance, services.TagServiceInstance, reminders)
	defer vs.Close()

	assert.NotEmpty(t, vs.LastError().Get())
	assert.Empty(t, vs.Todos().Get())
}

func TestConcurrentFilterChangesPublishFinalState(t *testing.T) {
	vs, _, _, cleanup := newTodoViewState(t)
	defer cleanup()

	_, err := vs.AddTodo(TodoInput{Title: "flip"})
	assert.NoError(t, err)
	assert.NoError(t, vs.ToggleTodo(vs.Todos().Get()[0]))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vs.ToggleShowCompleted()
		}()
	}
	wg.Wait()

	// An even number of toggles lands back on hidden completed; the last
	// published list must reflect that final state, not an earlier one.
	assert.False(t, vs.Filters().ShowCompleted)
	assert.Empty(t, vs.Todos().Get())
	assert.Equal(t, 0, vs.Count().Get())
}

func TestErrorSlotRecordsAndClears(t *testing.T) {
	vs, _, _, cleanup := newTodoViewState(t)
	defer cleanup()

	_, err := vs.AddTodo(TodoInput{Title: "   "})
	assert.Error(t, err)
	assert.NotEmpty(t, vs.LastError().Get())

	_, err = vs.AddTodo(TodoInput{Title: "valid"})
	assert.NoError(t, err)
	assert.Empty(t, vs.LastError().Get())
}
