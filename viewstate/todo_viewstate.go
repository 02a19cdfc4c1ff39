package viewstate

import (
	"strings"
	"sync"
	"time"

	"daymark-app/daymark/broker"
	"daymark-app/daymark/database"
	"daymark-app/daymark/models"
	"daymark-app/daymark/scheduler"
	"daymark-app/daymark/services"
)

// TodoFilters is the user-adjustable filter state of the todo screen.
type TodoFilters struct {
	ShowCompleted bool   `json:"show_completed"`
	SelectedTagID *int64 `json:"selected_tag_id,omitempty"`
	SearchQuery   string `json:"search_query"`
}

// TodoInput carries the fields a client submits when creating or editing a
// todo.
type TodoInput struct {
	Title          string
	Note           *string
	TagID          *int64
	Priority       models.Priority
	DueDate        *time.Time
	EnableReminder bool
}

// TodoViewState combines the completed/uncompleted todo streams with the
// filter state into one derived, ordered list, and translates user intents
// into repository calls plus reminder scheduling.
type TodoViewState struct {
	db        *database.Database
	todoSvc   services.TodoServiceInterface
	tagSvc    services.TagServiceInterface
	reminders *scheduler.ReminderScheduler

	stateMu     sync.Mutex
	filters     TodoFilters
	uncompleted []models.Todo
	completed   []models.Todo

	// publishMu serializes recompute end to end so derived values are
	// published in the order they were computed.
	publishMu sync.Mutex

	todos     *Observable[[]models.Todo]
	count     *Observable[int]
	tags      *Observable[[]models.Tag]
	lastError *Observable[string]

	unsubscribe []func()
}

func NewTodoViewState(
	db *database.Database,
	todoSvc services.TodoServiceInterface,
	tagSvc services.TagServiceInterface,
	reminders *scheduler.ReminderScheduler,
) *TodoViewState {
	vs := &TodoViewState{
		db:        db,
		todoSvc:   todoSvc,
		tagSvc:    tagSvc,
		reminders: reminders,
		todos:     NewObservable[[]models.Todo](nil),
		count:     NewObservable(0),
		tags:      NewObservable[[]models.Tag](nil),
		lastError: NewObservable(""),
	}

	vs.unsubscribe = append(vs.unsubscribe,
		broker.Subscribe(broker.TodoEventsTopic, func(broker.Event) { vs.reloadTodos() }),
		broker.Subscribe(broker.TagEventsTopic, func(broker.Event) {
			vs.reloadTags()
			vs.reloadTodos()
		}),
	)

	vs.reloadTags()
	vs.reloadTodos()
	return vs
}

// Close tears down the bus subscriptions. In-flight mutations are not
// cancelled.
func (vs *TodoViewState) Close() {
	for _, unsub := range vs.unsubscribe {
		unsub()
	}
	vs.unsubscribe = nil
}

func (vs *TodoViewState) Todos() *Observable[[]models.Todo] { return vs.todos }
func (vs *TodoViewState) Count() *Observable[int]           { return vs.count }
func (vs *TodoViewState) Tags() *Observable[[]models.Tag]   { return vs.tags }
func (vs *TodoViewState) LastError() *Observable[string]    { return vs.lastError }

func (vs *TodoViewState) Filters() TodoFilters {
	vs.stateMu.Lock()
	defer vs.stateMu.Unlock()
	return vs.filters
}

func (vs *TodoViewState) SetShowCompleted(show bool) {
	vs.stateMu.Lock()
	vs.filters.ShowCompleted = show
	vs.stateMu.Unlock()
	vs.recompute()
}

func (vs *TodoViewState) ToggleShowCompleted() {
	vs.stateMu.Lock()
	vs.filters.ShowCompleted = !vs.filters.ShowCompleted
	vs.stateMu.Unlock()
	vs.recompute()
}

// SelectTag filters to a single tag; nil clears the filter.
func (vs *TodoViewState) SelectTag(tagID *int64) {
	vs.stateMu.Lock()
	vs.filters.SelectedTagID = tagID
	vs.stateMu.Unlock()
	vs.recompute()
}

func (vs *TodoViewState) SetSearchQuery(query string) {
	vs.stateMu.Lock()
	vs.filters.SearchQuery = query
	vs.stateMu.Unlock()
	vs.recompute()
}

// AddTodo persists a new todo and, when asked, schedules its reminder once
// the write has completed and yielded the generated id.
func (vs *TodoViewState) AddTodo(input TodoInput) (models.Todo, error) {
	todo := models.Todo{
		Title:          input.Title,
		Note:           input.Note,
		TagID:          input.TagID,
		Priority:       input.Priority,
		EnableReminder: input.EnableReminder,
	}
	if input.DueDate != nil {
		todo.DueDate = models.LocalDateTimePtr(*input.DueDate)
	}

	created, err := vs.todoSvc.CreateTodo(vs.db, todo)
	if err != nil {
		vs.recordError(err)
		return models.Todo{}, err
	}
	vs.clearError()

	if created.EnableReminder && created.DueDate != nil {
		vs.reminders.Schedule(created.ID, created.Title, created.DueDate.Time)
	}
	return created, nil
}

// ToggleTodo flips completion and persists the full record. No reminder side
// effects.
func (vs *TodoViewState) ToggleTodo(todo models.Todo) error {
	todo.IsCompleted = !todo.IsCompleted
	if _, err := vs.todoSvc.UpdateTodo(vs.db, todo); err != nil {
		vs.recordError(err)
		return err
	}
	vs.clearError()
	return nil
}

// UpdateTodo replaces the record. Any live reminder is cancelled first and
// only rescheduled from the new state: the due date or the flag may have
// changed, so cancel-then-maybe-reschedule, never reschedule-if-changed.
func (vs *TodoViewState) UpdateTodo(existing models.Todo, input TodoInput) (models.Todo, error) {
	if existing.EnableReminder {
		vs.reminders.Cancel(existing.ID)
	}

	updated := existing
	updated.Title = input.Title
	updated.Note = input.Note
	updated.TagID = input.TagID
	updated.Priority = input.Priority
	updated.EnableReminder = input.EnableReminder
	updated.DueDate = nil
	if input.DueDate != nil {
		updated.DueDate = models.LocalDateTimePtr(*input.DueDate)
	}

	saved, err := vs.todoSvc.UpdateTodo(vs.db, updated)
	if err != nil {
		vs.recordError(err)
		return models.Todo{}, err
	}
	vs.clearError()

	if saved.EnableReminder && saved.DueDate != nil {
		vs.reminders.Schedule(saved.ID, saved.Title, saved.DueDate.Time)
	}
	return saved, nil
}

// CancelReminder is a no-op unless a reminder is currently enabled.
func (vs *TodoViewState) CancelReminder(todo models.Todo) error {
	if !todo.EnableReminder {
		return nil
	}

	vs.reminders.Cancel(todo.ID)

	todo.EnableReminder = false
	if _, err := vs.todoSvc.UpdateTodo(vs.db, todo); err != nil {
		vs.recordError(err)
		return err
	}
	vs.clearError()
	return nil
}

func (vs *TodoViewState) DeleteTodo(todo models.Todo) error {
	if err := vs.todoSvc.DeleteTodo(vs.db, todo.ID); err != nil {
		vs.recordError(err)
		return err
	}
	// A deleted todo must never fire a notification later.
	vs.reminders.Cancel(todo.ID)
	vs.clearError()
	return nil
}

func (vs *TodoViewState) AddTag(name string, color int64) error {
	if _, err := vs.tagSvc.CreateTag(vs.db, models.Tag{Name: name, Color: color}); err != nil {
		vs.recordError(err)
		return err
	}
	vs.clearError()
	return nil
}

// DeleteTag unlinks the tag from every currently-loaded todo, then deletes
// the tag record. The two phases are best-effort: a failed unlink is recorded
// and skipped, already-unlinked todos stay unlinked.
func (vs *TodoViewState) DeleteTag(tag models.Tag) error {
	vs.stateMu.Lock()
	loaded := make([]models.Todo, 0, len(vs.uncompleted)+len(vs.completed))
	loaded = append(loaded, vs.uncompleted...)
	loaded = append(loaded, vs.completed...)
	vs.stateMu.Unlock()

	var lastErr error
	for _, todo := range loaded {
		if todo.TagID == nil || *todo.TagID != tag.ID {
			continue
		}
		todo.TagID = nil
		todo.Tag = nil
		if _, err := vs.todoSvc.UpdateTodo(vs.db, todo); err != nil {
			lastErr = err
		}
	}

	if err := vs.tagSvc.DeleteTag(vs.db, tag.ID); err != nil {
		lastErr = err
	}

	if lastErr != nil {
		vs.recordError(lastErr)
		return lastErr
	}
	vs.clearError()
	return nil
}

func (vs *TodoViewState) reloadTodos() {
	uncompleted, err := vs.todoSvc.GetUncompletedTodos(vs.db)
	if err != nil {
		vs.recordError(err)
		return
	}
	completed, err := vs.todoSvc.GetCompletedTodos(vs.db)
	if err != nil {
		vs.recordError(err)
		return
	}

	vs.stateMu.Lock()
	vs.uncompleted = uncompleted
	vs.completed = completed
	vs.stateMu.Unlock()
	vs.recompute()
}

func (vs *TodoViewState) reloadTags() {
	tags, err := vs.tagSvc.GetAllTags(vs.db)
	if err != nil {
		vs.recordError(err)
		return
	}
	vs.tags.Set(tags)
}

func (vs *TodoViewState) recompute() {
	vs.publishMu.Lock()
	defer vs.publishMu.Unlock()

	vs.stateMu.Lock()
	filtered := combineTodos(vs.uncompleted, vs.completed, vs.filters)
	vs.stateMu.Unlock()

	vs.todos.Set(filtered)
	vs.count.Set(len(filtered))
}

func (vs *TodoViewState) recordError(err error) {
	vs.lastError.Set(err.Error())
}

func (vs *TodoViewState) clearError() {
	if vs.lastError.Get() != "" {
		vs.lastError.Set("")
	}
}

// combineTodos is the pure combination function: uncompleted first (each
// input already store-ordered), completed appended only when shown, then the
// tag filter and the case-insensitive title filter.
func combineTodos(uncompleted, completed []models.Todo, filters TodoFilters) []models.Todo {
	all := make([]models.Todo, 0, len(uncompleted)+len(completed))
	all = append(all, uncompleted...)
	if filters.ShowCompleted {
		all = append(all, completed...)
	}

	query := strings.ToLower(filters.SearchQuery)
	result := make([]models.Todo, 0, len(all))
	for _, todo := range all {
		if filters.SelectedTagID != nil &&
			(todo.TagID == nil || *todo.TagID != *filters.SelectedTagID) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(todo.Title), query) {
			continue
		}
		result = append(result, todo)
	}
	return result
}
