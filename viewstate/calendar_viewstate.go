package viewstate

import (
	"sort"
	"strings"
	"sync"
	"time"

	"daymark-app/daymark/broker"
	"daymark-app/daymark/database"
	"daymark-app/daymark/models"
	"daymark-app/daymark/scheduler"
	"daymark-app/daymark/services"
	"daymark-app/daymark/utils/dateutil"
)

// DateStats summarizes one day of the calendar.
type DateStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// CalendarViewState drives the month view: which dates carry todos, the
// todos of the selected day, and that day's completion stats. Mutations made
// here go through the same repository path as the todo screen, reminder
// orchestration included.
type CalendarViewState struct {
	db        *database.Database
	todoSvc   services.TodoServiceInterface
	tagSvc    services.TagServiceInterface
	reminders *scheduler.ReminderScheduler

	stateMu      sync.Mutex
	selectedDay  time.Time
	currentMonth time.Time

	selectedDate *Observable[string]
	month        *Observable[string]
	markedDates  *Observable[[]string]
	todosForDay  *Observable[[]models.Todo]
	stats        *Observable[DateStats]
	tags         *Observable[[]models.Tag]
	lastError    *Observable[string]

	unsubscribe []func()
}

func NewCalendarViewState(
	db *database.Database,
	todoSvc services.TodoServiceInterface,
	tagSvc services.TagServiceInterface,
	reminders *scheduler.ReminderScheduler,
) *CalendarViewState {
	today := time.Now()
	vs := &CalendarViewState{
		db:           db,
		todoSvc:      todoSvc,
		tagSvc:       tagSvc,
		reminders:    reminders,
		selectedDay:  today,
		currentMonth: dateutil.FirstOfMonth(today),
		selectedDate: NewObservable(dateutil.FormatDate(today)),
		month:        NewObservable(dateutil.FormatMonth(today)),
		markedDates:  NewObservable[[]string](nil),
		todosForDay:  NewObservable[[]models.Todo](nil),
		stats:        NewObservable(DateStats{}),
		tags:         NewObservable[[]models.Tag](nil),
		lastError:    NewObservable(""),
	}

	vs.unsubscribe = append(vs.unsubscribe,
		broker.Subscribe(broker.TodoEventsTopic, vs.handleTodoEvent),
		broker.Subscribe(broker.TagEventsTopic, func(broker.Event) { vs.reloadTags() }),
	)

	vs.reloadTags()
	vs.reloadMarkedDates()
	vs.reloadDay()
	return vs
}

func (vs *CalendarViewState) Close() {
	for _, unsub := range vs.unsubscribe {
		unsub()
	}
	vs.unsubscribe = nil
}

func (vs *CalendarViewState) SelectedDate() *Observable[string]      { return vs.selectedDate }
func (vs *CalendarViewState) CurrentMonth() *Observable[string]      { return vs.month }
func (vs *CalendarViewState) MarkedDates() *Observable[[]string]     { return vs.markedDates }
func (vs *CalendarViewState) TodosForDay() *Observable[[]models.Todo] { return vs.todosForDay }
func (vs *CalendarViewState) Stats() *Observable[DateStats]          { return vs.stats }
func (vs *CalendarViewState) Tags() *Observable[[]models.Tag]        { return vs.tags }
func (vs *CalendarViewState) LastError() *Observable[string]         { return vs.lastError }

// SelectDate moves the selection. Selecting a day outside the current month
// also navigates the month view there.
func (vs *CalendarViewState) SelectDate(day time.Time) {
	vs.stateMu.Lock()
	vs.selectedDay = day
	monthChanged := !dateutil.SameMonth(vs.currentMonth, day)
	if monthChanged {
		vs.currentMonth = dateutil.FirstOfMonth(day)
	}
	vs.stateMu.Unlock()

	vs.selectedDate.Set(dateutil.FormatDate(day))
	if monthChanged {
		vs.month.Set(dateutil.FormatMonth(day))
		vs.reloadMarkedDates()
	}
	vs.reloadDay()
}

// GoToPreviousMonth navigates back one month and selects its first day.
func (vs *CalendarViewState) GoToPreviousMonth() {
	vs.shiftMonth(-1)
}

// GoToNextMonth navigates forward one month and selects its first day.
func (vs *CalendarViewState) GoToNextMonth() {
	vs.shiftMonth(1)
}

// GoToToday jumps back to today and its month.
func (vs *CalendarViewState) GoToToday() {
	vs.SelectDate(time.Now())
}

func (vs *CalendarViewState) shiftMonth(n int) {
	vs.stateMu.Lock()
	next := dateutil.AddMonths(vs.currentMonth, n)
	vs.currentMonth = next
	// Month navigation always resets the selection to the first day.
	vs.selectedDay = next
	vs.stateMu.Unlock()

	vs.month.Set(dateutil.FormatMonth(next))
	vs.selectedDate.Set(dateutil.FormatDate(next))
	vs.reloadMarkedDates()
	vs.reloadDay()
}

// AddTodo creates a todo from the calendar screen; unless the input carries
// its own due date, the selected day is used.
func (vs *CalendarViewState) AddTodo(input TodoInput) (models.Todo, error) {
	if input.DueDate == nil {
		vs.stateMu.Lock()
		day := vs.selectedDay
		vs.stateMu.Unlock()
		due := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		input.DueDate = &due
	}

	todo := models.Todo{
		Title:          input.Title,
		Note:           input.Note,
		TagID:          input.TagID,
		Priority:       input.Priority,
		EnableReminder: input.EnableReminder,
		DueDate:        models.LocalDateTimePtr(*input.DueDate),
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

// UpdateTodo replaces the record from the calendar screen. Any live reminder
// is cancelled first and only rescheduled from the new state; the marked
// dates refresh through the change event when the due date moved.
func (vs *CalendarViewState) UpdateTodo(existing models.Todo, input TodoInput) (models.Todo, error) {
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

func (vs *CalendarViewState) ToggleTodo(todo models.Todo) error {
	todo.IsCompleted = !todo.IsCompleted
	if _, err := vs.todoSvc.UpdateTodo(vs.db, todo); err != nil {
		vs.recordError(err)
		return err
	}
	vs.clearError()
	return nil
}

func (vs *CalendarViewState) DeleteTodo(todo models.Todo) error {
	if err := vs.todoSvc.DeleteTodo(vs.db, todo.ID); err != nil {
		vs.recordError(err)
		return err
	}
	vs.reminders.Cancel(todo.ID)
	vs.clearError()
	return nil
}

// handleTodoEvent refreshes the day slice and stats on every todo change, and
// the month's marked dates only when the change could have touched this
// month: either the new or the previous due date falls inside it.
func (vs *CalendarViewState) handleTodoEvent(event broker.Event) {
	vs.stateMu.Lock()
	month := dateutil.FormatMonth(vs.currentMonth)
	vs.stateMu.Unlock()

	if eventTouchesMonth(event, month) {
		vs.reloadMarkedDates()
	}
	vs.reloadDay()
}

func eventTouchesMonth(event broker.Event, month string) bool {
	for _, key := range []string{"due_date", "previous_due_date"} {
		if s, ok := event.Payload[key].(string); ok && strings.HasPrefix(s, month) {
			return true
		}
	}
	// Deletions and creations without a due date cannot mark or unmark a day,
	// but a payload without recognizable dates is reloaded anyway.
	_, hasDue := event.Payload["due_date"]
	_, hasPrev := event.Payload["previous_due_date"]
	return !hasDue && !hasPrev
}

func (vs *CalendarViewState) reloadMarkedDates() {
	vs.stateMu.Lock()
	month := dateutil.FormatMonth(vs.currentMonth)
	vs.stateMu.Unlock()

	dates, err := vs.todoSvc.GetTodoDatesInMonth(vs.db, month)
	if err != nil {
		vs.recordError(err)
		return
	}
	sort.Strings(dates)
	vs.markedDates.Set(dates)
}

func (vs *CalendarViewState) reloadDay() {
	vs.stateMu.Lock()
	date := dateutil.FormatDate(vs.selectedDay)
	vs.stateMu.Unlock()

	todos, err := vs.todoSvc.GetTodosByDate(vs.db, date)
	if err != nil {
		vs.recordError(err)
		return
	}
	total, completed, err := vs.todoSvc.CountTodosByDate(vs.db, date)
	if err != nil {
		vs.recordError(err)
		return
	}

	vs.todosForDay.Set(todos)
	vs.stats.Set(DateStats{Total: int(total), Completed: int(completed)})
}

func (vs *CalendarViewState) reloadTags() {
	tags, err := vs.tagSvc.GetAllTags(vs.db)
	if err != nil {
		vs.recordError(err)
		return
	}
	vs.tags.Set(tags)
}

func (vs *CalendarViewState) recordError(err error) {
	vs.lastError.Set(err.Error())
}

func (vs *CalendarViewState) clearError() {
	if vs.lastError.Get() != "" {
		vs.lastError.Set("")
	}
}
