package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"daymark-app/daymark/broker"
	"daymark-app/daymark/database"
	"daymark-app/daymark/models"
)

// listOrder partitions todos with a due date ahead of those without, earliest
// due date first, newest creation first within each group. It matches the
// ISO-8601 TEXT shape of the timestamp columns.
const listOrder = `CASE WHEN due_date IS NULL THEN 1 ELSE 0 END, due_date ASC, created_at DESC`

// dayOrder sorts a single day's todos: timed entries first by due timestamp,
// then priority descending.
const dayOrder = `CASE WHEN time(due_date) IS NULL THEN 1 ELSE 0 END, due_date ASC, priority DESC`

type TodoServiceInterface interface {
	GetAllTodos(db *database.Database) ([]models.Todo, error)
	GetUncompletedTodos(db *database.Database) ([]models.Todo, error)
	GetCompletedTodos(db *database.Database) ([]models.Todo, error)
	GetTodoById(db *database.Database, id int64) (models.Todo, error)
	GetTodosByDate(db *database.Database, date string) ([]models.Todo, error)
	GetTodoDatesInMonth(db *database.Database, month string) ([]string, error)
	GetTodosByMonth(db *database.Database, month string) ([]models.Todo, error)
	GetPendingReminders(db *database.Database) ([]models.Todo, error)
	CountTodosByDate(db *database.Database, date string) (total int64, completed int64, err error)
	CreateTodo(db *database.Database, todo models.Todo) (models.Todo, error)
	UpdateTodo(db *database.Database, todo models.Todo) (models.Todo, error)
	DeleteTodo(db *database.Database, id int64) error
}

type TodoService struct{}

func (s *TodoService) GetAllTodos(db *database.Database) ([]models.Todo, error) {
	var todos []models.Todo
	err := db.DB.Order(listOrder).Preload("Tag").Find(&todos).Error
	return todos, err
}

func (s *TodoService) GetUncompletedTodos(db *database.Database) ([]models.Todo, error) {
	var todos []models.Todo
	err := db.DB.Where("is_completed = ?", false).
		Order(listOrder).
		Preload("Tag").
		Find(&todos).Error
	return todos, err
}

func (s *TodoService) GetCompletedTodos(db *database.Database) ([]models.Todo, error) {
	var todos []models.Todo
	err := db.DB.Where("is_completed = ?", true).
		Order(listOrder).
		Preload("Tag").
		Find(&todos).Error
	return todos, err
}

func (s *TodoService) GetTodoById(db *database.Database, id int64) (models.Todo, error) {
	var todo models.Todo
	if err := db.DB.Preload("Tag").First(&todo, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Todo{}, ErrTodoNotFound
		}
		return models.Todo{}, err
	}
	return todo, nil
}

// GetTodosByDate returns every todo due on the given yyyy-MM-dd day.
func (s *TodoService) GetTodosByDate(db *database.Database, date string) ([]models.Todo, error) {
	var todos []models.Todo
	err := db.DB.Where("date(due_date) = ?", date).
		Order(dayOrder).
		Preload("Tag").
		Find(&todos).Error
	return todos, err
}

// GetTodoDatesInMonth returns the distinct yyyy-MM-dd dates inside the given
// yyyy-MM month that have at least one due todo. Scoped at the store so the
// full todo set never has to be loaded.
func (s *TodoService) GetTodoDatesInMonth(db *database.Database, month string) ([]string, error) {
	var dates []string
	err := db.DB.Raw(
		`SELECT DISTINCT date(due_date) FROM todos
		 WHERE due_date IS NOT NULL AND strftime('%Y-%m', due_date) = ?`,
		month,
	).Scan(&dates).Error
	return dates, err
}

func (s *TodoService) GetTodosByMonth(db *database.Database, month string) ([]models.Todo, error) {
	var todos []models.Todo
	err := db.DB.Where("due_date IS NOT NULL AND strftime('%Y-%m', due_date) = ?", month).
		Order("due_date ASC").
		Preload("Tag").
		Find(&todos).Error
	return todos, err
}

// GetPendingReminders lists todos whose reminder flag is set and that still
// carry a due date. Used to rebuild scheduler state after a restart.
func (s *TodoService) GetPendingReminders(db *database.Database) ([]models.Todo, error) {
	var todos []models.Todo
	err := db.DB.Where("enable_reminder = ? AND due_date IS NOT NULL", true).
		Find(&todos).Error
	return todos, err
}

func (s *TodoService) CountTodosByDate(db *database.Database, date string) (int64, int64, error) {
	var total, completed int64
	if err := db.DB.Model(&models.Todo{}).
		Where("date(due_date) = ?", date).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := db.DB.Model(&models.Todo{}).
		Where("date(due_date) = ? AND is_completed = ?", date, true).
		Count(&completed).Error; err != nil {
		return 0, 0, err
	}
	return total, completed, nil
}

func (s *TodoService) CreateTodo(db *database.Database, todo models.Todo) (models.Todo, error) {
	if strings.TrimSpace(todo.Title) == "" {
		return models.Todo{}, ErrTitleRequired
	}
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = models.NowLocal()
	}
	todo.Tag = nil

	if err := db.DB.Create(&todo).Error; err != nil {
		return models.Todo{}, err
	}

	broker.Publish(broker.TodoEventsTopic, broker.NewEvent(
		broker.TodoCreated, "todo", todo.ID, todoPayload(todo)))

	return s.GetTodoById(db, todo.ID)
}

// UpdateTodo persists a full replacement of the record; callers submit the
// complete updated copy, never a partial patch.
func (s *TodoService) UpdateTodo(db *database.Database, todo models.Todo) (models.Todo, error) {
	if strings.TrimSpace(todo.Title) == "" {
		return models.Todo{}, ErrTitleRequired
	}

	existing, err := s.GetTodoById(db, todo.ID)
	if err != nil {
		return models.Todo{}, err
	}
	todo.CreatedAt = existing.CreatedAt

	if err := db.DB.Omit(clause.Associations).Save(&todo).Error; err != nil {
		return models.Todo{}, err
	}

	payload := todoPayload(todo)
	payload["previous_due_date"] = dueDateString(existing.DueDate)
	broker.Publish(broker.TodoEventsTopic, broker.NewEvent(
		broker.TodoUpdated, "todo", todo.ID, payload))

	return s.GetTodoById(db, todo.ID)
}

func (s *TodoService) DeleteTodo(db *database.Database, id int64) error {
	todo, err := s.GetTodoById(db, id)
	if err != nil {
		return err
	}

	if err := db.DB.Delete(&models.Todo{}, "id = ?", id).Error; err != nil {
		return err
	}

	broker.Publish(broker.TodoEventsTopic, broker.NewEvent(
		broker.TodoDeleted, "todo", id, todoPayload(todo)))

	return nil
}

func todoPayload(todo models.Todo) map[string]interface{} {
	return map[string]interface{}{
		"title":        todo.Title,
		"is_completed": todo.IsCompleted,
		"due_date":     dueDateString(todo.DueDate),
	}
}

func dueDateString(due *models.LocalDateTime) interface{} {
	if due == nil {
		return nil
	}
	return due.String()
}

var TodoServiceInstance TodoServiceInterface = &TodoService{}
