package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"daymark-app/daymark/database"
	"daymark-app/daymark/models"
	"daymark-app/daymark/services"
	"daymark-app/daymark/viewstate"
)

// todoRequest is the payload for creating or replacing a todo. DueDate takes
// either "2006-01-02T15:04:05" or a bare "2006-01-02".
type todoRequest struct {
	Title          string  `json:"title" binding:"required"`
	Note           *string `json:"note"`
	TagID          *int64  `json:"tag_id"`
	Priority       int     `json:"priority"`
	DueDate        *string `json:"due_date"`
	EnableReminder bool    `json:"enable_reminder"`
}

type todoFiltersRequest struct {
	ShowCompleted *bool   `json:"show_completed"`
	TagID         *int64  `json:"tag_id"`
	ClearTag      bool    `json:"clear_tag"`
	SearchQuery   *string `json:"search_query"`
}

func RegisterTodoRoutes(group *gin.RouterGroup, db *database.Database, todoService services.TodoServiceInterface, vs *viewstate.TodoViewState) {
	group.GET("/todos", func(c *gin.Context) { GetTodosView(c, vs) })
	group.POST("/todos", func(c *gin.Context) { CreateTodo(c, vs) })
	group.GET("/todos/:id", func(c *gin.Context) { GetTodoById(c, db, todoService) })
	group.PUT("/todos/:id", func(c *gin.Context) { UpdateTodo(c, db, todoService, vs) })
	group.DELETE("/todos/:id", func(c *gin.Context) { DeleteTodo(c, db, todoService, vs) })
	group.POST("/todos/:id/toggle", func(c *gin.Context) { ToggleTodo(c, db, todoService, vs) })
	group.POST("/todos/:id/cancel-reminder", func(c *gin.Context) { CancelReminder(c, db, todoService, vs) })
	group.PUT("/todos/filters", func(c *gin.Context) { UpdateTodoFilters(c, vs) })
}

// GetTodosView returns the derived todo screen: the filtered list, its count,
// the tag palette and the current filters.
func GetTodosView(c *gin.Context, vs *viewstate.TodoViewState) {
	c.JSON(http.StatusOK, gin.H{
		"todos":      vs.Todos().Get(),
		"count":      vs.Count().Get(),
		"tags":       vs.Tags().Get(),
		"filters":    vs.Filters(),
		"last_error": vs.LastError().Get(),
	})
}

func CreateTodo(c *gin.Context, vs *viewstate.TodoViewState) {
	var req todoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input, err := todoInputFromRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := vs.AddTodo(input)
	if err != nil {
		if errors.Is(err, services.ErrTitleRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func GetTodoById(c *gin.Context, db *database.Database, todoService services.TodoServiceInterface) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid todo id"})
		return
	}

	todo, err := todoService.GetTodoById(db, id)
	if err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, todo)
}

func UpdateTodo(c *gin.Context, db *database.Database, todoService services.TodoServiceInterface, vs *viewstate.TodoViewState) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid todo id"})
		return
	}

	var req todoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input, err := todoInputFromRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := todoService.GetTodoById(db, id)
	if err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updated, err := vs.UpdateTodo(existing, input)
	if err != nil {
		if errors.Is(err, services.ErrTitleRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func DeleteTodo(c *gin.Context, db *database.Database, todoService services.TodoServiceInterface, vs *viewstate.TodoViewState) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid todo id"})
		return
	}

	todo, err := todoService.GetTodoById(db, id)
	if err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := vs.DeleteTodo(todo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusNoContent, gin.H{})
}

func ToggleTodo(c *gin.Context, db *database.Database, todoService services.TodoServiceInterface, vs *viewstate.TodoViewState) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid todo id"})
		return
	}

	todo, err := todoService.GetTodoById(db, id)
	if err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := vs.ToggleTodo(todo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_completed": !todo.IsCompleted})
}

func CancelReminder(c *gin.Context, db *database.Database, todoService services.TodoServiceInterface, vs *viewstate.TodoViewState) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid todo id"})
		return
	}

	todo, err := todoService.GetTodoById(db, id)
	if err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := vs.CancelReminder(todo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "enable_reminder": false})
}

// UpdateTodoFilters applies partial filter changes; omitted fields keep their
// current value. ClearTag removes the tag filter since a JSON null tag_id is
// indistinguishable from an absent one.
func UpdateTodoFilters(c *gin.Context, vs *viewstate.TodoViewState) {
	var req todoFiltersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ShowCompleted != nil {
		vs.SetShowCompleted(*req.ShowCompleted)
	}
	if req.ClearTag {
		vs.SelectTag(nil)
	} else if req.TagID != nil {
		vs.SelectTag(req.TagID)
	}
	if req.SearchQuery != nil {
		vs.SetSearchQuery(*req.SearchQuery)
	}

	c.JSON(http.StatusOK, vs.Filters())
}

var errPriorityOutOfRange = errors.New("priority must be between 0 and 2")

func todoInputFromRequest(req todoRequest) (viewstate.TodoInput, error) {
	if req.Priority < int(models.PriorityLow) || req.Priority > int(models.PriorityHigh) {
		return viewstate.TodoInput{}, errPriorityOutOfRange
	}

	input := viewstate.TodoInput{
		Title:          req.Title,
		Note:           req.Note,
		TagID:          req.TagID,
		Priority:       models.Priority(req.Priority),
		EnableReminder: req.EnableReminder,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		parsed, err := models.ParseLocalDateTime(*req.DueDate)
		if err != nil {
			return viewstate.TodoInput{}, err
		}
		due := parsed.Time
		input.DueDate = &due
	}
	return input, nil
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
