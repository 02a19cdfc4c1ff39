package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"daymark-app/daymark/database"
	"daymark-app/daymark/services"
	"daymark-app/daymark/utils/dateutil"
	"daymark-app/daymark/viewstate"
)

type selectDateRequest struct {
	Date string `json:"date" binding:"required"`
}

func RegisterCalendarRoutes(group *gin.RouterGroup, db *database.Database, todoService services.TodoServiceInterface, vs *viewstate.CalendarViewState) {
	group.GET("/calendar", func(c *gin.Context) { GetCalendarView(c, vs) })
	group.PUT("/calendar/date", func(c *gin.Context) { SelectCalendarDate(c, vs) })
	group.POST("/calendar/previous", func(c *gin.Context) { CalendarPreviousMonth(c, vs) })
	group.POST("/calendar/next", func(c *gin.Context) { CalendarNextMonth(c, vs) })
	group.POST("/calendar/today", func(c *gin.Context) { CalendarToday(c, vs) })
	group.POST("/calendar/todos", func(c *gin.Context) { CreateCalendarTodo(c, vs) })
	group.PUT("/calendar/todos/:id", func(c *gin.Context) { UpdateCalendarTodo(c, db, todoService, vs) })
	group.POST("/calendar/todos/:id/toggle", func(c *gin.Context) { ToggleCalendarTodo(c, db, todoService, vs) })
	group.DELETE("/calendar/todos/:id", func(c *gin.Context) { DeleteCalendarTodo(c, db, todoService, vs) })
	group.GET("/calendar/month/:month", func(c *gin.Context) { GetTodosByMonth(c, db, todoService) })
}

// GetCalendarView returns the month screen: marked dates for the visible
// month, the selected day's todos and that day's completion stats.
func GetCalendarView(c *gin.Context, vs *viewstate.CalendarViewState) {
	c.JSON(http.StatusOK, calendarSnapshot(vs))
}

func SelectCalendarDate(c *gin.Context, vs *viewstate.CalendarViewState) {
	var req selectDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	day, err := dateutil.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be yyyy-MM-dd"})
		return
	}

	vs.SelectDate(day)
	c.JSON(http.StatusOK, calendarSnapshot(vs))
}

func CalendarPreviousMonth(c *gin.Context, vs *viewstate.CalendarViewState) {
	vs.GoToPreviousMonth()
	c.JSON(http.StatusOK, calendarSnapshot(vs))
}

func CalendarNextMonth(c *gin.Context, vs *viewstate.CalendarViewState) {
	vs.GoToNextMonth()
	c.JSON(http.StatusOK, calendarSnapshot(vs))
}

func CalendarToday(c *gin.Context, vs *viewstate.CalendarViewState) {
	vs.GoToToday()
	c.JSON(http.StatusOK, calendarSnapshot(vs))
}

// CreateCalendarTodo creates a todo anchored to the selected day when the
// payload carries no due date of its own.
func CreateCalendarTodo(c *gin.Context, vs *viewstate.CalendarViewState) {
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

func UpdateCalendarTodo(c *gin.Context, db *database.Database, todoService services.TodoServiceInterface, vs *viewstate.CalendarViewState) {
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

func ToggleCalendarTodo(c *gin.Context, db *database.Database, todoService services.TodoServiceInterface, vs *viewstate.CalendarViewState) {
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

func DeleteCalendarTodo(c *gin.Context, db *database.Database, todoService services.TodoServiceInterface, vs *viewstate.CalendarViewState) {
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

// GetTodosByMonth lists every dated todo of a yyyy-MM month, ordered by due
// date.
func GetTodosByMonth(c *gin.Context, db *database.Database, todoService services.TodoServiceInterface) {
	month := c.Param("month")
	if _, err := dateutil.ParseDate(month + "-01"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be yyyy-MM"})
		return
	}

	todos, err := todoService.GetTodosByMonth(db, month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, todos)
}

func calendarSnapshot(vs *viewstate.CalendarViewState) gin.H {
	return gin.H{
		"selected_date": vs.SelectedDate().Get(),
		"current_month": vs.CurrentMonth().Get(),
		"marked_dates":  vs.MarkedDates().Get(),
		"todos":         vs.TodosForDay().Get(),
		"stats":         vs.Stats().Get(),
		"last_error":    vs.LastError().Get(),
	}
}
