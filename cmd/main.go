package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"daymark-app/daymark/broker"
	"daymark-app/daymark/config"
	"daymark-app/daymark/database"
	"daymark-app/daymark/middleware"
	"daymark-app/daymark/models"
	"daymark-app/daymark/routes"
	"daymark-app/daymark/scheduler"
	"daymark-app/daymark/services"
	"daymark-app/daymark/viewstate"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg.AppEnv)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	db, err := database.Setup(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// The NATS mirror is optional; the in-process bus carries everything the
	// app itself needs.
	if err := broker.InitProducer(cfg.NatsURL); err != nil {
		logger.Warn("event mirror unavailable, continuing without it", zap.Error(err))
	} else {
		defer broker.CloseProducer()
	}

	reminders := scheduler.NewReminderScheduler(services.NotificationServiceInstance)
	defer reminders.Stop()

	webSocketService := services.NewWebSocketService()
	services.WebSocketServiceInstance = webSocketService
	webSocketService.Start()
	defer webSocketService.Stop()

	todoView := viewstate.NewTodoViewState(db, services.TodoServiceInstance, services.TagServiceInstance, reminders)
	defer todoView.Close()
	noteView := viewstate.NewNoteViewState(db, services.NoteServiceInstance, services.FolderServiceInstance)
	defer noteView.Close()
	calendarView := viewstate.NewCalendarViewState(db, services.TodoServiceInstance, services.TagServiceInstance, reminders)
	defer calendarView.Close()

	pushSnapshots(webSocketService, todoView, noteView, calendarView)

	rehydrateReminders(db, reminders, logger)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	apiGroup := router.Group("/api/v1")
	routes.RegisterTodoRoutes(apiGroup, db, services.TodoServiceInstance, todoView)
	routes.RegisterTagRoutes(apiGroup, db, services.TagServiceInstance, todoView)
	routes.RegisterNoteRoutes(apiGroup, db, services.NoteServiceInstance, noteView)
	routes.RegisterFolderRoutes(apiGroup, db, services.FolderServiceInstance, noteView)
	routes.RegisterCalendarRoutes(apiGroup, db, services.TodoServiceInstance, calendarView)
	routes.RegisterWebSocketRoutes(router, webSocketService)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("shutting down")
		reminders.Stop()
		webSocketService.Stop()
		broker.CloseProducer()
		db.Close()
		os.Exit(0)
	}()

	logger.Info("server running", zap.String("port", cfg.AppPort))
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(appEnv string) *zap.Logger {
	if appEnv == "production" {
		logger, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return logger
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return logger
}

// pushSnapshots mirrors every derived-state change to connected clients, the
// error slots included.
func pushSnapshots(
	ws services.WebSocketServiceInterface,
	todoView *viewstate.TodoViewState,
	noteView *viewstate.NoteViewState,
	calendarView *viewstate.CalendarViewState,
) {
	broadcast := func(event string, payload interface{}) {
		ws.Broadcast(services.ServerMessage{Type: "snapshot", Event: event, Payload: payload})
	}

	todoView.Todos().Subscribe(func(v []models.Todo) { broadcast("todos", v) })
	todoView.Count().Subscribe(func(v int) { broadcast("todos.count", v) })
	todoView.Tags().Subscribe(func(v []models.Tag) { broadcast("tags", v) })
	todoView.LastError().Subscribe(func(v string) { broadcast("todos.error", v) })

	noteView.Notes().Subscribe(func(v []models.Note) { broadcast("notes", v) })
	noteView.Folders().Subscribe(func(v []models.Folder) { broadcast("folders", v) })
	noteView.FolderCounts().Subscribe(func(v map[int64]int) { broadcast("folders.counts", v) })
	noteView.LastError().Subscribe(func(v string) { broadcast("notes.error", v) })

	calendarView.MarkedDates().Subscribe(func(v []string) { broadcast("calendar.marked_dates", v) })
	calendarView.TodosForDay().Subscribe(func(v []models.Todo) { broadcast("calendar.todos", v) })
	calendarView.Stats().Subscribe(func(v viewstate.DateStats) { broadcast("calendar.stats", v) })
	calendarView.SelectedDate().Subscribe(func(v string) { broadcast("calendar.selected_date", v) })
	calendarView.CurrentMonth().Subscribe(func(v string) { broadcast("calendar.month", v) })
	calendarView.LastError().Subscribe(func(v string) { broadcast("calendar.error", v) })
}

func rehydrateReminders(db *database.Database, reminders *scheduler.ReminderScheduler, logger *zap.Logger) {
	pending, err := services.TodoServiceInstance.GetPendingReminders(db)
	if err != nil {
		logger.Error("failed to rehydrate reminders", zap.Error(err))
		return
	}

	for _, todo := range pending {
		if todo.DueDate == nil {
			continue
		}
		// Past-due reminders fire immediately rather than silently vanish.
		reminders.Schedule(todo.ID, todo.Title, todo.DueDate.Time)
	}
	logger.Info("reminders rehydrated", zap.Int("count", len(pending)))
}
