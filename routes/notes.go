package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"daymark-app/daymark/database"
	"daymark-app/daymark/services"
	"daymark-app/daymark/viewstate"
)

type noteRequest struct {
	Title    *string `json:"title"`
	Content  string  `json:"content" binding:"required"`
	FolderID *int64  `json:"folder_id"`
	IsPinned bool    `json:"is_pinned"`
	Color    *int64  `json:"color"`
}

type moveNotesRequest struct {
	NoteIDs  []int64 `json:"note_ids" binding:"required"`
	FolderID *int64  `json:"folder_id"`
}

type noteFiltersRequest struct {
	FolderID    *int64  `json:"folder_id"`
	SearchQuery *string `json:"search_query"`
}

func RegisterNoteRoutes(group *gin.RouterGroup, db *database.Database, noteService services.NoteServiceInterface, vs *viewstate.NoteViewState) {
	group.GET("/notes", func(c *gin.Context) { GetNotesView(c, vs) })
	group.POST("/notes", func(c *gin.Context) { CreateNote(c, vs) })
	group.GET("/notes/:id", func(c *gin.Context) { GetNoteById(c, db, noteService) })
	group.PUT("/notes/:id", func(c *gin.Context) { UpdateNote(c, db, noteService, vs) })
	group.DELETE("/notes/:id", func(c *gin.Context) { DeleteNote(c, db, noteService, vs) })
	group.POST("/notes/:id/toggle-pin", func(c *gin.Context) { ToggleNotePin(c, db, noteService, vs) })
	group.POST("/notes/move", func(c *gin.Context) { MoveNotes(c, vs) })
	group.PUT("/notes/filters", func(c *gin.Context) { UpdateNoteFilters(c, vs) })
}

// GetNotesView returns the derived notes screen: the partitioned, searched
// list plus folders with their badge counts.
func GetNotesView(c *gin.Context, vs *viewstate.NoteViewState) {
	c.JSON(http.StatusOK, gin.H{
		"notes":           vs.Notes().Get(),
		"folders":         vs.Folders().Get(),
		"selected_folder": vs.SelectedFolder().Get(),
		"folder_counts":   vs.FolderCounts().Get(),
		"filters":         vs.Filters(),
		"last_error":      vs.LastError().Get(),
	})
}

func CreateNote(c *gin.Context, vs *viewstate.NoteViewState) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := vs.AddNote(viewstate.NoteInput{
		Title:    req.Title,
		Content:  req.Content,
		FolderID: req.FolderID,
		IsPinned: req.IsPinned,
		Color:    req.Color,
	})
	if err != nil {
		if errors.Is(err, services.ErrContentRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func GetNoteById(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid note id"})
		return
	}

	note, err := noteService.GetNoteById(db, id)
	if err != nil {
		if errors.Is(err, services.ErrNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, note)
}

func UpdateNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface, vs *viewstate.NoteViewState) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid note id"})
		return
	}

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := noteService.GetNoteById(db, id)
	if err != nil {
		if errors.Is(err, services.ErrNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updated, err := vs.UpdateNote(existing, viewstate.NoteInput{
		Title:    req.Title,
		Content:  req.Content,
		FolderID: req.FolderID,
		IsPinned: req.IsPinned,
		Color:    req.Color,
	})
	if err != nil {
		if errors.Is(err, services.ErrContentRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func DeleteNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface, vs *viewstate.NoteViewState) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid note id"})
		return
	}

	note, err := noteService.GetNoteById(db, id)
	if err != nil {
		if errors.Is(err, services.ErrNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := vs.DeleteNote(note); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusNoContent, gin.H{})
}

func ToggleNotePin(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface, vs *viewstate.NoteViewState) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid note id"})
		return
	}

	note, err := noteService.GetNoteById(db, id)
	if err != nil {
		if errors.Is(err, services.ErrNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := vs.TogglePin(note); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_pinned": !note.IsPinned})
}

func MoveNotes(c *gin.Context, vs *viewstate.NoteViewState) {
	var req moveNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := vs.MoveNotesToFolder(req.NoteIDs, req.FolderID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"moved": len(req.NoteIDs)})
}

func UpdateNoteFilters(c *gin.Context, vs *viewstate.NoteViewState) {
	var req noteFiltersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.FolderID != nil {
		vs.SelectFolder(*req.FolderID)
	}
	if req.SearchQuery != nil {
		vs.SetSearchQuery(*req.SearchQuery)
	}

	c.JSON(http.StatusOK, vs.Filters())
}
