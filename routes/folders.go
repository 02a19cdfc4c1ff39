package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"daymark-app/daymark/database"
	"daymark-app/daymark/services"
	"daymark-app/daymark/viewstate"
)

type folderRequest struct {
	Name string `json:"name" binding:"required"`
}

func RegisterFolderRoutes(group *gin.RouterGroup, db *database.Database, folderService services.FolderServiceInterface, vs *viewstate.NoteViewState) {
	group.GET("/folders", func(c *gin.Context) { GetFolders(c, vs) })
	group.POST("/folders", func(c *gin.Context) { CreateFolder(c, vs) })
	group.DELETE("/folders/:id", func(c *gin.Context) { DeleteFolder(c, db, folderService, vs) })
}

// GetFolders lists the folder sidebar: virtual folders first, then user
// folders, with note counts per folder.
func GetFolders(c *gin.Context, vs *viewstate.NoteViewState) {
	c.JSON(http.StatusOK, gin.H{
		"folders":       vs.Folders().Get(),
		"folder_counts": vs.FolderCounts().Get(),
	})
}

func CreateFolder(c *gin.Context, vs *viewstate.NoteViewState) {
	var req folderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := vs.AddFolder(req.Name)
	if err != nil {
		if errors.Is(err, services.ErrNameRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, services.ErrFolderExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// DeleteFolder removes a user folder; its notes move to Uncategorized first.
func DeleteFolder(c *gin.Context, db *database.Database, folderService services.FolderServiceInterface, vs *viewstate.NoteViewState) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folder id"})
		return
	}

	folder, err := folderService.GetFolderById(db, id)
	if err != nil {
		if errors.Is(err, services.ErrFolderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := vs.DeleteFolder(folder); err != nil {
		if errors.Is(err, services.ErrFolderIsSystem) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusNoContent, gin.H{})
}
