package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"daymark-app/daymark/database"
	"daymark-app/daymark/services"
	"daymark-app/daymark/viewstate"
)

type tagRequest struct {
	Name  string `json:"name" binding:"required"`
	Color int64  `json:"color"`
}

func RegisterTagRoutes(group *gin.RouterGroup, db *database.Database, tagService services.TagServiceInterface, vs *viewstate.TodoViewState) {
	group.GET("/tags", func(c *gin.Context) { GetAllTags(c, db, tagService) })
	group.POST("/tags", func(c *gin.Context) { CreateTag(c, vs) })
	group.GET("/tags/:id", func(c *gin.Context) { GetTagById(c, db, tagService) })
	group.DELETE("/tags/:id", func(c *gin.Context) { DeleteTag(c, db, tagService, vs) })
}

func GetAllTags(c *gin.Context, db *database.Database, tagService services.TagServiceInterface) {
	tags, err := tagService.GetAllTags(db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tags)
}

func GetTagById(c *gin.Context, db *database.Database, tagService services.TagServiceInterface) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tag id"})
		return
	}

	tag, err := tagService.GetTagById(db, id)
	if err != nil {
		if errors.Is(err, services.ErrTagNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tag)
}

func CreateTag(c *gin.Context, vs *viewstate.TodoViewState) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := vs.AddTag(req.Name, req.Color); err != nil {
		if errors.Is(err, services.ErrNameRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": req.Name})
}

// DeleteTag removes a tag; todos carrying it are unlinked first, never
// deleted.
func DeleteTag(c *gin.Context, db *database.Database, tagService services.TagServiceInterface, vs *viewstate.TodoViewState) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tag id"})
		return
	}

	tag, err := tagService.GetTagById(db, id)
	if err != nil {
		if errors.Is(err, services.ErrTagNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := vs.DeleteTag(tag); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusNoContent, gin.H{})
}
