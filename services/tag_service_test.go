package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"daymark-app/daymark/models"
	"daymark-app/daymark/testutils"
)

func TestCreateTagRequiresName(t *testing.T) {
	db, cleanup := testutils.OpenTestDB()
	defer cleanup()

	_, err := TagServiceInstance.CreateTag(db, models.Tag{Name: " "})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestGetAllTagsSortedByName(t *testing.T) {
	db, cleanup := testutils.OpenTestDB()
	defer cleanup()

	for _, name := range []string{"urgent", "chores", "later"} {
		_, err := TagServiceInstance.CreateTag(db, models.Tag{Name: name, Color: 1})
		assert.NoError(t, err)
	}

	tags, err := TagServiceInstance.GetAllTags(db)
	assert.NoError(t, err)

	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	assert.Equal(t, []string{"chores", "later", "urgent"}, names)
}

func TestDeleteTagLeavesTodosInPlace(t *testing.T) {
	db, cleanup := testutils.OpenTestDB()
	defer cleanup()

	tag, err := TagServiceInstance.CreateTag(db, models.Tag{Name: "work", Color: 2})
	assert.NoError(t, err)

	todo, err := TodoServiceInstance.CreateTodo(db, models.Todo{Title: "tagged", TagID: &tag.ID})
	assert.NoError(t, err)

	assert.NoError(t, TagServiceInstance.DeleteTag(db, tag.ID))
	_, err = TagServiceInstance.GetTagById(db, tag.ID)
	assert.ErrorIs(t, err, ErrTagNotFound)

	// The reference is soft; the todo record survives the tag.
	var tagID *int64
	err = db.DB.Raw("SELECT tag_id FROM todos WHERE id = ?", todo.ID).Scan(&tagID).Error
	assert.NoError(t, err)
	if assert.NotNil(t, tagID) {
		assert.Equal(t, tag.ID, *tagID)
	}
}

func TestDeleteTagNotFound(t *testing.T) {
	db, cleanup := testutils.OpenTestDB()
	defer cleanup()

	assert.ErrorIs(t, TagServiceInstance.DeleteTag(db, 404), ErrTagNotFound)
}
