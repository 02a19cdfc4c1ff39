package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"daymark-app/daymark/broker"
	"daymark-app/daymark/database"
	"daymark-app/daymark/models"
)

type TagServiceInterface interface {
	GetAllTags(db *database.Database) ([]models.Tag, error)
	GetTagById(db *database.Database, id int64) (models.Tag, error)
	CreateTag(db *database.Database, tag models.Tag) (models.Tag, error)
	UpdateTag(db *database.Database, tag models.Tag) (models.Tag, error)
	DeleteTag(db *database.Database, id int64) error
}

type TagService struct{}

func (s *TagService) GetAllTags(db *database.Database) ([]models.Tag, error) {
	var tags []models.Tag
	err := db.DB.Order("name ASC").Find(&tags).Error
	return tags, err
}

func (s *TagService) GetTagById(db *database.Database, id int64) (models.Tag, error) {
	var tag models.Tag
	if err := db.DB.First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Tag{}, ErrTagNotFound
		}
		return models.Tag{}, err
	}
	return tag, nil
}

func (s *TagService) CreateTag(db *database.Database, tag models.Tag) (models.Tag, error) {
	if strings.TrimSpace(tag.Name) == "" {
		return models.Tag{}, ErrNameRequired
	}

	if err := db.DB.Create(&tag).Error; err != nil {
		return models.Tag{}, err
	}

	broker.Publish(broker.TagEventsTopic, broker.NewEvent(
		broker.TagCreated, "tag", tag.ID, map[string]interface{}{"name": tag.Name}))

	return tag, nil
}

func (s *TagService) UpdateTag(db *database.Database, tag models.Tag) (models.Tag, error) {
	if strings.TrimSpace(tag.Name) == "" {
		return models.Tag{}, ErrNameRequired
	}
	if _, err := s.GetTagById(db, tag.ID); err != nil {
		return models.Tag{}, err
	}

	if err := db.DB.Save(&tag).Error; err != nil {
		return models.Tag{}, err
	}

	broker.Publish(broker.TagEventsTopic, broker.NewEvent(
		broker.TagUpdated, "tag", tag.ID, map[string]interface{}{"name": tag.Name}))

	return tag, nil
}

// DeleteTag removes the tag record only. Unlinking referencing todos is the
// caller's responsibility; the reference is soft either way.
func (s *TagService) DeleteTag(db *database.Database, id int64) error {
	tag, err := s.GetTagById(db, id)
	if err != nil {
		return err
	}

	if err := db.DB.Delete(&models.Tag{}, "id = ?", id).Error; err != nil {
		return err
	}

	broker.Publish(broker.TagEventsTopic, broker.NewEvent(
		broker.TagDeleted, "tag", id, map[string]interface{}{"name": tag.Name}))

	return nil
}

var TagServiceInstance TagServiceInterface = &TagService{}
