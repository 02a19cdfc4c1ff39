package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"daymark-app/daymark/broker"
	"daymark-app/daymark/database"
	"daymark-app/daymark/models"
)

type FolderServiceInterface interface {
	GetUserFolders(db *database.Database) ([]models.Folder, error)
	GetFolderById(db *database.Database, id int64) (models.Folder, error)
	FolderNameExists(db *database.Database, name string) (bool, error)
	CreateFolder(db *database.Database, folder models.Folder) (models.Folder, error)
	DeleteFolder(db *database.Database, id int64) error
}

type FolderService struct{}

// GetUserFolders lists persisted folders only; the two virtual folders are
// synthesized by the view-state layer, never stored.
func (s *FolderService) GetUserFolders(db *database.Database) ([]models.Folder, error) {
	var folders []models.Folder
	err := db.DB.Where("is_system = ?", false).Order("name ASC").Find(&folders).Error
	return folders, err
}

func (s *FolderService) GetFolderById(db *database.Database, id int64) (models.Folder, error) {
	var folder models.Folder
	if err := db.DB.First(&folder, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Folder{}, ErrFolderNotFound
		}
		return models.Folder{}, err
	}
	return folder, nil
}

func (s *FolderService) FolderNameExists(db *database.Database, name string) (bool, error) {
	var count int64
	err := db.DB.Model(&models.Folder{}).
		Where("name = ? AND is_system = ?", name, false).
		Count(&count).Error
	return count > 0, err
}

// CreateFolder rejects duplicate names as a precondition check; the store
// itself does not enforce uniqueness.
func (s *FolderService) CreateFolder(db *database.Database, folder models.Folder) (models.Folder, error) {
	if strings.TrimSpace(folder.Name) == "" {
		return models.Folder{}, ErrNameRequired
	}

	exists, err := s.FolderNameExists(db, folder.Name)
	if err != nil {
		return models.Folder{}, err
	}
	if exists {
		return models.Folder{}, ErrFolderExists
	}

	folder.IsSystem = false
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = models.NowLocal()
	}

	if err := db.DB.Create(&folder).Error; err != nil {
		return models.Folder{}, err
	}

	broker.Publish(broker.FolderEventsTopic, broker.NewEvent(
		broker.FolderCreated, "folder", folder.ID, map[string]interface{}{"name": folder.Name}))

	return folder, nil
}

func (s *FolderService) DeleteFolder(db *database.Database, id int64) error {
	folder, err := s.GetFolderById(db, id)
	if err != nil {
		return err
	}
	if folder.IsSystem {
		return ErrFolderIsSystem
	}

	if err := db.DB.Delete(&models.Folder{}, "id = ?", id).Error; err != nil {
		return err
	}

	broker.Publish(broker.FolderEventsTopic, broker.NewEvent(
		broker.FolderDeleted, "folder", id, map[string]interface{}{"name": folder.Name}))

	return nil
}

var FolderServiceInstance FolderServiceInterface = &FolderService{}
