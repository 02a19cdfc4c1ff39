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

// noteOrder keeps pinned notes ahead of everything, most recently edited
// first within each group.
const noteOrder = `CASE WHEN is_pinned = 1 THEN 0 ELSE 1 END, updated_at DESC`

// folderPartition classifies notes for a folder id, honoring the two virtual
// folders: 0 matches everything, -1 matches notes without a folder.
const folderPartition = `(? = 0) OR (? = -1 AND folder_id IS NULL) OR (folder_id = ?)`

type NoteServiceInterface interface {
	GetAllNotes(db *database.Database) ([]models.Note, error)
	GetNoteById(db *database.Database, id int64) (models.Note, error)
	CreateNote(db *database.Database, note models.Note) (models.Note, error)
	UpdateNote(db *database.Database, note models.Note) (models.Note, error)
	DeleteNote(db *database.Database, id int64) error
	MoveNotesToFolder(db *database.Database, noteIDs []int64, folderID *int64) error
	CountNotesInFolder(db *database.Database, folderID int64) (int64, error)
}

type NoteService struct{}

func (s *NoteService) GetAllNotes(db *database.Database) ([]models.Note, error) {
	var notes []models.Note
	err := db.DB.Order(noteOrder).Preload("Folder").Find(&notes).Error
	return notes, err
}

func (s *NoteService) GetNoteById(db *database.Database, id int64) (models.Note, error) {
	var note models.Note
	if err := db.DB.Preload("Folder").First(&note, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Note{}, ErrNoteNotFound
		}
		return models.Note{}, err
	}
	return note, nil
}

func (s *NoteService) CreateNote(db *database.Database, note models.Note) (models.Note, error) {
	if strings.TrimSpace(note.Content) == "" {
		return models.Note{}, ErrContentRequired
	}

	now := models.NowLocal()
	note.CreatedAt = now
	note.UpdatedAt = now
	note.Folder = nil

	if err := db.DB.Create(&note).Error; err != nil {
		return models.Note{}, err
	}

	broker.Publish(broker.NoteEventsTopic, broker.NewEvent(
		broker.NoteCreated, "note", note.ID, notePayload(note)))

	return s.GetNoteById(db, note.ID)
}

// UpdateNote persists a full replacement and bumps updated_at on every call.
func (s *NoteService) UpdateNote(db *database.Database, note models.Note) (models.Note, error) {
	if strings.TrimSpace(note.Content) == "" {
		return models.Note{}, ErrContentRequired
	}

	existing, err := s.GetNoteById(db, note.ID)
	if err != nil {
		return models.Note{}, err
	}
	note.CreatedAt = existing.CreatedAt
	note.UpdatedAt = models.NowLocal()

	if err := db.DB.Omit(clause.Associations).Save(&note).Error; err != nil {
		return models.Note{}, err
	}

	broker.Publish(broker.NoteEventsTopic, broker.NewEvent(
		broker.NoteUpdated, "note", note.ID, notePayload(note)))

	return s.GetNoteById(db, note.ID)
}

func (s *NoteService) DeleteNote(db *database.Database, id int64) error {
	note, err := s.GetNoteById(db, id)
	if err != nil {
		return err
	}

	if err := db.DB.Delete(&models.Note{}, "id = ?", id).Error; err != nil {
		return err
	}

	broker.Publish(broker.NoteEventsTopic, broker.NewEvent(
		broker.NoteDeleted, "note", id, notePayload(note)))

	return nil
}

// MoveNotesToFolder reassigns the given notes in one statement; a nil
// folderID moves them to uncategorized.
func (s *NoteService) MoveNotesToFolder(db *database.Database, noteIDs []int64, folderID *int64) error {
	if len(noteIDs) == 0 {
		return nil
	}

	err := db.DB.Model(&models.Note{}).
		Where("id IN ?", noteIDs).
		Updates(map[string]interface{}{
			"folder_id":  folderID,
			"updated_at": models.NowLocal(),
		}).Error
	if err != nil {
		return err
	}

	broker.Publish(broker.NoteEventsTopic, broker.NewEvent(
		broker.NotesMoved, "note", 0, map[string]interface{}{
			"note_ids":  noteIDs,
			"folder_id": folderID,
		}))

	return nil
}

// CountNotesInFolder counts over the full, unfiltered note set using the same
// partition rule as the note list.
func (s *NoteService) CountNotesInFolder(db *database.Database, folderID int64) (int64, error) {
	var count int64
	err := db.DB.Model(&models.Note{}).
		Where(folderPartition, folderID, folderID, folderID).
		Count(&count).Error
	return count, err
}

func notePayload(note models.Note) map[string]interface{} {
	payload := map[string]interface{}{
		"is_pinned": note.IsPinned,
	}
	if note.FolderID != nil {
		payload["folder_id"] = *note.FolderID
	}
	return payload
}

var NoteServiceInstance NoteServiceInterface = &NoteService{}
