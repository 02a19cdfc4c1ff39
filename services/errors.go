package services

import "errors"

// Common errors
var (
	ErrTodoNotFound   = errors.New("todo not found")
	ErrTagNotFound    = errors.New("tag not found")
	ErrNoteNotFound   = errors.New("note not found")
	ErrFolderNotFound = errors.New("folder not found")

	ErrTitleRequired   = errors.New("title is required")
	ErrContentRequired = errors.New("content is required")
	ErrNameRequired    = errors.New("name is required")
	ErrFolderExists    = errors.New("folder with that name already exists")
	ErrFolderIsSystem  = errors.New("system folders cannot be modified")

	ErrReminderTitleMissing = errors.New("reminder fired without a title")
)
