package viewstate

import (
	"strings"
	"sync"

	"daymark-app/daymark/broker"
	"daymark-app/daymark/database"
	"daymark-app/daymark/models"
	"daymark-app/daymark/services"
)

// NoteFilters is the filter state of the notes screen. SelectedFolderID may
// be one of the virtual folder ids.
type NoteFilters struct {
	SelectedFolderID int64  `json:"selected_folder_id"`
	SearchQuery      string `json:"search_query"`
}

// NoteInput carries the fields a client submits when creating or editing a
// note.
type NoteInput struct {
	Title    *string
	Content  string
	FolderID *int64
	IsPinned bool
	Color    *int64
}

// NoteViewState combines the note list, the folder list and the filter state
// into the derived notes view, and keeps per-folder counts over the
// unfiltered set.
type NoteViewState struct {
	db        *database.Database
	noteSvc   services.NoteServiceInterface
	folderSvc services.FolderServiceInterface

	stateMu     sync.Mutex
	filters     NoteFilters
	allNotes    []models.Note
	userFolders []models.Folder

	// publishMu serializes recompute end to end so derived values are
	// published in the order they were computed.
	publishMu sync.Mutex

	notes          *Observable[[]models.Note]
	folders        *Observable[[]models.Folder]
	selectedFolder *Observable[*models.Folder]
	folderCounts   *Observable[map[int64]int]
	lastError      *Observable[string]

	unsubscribe []func()
}

func NewNoteViewState(
	db *database.Database,
	noteSvc services.NoteServiceInterface,
	folderSvc services.FolderServiceInterface,
) *NoteViewState {
	vs := &NoteViewState{
		db:             db,
		noteSvc:        noteSvc,
		folderSvc:      folderSvc,
		filters:        NoteFilters{SelectedFolderID: models.AllFolderID},
		notes:          NewObservable[[]models.Note](nil),
		folders:        NewObservable[[]models.Folder](nil),
		selectedFolder: NewObservable[*models.Folder](nil),
		folderCounts:   NewObservable[map[int64]int](nil),
		lastError:      NewObservable(""),
	}

	vs.unsubscribe = append(vs.unsubscribe,
		broker.Subscribe(broker.NoteEventsTopic, func(broker.Event) { vs.reloadNotes() }),
		broker.Subscribe(broker.FolderEventsTopic, func(broker.Event) { vs.reloadFolders() }),
	)

	vs.reloadFolders()
	vs.reloadNotes()
	return vs
}

func (vs *NoteViewState) Close() {
	for _, unsub := range vs.unsubscribe {
		unsub()
	}
	vs.unsubscribe = nil
}

func (vs *NoteViewState) Notes() *Observable[[]models.Note]            { return vs.notes }
func (vs *NoteViewState) Folders() *Observable[[]models.Folder]        { return vs.folders }
func (vs *NoteViewState) SelectedFolder() *Observable[*models.Folder]  { return vs.selectedFolder }
func (vs *NoteViewState) FolderCounts() *Observable[map[int64]int]     { return vs.folderCounts }
func (vs *NoteViewState) LastError() *Observable[string]               { return vs.lastError }

func (vs *NoteViewState) Filters() NoteFilters {
	vs.stateMu.Lock()
	defer vs.stateMu.Unlock()
	return vs.filters
}

// SelectFolder switches the visible partition. Unknown ids fall back to All.
func (vs *NoteViewState) SelectFolder(folderID int64) {
	vs.stateMu.Lock()
	vs.filters.SelectedFolderID = folderID
	vs.stateMu.Unlock()
	vs.publishSelectedFolder()
	vs.recompute()
}

func (vs *NoteViewState) SetSearchQuery(query string) {
	vs.stateMu.Lock()
	vs.filters.SearchQuery = query
	vs.stateMu.Unlock()
	vs.recompute()
}

func (vs *NoteViewState) AddNote(input NoteInput) (models.Note, error) {
	note := models.Note{
		Title:    input.Title,
		Content:  input.Content,
		FolderID: input.FolderID,
		IsPinned: input.IsPinned,
		Color:    input.Color,
	}

	created, err := vs.noteSvc.CreateNote(vs.db, note)
	if err != nil {
		vs.recordError(err)
		return models.Note{}, err
	}
	vs.clearError()
	return created, nil
}

func (vs *NoteViewState) UpdateNote(existing models.Note, input NoteInput) (models.Note, error) {
	updated := existing
	updated.Title = input.Title
	updated.Content = input.Content
	updated.FolderID = input.FolderID
	updated.IsPinned = input.IsPinned
	updated.Color = input.Color
	updated.Folder = nil

	saved, err := vs.noteSvc.UpdateNote(vs.db, updated)
	if err != nil {
		vs.recordError(err)
		return models.Note{}, err
	}
	vs.clearError()
	return saved, nil
}

func (vs *NoteViewState) TogglePin(note models.Note) error {
	note.IsPinned = !note.IsPinned
	note.Folder = nil
	if _, err := vs.noteSvc.UpdateNote(vs.db, note); err != nil {
		vs.recordError(err)
		return err
	}
	vs.clearError()
	return nil
}

func (vs *NoteViewState) DeleteNote(note models.Note) error {
	if err := vs.noteSvc.DeleteNote(vs.db, note.ID); err != nil {
		vs.recordError(err)
		return err
	}
	vs.clearError()
	return nil
}

// MoveNotesToFolder reassigns the given notes in one bulk update. A nil
// folderID moves them to Uncategorized.
func (vs *NoteViewState) MoveNotesToFolder(noteIDs []int64, folderID *int64) error {
	if err := vs.noteSvc.MoveNotesToFolder(vs.db, noteIDs, folderID); err != nil {
		vs.recordError(err)
		return err
	}
	vs.clearError()
	return nil
}

func (vs *NoteViewState) AddFolder(name string) (models.Folder, error) {
	created, err := vs.folderSvc.CreateFolder(vs.db, models.Folder{Name: name})
	if err != nil {
		vs.recordError(err)
		return models.Folder{}, err
	}
	vs.clearError()
	return created, nil
}

// DeleteFolder removes a user folder. Notes inside it are first reassigned to
// Uncategorized one by one; a failed reassignment is recorded and skipped, so
// already-moved notes stay moved.
func (vs *NoteViewState) DeleteFolder(folder models.Folder) error {
	if folder.IsVirtual() || folder.IsSystem {
		vs.recordError(services.ErrFolderIsSystem)
		return services.ErrFolderIsSystem
	}

	vs.stateMu.Lock()
	var contained []models.Note
	for _, note := range vs.allNotes {
		if note.FolderID != nil && *note.FolderID == folder.ID {
			contained = append(contained, note)
		}
	}
	selected := vs.filters.SelectedFolderID
	vs.stateMu.Unlock()

	var lastErr error
	for _, note := range contained {
		note.FolderID = nil
		note.Folder = nil
		if _, err := vs.noteSvc.UpdateNote(vs.db, note); err != nil {
			lastErr = err
		}
	}

	if err := vs.folderSvc.DeleteFolder(vs.db, folder.ID); err != nil {
		lastErr = err
	}

	if lastErr != nil {
		vs.recordError(lastErr)
		return lastErr
	}

	// Viewing the deleted folder falls back to All.
	if selected == folder.ID {
		vs.SelectFolder(models.AllFolderID)
	}
	vs.clearError()
	return nil
}

func (vs *NoteViewState) reloadNotes() {
	notes, err := vs.noteSvc.GetAllNotes(vs.db)
	if err != nil {
		vs.recordError(err)
		return
	}

	vs.stateMu.Lock()
	vs.allNotes = notes
	vs.stateMu.Unlock()
	vs.recompute()
}

func (vs *NoteViewState) reloadFolders() {
	userFolders, err := vs.folderSvc.GetUserFolders(vs.db)
	if err != nil {
		vs.recordError(err)
		return
	}

	vs.stateMu.Lock()
	vs.userFolders = userFolders
	vs.stateMu.Unlock()

	vs.folders.Set(append(models.SystemFolders(), userFolders...))
	vs.publishSelectedFolder()
	vs.recompute()
}

func (vs *NoteViewState) publishSelectedFolder() {
	vs.stateMu.Lock()
	selected := vs.filters.SelectedFolderID
	userFolders := vs.userFolders
	vs.stateMu.Unlock()

	for _, folder := range models.SystemFolders() {
		if folder.ID == selected {
			f := folder
			vs.selectedFolder.Set(&f)
			return
		}
	}
	for _, folder := range userFolders {
		if folder.ID == selected {
			f := folder
			vs.selectedFolder.Set(&f)
			return
		}
	}
	// Selection pointing at a folder that no longer exists reads as All.
	all := models.SystemFolders()[0]
	vs.selectedFolder.Set(&all)
}

func (vs *NoteViewState) recompute() {
	vs.publishMu.Lock()
	defer vs.publishMu.Unlock()

	vs.stateMu.Lock()
	filtered := filterNotes(vs.allNotes, vs.filters)
	counts := countNotes(vs.allNotes, vs.userFolders)
	vs.stateMu.Unlock()

	vs.notes.Set(filtered)
	vs.folderCounts.Set(counts)
}

func (vs *NoteViewState) recordError(err error) {
	vs.lastError.Set(err.Error())
}

func (vs *NoteViewState) clearError() {
	if vs.lastError.Get() != "" {
		vs.lastError.Set("")
	}
}

func noteInFolder(note models.Note, folderID int64) bool {
	switch folderID {
	case models.AllFolderID:
		return true
	case models.UncategorizedFolderID:
		return note.FolderID == nil
	default:
		return note.FolderID != nil && *note.FolderID == folderID
	}
}

// filterNotes applies the folder partition, then the case-insensitive search
// over title and content. Input order (pinned first, then recency) is
// preserved.
func filterNotes(notes []models.Note, filters NoteFilters) []models.Note {
	query := strings.ToLower(strings.TrimSpace(filters.SearchQuery))

	result := make([]models.Note, 0, len(notes))
	for _, note := range notes {
		if !noteInFolder(note, filters.SelectedFolderID) {
			continue
		}
		if query != "" {
			title := ""
			if note.Title != nil {
				title = *note.Title
			}
			if !strings.Contains(strings.ToLower(title), query) &&
				!strings.Contains(strings.ToLower(note.Content), query) {
				continue
			}
		}
		result = append(result, note)
	}
	return result
}

// countNotes tallies the unfiltered set: search never changes the badge
// counts. The map carries an entry for every folder in the list, virtual ones
// included, so empty folders read as an explicit zero.
func countNotes(notes []models.Note, folders []models.Folder) map[int64]int {
	counts := map[int64]int{
		models.AllFolderID:           len(notes),
		models.UncategorizedFolderID: 0,
	}
	for _, folder := range folders {
		counts[folder.ID] = 0
	}
	for _, note := range notes {
		if note.FolderID == nil {
			counts[models.UncategorizedFolderID]++
		} else {
			counts[*note.FolderID]++
		}
	}
	return counts
}
