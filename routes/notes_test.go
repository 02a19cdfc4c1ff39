package routes

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"daymark-app/daymark/database"
	"daymark-app/daymark/services"
	"daymark-app/daymark/testutils"
	"daymark-app/daymark/viewstate"
)

func setupNoteRouter(t *testing.T) (*gin.Engine, *database.Database, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, closeDB := testutils.OpenTestDB()
	vs := viewstate.NewNoteViewState(db, services.NoteServiceInstance, services.FolderServiceInstance)

	router := gin.New()
	apiGroup := router.Group("/api/v1")
	RegisterNoteRoutes(apiGroup, db, services.NoteServiceInstance, vs)
	RegisterFolderRoutes(apiGroup, db, services.FolderServiceInstance, vs)

	return router, db, func() {
		vs.Close()
		closeDB()
	}
}

func TestCreateNoteEndpoint(t *testing.T) {
	router, _, cleanup := setupNoteRouter(t)
	defer cleanup()

	t.Run("Valid JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := []byte(`{"title":"Shopping","content":"eggs"}`)
		req, _ := http.NewRequest("POST", "/api/v1/notes", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "Shopping")
	})

	t.Run("Missing Content", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/notes", bytes.NewBuffer([]byte(`{"title":"x"}`)))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetNotesViewEndpoint(t *testing.T) {
	router, _, cleanup := setupNoteRouter(t)
	defer cleanup()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/notes", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Uncategorized")
	assert.Contains(t, w.Body.String(), "folder_counts")
}

func TestNoteNotFoundEndpoints(t *testing.T) {
	router, _, cleanup := setupNoteRouter(t)
	defer cleanup()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/notes/42", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/v1/notes/42", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMoveNotesEndpoint(t *testing.T) {
	router, _, cleanup := setupNoteRouter(t)
	defer cleanup()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/folders", bytes.NewBuffer([]byte(`{"name":"Work"}`)))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/v1/notes", bytes.NewBuffer([]byte(`{"content":"move me"}`)))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/v1/notes/move", bytes.NewBuffer([]byte(`{"note_ids":[1],"folder_id":1}`)))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"moved":1`)
}

func TestFolderEndpoints(t *testing.T) {
	router, _, cleanup := setupNoteRouter(t)
	defer cleanup()

	t.Run("Create", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/folders", bytes.NewBuffer([]byte(`{"name":"Ideas"}`)))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Duplicate Name", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/folders", bytes.NewBuffer([]byte(`{"name":"Ideas"}`)))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("List", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/folders", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Ideas")
		assert.Contains(t, w.Body.String(), "All")
	})

	t.Run("Delete", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/v1/folders/1", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Delete Missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/v1/folders/77", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestNoteFiltersEndpoint(t *testing.T) {
	router, _, cleanup := setupNoteRouter(t)
	defer cleanup()

	w := httptest.NewRecorder()
	body := []byte(`{"folder_id":-1,"search_query":"eggs"}`)
	req, _ := http.NewRequest("PUT", "/api/v1/notes/filters", bytes.NewBuffer(body))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"selected_folder_id":-1`)
}
