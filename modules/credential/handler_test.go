package credential

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(gate *Gate) *mux.Router {
	router := mux.NewRouter()
	NewHandler(gate, func(id string) bool { return id == "s1" }).RegisterRoutes(router)
	return router
}

func TestHandleSave(t *testing.T) {
	store := NewMemoryStore()
	router := newTestRouter(NewGate(store, &fakeNotifier{}, "", true))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/s1/credential", strings.NewReader(`{"apiKey":"key-1"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	key, ok, err := store.Lookup(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "key-1", key)
}

func TestHandleSave_Validation(t *testing.T) {
	router := newTestRouter(NewGate(NewMemoryStore(), &fakeNotifier{}, "", true))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/s1/credential", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/s1/credential", strings.NewReader(`nope`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/zzz/credential", strings.NewReader(`{"apiKey":"k"}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleClearAndCancel(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), "s1", "key-1"))
	router := newTestRouter(NewGate(store, &fakeNotifier{}, "", true))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/s1/credential/cancel", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/s1/credential", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	_, ok, err := store.Lookup(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, ok)
}
