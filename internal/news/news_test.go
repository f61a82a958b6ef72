package news

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsnotes/internal/store"
)

func testService(t *testing.T) *Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	st := store.Open(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewService(st)
}

func TestCreateThenDelete(t *testing.T) {
	svc := testService(t)

	require.NoError(t, svc.Create(store.NewsItem{ID: 100, Title: "first"}))
	require.NoError(t, svc.Create(store.NewsItem{ID: 200, Title: "second"}))

	require.NoError(t, svc.Delete(100))

	items, err := svc.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(200), items[0].ID)
}

func TestDeleteMissingIDIsNoOp(t *testing.T) {
	svc := testService(t)
	require.NoError(t, svc.Create(store.NewsItem{ID: 100}))

	require.NoError(t, svc.Delete(999))

	items, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestDeleteRemovesAllMatchingIDs(t *testing.T) {
	svc := testService(t)
	// Timestamp-derived ids can collide; delete takes every match out.
	require.NoError(t, svc.Create(store.NewsItem{ID: 100, Title: "one"}))
	require.NoError(t, svc.Create(store.NewsItem{ID: 100, Title: "two"}))

	require.NoError(t, svc.Delete(100))

	items, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteEndpointAlwaysSucceeds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := testService(t)
	handler := NewHandler(svc, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := gin.New()
	handler.Register(r.Group("/api"))

	for _, id := range []string{"123", "999", "not-a-number"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/news/"+id, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success": true}`, w.Body.String())
	}
}
