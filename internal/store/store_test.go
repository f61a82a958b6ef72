package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	return Open(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoadMissingFileSelfHeals(t *testing.T) {
	st := testStore(t)

	doc, err := st.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Users)
	assert.Empty(t, doc.News)
	assert.Empty(t, doc.Notes)

	// The default document must also have been persisted.
	raw, err := os.ReadFile(st.Path())
	require.NoError(t, err)

	var onDisk map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Contains(t, onDisk, "users")
	assert.Contains(t, onDisk, "news")
	assert.Contains(t, onDisk, "notes")
}

func TestLoadCorruptFileSelfHeals(t *testing.T) {
	st := testStore(t)
	require.NoError(t, os.WriteFile(st.Path(), []byte("{not json"), 0644))

	doc, err := st.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Users)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := testStore(t)

	doc := &Document{
		Users: []User{{
			Email:       "a@b.com",
			FirstName:   "Anna",
			LastName:    "Lee",
			DateOfBirth: "1990-01-01",
			Password:    "secret1",
		}},
		News: []NewsItem{{
			ID:          1700000000000,
			Title:       "Hello",
			Content:     "World",
			AuthorEmail: "a@b.com",
			AuthorName:  "Anna Lee",
			PublishDate: "2026-01-02T03:04:05.000Z",
		}},
		Notes: map[string][]Note{
			"a@b.com": {{ID: 1, Title: "t", Body: "b", Category: CategoryUrgent, CreatedAt: "2026-01-02T03:04:05.000Z"}},
		},
	}
	require.NoError(t, st.Save(doc))

	got, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, doc.Users, got.Users)
	assert.Equal(t, doc.News, got.News)
	assert.Equal(t, doc.Notes, got.Notes)
}

func TestSaveIsPrettyPrinted(t *testing.T) {
	st := testStore(t)
	require.NoError(t, st.Save(&Document{Users: []User{}, News: []NewsItem{}, Notes: map[string][]Note{}}))

	raw, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"users\"")
}

func TestUpdateAppliesMutation(t *testing.T) {
	st := testStore(t)

	err := st.Update(func(doc *Document) error {
		doc.Users = append(doc.Users, User{Email: "a@b.com"})
		return nil
	})
	require.NoError(t, err)

	doc, err := st.Load()
	require.NoError(t, err)
	require.Len(t, doc.Users, 1)
	assert.Equal(t, "a@b.com", doc.Users[0].Email)
}

func TestUpdateErrorDoesNotPersist(t *testing.T) {
	st := testStore(t)
	boom := errors.New("boom")

	err := st.Update(func(doc *Document) error {
		doc.Users = append(doc.Users, User{Email: "a@b.com"})
		return boom
	})
	require.ErrorIs(t, err, boom)

	doc, err := st.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Users)
}

func TestWatchSeesExternalWrites(t *testing.T) {
	st := testStore(t)
	_, err := st.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	require.NoError(t, st.Watch(ctx, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}))

	// Simulate another process overwriting the data file.
	require.NoError(t, os.WriteFile(st.Path(), []byte(`{"users":[],"news":[],"notes":{}}`), 0644))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not report the external write")
	}
}

func TestWatchSeesOwnSaves(t *testing.T) {
	st := testStore(t)
	_, err := st.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	require.NoError(t, st.Watch(ctx, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}))

	err = st.Update(func(doc *Document) error {
		doc.Users = append(doc.Users, User{Email: "a@b.com"})
		return nil
	})
	require.NoError(t, err)

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not report the store's own save")
	}
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	st := testStore(t)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			err := st.Update(func(doc *Document) error {
				doc.News = append(doc.News, NewsItem{ID: int64(len(doc.News))})
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	doc, err := st.Load()
	require.NoError(t, err)
	assert.Len(t, doc.News, 10)
}
