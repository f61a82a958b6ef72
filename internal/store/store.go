package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// User is a registered account. Email is the identity and is matched
// case-sensitively. Passwords are stored in plaintext; this mirrors the
// persisted data layout and is not hardened here.
type User struct {
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
	Password    string `json:"password"`
}

// NewsItem is one entry in the shared feed. AuthorName is a snapshot taken
// at publish time and is never updated when the author's profile changes.
type NewsItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	AuthorEmail string `json:"authorEmail"`
	AuthorName  string `json:"authorName"`
	PublishDate string `json:"publishDate"`
}

// Note categories.
const (
	CategoryUrgent  = "URGENT"
	CategoryDefault = "DEFAULT"
	CategoryCanWait = "CAN_WAIT"
)

type Note struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Category  string `json:"category"`
	CreatedAt string `json:"createdAt"`
}

// Document is the root of the persisted file: every user, news item and note
// collection lives in this single structure, read and written as a whole.
type Document struct {
	Users []User            `json:"users"`
	News  []NewsItem        `json:"news"`
	Notes map[string][]Note `json:"notes"`
}

func defaultDocument() *Document {
	return &Document{
		Users: []User{},
		News:  []NewsItem{},
		Notes: map[string][]Note{},
	}
}

// Store owns the JSON data file. All mutations go through Update, which
// serializes the load-modify-save cycle with a mutex so one logical operation
// cannot interleave with another in this process. Writers in other processes
// are not coordinated; the later write wins at whole-file granularity.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

func Open(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
	}
}

// Path returns the location of the data file.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted document. A missing or unparseable file is
// self-healing: the default empty document is written back and returned, so
// callers never fail on first use.
func (s *Store) Load() (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*Document, error) {
	raw, err := os.ReadFile(s.path)
	if err == nil {
		doc := defaultDocument()
		if jsonErr := json.Unmarshal(raw, doc); jsonErr == nil {
			if doc.Notes == nil {
				doc.Notes = map[string][]Note{}
			}
			return doc, nil
		}
		s.logger.Warn("data file unreadable, resetting to default", "path", s.path)
	}

	doc := defaultDocument()
	if err := s.save(doc); err != nil {
		return nil, fmt.Errorf("initializing data file: %w", err)
	}
	return doc, nil
}

// Save overwrites the data file with the full document.
func (s *Store) Save(doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(doc)
}

// save writes to a temp file in the same directory and renames it over the
// data file, so a crash mid-write cannot leave a truncated document.
func (s *Store) save(doc *Document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".data-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing data file: %w", err)
	}
	return nil
}

// Update runs one load-modify-save cycle under the store lock. If fn returns
// an error the document is not written.
func (s *Store) Update(fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(doc)
}

// Watch invokes fn on every write to the data file, including the store's
// own saves: the rename in save shows up as a Create for the path, and no
// attempt is made to tell our writes apart from an editor's or another
// process's. It returns once the watcher is installed and stops when ctx is
// cancelled. The directory is watched rather than the file itself because
// the rename replaces the inode.
func (s *Store) Watch(ctx context.Context, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching data dir: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.path {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					fn()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Error("data file watcher error", "error", err)
			}
		}
	}()
	return nil
}
