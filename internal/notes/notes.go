package notes

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"newsnotes/internal/store"
)

// Service provides access to per-user note collections. The store holds one
// whole sequence per email; every save replaces that sequence wholesale, so
// add, delete-one, delete-category and delete-all are all expressed by the
// caller as "compute the desired list, then replace".
type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// List returns the user's notes, or an empty sequence when the email has no
// entry. Absence is not an error.
func (s *Service) List(email string) ([]store.Note, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	notes, ok := doc.Notes[email]
	if !ok {
		return []store.Note{}, nil
	}
	return notes, nil
}

// Replace sets the user's entire note sequence, creating the entry if the
// email has none yet.
func (s *Service) Replace(email string, notes []store.Note) error {
	if notes == nil {
		notes = []store.Note{}
	}
	return s.store.Update(func(doc *store.Document) error {
		doc.Notes[email] = notes
		return nil
	})
}

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/notes/:email", h.List)
	r.POST("/notes/:email", h.Replace)
}

func (h *Handler) List(ctx *gin.Context) {
	notes, err := h.service.List(ctx.Param("email"))
	if err != nil {
		h.logger.Error(fmt.Sprintf("error listing notes: %v", err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read notes"})
		return
	}
	ctx.JSON(http.StatusOK, notes)
}

func (h *Handler) Replace(ctx *gin.Context) {
	var notes []store.Note
	if err := ctx.ShouldBindJSON(&notes); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notes payload"})
		return
	}
	if err := h.service.Replace(ctx.Param("email"), notes); err != nil {
		h.logger.Error(fmt.Sprintf("error saving notes: %v", err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save notes"})
		return
	}
	if notes == nil {
		notes = []store.Note{}
	}
	ctx.JSON(http.StatusOK, notes)
}
