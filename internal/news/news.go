package news

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"newsnotes/internal/feed"
	"newsnotes/internal/store"
)

// Service provides read-modify-write operations over the news collection.
// Items are never edited after publishing; the only mutations are append and
// delete-by-id. Ordering and filtering are left to clients.
type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) List() ([]store.NewsItem, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return doc.News, nil
}

// Create appends the item as supplied. The id comes from the caller and is
// expected to be derived from the publish timestamp; collisions are accepted.
func (s *Service) Create(item store.NewsItem) error {
	return s.store.Update(func(doc *store.Document) error {
		doc.News = append(doc.News, item)
		return nil
	})
}

// Delete removes every item with the given id. Deleting an id that does not
// exist leaves the collection unchanged and is still a success.
func (s *Service) Delete(id int64) error {
	return s.store.Update(func(doc *store.Document) error {
		kept := doc.News[:0]
		for _, item := range doc.News {
			if item.ID != id {
				kept = append(kept, item)
			}
		}
		doc.News = kept
		return nil
	})
}

type Handler struct {
	service *Service
	hub     *feed.Hub
	logger  *slog.Logger
}

// NewHandler wires the news routes. hub may be nil when no live feed is
// running (tests); events are then skipped.
func NewHandler(service *Service, hub *feed.Hub, logger *slog.Logger) *Handler {
	return &Handler{service: service, hub: hub, logger: logger}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/news", h.List)
	r.POST("/news", h.Create)
	r.DELETE("/news/:id", h.Delete)
}

func (h *Handler) List(ctx *gin.Context) {
	items, err := h.service.List()
	if err != nil {
		h.logger.Error(fmt.Sprintf("error listing news: %v", err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read news"})
		return
	}
	ctx.JSON(http.StatusOK, items)
}

func (h *Handler) Create(ctx *gin.Context) {
	var item store.NewsItem
	if err := ctx.ShouldBindJSON(&item); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid news payload"})
		return
	}
	if err := h.service.Create(item); err != nil {
		h.logger.Error(fmt.Sprintf("error saving news: %v", err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save news"})
		return
	}
	if h.hub != nil {
		h.hub.Broadcast(feed.Event{Kind: feed.EventPublished, ID: item.ID})
	}
	ctx.JSON(http.StatusOK, item)
}

func (h *Handler) Delete(ctx *gin.Context) {
	// A non-numeric id matches nothing, mirroring the idempotent contract:
	// the response is a success either way.
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err == nil {
		if err := h.service.Delete(id); err != nil {
			h.logger.Error(fmt.Sprintf("error deleting news: %v", err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete news"})
			return
		}
		if h.hub != nil {
			h.hub.Broadcast(feed.Event{Kind: feed.EventDeleted, ID: id})
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
