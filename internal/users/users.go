package users

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"newsnotes/internal/store"
)

// ErrNotFound is returned when no user matches the requested email.
var ErrNotFound = errors.New("user not found")

// Service provides read-modify-write operations over the user collection.
type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// List returns every user in storage order.
func (s *Service) List() ([]store.User, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return doc.Users, nil
}

// Create appends the user unconditionally. Uniqueness is not enforced here;
// callers that care perform a Get pre-check first, which leaves a window
// between check and create under concurrent registrations.
func (s *Service) Create(user store.User) error {
	return s.store.Update(func(doc *store.Document) error {
		doc.Users = append(doc.Users, user)
		return nil
	})
}

// Get finds a user by exact, case-sensitive email match.
func (s *Service) Get(email string) (store.User, error) {
	doc, err := s.store.Load()
	if err != nil {
		return store.User{}, err
	}
	for _, u := range doc.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return store.User{}, ErrNotFound
}

// UpdateFields carries a partial profile edit. Nil fields keep their stored
// value; set fields overwrite it.
type UpdateFields struct {
	Email       *string `json:"email"`
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	DateOfBirth *string `json:"dateOfBirth"`
	Password    *string `json:"password"`
}

func merge(u store.User, fields UpdateFields) store.User {
	if fields.Email != nil {
		u.Email = *fields.Email
	}
	if fields.FirstName != nil {
		u.FirstName = *fields.FirstName
	}
	if fields.LastName != nil {
		u.LastName = *fields.LastName
	}
	if fields.DateOfBirth != nil {
		u.DateOfBirth = *fields.DateOfBirth
	}
	if fields.Password != nil {
		u.Password = *fields.Password
	}
	return u
}

// Update shallow-merges the supplied fields onto the stored user and
// persists the result. Returns ErrNotFound if the email has no user.
func (s *Service) Update(email string, fields UpdateFields) (store.User, error) {
	var updated store.User
	err := s.store.Update(func(doc *store.Document) error {
		for i, u := range doc.Users {
			if u.Email == email {
				updated = merge(u, fields)
				doc.Users[i] = updated
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return store.User{}, err
	}
	return updated, nil
}

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/users", h.List)
	r.POST("/users", h.Create)
	r.GET("/users/:email", h.Get)
	r.PUT("/users/:email", h.Update)
}

func (h *Handler) List(ctx *gin.Context) {
	users, err := h.service.List()
	if err != nil {
		h.logger.Error(fmt.Sprintf("error listing users: %v", err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read users"})
		return
	}
	ctx.JSON(http.StatusOK, users)
}

func (h *Handler) Create(ctx *gin.Context) {
	var user store.User
	if err := ctx.ShouldBindJSON(&user); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user payload"})
		return
	}
	if err := h.service.Create(user); err != nil {
		h.logger.Error(fmt.Sprintf("error saving user: %v", err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save user"})
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (h *Handler) Get(ctx *gin.Context) {
	user, err := h.service.Get(ctx.Param("email"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.logger.Error(fmt.Sprintf("error finding user: %v", err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find user"})
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (h *Handler) Update(ctx *gin.Context) {
	var fields UpdateFields
	if err := ctx.ShouldBindJSON(&fields); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user payload"})
		return
	}
	user, err := h.service.Update(ctx.Param("email"), fields)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.logger.Error(fmt.Sprintf("error updating user: %v", err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	ctx.JSON(http.StatusOK, user)
}
