package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"newsnotes/internal/store"
	"newsnotes/internal/users"
	"newsnotes/internal/validate"
)

// Handler serves registration, login and session lookup. Passwords are
// compared in plaintext against the stored value; the token only identifies
// the session, it does not harden anything.
type Handler struct {
	users  *users.Service
	jwtKey []byte
	logger *slog.Logger
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func NewHandler(userService *users.Service, jwtKey []byte, logger *slog.Logger) *Handler {
	return &Handler{
		users:  userService,
		jwtKey: jwtKey,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/session", MiddleWare(h.jwtKey, h.users), h.Session)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register validates the sign-up form, pre-checks for a duplicate email and
// creates the user. The pre-check and the create are separate store
// operations, so two simultaneous registrations with the same email can both
// pass the check; the source behaves the same way.
func (h *Handler) Register(ctx *gin.Context) {
	var form validate.RegistrationForm
	if err := ctx.ShouldBindJSON(&form); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration payload"})
		return
	}

	if errs := validate.Registration(form); len(errs) > 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	_, err := h.users.Get(form.Email)
	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"errors": gin.H{"email": "User with this email already exists"},
		})
		return
	}
	if !errors.Is(err, users.ErrNotFound) {
		h.logger.Error(fmt.Sprintf("error checking existing user: %v", err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save user"})
		return
	}

	user := store.User{
		Email:       form.Email,
		FirstName:   form.FirstName,
		LastName:    form.LastName,
		DateOfBirth: form.DateOfBirth,
		Password:    form.Password,
	}
	if err := h.users.Create(user); err != nil {
		h.logger.Error(fmt.Sprintf("error saving user: %v", err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save user"})
		return
	}

	token, err := createToken(user.Email, h.jwtKey)
	if err != nil {
		h.logger.Error(fmt.Sprintf("error creating token: %v", err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Login checks the credentials with an exact plaintext comparison. A miss on
// either field yields the same message, so callers cannot tell which one was
// wrong.
func (h *Handler) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login payload"})
		return
	}

	user, err := h.users.Get(req.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		h.logger.Error(fmt.Sprintf("error finding user: %v", err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if user.Password != req.Password {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := createToken(user.Email, h.jwtKey)
	if err != nil {
		h.logger.Error(fmt.Sprintf("error creating token: %v", err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Session returns the user resolved by the token middleware, letting a
// client restore its signed-in state after a reload.
func (h *Handler) Session(ctx *gin.Context) {
	email := ctx.GetString(currentUserKey)
	user, err := h.users.Get(email)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization Token"})
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func createToken(email string, secretKey []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 24 * 7)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}
