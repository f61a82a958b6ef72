package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"newsnotes/internal/users"
)

const currentUserKey = "current_user"

// MiddleWare validates the Authorization token and resolves it to a stored
// user, placing the email in the request context.
func MiddleWare(jwtKey []byte, userService *users.Service) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := ctx.GetHeader("Authorization")
		if tokenString == "" {
			ctx.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is missing",
			})
			ctx.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(
			tokenString,
			claims,
			func(t *jwt.Token) (interface{}, error) {
				return jwtKey, nil
			},
		)
		if err != nil || !token.Valid {
			ctx.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid Authorization Token",
			})
			ctx.Abort()
			return
		}

		if _, err := userService.Get(claims.Email); err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid Authorization Token",
			})
			ctx.Abort()
			return
		}

		ctx.Set(currentUserKey, claims.Email)
		ctx.Next()
	}
}
