package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"karaoke/internal/pkg/response"
)

// AdminKey guards operator endpoints with a shared key sent in the
// X-Admin-Key header. Only the bcrypt hash lives in the environment.
// An empty hash leaves the admin surface open; config validation
// forbids that outside dev.
func AdminKey(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			c.Set("role", "admin")
			c.Next()
			return
		}

		key := c.GetHeader("X-Admin-Key")
		if key == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing admin key")
			c.Abort()
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Invalid admin key")
			c.Abort()
			return
		}

		c.Set("role", "admin")
		c.Next()
	}
}
