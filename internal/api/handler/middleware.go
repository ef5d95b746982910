package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthRequired validates the bearer token and stores the authenticated
// user id in the request context.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := h.Tokens.Verify(bearerToken(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Please authenticate"})
			return
		}
		c.Set("userId", userID)
		c.Next()
	}
}

// CORS allows the web client origin. Kept deliberately small; only the
// single configured origin is ever allowed.
func CORS(clientURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", clientURL)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
