package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DemoOnly guards demo/admin-only routes such as the tier switch.
func DemoOnly(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not available"})
			return
		}
		c.Next()
	}
}
