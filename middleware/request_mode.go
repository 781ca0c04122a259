package middleware

import (
	"github.com/gin-gonic/gin"
)

const jsonModeKey = "json_mode"

// RequestMode marks programmatic requests, recognised by an XMLHttpRequest
// header or ?format=json, so handlers answer with JSON instead of a page.
func RequestMode() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(jsonModeKey, c.GetHeader("X-Requested-With") == "XMLHttpRequest" || c.Query("format") == "json")
		c.Next()
	}
}

func WantsJSON(c *gin.Context) bool {
	return c.GetBool(jsonModeKey)
}
