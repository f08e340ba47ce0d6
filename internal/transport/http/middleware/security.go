package middleware

import "github.com/gin-gonic/gin"

// Security sets the response hardening headers. Uploaded images and assets
// are embedded by the web client from another origin, so resources are
// marked cross-origin readable.
func Security() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Resource-Policy", "cross-origin")
		c.Next()
	}
}
