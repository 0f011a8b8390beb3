package middleware

import (
	"net/http"
	"strings"

	"inkwell/utils"

	"github.com/gin-gonic/gin"
)

// SessionAuthMiddleware authorizes requests with a bearer token issued by
// the auth collaborator and exposes the subject and role to handlers. The
// checkout session identity rides separately in X-Session-ID so an
// anonymous browser tab can hold a slot before sign-in completes.
func SessionAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
				"code":  0,
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		subject, role, err := utils.ExtractSubjectAndRole(tokenString)
		if err != nil || subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
				"code":  0,
			})
			return
		}

		c.Set("subjectID", subject)
		c.Set("role", role)
		if sid := c.GetHeader("X-Session-ID"); sid != "" {
			c.Set("checkoutSession", sid)
		}
		c.Next()
	}
}

// SubjectID returns the authenticated subject set by SessionAuthMiddleware.
func SubjectID(c *gin.Context) string {
	return c.GetString("subjectID")
}

// Role returns the authenticated subject's role ("client" or "provider").
func Role(c *gin.Context) string {
	return c.GetString("role")
}

// CheckoutSession returns the checkout session id, falling back to the
// authenticated subject when the header is absent.
func CheckoutSession(c *gin.Context) string {
	if sid := c.GetString("checkoutSession"); sid != "" {
		return sid
	}
	return SubjectID(c)
}
