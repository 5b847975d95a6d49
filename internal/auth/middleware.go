package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aathifpm/Feedback-system-sub000/internal/model"
)

const actorKey = "actor"

// StaffAuth enforces bearer JWT tokens signed with HS256 and stashes the
// resulting ActorContext for handlers.
func StaffAuth(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		actor, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// Actor returns the authenticated actor context set by StaffAuth.
func Actor(c *gin.Context) (model.ActorContext, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return model.ActorContext{}, false
	}
	actor, ok := v.(model.ActorContext)
	return actor, ok
}
