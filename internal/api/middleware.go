package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sentimenthq/pulse/internal/db"
	"github.com/sentimenthq/pulse/internal/errs"
)

// userKey is where auth middleware stores the authenticated user id
const userKey = "user_id"

// CorrelationMiddleware assigns every request a correlation id, honoring one
// supplied by the caller, and echoes it on the response
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Correlation-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(correlationKey, id)
		c.Header("X-Correlation-ID", id)
		c.Next()
	}
}

// AuthMiddleware requires a valid bearer access token
func AuthMiddleware(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondError(c, errs.Unauthorized("missing bearer token"))
			c.Abort()
			return
		}
		_, userID, err := issuer.Parse(strings.TrimPrefix(header, "Bearer "), tokenTypeAccess)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		c.Set(userKey, userID)
		c.Next()
	}
}

// APIKeyMiddleware authenticates machine callers by API key and enforces
// their daily call limit. Requests without a key fall through to bearer
// auth when both middlewares are installed.
func APIKeyMiddleware(users *db.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" {
			c.Next()
			return
		}

		user, err := users.GetByAPIKey(c.Request.Context(), key)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		if user == nil {
			respondError(c, errs.Unauthorized("unknown API key"))
			c.Abort()
			return
		}

		allowed, err := users.IncrementAPICalls(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		if !allowed {
			respondError(c, errs.RateLimited("daily API call limit reached"))
			c.Abort()
			return
		}

		c.Set(userKey, user.ID)
		c.Next()
	}
}

// AuthedUserID returns the authenticated user's id, if any
func AuthedUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
