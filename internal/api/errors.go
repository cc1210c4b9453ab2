package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sentimenthq/pulse/internal/errs"
	"github.com/sentimenthq/pulse/pkg/logging"
)

// correlationKey is where the middleware stores the request correlation id
const correlationKey = "correlation_id"

// CorrelationID returns the correlation id assigned to the request
func CorrelationID(c *gin.Context) string {
	if id, ok := c.Get(correlationKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// respondError writes a domain error as the structured body consumers
// expect; anything else becomes an opaque 500
func respondError(c *gin.Context, err error) {
	correlationID := CorrelationID(c)

	if domainErr, ok := errs.As(err); ok {
		c.JSON(domainErr.HTTPStatus(), gin.H{"error": domainErr.WithCorrelation(correlationID)})
		return
	}

	logging.WithComponent("api").Error("Unhandled error",
		zap.String(correlationKey, correlationID),
		zap.Error(err))

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":          "internal_error",
			"message":       "internal server error",
			"correlationId": correlationID,
		},
	})
}

// logComponentWarn logs a non-fatal handler problem without failing the
// request
func logComponentWarn(component, msg string, err error) {
	logging.WithComponent(component).Warn(msg, zap.Error(err))
}
