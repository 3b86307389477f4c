package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"study-service/internal/apperr"
	"study-service/internal/logger"
)

const userIDKey = "user_id"

// respondError writes the error payload for err. Unclassified errors are
// logged and reported without details.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	status := apperr.HTTPStatus(err)
	body := gin.H{
		"error": err.Error(),
		"code":  apperr.Code(err),
	}
	if apperr.IsKind(err, apperr.KindConflict) {
		body["retryable"] = true
	}
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		body["error"] = "Internal server error"
	}
	c.Error(err)
	c.JSON(status, body)
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request format",
		"code":    "VALIDATION_FAILED",
		"details": err.Error(),
	})
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return v
}
