package handlers

import (
	"net/http"

	"attendly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves a Zap logger from the Gin context or falls back to the
// global one, tagged with the request path.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger().With(zap.String("path", c.FullPath()))
}

// callerID reads the authenticated caller set by JWTAuthMiddleware. It writes the
// 401 itself when the id is missing.
func callerID(c *gin.Context) (string, bool) {
	id := c.GetString("callerID")
	if id == "" {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "Caller not authenticated")
		return "", false
	}
	return id, true
}

// bindJSON binds the request body or answers 400.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		getLogger(c).Debug("Invalid request payload", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return false
	}
	return true
}
