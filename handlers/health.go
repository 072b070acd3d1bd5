package handlers

import (
	"net/http"

	"attendly/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness plus the last dependency probe snapshot.
func HealthHandler(c *gin.Context) {
	health := utils.GetHealthStatus()
	status := "ok"
	for _, up := range health.Checks {
		if !up {
			status = "degraded"
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "message": "Hi, I'm Attendly", "health": health})
}
