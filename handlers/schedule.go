package handlers

import (
	"net/http"

	"attendly/models"
	"attendly/services/schedule"
	"attendly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ScheduleHandler struct {
	Service schedule.ScheduleService
	Logger  *zap.Logger
}

func NewScheduleHandler(svc schedule.ScheduleService, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{Service: svc, Logger: logger}
}

// GenerateScheduleHandler expands a recurrence rule into occurrences at the
// location in the path. Occurrences created before a failure are kept.
func (h *ScheduleHandler) GenerateScheduleHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req models.RecurrenceRequest
	if !bindJSON(c, &req) {
		return
	}

	locationID := c.Param("id")
	result, err := h.Service.Generate(c.Request.Context(), caller, locationID, req)
	if err != nil {
		if result != nil && result.Created > 0 {
			h.Logger.Warn("Schedule generation stopped early",
				zap.String("locationID", locationID),
				zap.Int("created", result.Created),
				zap.Error(err))
		}
		utils.RespondError(c, err)
		return
	}

	h.Logger.Info("Schedule generated",
		zap.String("locationID", locationID),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped))
	c.JSON(http.StatusCreated, result)
}
