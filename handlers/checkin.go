package handlers

import (
	"errors"
	"io"
	"net/http"

	"attendly/models"
	"attendly/services/checkin"
	"attendly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CheckInHandler struct {
	Service checkin.CheckInService
	Logger  *zap.Logger
}

func NewCheckInHandler(svc checkin.CheckInService, logger *zap.Logger) *CheckInHandler {
	return &CheckInHandler{Service: svc, Logger: logger}
}

// OpenWindowHandler issues a check-in code. The body is optional; an empty one
// opens a window with the default lifetime and no use limit.
func (h *CheckInHandler) OpenWindowHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req models.OpenWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.JSONError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	resp, err := h.Service.OpenWindow(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	// The raw token never reaches the logs.
	h.Logger.Info("Check-in window opened",
		zap.String("windowID", resp.WindowID),
		zap.String("occurrenceID", resp.OccurrenceID),
		zap.Time("expiresAt", resp.ExpiresAt))
	c.JSON(http.StatusCreated, resp)
}

func (h *CheckInHandler) ListWindowsHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	windows, err := h.Service.ListWindows(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if windows == nil {
		windows = []models.CheckInWindow{}
	}
	c.JSON(http.StatusOK, gin.H{"windows": windows})
}

// SubmitCodeHandler checks the caller in to the occurrence in the path.
func (h *CheckInHandler) SubmitCodeHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req models.CheckInRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.Service.CheckIn(c.Request.Context(), caller, c.Param("id"), req.Code)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}
