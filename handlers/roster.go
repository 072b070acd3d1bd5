package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"attendly/services/attendance"
	"attendly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const rosterHeartbeat = 15 * time.Second

type RosterHandler struct {
	Service   attendance.AttendanceService
	Heartbeat time.Duration
	Logger    *zap.Logger
}

func NewRosterHandler(svc attendance.AttendanceService, logger *zap.Logger) *RosterHandler {
	return &RosterHandler{Service: svc, Heartbeat: rosterHeartbeat, Logger: logger}
}

func (h *RosterHandler) GetRosterHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	roster, err := h.Service.GetRoster(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roster)
}

// AttendanceSheetHandler returns the roster as a printable PDF.
func (h *RosterHandler) AttendanceSheetHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	occurrenceID := c.Param("id")
	pdf, err := h.Service.AttendanceSheet(c.Request.Context(), caller, occurrenceID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="attendance-%s.pdf"`, occurrenceID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// StreamRosterHandler pushes a "roster" server-sent event with the full snapshot
// whenever the occurrence's bookings change. The first event is the current state.
func (h *RosterHandler) StreamRosterHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	occurrenceID := c.Param("id")
	ctx := c.Request.Context()

	updates, err := h.Service.WatchRoster(ctx, caller, occurrenceID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	heartbeat := h.Heartbeat
	if heartbeat <= 0 {
		heartbeat = rosterHeartbeat
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	h.Logger.Debug("Roster stream opened", zap.String("occurrenceID", occurrenceID), zap.String("callerID", caller))
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case roster, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("roster", roster)
			return true
		case t := <-ticker.C:
			c.SSEvent("ping", t.UTC().Format(time.RFC3339))
			return true
		}
	})
	h.Logger.Debug("Roster stream closed", zap.String("occurrenceID", occurrenceID))
}
