package handlers

import (
	"net/http"

	"attendly/models"
	"attendly/services/occurrence"
	"attendly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OccurrenceHandler struct {
	Service occurrence.OccurrenceService
	Logger  *zap.Logger
}

func NewOccurrenceHandler(svc occurrence.OccurrenceService, logger *zap.Logger) *OccurrenceHandler {
	return &OccurrenceHandler{Service: svc, Logger: logger}
}

func (h *OccurrenceHandler) CreateLocationHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req models.CreateLocationRequest
	if !bindJSON(c, &req) {
		return
	}

	loc, err := h.Service.CreateLocation(c.Request.Context(), caller, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	h.Logger.Info("Location created", zap.String("locationID", loc.ID), zap.String("providerID", caller))
	c.JSON(http.StatusCreated, gin.H{"location": loc})
}

func (h *OccurrenceHandler) CreateOfferingHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req models.CreateOfferingRequest
	if !bindJSON(c, &req) {
		return
	}

	off, err := h.Service.CreateOffering(c.Request.Context(), caller, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"offering": off})
}

func (h *OccurrenceHandler) CreateOccurrenceHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req models.CreateOccurrenceRequest
	if !bindJSON(c, &req) {
		return
	}

	occ, err := h.Service.CreateOccurrence(c.Request.Context(), caller, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"occurrence": occ})
}

// GetOccurrenceHandler is readable by any authenticated caller; consumers need it
// to see remaining seats.
func (h *OccurrenceHandler) GetOccurrenceHandler(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}
	view, err := h.Service.GetOccurrence(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"occurrence": view})
}

func (h *OccurrenceHandler) UpdateOccurrenceHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req models.UpdateOccurrenceRequest
	if !bindJSON(c, &req) {
		return
	}

	occ, err := h.Service.UpdateOccurrence(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"occurrence": occ})
}
