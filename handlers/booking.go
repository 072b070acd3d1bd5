package handlers

import (
	"net/http"

	"attendly/models"
	"attendly/services/booking"
	"attendly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, Logger: logger}
}

type paymentRequest struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus" binding:"required"`
}

type outcomeRequest struct {
	Outcome models.BookingStatus `json:"outcome" binding:"required"`
}

// ReserveHandler books one seat on the occurrence in the path for the caller.
func (h *BookingHandler) ReserveHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	b, err := h.Service.Reserve(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": b})
}

func (h *BookingHandler) CancelHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	b, err := h.Service.Cancel(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	b, err := h.Service.GetBooking(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) ListMyBookingsHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	list, err := h.Service.ListConsumerBookings(c.Request.Context(), caller)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if list == nil {
		list = []models.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

func (h *BookingHandler) ConfirmHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	b, err := h.Service.Confirm(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) SetPaymentHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req paymentRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Service.SetPaymentStatus(c.Request.Context(), caller, c.Param("id"), req.PaymentStatus)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// ManualCheckInHandler lets the provider check a consumer in without a code.
func (h *BookingHandler) ManualCheckInHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	b, err := h.Service.ManualCheckIn(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) MarkOutcomeHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req outcomeRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Service.MarkOutcome(c.Request.Context(), caller, c.Param("id"), req.Outcome)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	h.Logger.Info("Booking outcome recorded",
		zap.String("bookingID", b.ID),
		zap.String("status", string(b.Status)))
	c.JSON(http.StatusOK, gin.H{"booking": b})
}
