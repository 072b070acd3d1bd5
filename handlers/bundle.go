package handlers

import (
	"attendly/bootstrap"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Catalog endpoints
	CreateLocationHandler   gin.HandlerFunc
	CreateOfferingHandler   gin.HandlerFunc
	CreateOccurrenceHandler gin.HandlerFunc
	GetOccurrenceHandler    gin.HandlerFunc
	UpdateOccurrenceHandler gin.HandlerFunc
	GenerateScheduleHandler gin.HandlerFunc

	// Booking endpoints
	ReserveHandler        gin.HandlerFunc
	CancelBookingHandler  gin.HandlerFunc
	GetBookingHandler     gin.HandlerFunc
	ListMyBookingsHandler gin.HandlerFunc
	ConfirmBookingHandler gin.HandlerFunc
	SetPaymentHandler     gin.HandlerFunc
	ManualCheckInHandler  gin.HandlerFunc
	MarkOutcomeHandler    gin.HandlerFunc

	// Check-in endpoints
	OpenWindowHandler  gin.HandlerFunc
	ListWindowsHandler gin.HandlerFunc
	CheckInHandler     gin.HandlerFunc

	// Roster endpoints
	GetRosterHandler    gin.HandlerFunc
	StreamRosterHandler gin.HandlerFunc
	SheetHandler        gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires a handler for every route onto the assembled services.
func NewHandlerBundle(svcs *bootstrap.Services, logger *zap.Logger) *HandlerBundle {
	occurrenceHandler := NewOccurrenceHandler(svcs.Occurrence, logger)
	scheduleHandler := NewScheduleHandler(svcs.Schedule, logger)
	bookingHandler := NewBookingHandler(svcs.Booking, logger)
	checkInHandler := NewCheckInHandler(svcs.CheckIn, logger)
	rosterHandler := NewRosterHandler(svcs.Attendance, logger)

	return &HandlerBundle{
		CreateLocationHandler:   occurrenceHandler.CreateLocationHandler,
		CreateOfferingHandler:   occurrenceHandler.CreateOfferingHandler,
		CreateOccurrenceHandler: occurrenceHandler.CreateOccurrenceHandler,
		GetOccurrenceHandler:    occurrenceHandler.GetOccurrenceHandler,
		UpdateOccurrenceHandler: occurrenceHandler.UpdateOccurrenceHandler,
		GenerateScheduleHandler: scheduleHandler.GenerateScheduleHandler,

		ReserveHandler:        bookingHandler.ReserveHandler,
		CancelBookingHandler:  bookingHandler.CancelHandler,
		GetBookingHandler:     bookingHandler.GetBookingHandler,
		ListMyBookingsHandler: bookingHandler.ListMyBookingsHandler,
		ConfirmBookingHandler: bookingHandler.ConfirmHandler,
		SetPaymentHandler:     bookingHandler.SetPaymentHandler,
		ManualCheckInHandler:  bookingHandler.ManualCheckInHandler,
		MarkOutcomeHandler:    bookingHandler.MarkOutcomeHandler,

		OpenWindowHandler:  checkInHandler.OpenWindowHandler,
		ListWindowsHandler: checkInHandler.ListWindowsHandler,
		CheckInHandler:     checkInHandler.SubmitCodeHandler,

		GetRosterHandler:    rosterHandler.GetRosterHandler,
		StreamRosterHandler: rosterHandler.StreamRosterHandler,
		SheetHandler:        rosterHandler.AttendanceSheetHandler,

		HealthHandler: HealthHandler,
	}
}
