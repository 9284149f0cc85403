package handlers

import (
	"github.com/gin-gonic/gin"

	"salonbook/middleware"
)

// HandlerBundle groups all your endpoint handlers into one struct.
type HandlerBundle struct {
	// Callers is told about every authenticated caller so client names resolve later.
	Callers middleware.CallerRecorder

	// Booking endpoints
	CreateBooking      gin.HandlerFunc
	CancelBooking      gin.HandlerFunc
	CompleteBooking    gin.HandlerFunc
	GetBooking         gin.HandlerFunc
	ListUserBookings   gin.HandlerFunc
	ListMasterBookings gin.HandlerFunc

	// Calendar endpoints
	ListMasters           gin.HandlerFunc
	GetAvailability       gin.HandlerFunc
	GetDaySchedule        gin.HandlerFunc
	GetMasterAvailability gin.HandlerFunc
	GetAlternatives       gin.HandlerFunc

	// History and recommendation
	MasterHistory     gin.HandlerFunc
	ClientHistory     gin.HandlerFunc
	GetRecommendation gin.HandlerFunc

	// Sync
	GetSyncMessages gin.HandlerFunc

	// Admin
	Reconcile gin.HandlerFunc
	Health    gin.HandlerFunc
}

// NewHandlerBundle wires the handler structs into a bundle.
func NewHandlerBundle(
	callers middleware.CallerRecorder,
	bookings *BookingHandler,
	masters *MasterHandler,
	history *HistoryHandler,
	recommendations *RecommendationHandler,
	sync *SyncHandler,
	admin *AdminHandler,
) *HandlerBundle {
	return &HandlerBundle{
		Callers: callers,

		CreateBooking:      bookings.CreateBooking,
		CancelBooking:      bookings.CancelBooking,
		CompleteBooking:    bookings.CompleteBooking,
		GetBooking:         bookings.GetBooking,
		ListUserBookings:   bookings.ListUserBookings,
		ListMasterBookings: bookings.ListMasterBookings,

		ListMasters:           masters.ListMasters,
		GetAvailability:       masters.GetAvailability,
		GetDaySchedule:        masters.GetDaySchedule,
		GetMasterAvailability: masters.GetMasterAvailability,
		GetAlternatives:       masters.GetAlternatives,

		MasterHistory:     history.MasterHistory,
		ClientHistory:     history.ClientHistory,
		GetRecommendation: recommendations.GetRecommendation,

		GetSyncMessages: sync.GetMessages,

		Reconcile: admin.ReconcileHandler,
		Health:    HealthHandler,
	}
}
