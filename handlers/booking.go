package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salonbook/models"
	"salonbook/services/booking"
	"salonbook/utils"
)

// BookingHandler exposes the booking saga over HTTP.
type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

type createBookingInput struct {
	UserID   string `json:"userId"`
	MasterID string `json:"masterId" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Time     string `json:"time" binding:"required"`
}

type slotInput struct {
	MasterID string `json:"masterId" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Time     string `json:"time" binding:"required"`
}

type completeInput struct {
	slotInput
	ClientID   string `json:"clientId"`
	ClientName string `json:"clientName"`
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	logger := getLogger(c)
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var input createBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid booking request", err.Error())
		return
	}
	if input.UserID == "" {
		input.UserID = caller.UserID
	}
	if !caller.CanActForUser(input.UserID) {
		forbidden(c)
		return
	}

	b, err := h.Service.CreateBooking(c.Request.Context(), models.BookingRequest{
		UserID:   input.UserID,
		MasterID: input.MasterID,
		Date:     input.Date,
		Time:     input.Time,
	})
	if err != nil {
		utils.BookingErrorJSON(c, err)
		return
	}
	logger.Info("booking created", zap.String("booking_id", b.ID))
	c.JSON(http.StatusCreated, b)
}

// authorizeBooking loads the booking and checks that the caller is its client, its master, or an admin.
func (h *BookingHandler) authorizeBooking(c *gin.Context, caller models.Caller) (*models.Booking, bool) {
	b, err := h.Service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.BookingErrorJSON(c, err)
		return nil, false
	}
	if !caller.CanActForUser(b.UserID) && !caller.CanActForMaster(b.MasterID) {
		forbidden(c)
		return nil, false
	}
	return b, true
}

// CancelBooking handles DELETE /api/bookings/:id?mode=status|delete.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var input slotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid cancel request", err.Error())
		return
	}
	if _, ok := h.authorizeBooking(c, caller); !ok {
		return
	}

	err := h.Service.CancelBooking(c.Request.Context(), models.CancelRequest{
		BookingID: c.Param("id"),
		MasterID:  input.MasterID,
		Date:      input.Date,
		Time:      input.Time,
		Initiator: caller.Role,
		Mode:      models.CancelMode(c.DefaultQuery("mode", string(models.CancelByStatus))),
	})
	if err != nil {
		utils.BookingErrorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled"})
}

// CompleteBooking handles POST /api/bookings/:id/complete.
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var input completeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid complete request", err.Error())
		return
	}
	// Either side of the visit may close it; the first one wins.
	if _, ok := h.authorizeBooking(c, caller); !ok {
		return
	}

	err := h.Service.CompleteBooking(c.Request.Context(), models.CompleteRequest{
		BookingID:  c.Param("id"),
		MasterID:   input.MasterID,
		ClientID:   input.ClientID,
		ClientName: input.ClientName,
		Date:       input.Date,
		Time:       input.Time,
		Actor:      caller.Role,
	})
	if err != nil {
		utils.BookingErrorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking completed"})
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	b, ok := h.authorizeBooking(c, caller)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListUserBookings handles GET /api/users/:id/bookings.
func (h *BookingHandler) ListUserBookings(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	userID := c.Param("id")
	if !caller.CanActForUser(userID) {
		forbidden(c)
		return
	}
	bookings, err := h.Service.ListUserBookings(c.Request.Context(), userID)
	if err != nil {
		utils.BookingErrorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, orEmpty(bookings))
}

// ListMasterBookings handles GET /api/masters/:id/bookings?status=all.
func (h *BookingHandler) ListMasterBookings(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	masterID := c.Param("id")
	if !caller.CanActForMaster(masterID) {
		forbidden(c)
		return
	}
	bookings, err := h.Service.ListMasterBookings(c.Request.Context(), masterID, c.Query("status") == "all")
	if err != nil {
		utils.BookingErrorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, orEmpty(bookings))
}
