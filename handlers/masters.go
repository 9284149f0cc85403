package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"salonbook/models"
	"salonbook/services/booking"
	"salonbook/utils"
)

// MasterLister lists the master directory.
type MasterLister interface {
	Masters() []models.Master
}

// MasterHandler serves the public calendar endpoints.
type MasterHandler struct {
	Masters      MasterLister
	Availability booking.AvailabilityService
}

func NewMasterHandler(masters MasterLister, availability booking.AvailabilityService) *MasterHandler {
	return &MasterHandler{Masters: masters, Availability: availability}
}

// ListMasters handles GET /api/masters.
func (h *MasterHandler) ListMasters(c *gin.Context) {
	c.JSON(http.StatusOK, orEmpty(h.Masters.Masters()))
}

// GetAvailability handles GET /api/masters/:id/availability/:date and lists the occupied times.
func (h *MasterHandler) GetAvailability(c *gin.Context) {
	masterID, date := c.Param("id"), c.Param("date")
	times, err := h.Availability.GetAvailability(c.Request.Context(), masterID, date)
	if err != nil {
		utils.BookingErrorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"masterId":      masterID,
		"date":          date,
		"occupiedTimes": orEmpty(times),
	})
}

// GetDaySchedule handles GET /api/masters/:id/schedule/:date.
func (h *MasterHandler) GetDaySchedule(c *gin.Context) {
	schedule, err := h.Availability.GetDaySchedule(c.Request.Context(), c.Param("id"), c.Param("date"))
	if err != nil {
		utils.BookingErrorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// GetMasterAvailability handles GET /api/masters/:id/availability?days=5.
func (h *MasterHandler) GetMasterAvailability(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid days parameter", err.Error())
			return
		}
		days = n
	}
	availability, err := h.Availability.GetMasterAvailability(c.Request.Context(), c.Param("id"), days)
	if err != nil {
		utils.BookingErrorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}

// GetAlternatives handles GET /api/masters/:id/alternatives?date=&time=.
func (h *MasterHandler) GetAlternatives(c *gin.Context) {
	date, at := c.Query("date"), c.Query("time")
	if date == "" || at == "" {
		utils.JSONError(c, http.StatusBadRequest, "date and time are required", "")
		return
	}
	alts, err := h.Availability.Alternatives(c.Request.Context(), c.Param("id"), date, at)
	if err != nil {
		utils.BookingErrorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, alts)
}
