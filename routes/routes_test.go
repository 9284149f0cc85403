package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"salonbook/database/repository"
	"salonbook/handlers"
	"salonbook/models"
	"salonbook/services/booking"
	"salonbook/services/directory"
	"salonbook/services/notification"
	"salonbook/services/recommendation"
	"salonbook/services/reconcile"
	"salonbook/utils"
)

var (
	alice  = models.Caller{UserID: "A", Role: models.RoleClient, Name: "Alice"}
	bob    = models.Caller{UserID: "B", Role: models.RoleClient, Name: "Bob"}
	anna   = models.Caller{UserID: "u-anna", Role: models.RoleMaster, MasterID: "1", Name: "Anna"}
	boris  = models.Caller{UserID: "u-boris", Role: models.RoleMaster, MasterID: "2", Name: "Boris"}
	admin  = models.Caller{UserID: "root", Role: models.RoleAdmin}
	slot14 = map[string]string{"masterId": "1", "date": "2024-06-10", "time": "14:00"}
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("routes-test")
}

type server struct {
	t      *testing.T
	router *gin.Engine
	stores *repository.Stores
}

func newServer(t *testing.T) *server {
	clk := testclock.NewClock(time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC))
	logger := zap.NewNop()
	grid := models.DefaultSlotGrid()
	stores := repository.NewMemoryStores(clk)
	dir := directory.New(map[string]string{"1": "Anna", "2": "Boris"}, directory.NewMemoryNameStore(), logger)
	dispatcher := notification.NewDispatcher(notification.NewMemorySyncInbox(), dir, logger)

	availability, err := booking.NewDefaultAvailabilityService(stores.Ledger, dir, grid, clk)
	require.NoError(t, err)
	svc, err := booking.NewDefaultBookingService(booking.BookingDeps{
		Ledger:       stores.Ledger,
		Bookings:     stores.Bookings,
		History:      stores.History,
		Availability: availability,
		Directory:    dir,
		Notifier:     notification.InlineNotifier{Sink: dispatcher},
		Grid:         grid,
		Clock:        clk,
		Logger:       logger,
	})
	require.NoError(t, err)
	engine, err := recommendation.NewDefaultEngine(stores.History, stores.Ledger, dir, grid, recommendation.DefaultPolicy(), clk, logger)
	require.NoError(t, err)
	reconciler := reconcile.NewReconciler(stores.Ledger, stores.Bookings, 2*time.Minute, clk, logger)

	router := gin.New()
	router.Use(utils.ErrorHandler())
	RegisterRoutes(router, handlers.NewHandlerBundle(
		dir,
		handlers.NewBookingHandler(svc),
		handlers.NewMasterHandler(dir, availability),
		handlers.NewHistoryHandler(stores.History),
		handlers.NewRecommendationHandler(engine),
		handlers.NewSyncHandler(dispatcher),
		handlers.NewAdminHandler(reconciler),
	))
	return &server{t: t, router: router, stores: stores}
}

func (s *server) do(method, path string, as *models.Caller, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		token, err := utils.GenerateToken(*as, time.Hour)
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *server) book(as models.Caller, slot map[string]string) models.Booking {
	w := s.do(http.MethodPost, "/api/bookings", &as, slot)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Booking](s.t, w)
}

func TestCreateBooking_ConflictCarriesAlternatives(t *testing.T) {
	s := newServer(t)
	b := s.book(alice, slot14)
	assert.Equal(t, models.BookingStatusPending, b.Status)
	assert.Equal(t, "A", b.UserID)

	w := s.do(http.MethodPost, "/api/bookings", &bob, slot14)
	require.Equal(t, http.StatusConflict, w.Code)
	resp := decode[utils.ErrorResponse](t, w)
	assert.Equal(t, booking.CodeSlotUnavailable, resp.Code)
	require.NotNil(t, resp.Alternatives)
	assert.Equal(t, []string{"15:00", "16:00", "17:00"}, resp.Alternatives.Times)
}

func TestCreateBooking_RejectsBadInput(t *testing.T) {
	s := newServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/bookings", nil, slot14).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/bookings", &anna, slot14).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/bookings", &alice,
		map[string]string{"userId": "B", "masterId": "1", "date": "2024-06-10", "time": "14:00"}).Code)

	w := s.do(http.MethodPost, "/api/bookings", &alice, map[string]string{"masterId": "1", "date": "2024-06-10", "time": "14:30"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, booking.CodeInvalidSlot, decode[utils.ErrorResponse](t, w).Code)

	w = s.do(http.MethodPost, "/api/bookings", &alice, map[string]string{"masterId": "9", "date": "2024-06-10", "time": "14:00"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, booking.CodeInvalidRequest, decode[utils.ErrorResponse](t, w).Code)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/bookings", &alice, map[string]string{"masterId": "1"}).Code)
}

func TestCompleteThenHistoryAndRecommendation(t *testing.T) {
	s := newServer(t)
	b := s.book(alice, slot14)

	complete := map[string]string{"masterId": "1", "clientId": "A", "date": "2024-06-10", "time": "14:00"}
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/bookings/"+b.ID+"/complete", &bob, complete).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/bookings/"+b.ID+"/complete", &boris, complete).Code)

	// The client closes the session first, then the master confirms the visit.
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/bookings/"+b.ID+"/complete", &alice, complete).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/bookings/"+b.ID+"/complete", &anna, complete).Code)

	w := s.do(http.MethodGet, "/api/users/A/history", &alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]models.VisitHistoryRecord](t, w)
	require.Len(t, history, 1)
	assert.Equal(t, models.VisitCompleted, history[0].Status)
	assert.Equal(t, "Alice", history[0].ClientName)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/users/A/history", &bob, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/masters/1/history", &anna, nil).Code)

	// The slot is free again.
	w = s.do(http.MethodGet, "/api/masters/1/availability/2024-06-10", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"masterId":"1","date":"2024-06-10","occupiedTimes":[]}`, w.Body.String())

	// Cancelling a completed booking conflicts.
	w = s.do(http.MethodDelete, "/api/bookings/"+b.ID, &alice, slot14)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, booking.CodeAlreadyTerminal, decode[utils.ErrorResponse](t, w).Code)

	w = s.do(http.MethodGet, "/api/users/A/recommendation", &alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rec := decode[models.Recommendation](t, w)
	assert.Equal(t, "1", rec.MasterID)
	assert.Equal(t, "2024-07-10", rec.Date)
	assert.Equal(t, "14:00", rec.Time)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodGet, "/api/users/B/recommendation", &bob, nil).Code)
}

func TestCancelBooking_Modes(t *testing.T) {
	s := newServer(t)
	b := s.book(alice, slot14)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, "/api/bookings/"+b.ID, &bob, slot14).Code)

	wrongSlot := map[string]string{"masterId": "1", "date": "2024-06-10", "time": "15:00"}
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/api/bookings/"+b.ID, &alice, wrongSlot).Code)

	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/bookings/"+b.ID, &alice, slot14).Code)
	w := s.do(http.MethodGet, "/api/bookings/"+b.ID, &alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.BookingStatusCancelled, decode[models.Booking](t, w).Status)

	// The freed slot can be booked again, then removed by the master.
	b2 := s.book(bob, slot14)
	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/bookings/"+b2.ID+"?mode=delete", &anna, slot14).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/bookings/"+b2.ID, &bob, nil).Code)

	w = s.do(http.MethodGet, "/api/masters/1/bookings?status=all", &anna, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Booking](t, w), 1)

	w = s.do(http.MethodGet, "/api/masters/1/bookings", &anna, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.Booking](t, w))
}

func TestSyncMessagesAreDrained(t *testing.T) {
	s := newServer(t)
	s.book(alice, slot14)

	w := s.do(http.MethodGet, "/api/sync/messages", &alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Messages []models.SyncMessage `json:"messages"`
	}](t, w)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "Booking confirmed", body.Messages[0].Title)

	w = s.do(http.MethodGet, "/api/sync/messages", &anna, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "New booking")

	w = s.do(http.MethodGet, "/api/sync/messages", &alice, nil)
	assert.JSONEq(t, `{"messages":[]}`, w.Body.String())
}

func TestCalendarEndpoints(t *testing.T) {
	s := newServer(t)
	s.book(alice, slot14)

	w := s.do(http.MethodGet, "/api/masters", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":"1","name":"Anna"},{"id":"2","name":"Boris"}]`, w.Body.String())

	w = s.do(http.MethodGet, "/api/masters/1/schedule/2024-06-10", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	schedule := decode[models.DaySchedule](t, w)
	assert.Equal(t, []string{"14:00"}, schedule.Booked)
	assert.Len(t, schedule.Available, 7)

	w = s.do(http.MethodGet, "/api/masters/1/alternatives?date=2024-06-10&time=14:00", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"15:00", "16:00", "17:00"}, decode[models.Alternatives](t, w).Times)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/masters/1/availability?days=3", nil, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/masters/1/availability?days=x", nil, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/masters/1/alternatives", nil, nil).Code)
}

func TestAdminReconcileAndHealth(t *testing.T) {
	s := newServer(t)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/admin/reconcile", &alice, nil).Code)
	w := s.do(http.MethodPost, "/api/admin/reconcile", &admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, reconcile.Report{}, decode[reconcile.Report](t, w))

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", nil, nil).Code)
}
