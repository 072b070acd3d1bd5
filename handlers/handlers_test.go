package handlers_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"attendly/bootstrap"
	"attendly/handlers"
	"attendly/models"
	"attendly/routes"
	"attendly/services/attendance"
	"attendly/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const providerID = "provider-1"

var slotStart = time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

type api struct {
	t      *testing.T
	router *gin.Engine
	svcs   *bootstrap.Services
	clock  *utils.FixedClock
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	clock := utils.NewFixedClock(slotStart.Add(-time.Hour))
	svcs, _ := bootstrap.NewMemory(clock)
	r := gin.New()
	routes.RegisterRoutes(r, handlers.NewHandlerBundle(svcs, zap.NewNop()))
	return &api{t: t, router: r, svcs: svcs, clock: clock}
}

func bearer(t *testing.T, subject string) string {
	t.Helper()
	token, err := utils.GenerateToken(subject, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func (a *api) do(method, path, caller string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("Authorization", bearer(a.t, caller))
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type bookingBody struct {
	Booking models.Booking `json:"booking"`
}

// occurrence creates an offering and a capacity-bounded occurrence over HTTP.
func (a *api) occurrence(capacity int) models.Occurrence {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/offerings", providerID, models.CreateOfferingRequest{Title: "Bouldering"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	off := decode[struct {
		Offering models.Offering `json:"offering"`
	}](a.t, w).Offering

	w = a.do(http.MethodPost, "/api/occurrences", providerID, models.CreateOccurrenceRequest{
		OfferingID: off.ID,
		Start:      slotStart,
		End:        slotStart.Add(90 * time.Minute),
		Capacity:   capacity,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[struct {
		Occurrence models.Occurrence `json:"occurrence"`
	}](a.t, w).Occurrence
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodGet, "/api/me/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, w)["status"])
}

func TestReserveErrorsCarryTheirKind(t *testing.T) {
	a := newAPI(t)
	occ := a.occurrence(1)
	path := "/api/occurrences/" + occ.ID + "/bookings"

	w := a.do(http.MethodPost, path, "consumer-a", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b := decode[bookingBody](t, w).Booking
	assert.Equal(t, models.BookingPending, b.Status)
	assert.Equal(t, "consumer-a", b.ConsumerID)

	tests := []struct {
		name   string
		caller string
		path   string
		status int
		kind   string
	}{
		{name: "same consumer again", caller: "consumer-a", path: path, status: http.StatusConflict, kind: "duplicate_booking"},
		{name: "sold out", caller: "consumer-b", path: path, status: http.StatusConflict, kind: "capacity_exceeded"},
		{name: "unknown occurrence", caller: "consumer-b", path: "/api/occurrences/nope/bookings", status: http.StatusNotFound, kind: "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(http.MethodPost, tt.path, tt.caller, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.kind, decode[errorBody](t, w).Error)
		})
	}

	w = a.do(http.MethodGet, "/api/occurrences/"+occ.ID, "consumer-b", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[struct {
		Occurrence models.OccurrenceView `json:"occurrence"`
	}](t, w).Occurrence
	assert.Equal(t, 1, view.ActiveBookings)
	assert.Equal(t, 0, view.Remaining)
}

func TestCancelFreesTheSeat(t *testing.T) {
	a := newAPI(t)
	occ := a.occurrence(1)
	path := "/api/occurrences/" + occ.ID + "/bookings"

	w := a.do(http.MethodPost, path, "consumer-a", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	b := decode[bookingBody](t, w).Booking

	w = a.do(http.MethodDelete, "/api/bookings/"+b.ID, "consumer-b", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodDelete, "/api/bookings/"+b.ID, "consumer-a", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.BookingCancelled, decode[bookingBody](t, w).Booking.Status)

	w = a.do(http.MethodPost, path, "consumer-b", nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = a.do(http.MethodGet, "/api/me/bookings", "consumer-a", nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[struct {
		Bookings []models.Booking `json:"bookings"`
	}](t, w).Bookings
	require.Len(t, mine, 1)
	assert.Equal(t, models.BookingCancelled, mine[0].Status)
}

func TestProviderOverrides(t *testing.T) {
	a := newAPI(t)
	occ := a.occurrence(3)

	w := a.do(http.MethodPost, "/api/occurrences/"+occ.ID+"/bookings", "consumer-a", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	b := decode[bookingBody](t, w).Booking

	w = a.do(http.MethodPost, "/api/bookings/"+b.ID+"/confirm", "consumer-a", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPost, "/api/bookings/"+b.ID+"/confirm", providerID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.BookingConfirmed, decode[bookingBody](t, w).Booking.Status)

	w = a.do(http.MethodPost, "/api/bookings/"+b.ID+"/payment", providerID, map[string]string{"paymentStatus": "paid"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.PaymentPaid, decode[bookingBody](t, w).Booking.PaymentStatus)

	w = a.do(http.MethodPost, "/api/bookings/"+b.ID+"/payment", providerID, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/api/bookings/"+b.ID+"/outcome", providerID, map[string]string{"outcome": "completed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.BookingCompleted, decode[bookingBody](t, w).Booking.Status)

	w = a.do(http.MethodDelete, "/api/bookings/"+b.ID, "consumer-a", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_transition", decode[errorBody](t, w).Error)
}

func TestCheckInFlow(t *testing.T) {
	a := newAPI(t)
	occ := a.occurrence(5)
	other := a.occurrence(5)

	w := a.do(http.MethodPost, "/api/occurrences/"+occ.ID+"/bookings", "consumer-a", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = a.do(http.MethodPost, "/api/occurrences/"+occ.ID+"/bookings", "consumer-b", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(http.MethodPost, "/api/occurrences/"+occ.ID+"/checkin-windows", "consumer-a", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPost, "/api/occurrences/"+occ.ID+"/checkin-windows", providerID, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	win := decode[models.OpenWindowResponse](t, w)
	require.NotEmpty(t, win.Token)
	assert.NotEmpty(t, win.QRCode)
	assert.Equal(t, slotStart.Add(-time.Hour).Add(10*time.Minute), win.ExpiresAt.UTC())

	w = a.do(http.MethodPost, "/api/occurrences/"+other.ID+"/checkin", "consumer-a", models.CheckInRequest{Code: win.Token})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "occurrence_mismatch", decode[errorBody](t, w).Error)

	w = a.do(http.MethodPost, "/api/occurrences/"+occ.ID+"/checkin", "consumer-a", models.CheckInRequest{Code: "bogus"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "window_not_found", decode[errorBody](t, w).Error)

	w = a.do(http.MethodPost, "/api/occurrences/"+occ.ID+"/checkin", "consumer-a", models.CheckInRequest{Code: win.Token})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	checked := decode[bookingBody](t, w).Booking
	assert.True(t, checked.CheckedIn())
	assert.Equal(t, models.BookingConfirmed, checked.Status)

	w = a.do(http.MethodGet, "/api/occurrences/"+occ.ID+"/roster", providerID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	roster := decode[attendance.Roster](t, w)
	assert.Len(t, roster.Expected, 1)
	assert.Len(t, roster.CheckedIn, 1)

	w = a.do(http.MethodGet, "/api/occurrences/"+occ.ID+"/roster", "consumer-a", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodGet, "/api/occurrences/"+occ.ID+"/roster/sheet", providerID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))

	a.clock.Advance(11 * time.Minute)
	w = a.do(http.MethodPost, "/api/occurrences/"+occ.ID+"/checkin", "consumer-b", models.CheckInRequest{Code: win.Token})
	assert.Equal(t, http.StatusGone, w.Code)
	assert.Equal(t, "window_expired", decode[errorBody](t, w).Error)

	w = a.do(http.MethodGet, "/api/occurrences/"+occ.ID+"/checkin-windows", providerID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	windows := decode[struct {
		Windows []models.CheckInWindow `json:"windows"`
	}](t, w).Windows
	require.Len(t, windows, 1)
	assert.Equal(t, 1, windows[0].Uses)
	assert.NotContains(t, w.Body.String(), win.Token)
}

func TestGenerateSchedule(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/api/locations", providerID, models.CreateLocationRequest{
		Name:        "Studio B",
		Capacity:    12,
		AllowedTags: []string{"mat"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	loc := decode[struct {
		Location models.Location `json:"location"`
	}](t, w).Location

	w = a.do(http.MethodPost, "/api/offerings", providerID, models.CreateOfferingRequest{Title: "Pilates"})
	require.Equal(t, http.StatusCreated, w.Code)
	off := decode[struct {
		Offering models.Offering `json:"offering"`
	}](t, w).Offering

	body := map[string]any{
		"offeringId": off.ID,
		"firstStart": "2026-06-01T07:00:00Z",
		"weekdays":   []any{"mon", 3},
		"count":      4,
	}
	w = a.do(http.MethodPost, "/api/locations/"+loc.ID+"/schedule", providerID, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[models.ScheduleResult](t, w)
	assert.Equal(t, 4, first.Created)
	assert.Equal(t, 0, first.Skipped)
	for _, occ := range first.Occurrences {
		assert.Equal(t, 12, occ.Capacity)
		assert.Equal(t, []string{"mat"}, occ.AllowedTags)
	}

	// The same rule again collides with every occurrence it just made.
	w = a.do(http.MethodPost, "/api/locations/"+loc.ID+"/schedule", providerID, body)
	require.Equal(t, http.StatusCreated, w.Code)
	again := decode[models.ScheduleResult](t, w)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 4, again.Skipped)

	body["endDate"] = "2026-07-01"
	w = a.do(http.MethodPost, "/api/locations/"+loc.ID+"/schedule", providerID, body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "validation_error", decode[errorBody](t, w).Error)

	w = a.do(http.MethodPost, "/api/locations/"+loc.ID+"/schedule", "someone-else", map[string]any{
		"offeringId": off.ID,
		"firstStart": "2026-06-01T07:00:00Z",
		"weekdays":   []any{1},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateOccurrenceCapacityFloor(t *testing.T) {
	a := newAPI(t)
	occ := a.occurrence(3)
	for _, consumer := range []string{"consumer-a", "consumer-b"} {
		w := a.do(http.MethodPost, "/api/occurrences/"+occ.ID+"/bookings", consumer, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := a.do(http.MethodPatch, "/api/occurrences/"+occ.ID, providerID, map[string]int{"capacity": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = a.do(http.MethodPatch, "/api/occurrences/"+occ.ID, providerID, map[string]int{"capacity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, decode[struct {
		Occurrence models.Occurrence `json:"occurrence"`
	}](t, w).Occurrence.Capacity)

	w = a.do(http.MethodPost, "/api/occurrences/"+occ.ID+"/bookings", "consumer-c", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

// nextRoster reads server-sent events until the next "roster" event.
func nextRoster(t *testing.T, r *bufio.Reader) attendance.Roster {
	t.Helper()
	event := ""
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\r\n")
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:") && event == "roster":
			var roster attendance.Roster
			require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &roster))
			return roster
		}
	}
}

func TestRosterStream(t *testing.T) {
	a := newAPI(t)
	occ := a.occurrence(4)
	w := a.do(http.MethodPost, "/api/occurrences/"+occ.ID+"/bookings", "consumer-a", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	srv := httptest.NewServer(a.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/occurrences/"+occ.ID+"/roster/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", bearer(t, providerID))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	reader := bufio.NewReader(resp.Body)
	initial := nextRoster(t, reader)
	assert.Len(t, initial.Expected, 1)

	_, err = a.svcs.Booking.Reserve(context.Background(), "consumer-b", occ.ID)
	require.NoError(t, err)

	updated := nextRoster(t, reader)
	assert.Len(t, updated.Expected, 2)
	assert.Empty(t, updated.CheckedIn)

	cancel()
}
