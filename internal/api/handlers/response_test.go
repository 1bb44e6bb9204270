package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments/models"
)

func TestParseTimestamp(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)

	got, err := ParseTimestamp("2025-06-02T10:30:00+03:00", time.UTC)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 6, 2, 7, 30, 0, 0, time.UTC)))

	got, err = ParseTimestamp("2025-06-02T10:30", moscow)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 6, 2, 7, 30, 0, 0, time.UTC)))

	_, err = ParseTimestamp("tomorrow", time.UTC)
	assert.Error(t, err)

	empty := "  "
	opt, err := ParseOptionalTimestamp(&empty, time.UTC)
	require.NoError(t, err)
	assert.Nil(t, opt)
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Anna"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "Anna", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"unknown":1}`))
	assert.Error(t, DecodeJSON(r, &dst))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.Error(t, DecodeJSON(r, &dst))
}

func TestRespondOverlap(t *testing.T) {
	w := httptest.NewRecorder()
	RespondOverlap(w, "conflict", []models.ConflictResponse{{AppointmentID: "a", CustomerName: "Olga"}})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"overlapConfirmationRequired":true`)
	assert.Contains(t, w.Body.String(), `"customerName":"Olga"`)
}
