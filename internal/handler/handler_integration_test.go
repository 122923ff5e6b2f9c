//go:build integration

package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/qs-lzh/cinema-booking/config"
	"github.com/qs-lzh/cinema-booking/internal/app"
	"github.com/qs-lzh/cinema-booking/internal/database/dbtest"
	"github.com/qs-lzh/cinema-booking/internal/model"
)

func TestBookingFlow(t *testing.T) {
	db := dbtest.Postgres(t)
	cfg := &config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour, Timezone: time.UTC}
	a := app.New(cfg, db, nil, nil, zaptest.NewLogger(t))
	router, err := NewRouter(a)
	require.NoError(t, err)

	auditorium := &model.Auditorium{Name: "Room 1", Capacity: 15}
	require.NoError(t, db.Create(auditorium).Error)
	movie := &model.Movie{Title: "Arrival", Slug: "arrival", Duration: 116}
	require.NoError(t, db.Create(movie).Error)
	start := time.Now().Add(72 * time.Hour).UTC()
	schedule := &model.Schedule{StartAt: start, EndAt: start.Add(116 * time.Minute), MovieID: movie.ID, AuditoriumID: auditorium.ID}
	require.NoError(t, db.Create(schedule).Error)

	call := func(method, path, token string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := call(http.MethodPost, "/users", "", map[string]any{"name": "Ada", "email": "Ada@Example.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(http.MethodPost, "/users/login", "", map[string]any{"email": "ada@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[struct {
		Token string `json:"token"`
	}](t, w).Token
	require.NotEmpty(t, token)

	w = call(http.MethodPost, "/tickets", token, map[string]any{"scheduleId": schedule.ID, "price": 12})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	w = call(http.MethodPost, "/transactions/deposit", token, map[string]any{"amount": 30})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(http.MethodPost, "/tickets", token, map[string]any{"scheduleId": schedule.ID, "price": 12})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(http.MethodGet, "/transactions/balance", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[BalanceResponse](t, w).Balance.Equal(decimal.NewFromInt(18)))

	w = call(http.MethodGet, "/tickets/mine", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]model.Ticket](t, w)["tickets"], 1)

	// the ticket is only accepted around the start time
	w = call(http.MethodGet, "/tickets/1/validate", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(http.MethodPost, "/users/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = call(http.MethodGet, "/tickets/mine", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
