package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photosession/internal/database/dbtest"
	"photosession/internal/database/migrations"
	"photosession/internal/events"
	jwtsvc "photosession/internal/pkg/jwt"
	"photosession/internal/pkg/lock"
)

type testSuite struct {
	router *gin.Engine
	events *events.Memory
	tokens map[string]string
}

type testResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *errorDetail   `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

const (
	adminID        = 1
	photographerID = 100
	customerID     = 1000
	otherID        = 1001
)

func setupTestSuite(t *testing.T) *testSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.Open(t)
	require.NoError(t, migrations.Migrate(db))

	mem := events.NewMemory()
	j := jwtsvc.New("test_secret_key_32_characters_min", "photosession", time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := NewRouter(ctx, NewServices(db, lock.NewLocal(), mem), j, RouterConfig{RequestTimeout: 5 * time.Second})

	tokens := map[string]string{}
	for name, u := range map[string]struct {
		id   int64
		role string
	}{
		"admin":        {adminID, "admin"},
		"photographer": {photographerID, "photographer"},
		"customer":     {customerID, "customer"},
		"other":        {otherID, "customer"},
	} {
		tok, err := j.GenerateToken(u.id, u.role)
		require.NoError(t, err)
		tokens[name] = tok
	}
	return &testSuite{router: router, events: mem, tokens: tokens}
}

func (s *testSuite) do(t *testing.T, as, method, path string, body any) (int, testResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+s.tokens[as])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp testResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func id(t *testing.T, resp testResponse) int64 {
	t.Helper()
	v, ok := resp.Data["id"].(float64)
	require.True(t, ok, "response has no id: %+v", resp)
	return int64(v)
}

func TestHealthAndAuth(t *testing.T) {
	s := setupTestSuite(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	code, resp := s.do(t, "", http.MethodGet, "/api/v1/catalog", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)

	code, _ = s.do(t, "customer", http.MethodPost, "/api/v1/catalog/services", map[string]any{"name": "x", "price_per_unit": 100})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestBookingAndPaymentFlow(t *testing.T) {
	s := setupTestSuite(t)
	date := time.Now().UTC().AddDate(0, 0, 10).Format("2006-01-02")

	// catalog
	code, resp := s.do(t, "admin", http.MethodPost, "/api/v1/catalog/services", map[string]any{
		"name": "Studio hour", "price_per_unit": 50000, "duration_minutes": 60,
	})
	require.Equal(t, http.StatusCreated, code, resp)
	serviceID := id(t, resp)

	// schedule: every day 09:00-18:00
	day := map[string]any{"accepts_bookings": true, "slots": []map[string]string{{"start": "09:00", "end": "18:00"}}}
	weekly := map[string]any{}
	for _, d := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"} {
		weekly[d] = day
	}
	code, resp = s.do(t, "photographer", http.MethodPut, fmt.Sprintf("/api/v1/photographers/%d/schedule", photographerID), map[string]any{"weekly": weekly})
	require.Equal(t, http.StatusOK, code, resp)

	code, _ = s.do(t, "other", http.MethodPut, fmt.Sprintf("/api/v1/photographers/%d/schedule", photographerID), map[string]any{"weekly": weekly})
	assert.Equal(t, http.StatusForbidden, code)

	// promotion
	code, resp = s.do(t, "admin", http.MethodPost, "/api/v1/promotions", map[string]any{
		"code": "AUTUMN20", "type": "percentage", "discount_value": 20,
		"valid_from":  time.Now().UTC().AddDate(0, 0, -1),
		"valid_until": time.Now().UTC().AddDate(0, 1, 0),
	})
	require.Equal(t, http.StatusCreated, code, resp)

	// booking: 2 x 500.00 with 20% off
	booking := map[string]any{
		"photographer_id": photographerID,
		"services":        []map[string]any{{"service_id": serviceID, "quantity": 2}},
		"booking_date":    date,
		"start_time":      "10:00",
		"promo_code":      "autumn20",
	}
	code, resp = s.do(t, "customer", http.MethodPost, "/api/v1/bookings", booking)
	require.Equal(t, http.StatusCreated, code, resp)
	bookingID := id(t, resp)
	assert.EqualValues(t, 100000, resp.Data["total_amount"])
	assert.EqualValues(t, 20000, resp.Data["discount_amount"])
	assert.EqualValues(t, 80000, resp.Data["final_amount"])
	assert.Equal(t, "12:00", resp.Data["end_time"])

	code, resp = s.do(t, "other", http.MethodPost, "/api/v1/bookings", booking)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "SLOT_UNAVAILABLE", resp.Error.Code)

	code, resp = s.do(t, "other", http.MethodGet, fmt.Sprintf("/api/v1/photographers/%d/availability/check?date=%s&start=11:00&end=11:30", photographerID, date), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, resp.Data["available"])

	code, _ = s.do(t, "other", http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", bookingID), nil)
	assert.Equal(t, http.StatusForbidden, code)

	// lifecycle
	code, resp = s.do(t, "photographer", http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/confirm", bookingID), nil)
	require.Equal(t, http.StatusOK, code, resp)
	assert.Equal(t, "confirmed", resp.Data["status"])

	code, resp = s.do(t, "photographer", http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/complete", bookingID), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "PAYMENT_INCOMPLETE", resp.Error.Code)

	// payments
	code, resp = s.do(t, "photographer", http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/transactions", bookingID), map[string]any{
		"type": "payment", "method": "cash", "amount": 90000,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "OVERPAYMENT", resp.Error.Code)

	code, resp = s.do(t, "photographer", http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/transactions", bookingID), map[string]any{
		"type": "payment", "method": "cash", "amount": 80000,
	})
	require.Equal(t, http.StatusCreated, code, resp)
	paymentID := id(t, resp)
	assert.Equal(t, "completed", resp.Data["status"])

	code, resp = s.do(t, "customer", http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d/payment-status", bookingID), nil)
	require.Equal(t, http.StatusOK, code)
	summary := resp.Data["summary"].(map[string]any)
	assert.Equal(t, true, summary["is_payment_complete"])
	assert.EqualValues(t, 0, summary["remaining_balance"])

	code, resp = s.do(t, "photographer", http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/complete", bookingID), nil)
	require.Equal(t, http.StatusOK, code, resp)
	assert.Equal(t, "completed", resp.Data["status"])

	// refund
	code, resp = s.do(t, "admin", http.MethodPost, fmt.Sprintf("/api/v1/transactions/%d/refund", paymentID), map[string]any{"amount": 10000, "notes": "late delivery"})
	require.Equal(t, http.StatusCreated, code, resp)
	refundID := id(t, resp)

	code, _ = s.do(t, "admin", http.MethodPost, fmt.Sprintf("/api/v1/transactions/%d/complete", refundID), nil)
	require.Equal(t, http.StatusOK, code)

	code, resp = s.do(t, "admin", http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d/payment-status", bookingID), nil)
	require.Equal(t, http.StatusOK, code)
	summary = resp.Data["summary"].(map[string]any)
	assert.EqualValues(t, 70000, summary["amount_paid"])
	assert.Equal(t, "fully_paid_with_refund", summary["scenario"])

	assert.Contains(t, s.events.Types(), events.BookingCompleted)
	assert.Contains(t, s.events.Types(), events.TransactionRefunded)
}
