package dashboard

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eddiefleurent/trdr/internal/broker"
	"github.com/eddiefleurent/trdr/internal/models"
	"github.com/eddiefleurent/trdr/internal/money"
	"github.com/eddiefleurent/trdr/internal/pdt"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedWeekdayClock() (money.TradingDateTime, error) {
	return money.FromUTC(time.Date(2026, time.March, 3, 15, 0, 0, 0, time.UTC))
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestServer(t *testing.T, authToken string) (*Server, *broker.Mock) {
	t.Helper()
	mock := broker.NewMock(money.New(decimal.NewFromInt(10000)))
	core := broker.New(mock, pdt.Nun{}, fixedWeekdayClock)
	s := NewServer(Config{Port: 0, AuthToken: authToken}, core, testLogger())
	return s, mock
}

func TestHandleHealth_IsPublic(t *testing.T) {
	s, _ := newTestServer(t, "secret")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleStatus_RequiresAuthWhenTokenSet(t *testing.T) {
	s, _ := newTestServer(t, "secret")
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleStatus_SucceedsWithValidToken(t *testing.T) {
	s, _ := newTestServer(t, "secret")
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("X-Auth-Token", "secret")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "USD 10000.00", resp.Cash)
	assert.Equal(t, 0, resp.OpenPositions)
}

func TestHandleStatus_NoAuthRequiredWhenTokenEmpty(t *testing.T) {
	s, _ := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleStatus_ReportsOpenPositions(t *testing.T) {
	s, mock := newTestServer(t, "")
	mock.SetPrice("AAPL", money.New(decimal.NewFromInt(100)))

	core := s.broker
	require.NoError(t, core.PlaceOrder("AAPL", models.SideBuy, money.New(decimal.NewFromInt(1000))))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.OpenPositions)
	require.Len(t, resp.Positions, 1)
	assert.Equal(t, "AAPL", resp.Positions[0].Symbol)
}

func TestRecordCycle_ReflectedInStatus(t *testing.T) {
	s, _ := newTestServer(t, "")
	ranAt := time.Date(2026, time.March, 3, 15, 30, 0, 0, time.UTC)
	s.RecordCycle(ranAt, 50*time.Millisecond, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.LastCycleRanAt)
	assert.True(t, ranAt.Equal(*resp.LastCycleRanAt))
	assert.Equal(t, int64(50), resp.LastCycleMillis)
}
