package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics()

	m.RecordTrade("BTCUSDT", "BUY1", 0.5)
	m.RecordTrade("BTCUSDT", "BUY1", 0.25)
	m.RecordTrade("BTCUSDT", "TP2", 0.75)
	m.UpdatePrice("BTCUSDT", 43000)
	m.UpdateRSI("BTCUSDT", 27.5)
	m.UpdatePortfolio("BTCUSDT", 900, 0.01, 1330, 2.5)
	m.RecordTick("BTCUSDT", "traded")
	m.RecordError("NETWORK")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.tradesTotal.WithLabelValues("BTCUSDT", "BUY1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tradesTotal.WithLabelValues("BTCUSDT", "TP2")))
	assert.Equal(t, 43000.0, testutil.ToFloat64(m.currentPrice.WithLabelValues("BTCUSDT")))
	assert.Equal(t, 27.5, testutil.ToFloat64(m.currentRSI.WithLabelValues("BTCUSDT")))
	assert.Equal(t, 1330.0, testutil.ToFloat64(m.totalValue.WithLabelValues("BTCUSDT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorsTotal.WithLabelValues("NETWORK")))

	// two registries never collide
	other := NewMetrics()
	assert.Zero(t, testutil.ToFloat64(other.tradesTotal.WithLabelValues("BTCUSDT", "BUY1")))
}

func TestHealthChecker_Status(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	h := NewHealthChecker(10*time.Minute, 2)
	h.now = func() time.Time { return now }

	assert.Equal(t, "degraded", h.Status().Status)

	h.RecordTick(100, true)
	st := h.Status()
	assert.Equal(t, "healthy", st.Status)
	assert.Equal(t, now, st.LastTrade)
	assert.Equal(t, 100.0, st.LastPrice)

	now = now.Add(11 * time.Minute)
	assert.Equal(t, "degraded", h.Status().Status)

	h.RecordFailure(errors.New("timeout"))
	h.RecordFailure(errors.New("timeout"))
	st = h.Status()
	assert.Equal(t, "unhealthy", st.Status)
	assert.Equal(t, 2, st.ConsecutiveFailures)
	assert.Len(t, st.Errors, 2)

	h.RecordTick(101, false)
	st = h.Status()
	assert.Equal(t, "healthy", st.Status)
	assert.Empty(t, st.Errors)
}

func TestRouter(t *testing.T) {
	m := NewMetrics()
	m.RecordTrade("ETHUSDT", "BUY2", 1)
	h := NewHealthChecker(time.Hour, 3)
	h.RecordTick(2000, false)

	router := NewRouter(m, h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `rsi_bot_trades_total{action="BUY2",symbol="ETHUSDT"} 1`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_StartShutdown(t *testing.T) {
	h := NewHealthChecker(0, 3)
	h.RecordTick(1, false)

	srv, err := Start("127.0.0.1:0", NewRouter(NewMetrics(), h))
	require.NoError(t, err)

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `"status":"healthy"`))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
}
