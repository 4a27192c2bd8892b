package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthChecker tracks whether the live loop is still producing ticks.
type HealthChecker struct {
	mu          sync.RWMutex
	started     time.Time
	lastTick    time.Time
	lastTrade   time.Time
	lastPrice   float64
	isConnected bool
	failures    int
	errors      []string

	staleAfter  time.Duration
	maxFailures int
	now         func() time.Time
}

// HealthStatus is the /health response body
type HealthStatus struct {
	Status              string    `json:"status"`
	Timestamp           time.Time `json:"timestamp"`
	LastTick            time.Time `json:"last_tick"`
	LastTrade           time.Time `json:"last_trade"`
	LastPrice           float64   `json:"last_price"`
	IsConnected         bool      `json:"is_connected"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	Uptime              string    `json:"uptime"`
	Errors              []string  `json:"errors,omitempty"`
}

const maxKeptErrors = 10

// NewHealthChecker reports degraded when no tick arrived within staleAfter
// and unhealthy after maxFailures failed ticks in a row.
func NewHealthChecker(staleAfter time.Duration, maxFailures int) *HealthChecker {
	if maxFailures <= 0 {
		maxFailures = 3
	}
	return &HealthChecker{
		started:     time.Now(),
		staleAfter:  staleAfter,
		maxFailures: maxFailures,
		now:         time.Now,
	}
}

// RecordTick marks a successful tick and clears the failure streak
func (h *HealthChecker) RecordTick(price float64, traded bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	h.lastTick = now
	h.lastPrice = price
	h.isConnected = true
	h.failures = 0
	h.errors = h.errors[:0]
	if traded {
		h.lastTrade = now
	}
}

// RecordFailure notes a failed tick
func (h *HealthChecker) RecordFailure(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.failures++
	h.isConnected = false
	h.errors = append(h.errors, err.Error())
	if len(h.errors) > maxKeptErrors {
		h.errors = h.errors[len(h.errors)-maxKeptErrors:]
	}
}

// Status computes the current health snapshot
func (h *HealthChecker) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := h.now()
	status := "healthy"
	switch {
	case h.failures >= h.maxFailures:
		status = "unhealthy"
	case !h.isConnected || (h.staleAfter > 0 && now.Sub(h.lastTick) > h.staleAfter):
		status = "degraded"
	}

	return HealthStatus{
		Status:              status,
		Timestamp:           now,
		LastTick:            h.lastTick,
		LastTrade:           h.lastTrade,
		LastPrice:           h.lastPrice,
		IsConnected:         h.isConnected,
		ConsecutiveFailures: h.failures,
		Uptime:              now.Sub(h.started).Round(time.Second).String(),
		Errors:              append([]string(nil), h.errors...),
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.Status()

	code := http.StatusOK
	switch health.Status {
	case "degraded":
		code = http.StatusServiceUnavailable
	case "unhealthy":
		code = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(health)
}
