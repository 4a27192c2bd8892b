package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the live bot's prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	tradesTotal  *prometheus.CounterVec
	tradeSize    *prometheus.HistogramVec
	currentPrice *prometheus.GaugeVec
	currentRSI   *prometheus.GaugeVec
	bank         *prometheus.GaugeVec
	holdings     *prometheus.GaugeVec
	totalValue   *prometheus.GaugeVec
	maxDrawdown  *prometheus.GaugeVec
	ticksTotal   *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
}

// NewMetrics registers every collector plus the Go runtime collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tradesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rsi_bot_trades_total",
				Help: "Total number of executed trade steps",
			},
			[]string{"symbol", "action"},
		),
		tradeSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rsi_bot_trade_size",
				Help:    "Distribution of trade sizes in base units",
				Buckets: prometheus.ExponentialBuckets(0.001, 10, 8),
			},
			[]string{"symbol"},
		),
		currentPrice: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rsi_bot_current_price",
				Help: "Last price used for a decision",
			},
			[]string{"symbol"},
		),
		currentRSI: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rsi_bot_rsi",
				Help: "Last defined RSI reading",
			},
			[]string{"symbol"},
		),
		bank: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "rsi_bot_bank", Help: "Quote currency available"},
			[]string{"symbol"},
		),
		holdings: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "rsi_bot_holdings", Help: "Base units held"},
			[]string{"symbol"},
		),
		totalValue: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "rsi_bot_total_value", Help: "Bank plus holdings at the last price"},
			[]string{"symbol"},
		),
		maxDrawdown: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "rsi_bot_max_drawdown_percent", Help: "Largest peak to trough decline seen"},
			[]string{"symbol"},
		),
		ticksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "rsi_bot_ticks_total", Help: "Candle ticks processed"},
			[]string{"symbol", "outcome"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rsi_bot_errors_total",
				Help: "Total number of errors",
			},
			[]string{"category"},
		),
	}

	m.registry.MustRegister(
		m.tradesTotal, m.tradeSize, m.currentPrice, m.currentRSI,
		m.bank, m.holdings, m.totalValue, m.maxDrawdown,
		m.ticksTotal, m.errorsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordTrade records an executed step
func (m *Metrics) RecordTrade(symbol, action string, size float64) {
	m.tradesTotal.WithLabelValues(symbol, action).Inc()
	m.tradeSize.WithLabelValues(symbol).Observe(size)
}

// UpdatePrice updates the current price metric
func (m *Metrics) UpdatePrice(symbol string, price float64) {
	m.currentPrice.WithLabelValues(symbol).Set(price)
}

// UpdateRSI updates the RSI gauge
func (m *Metrics) UpdateRSI(symbol string, rsi float64) {
	m.currentRSI.WithLabelValues(symbol).Set(rsi)
}

// UpdatePortfolio publishes the portfolio snapshot after a tick
func (m *Metrics) UpdatePortfolio(symbol string, bank, holdings, totalValue, maxDrawdown float64) {
	m.bank.WithLabelValues(symbol).Set(bank)
	m.holdings.WithLabelValues(symbol).Set(holdings)
	m.totalValue.WithLabelValues(symbol).Set(totalValue)
	m.maxDrawdown.WithLabelValues(symbol).Set(maxDrawdown)
}

// RecordTick counts a processed candle by outcome: traded, idle, skipped or partial
func (m *Metrics) RecordTick(symbol, outcome string) {
	m.ticksTotal.WithLabelValues(symbol, outcome).Inc()
}

// RecordError records an error metric
func (m *Metrics) RecordError(category string) {
	m.errorsTotal.WithLabelValues(category).Inc()
}
