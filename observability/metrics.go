// Package observability provides Prometheus metrics for the strategy loop.
package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/meme-bots/lp-cycler/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics is nil-safe: every recording method is a no-op on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	Phase           prometheus.Gauge
	NegativeSupply  prometheus.Gauge
	SpotPrice       prometheus.Gauge
	TargetPrice     prometheus.Gauge
	CyclesCompleted prometheus.Counter
	Polls           *prometheus.CounterVec
	Operations      *prometheus.CounterVec
	OperationTime   *prometheus.HistogramVec
}

func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "lp_cycler"
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Phase: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "phase",
			Help:      "Currently active strategy phase (1=add_liquidity ... 6=buy_back).",
		}),
		NegativeSupply: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "negative_supply",
			Help:      "Last polled negative supply of the monitored contract.",
		}),
		SpotPrice: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "spot_price",
			Help:      "Last sampled pool price in comparator units.",
		}),
		TargetPrice: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "target_price",
			Help:      "Buy-back price target of the current cycle.",
		}),
		CyclesCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_completed_total",
			Help:      "Strategy cycles that reached buy_back successfully.",
		}),
		Polls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Trigger evaluations by phase.",
		}, []string{"phase"}),
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_operations_total",
			Help:      "State-changing gateway operations by phase and outcome.",
		}, []string{"phase", "status"}),
		OperationTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_operation_seconds",
			Help:      "Latency of state-changing gateway operations.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}, []string{"phase"}),
	}
}

func (m *Metrics) SetPhase(p types.Phase) {
	if m == nil {
		return
	}
	m.Phase.Set(float64(p))
}

func (m *Metrics) ObservePoll(p types.Phase, supply decimal.Decimal) {
	if m == nil {
		return
	}
	m.Polls.WithLabelValues(p.String()).Inc()
	m.NegativeSupply.Set(supply.InexactFloat64())
}

func (m *Metrics) ObservePrice(price decimal.Decimal) {
	if m == nil {
		return
	}
	m.SpotPrice.Set(price.InexactFloat64())
}

func (m *Metrics) ObserveTarget(price decimal.Decimal) {
	if m == nil {
		return
	}
	m.TargetPrice.Set(price.InexactFloat64())
}

func (m *Metrics) ObserveOperation(p types.Phase, started time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Operations.WithLabelValues(p.String(), status).Inc()
	m.OperationTime.WithLabelValues(p.String()).Observe(time.Since(started).Seconds())
}

func (m *Metrics) CycleCompleted() {
	if m == nil {
		return
	}
	m.CyclesCompleted.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
