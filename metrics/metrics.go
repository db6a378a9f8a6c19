// Package metrics exposes session progress as Prometheus metrics, fed from
// the events bus.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/realcatgirly/pomolight/events"
)

var phaseKinds = []string{"start", "work", "rest", "break", "finish"}

// Collector keeps the pomolight metrics in its own registry.
type Collector struct {
	registry  *prometheus.Registry
	phase     *prometheus.GaugeVec
	remaining prometheus.Gauge
	phases    *prometheus.CounterVec
	sessions  *prometheus.CounterVec
	unsubs    []func()
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		phase: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pomolight_phase",
				Help: "1 for the phase kind currently shown, 0 otherwise",
			},
			[]string{"kind"},
		),
		remaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pomolight_phase_remaining_seconds",
			Help: "Seconds left in the current phase, set at phase start",
		}),
		phases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pomolight_phases_total",
				Help: "Phases completed by kind",
			},
			[]string{"kind"},
		),
		sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pomolight_sessions_total",
				Help: "Sessions ended by result",
			},
			[]string{"result"},
		),
	}
	c.registry.MustRegister(c.phase, c.remaining, c.phases, c.sessions)
	for _, kind := range phaseKinds {
		c.phase.WithLabelValues(kind).Set(0)
	}
	return c
}

// Subscribe feeds the collector from bus until Unsubscribe is called.
func (c *Collector) Subscribe(bus *events.Bus) {
	c.unsubs = append(c.unsubs,
		bus.Subscribe(c.handlePhaseStarted),
		bus.Subscribe(c.handlePhaseFinished),
		bus.Subscribe(c.handleSessionFinished),
	)
}

func (c *Collector) Unsubscribe() {
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
}

func (c *Collector) handlePhaseStarted(e events.PhaseStartedEvent) {
	for _, kind := range phaseKinds {
		c.phase.WithLabelValues(kind).Set(0)
	}
	c.phase.WithLabelValues(e.Kind).Set(1)
	c.remaining.Set(e.Duration.Seconds())
}

func (c *Collector) handlePhaseFinished(e events.PhaseFinishedEvent) {
	c.phases.WithLabelValues(e.Kind).Inc()
	c.remaining.Set(0)
}

func (c *Collector) handleSessionFinished(e events.SessionFinishedEvent) {
	for _, kind := range phaseKinds {
		c.phase.WithLabelValues(kind).Set(0)
	}
	c.remaining.Set(0)
	c.sessions.WithLabelValues(e.Result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx ends.
func (c *Collector) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics server shutdown failed", "error", err)
		}
	}()

	logger.Info("Serving metrics", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
