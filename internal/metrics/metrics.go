// Package metrics exposes window manager counters in Prometheus format.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	EventsTotal   *prometheus.CounterVec
	EventDuration *prometheus.HistogramVec
	ActionsTotal  *prometheus.CounterVec
	LaunchesTotal *prometheus.CounterVec

	Monitors   prometheus.Gauge
	Workspaces prometheus.Gauge
	Windows    prometheus.Gauge
	Chords     prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		EventsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackwm_events_total",
				Help: "Total number of server events handled",
			},
			[]string{"kind"},
		),
		EventDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stackwm_event_duration_seconds",
				Help:    "Time spent handling one server event",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
			[]string{"kind"},
		),
		ActionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackwm_actions_total",
				Help: "Total number of actions run",
			},
			[]string{"action", "status"},
		),
		LaunchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackwm_launches_total",
				Help: "Total number of programs launched",
			},
			[]string{"status"},
		),

		Monitors: f.NewGauge(prometheus.GaugeOpts{
			Name: "stackwm_monitors",
			Help: "Number of monitors in the monitor stack",
		}),
		Workspaces: f.NewGauge(prometheus.GaugeOpts{
			Name: "stackwm_workspaces",
			Help: "Number of workspaces in the workspace stack",
		}),
		Windows: f.NewGauge(prometheus.GaugeOpts{
			Name: "stackwm_windows",
			Help: "Number of managed windows",
		}),
		Chords: f.NewGauge(prometheus.GaugeOpts{
			Name: "stackwm_keymap_chords",
			Help: "Number of chords in the active keymap",
		}),
	}
}

// Registry returns the registry backing these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveEvent records one handled event.
func (m *Metrics) ObserveEvent(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(kind).Inc()
	m.EventDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveAction records an action outcome.
func (m *Metrics) ObserveAction(name string, err error) {
	if m == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(name, status(err)).Inc()
}

// ObserveLaunch records a launch outcome.
func (m *Metrics) ObserveLaunch(err error) {
	if m == nil {
		return
	}
	m.LaunchesTotal.WithLabelValues(status(err)).Inc()
}

// SetState records the sizes of the window manager's stacks.
func (m *Metrics) SetState(monitors, workspaces, windows, chords int) {
	if m == nil {
		return
	}
	m.Monitors.Set(float64(monitors))
	m.Workspaces.Set(float64(workspaces))
	m.Windows.Set(float64(windows))
	m.Chords.Set(float64(chords))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
