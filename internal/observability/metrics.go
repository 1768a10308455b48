package observability

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EditorCollector bundles Prometheus metrics for the editor API surface and
// provides helpers to wire them into the HTTP server and the document editor.
type EditorCollector struct {
	gatherer prometheus.Gatherer

	APIRequests  *prometheus.CounterVec
	APIDurations *prometheus.HistogramVec

	DocumentsOpen       prometheus.Gauge
	DocumentWires       prometheus.Gauge
	DocumentExcitations prometheus.Gauge
	DocumentLoads       prometheus.Gauge
	DocumentLines       prometheus.Gauge
	DocumentSegments    prometheus.Gauge

	EditorOps *prometheus.CounterVec

	SolverRequests  *prometheus.CounterVec
	SolverDurations prometheus.Histogram
}

// NewEditorCollector registers editor Prometheus metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewEditorCollector(reg prometheus.Registerer) (*EditorCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_requests_total",
		Help: "Total number of handled API requests, labeled by route, method, and HTTP status code.",
	}, []string{"route", "method", "code"})
	requests, err := registerCounterVec(reg, requests, "api_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_seconds",
		Help:    "API request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route", "method"})
	durations, err = registerHistogramVec(reg, durations, "api_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	open, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "document_open_total",
		Help: "Current number of live editing sessions.",
	}), "document_open_total")
	if err != nil {
		return nil, err
	}
	wires, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "document_wires",
		Help: "Current number of wires across open documents.",
	}), "document_wires")
	if err != nil {
		return nil, err
	}
	excitations, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "document_excitations",
		Help: "Current number of excitations across open documents.",
	}), "document_excitations")
	if err != nil {
		return nil, err
	}
	loads, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "document_loads",
		Help: "Current number of lumped loads across open documents.",
	}), "document_loads")
	if err != nil {
		return nil, err
	}
	lines, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "document_transmission_lines",
		Help: "Current number of transmission lines across open documents.",
	}), "document_transmission_lines")
	if err != nil {
		return nil, err
	}
	segments, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "document_segments_total",
		Help: "Current segment count summed over all wires in open documents.",
	}), "document_segments_total")
	if err != nil {
		return nil, err
	}

	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "editor_operations_total",
		Help: "Total number of applied editor operations, labeled by operation name.",
	}, []string{"op"})
	ops, err = registerCounterVec(reg, ops, "editor_operations_total")
	if err != nil {
		return nil, err
	}

	solverRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solver_requests_total",
		Help: "Total number of solver runs, labeled by final status.",
	}, []string{"status"})
	solverRequests, err = registerCounterVec(reg, solverRequests, "solver_requests_total")
	if err != nil {
		return nil, err
	}

	solverDurations := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "solver_request_duration_seconds",
		Help:    "Solver run latency in seconds, queueing included.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})
	solverDurations, err = registerHistogram(reg, solverDurations, "solver_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &EditorCollector{
		gatherer:            gatherer,
		APIRequests:         requests,
		APIDurations:        durations,
		DocumentsOpen:       open,
		DocumentWires:       wires,
		DocumentExcitations: excitations,
		DocumentLoads:       loads,
		DocumentLines:       lines,
		DocumentSegments:    segments,
		EditorOps:           ops,
		SolverRequests:      solverRequests,
		SolverDurations:     solverDurations,
	}, nil
}

// HTTPMiddleware records request counts and durations for one API route. The
// route label is the registered pattern rather than the raw path, so document
// ids and wire tags do not inflate metric cardinality.
func (c *EditorCollector) HTTPMiddleware(route string) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		if c == nil {
			return err
		}

		code := ctx.Response().StatusCode()
		if err != nil {
			// The framework error handler rewrites the response after this
			// middleware unwinds, so read the code off the error itself.
			code = http.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
		}
		method := ctx.Method()
		if c.APIRequests != nil {
			c.APIRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
		}
		if c.APIDurations != nil {
			c.APIDurations.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
		}

		return err
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EditorCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetDocumentCounts satisfies the editor's MetricsRecorder interface so the
// editor can drive gauge values directly from its mutators.
func (c *EditorCollector) SetDocumentCounts(wires, excitations, loads, lines, segments int) {
	if c == nil {
		return
	}
	if c.DocumentWires != nil {
		c.DocumentWires.Set(float64(wires))
	}
	if c.DocumentExcitations != nil {
		c.DocumentExcitations.Set(float64(excitations))
	}
	if c.DocumentLoads != nil {
		c.DocumentLoads.Set(float64(loads))
	}
	if c.DocumentLines != nil {
		c.DocumentLines.Set(float64(lines))
	}
	if c.DocumentSegments != nil {
		c.DocumentSegments.Set(float64(segments))
	}
}

// ObserveEditorOp counts one applied editor operation by name.
func (c *EditorCollector) ObserveEditorOp(op string) {
	if c == nil || c.EditorOps == nil {
		return
	}
	c.EditorOps.WithLabelValues(op).Inc()
}

// SetOpenDocuments tracks the number of live editing sessions.
func (c *EditorCollector) SetOpenDocuments(n int) {
	if c == nil || c.DocumentsOpen == nil {
		return
	}
	c.DocumentsOpen.Set(float64(n))
}

// ObserveSolverRequest records the outcome and duration of one solver run.
func (c *EditorCollector) ObserveSolverRequest(status string, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.SolverRequests != nil {
		c.SolverRequests.WithLabelValues(status).Inc()
	}
	if c.SolverDurations != nil {
		c.SolverDurations.Observe(elapsed.Seconds())
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
