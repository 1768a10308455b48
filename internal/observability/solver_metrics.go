package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SolverJobsCollector exposes Prometheus metrics for the async solver job table.
type SolverJobsCollector struct {
	gatherer prometheus.Gatherer

	JobWaitDuration prometheus.Histogram
	JobsQueued      prometheus.Gauge
	CanceledTotal   prometheus.Counter
	WorkerBusyRatio prometheus.Gauge
}

// NewSolverJobsCollector registers solver job metrics against the provided registerer.
func NewSolverJobsCollector(reg prometheus.Registerer) (*SolverJobsCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	waitHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "solver_job_wait_duration_seconds",
		Help:    "Time a solver job spends queued before a worker picks it up.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 15, 60},
	})
	waitHistogram, err := registerHistogram(reg, waitHistogram, "solver_job_wait_duration_seconds")
	if err != nil {
		return nil, err
	}

	queueGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "solver_jobs_queued",
		Help: "Number of solver jobs currently waiting for a worker.",
	})
	queueGauge, err = registerGauge(reg, queueGauge, "solver_jobs_queued")
	if err != nil {
		return nil, err
	}

	canceled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solver_jobs_canceled_total",
		Help: "Cumulative number of solver jobs canceled before completion.",
	})
	canceled, err = registerCounter(reg, canceled, "solver_jobs_canceled_total")
	if err != nil {
		return nil, err
	}

	busyRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "solver_worker_busy_ratio",
		Help: "Fraction of solver workers currently running a job.",
	})
	busyRatio, err = registerGauge(reg, busyRatio, "solver_worker_busy_ratio")
	if err != nil {
		return nil, err
	}

	return &SolverJobsCollector{
		gatherer:        gatherer,
		JobWaitDuration: waitHistogram,
		JobsQueued:      queueGauge,
		CanceledTotal:   canceled,
		WorkerBusyRatio: busyRatio,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *SolverJobsCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveJobWait records how long one job sat in the queue.
func (c *SolverJobsCollector) ObserveJobWait(d time.Duration) {
	if c == nil || c.JobWaitDuration == nil {
		return
	}
	c.JobWaitDuration.Observe(d.Seconds())
}

// SetQueuedJobs updates the queue depth gauge.
func (c *SolverJobsCollector) SetQueuedJobs(count int) {
	if c == nil || c.JobsQueued == nil {
		return
	}
	c.JobsQueued.Set(float64(count))
}

// IncCanceled increments the canceled job counter.
func (c *SolverJobsCollector) IncCanceled() {
	if c == nil || c.CanceledTotal == nil {
		return
	}
	c.CanceledTotal.Inc()
}

// SetWorkerBusyRatio sets the fraction of busy workers.
func (c *SolverJobsCollector) SetWorkerBusyRatio(ratio float64) {
	if c == nil || c.WorkerBusyRatio == nil {
		return
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	c.WorkerBusyRatio.Set(ratio)
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
