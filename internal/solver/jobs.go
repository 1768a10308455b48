package solver

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/signalsfoundry/antenna-workbench/internal/logging"
)

const (
	// DefaultWorkers bounds concurrent solver runs.
	DefaultWorkers = 2
	// DefaultQueueDepth bounds jobs waiting for a worker.
	DefaultQueueDepth = 16
)

// RunFunc executes one solve request. Workers call it with the job's own
// context so Cancel aborts the run.
type RunFunc func(ctx context.Context, req Request) (Result, error)

// JobState tracks a job through the table.
type JobState int

const (
	JobQueued JobState = iota
	JobRunning
	JobDone
	JobFailed
)

// String renders the state for API payloads and logs.
func (s JobState) String() string {
	switch s {
	case JobQueued:
		return "queued"
	case JobRunning:
		return "running"
	case JobDone:
		return "done"
	case JobFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Job is the externally visible record of one async solve.
type Job struct {
	ID        string
	State     JobState
	Submitted time.Time
	Started   time.Time
	Finished  time.Time
	Result    *Result
	Err       string
}

type jobEntry struct {
	job    Job
	req    Request
	ctx    context.Context
	cancel context.CancelFunc
}

// JobsMetricsRecorder receives queue health measurements from the job table.
// The observability SolverJobsCollector satisfies it.
type JobsMetricsRecorder interface {
	ObserveJobWait(d time.Duration)
	SetQueuedJobs(n int)
	IncCanceled()
	SetWorkerBusyRatio(r float64)
}

// Jobs runs solve requests asynchronously on a bounded worker pool and
// tracks their lifecycle for the API's job endpoints.
type Jobs struct {
	run     RunFunc
	log     logging.Logger
	metrics JobsMetricsRecorder
	workers int
	depth   int

	ctx       context.Context
	cancelAll context.CancelFunc
	wg        sync.WaitGroup
	queue     chan *jobEntry

	mu   sync.Mutex
	jobs map[string]*jobEntry
	busy int
}

// JobsOption customises the job table.
type JobsOption func(*Jobs)

// WithWorkers sets the worker pool size.
func WithWorkers(n int) JobsOption {
	return func(j *Jobs) {
		if n > 0 {
			j.workers = n
		}
	}
}

// WithQueueDepth sets how many jobs may wait for a worker.
func WithQueueDepth(n int) JobsOption {
	return func(j *Jobs) {
		if n > 0 {
			j.depth = n
		}
	}
}

// WithJobsMetrics attaches a queue health recorder.
func WithJobsMetrics(rec JobsMetricsRecorder) JobsOption {
	return func(j *Jobs) {
		j.metrics = rec
	}
}

// NewJobs builds the table and starts its workers.
func NewJobs(run RunFunc, log logging.Logger, opts ...JobsOption) *Jobs {
	if run == nil {
		run = func(context.Context, Request) (Result, error) {
			return Result{}, errors.New("solver: no runner configured")
		}
	}
	if log == nil {
		log = logging.Noop()
	}

	j := &Jobs{
		run:     run,
		log:     log,
		workers: DefaultWorkers,
		depth:   DefaultQueueDepth,
		jobs:    make(map[string]*jobEntry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(j)
		}
	}

	j.ctx, j.cancelAll = context.WithCancel(context.Background())
	j.queue = make(chan *jobEntry, j.depth)
	for i := 0; i < j.workers; i++ {
		j.wg.Add(1)
		go j.worker()
	}
	return j
}

// Submit enqueues a request and returns the job id. It fails fast with
// ErrQueueFull rather than blocking an API handler. ctx scopes logging only;
// the job itself outlives the submitting request.
func (j *Jobs) Submit(ctx context.Context, req Request) (string, error) {
	jobCtx, cancel := context.WithCancel(j.ctx)
	e := &jobEntry{
		job: Job{
			ID:        uuid.NewString(),
			State:     JobQueued,
			Submitted: time.Now(),
		},
		req:    req,
		ctx:    jobCtx,
		cancel: cancel,
	}

	j.mu.Lock()
	j.jobs[e.job.ID] = e
	j.mu.Unlock()

	select {
	case j.queue <- e:
	default:
		cancel()
		j.mu.Lock()
		delete(j.jobs, e.job.ID)
		j.mu.Unlock()
		return "", ErrQueueFull
	}

	j.updateQueueGauge()
	j.log.Debug(ctx, "solve job queued",
		logging.String("job_id", e.job.ID),
		logging.Int("wires", len(req.Cards)),
	)
	return e.job.ID, nil
}

// Get returns a copy of one job record.
func (j *Jobs) Get(id string) (Job, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	e, ok := j.jobs[id]
	if !ok {
		return Job{}, false
	}
	return cloneJob(e.job), true
}

// List returns copies of all tracked jobs, most recently submitted first.
func (j *Jobs) List() []Job {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]Job, 0, len(j.jobs))
	for _, e := range j.jobs {
		out = append(out, cloneJob(e.job))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Submitted.After(out[b].Submitted) })
	return out
}

// Cancel aborts a queued or running job. It reports whether the job was
// still cancelable.
func (j *Jobs) Cancel(id string) bool {
	j.mu.Lock()
	e, ok := j.jobs[id]
	if !ok {
		j.mu.Unlock()
		return false
	}
	state := e.job.State
	j.mu.Unlock()

	if state == JobDone || state == JobFailed {
		return false
	}
	e.cancel()
	return true
}

// Close stops the workers and cancels running jobs.
func (j *Jobs) Close() {
	j.cancelAll()
	j.wg.Wait()
}

func (j *Jobs) worker() {
	defer j.wg.Done()
	for {
		select {
		case <-j.ctx.Done():
			return
		case e := <-j.queue:
			j.updateQueueGauge()
			j.runJob(e)
		}
	}
}

func (j *Jobs) runJob(e *jobEntry) {
	j.mu.Lock()
	if e.ctx.Err() != nil {
		// Canceled while still queued.
		e.job.State = JobFailed
		e.job.Err = "canceled"
		e.job.Finished = time.Now()
		j.mu.Unlock()
		if j.metrics != nil {
			j.metrics.IncCanceled()
		}
		return
	}
	e.job.State = JobRunning
	e.job.Started = time.Now()
	wait := e.job.Started.Sub(e.job.Submitted)
	j.busy++
	busy := float64(j.busy) / float64(j.workers)
	j.mu.Unlock()

	if j.metrics != nil {
		j.metrics.ObserveJobWait(wait)
		j.metrics.SetWorkerBusyRatio(busy)
	}

	res, err := j.run(e.ctx, e.req)

	j.mu.Lock()
	e.job.Finished = time.Now()
	canceled := false
	switch {
	case err == nil:
		e.job.State = JobDone
		e.job.Result = &res
	case e.ctx.Err() != nil:
		e.job.State = JobFailed
		e.job.Err = "canceled"
		canceled = true
	default:
		e.job.State = JobFailed
		e.job.Err = err.Error()
	}
	state := e.job.State
	elapsed := e.job.Finished.Sub(e.job.Started)
	j.busy--
	busy = float64(j.busy) / float64(j.workers)
	j.mu.Unlock()

	if j.metrics != nil {
		if canceled {
			j.metrics.IncCanceled()
		}
		j.metrics.SetWorkerBusyRatio(busy)
	}
	j.log.Debug(e.ctx, "solve job finished",
		logging.String("job_id", e.job.ID),
		logging.String("state", state.String()),
		logging.Duration("elapsed", elapsed),
	)
}

func (j *Jobs) updateQueueGauge() {
	if j.metrics != nil {
		j.metrics.SetQueuedJobs(len(j.queue))
	}
}

func cloneJob(job Job) Job {
	if job.Result != nil {
		res := Result{Points: append([]FrequencyPoint(nil), job.Result.Points...)}
		job.Result = &res
	}
	return job
}
