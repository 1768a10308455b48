package solver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/signalsfoundry/antenna-workbench/internal/logging"
)

func waitForJobState(t *testing.T, jobs *Jobs, id string, want JobState) Job {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if job, ok := jobs.Get(id); ok && job.State == want {
			return job
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("job %s never reached state %v", id, want)
	return Job{}
}

func TestJobsRunSubmittedJob(t *testing.T) {
	jobs := NewJobs(func(ctx context.Context, req Request) (Result, error) {
		return Result{Points: []FrequencyPoint{{FrequencyMHz: req.Sweep.StartMHz, SWR: 1.1}}}, nil
	}, logging.Noop(), WithWorkers(1))
	defer jobs.Close()

	id, err := jobs.Submit(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if id == "" {
		t.Fatal("Submit returned empty id")
	}

	job := waitForJobState(t, jobs, id, JobDone)
	if job.Result == nil || len(job.Result.Points) != 1 || job.Result.Points[0].FrequencyMHz != 14.1 {
		t.Fatalf("job result = %+v", job.Result)
	}
	if job.Err != "" {
		t.Fatalf("job err = %q, want empty", job.Err)
	}
	if job.Started.IsZero() || job.Finished.IsZero() {
		t.Fatalf("job timestamps not set: %+v", job)
	}
}

func TestJobsFailedRun(t *testing.T) {
	jobs := NewJobs(func(ctx context.Context, req Request) (Result, error) {
		return Result{}, errors.New("segment count mismatch")
	}, logging.Noop(), WithWorkers(1))
	defer jobs.Close()

	id, err := jobs.Submit(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	job := waitForJobState(t, jobs, id, JobFailed)
	if job.Err != "segment count mismatch" {
		t.Fatalf("job err = %q, want run error text", job.Err)
	}
	if job.Result != nil {
		t.Fatalf("failed job kept a result: %+v", job.Result)
	}
}

func TestJobsCancelRunning(t *testing.T) {
	started := make(chan struct{}, 1)
	jobs := NewJobs(func(ctx context.Context, req Request) (Result, error) {
		started <- struct{}{}
		<-ctx.Done()
		return Result{}, ctx.Err()
	}, logging.Noop(), WithWorkers(1))
	defer jobs.Close()

	id, err := jobs.Submit(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	<-started

	if !jobs.Cancel(id) {
		t.Fatal("Cancel on running job = false, want true")
	}
	job := waitForJobState(t, jobs, id, JobFailed)
	if job.Err != "canceled" {
		t.Fatalf("job err = %q, want canceled", job.Err)
	}
	if jobs.Cancel(id) {
		t.Fatal("Cancel on finished job = true, want false")
	}
}

func TestJobsQueueFull(t *testing.T) {
	running := make(chan struct{}, 4)
	release := make(chan struct{})
	jobs := NewJobs(func(ctx context.Context, req Request) (Result, error) {
		running <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return Result{}, ctx.Err()
	}, logging.Noop(), WithWorkers(1), WithQueueDepth(1))
	defer jobs.Close()
	defer close(release)

	if _, err := jobs.Submit(context.Background(), testRequest()); err != nil {
		t.Fatalf("first Submit error: %v", err)
	}
	// The worker holds the first job, so the queue is empty again.
	<-running

	if _, err := jobs.Submit(context.Background(), testRequest()); err != nil {
		t.Fatalf("second Submit error: %v", err)
	}
	if _, err := jobs.Submit(context.Background(), testRequest()); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("third Submit error = %v, want ErrQueueFull", err)
	}
}

func TestJobsUnknownID(t *testing.T) {
	jobs := NewJobs(nil, logging.Noop())
	defer jobs.Close()

	if _, ok := jobs.Get("nope"); ok {
		t.Fatal("Get(unknown) = ok, want miss")
	}
	if jobs.Cancel("nope") {
		t.Fatal("Cancel(unknown) = true, want false")
	}
	if got := jobs.List(); len(got) != 0 {
		t.Fatalf("List = %d jobs, want 0", len(got))
	}
}

type stubJobsMetrics struct {
	mu           sync.Mutex
	waits        int
	queueSamples int
	ratioSamples int
	canceled     int
}

func (s *stubJobsMetrics) ObserveJobWait(time.Duration) {
	s.mu.Lock()
	s.waits++
	s.mu.Unlock()
}

func (s *stubJobsMetrics) SetQueuedJobs(int) {
	s.mu.Lock()
	s.queueSamples++
	s.mu.Unlock()
}

func (s *stubJobsMetrics) IncCanceled() {
	s.mu.Lock()
	s.canceled++
	s.mu.Unlock()
}

func (s *stubJobsMetrics) SetWorkerBusyRatio(float64) {
	s.mu.Lock()
	s.ratioSamples++
	s.mu.Unlock()
}

func (s *stubJobsMetrics) snapshot() (waits, queueSamples, ratioSamples, canceled int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waits, s.queueSamples, s.ratioSamples, s.canceled
}

func TestJobsMetricsFlow(t *testing.T) {
	metrics := &stubJobsMetrics{}
	jobs := NewJobs(func(ctx context.Context, req Request) (Result, error) {
		return Result{}, nil
	}, logging.Noop(), WithWorkers(1), WithJobsMetrics(metrics))
	defer jobs.Close()

	id, err := jobs.Submit(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	waitForJobState(t, jobs, id, JobDone)

	waits, queueSamples, ratioSamples, canceled := metrics.snapshot()
	if waits != 1 {
		t.Fatalf("job wait observations = %d, want 1", waits)
	}
	if queueSamples == 0 {
		t.Fatal("queue gauge never set")
	}
	if ratioSamples == 0 {
		t.Fatal("busy ratio never set")
	}
	if canceled != 0 {
		t.Fatalf("canceled count = %d, want 0", canceled)
	}
}
