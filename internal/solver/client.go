package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/signalsfoundry/antenna-workbench/internal/logging"
	"github.com/signalsfoundry/antenna-workbench/internal/observability"
	"go.opentelemetry.io/otel/attribute"
)

// MetricsRecorder receives solver run outcomes. The observability
// EditorCollector satisfies it.
type MetricsRecorder interface {
	ObserveSolverRequest(status string, elapsed time.Duration)
}

// Client drives solve requests against a remote numeric engine over HTTP.
// The engine answers either synchronously (200 with the result) or
// asynchronously (202 with a job reference that the client polls).
type Client struct {
	baseURL string
	httpc   *http.Client
	log     logging.Logger
	poll    time.Duration
	metrics MetricsRecorder
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.httpc = h
		}
	}
}

// WithPollInterval sets the delay between job status polls.
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.poll = d
		}
	}
}

// WithMetricsRecorder attaches a recorder for run outcomes.
func WithMetricsRecorder(rec MetricsRecorder) ClientOption {
	return func(c *Client) {
		c.metrics = rec
	}
}

// NewClient builds a solver client for the engine at baseURL.
func NewClient(baseURL string, log logging.Logger, opts ...ClientOption) *Client {
	if log == nil {
		log = logging.Noop()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		log:     log,
		poll:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// jobRef is the body of a 202 response from the engine.
type jobRef struct {
	ID string `json:"id"`
}

// jobStatus mirrors the engine's poll endpoint body.
type jobStatus struct {
	ID     string  `json:"id"`
	State  string  `json:"state"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Submit posts the request and waits for the result, polling when the engine
// answers asynchronously. It returns early when ctx is canceled.
func (c *Client) Submit(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "solver.Submit",
		attribute.Int("wires", len(req.Cards)),
		attribute.Float64("sweep_start_mhz", req.Sweep.StartMHz),
		attribute.Int("sweep_steps", req.Sweep.Steps),
	)
	defer span.End()

	res, err := c.submit(ctx, req)

	status := "completed"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = "canceled"
	default:
		status = "failed"
	}
	if err != nil {
		span.RecordError(err)
	}
	if c.metrics != nil {
		c.metrics.ObserveSolverRequest(status, time.Since(start))
	}
	return res, err
}

func (c *Client) submit(ctx context.Context, req Request) (Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("encode solve request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/jobs", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build solve request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("submit solve request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Small decks may be solved inline.
		var res Result
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			return Result{}, fmt.Errorf("decode solve result: %w", err)
		}
		return res, nil
	case http.StatusAccepted:
		var ref jobRef
		if err := json.NewDecoder(resp.Body).Decode(&ref); err != nil {
			return Result{}, fmt.Errorf("decode job reference: %w", err)
		}
		if ref.ID == "" {
			return Result{}, fmt.Errorf("job reference missing id")
		}
		c.log.Debug(ctx, "solve job accepted", logging.String("job_id", ref.ID))
		return c.await(ctx, ref.ID)
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Result{}, fmt.Errorf("submit solve request: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
}

func (c *Client) await(ctx context.Context, id string) (Result, error) {
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-ticker.C:
		}

		st, err := c.fetchStatus(ctx, id)
		if err != nil {
			return Result{}, err
		}

		switch st.State {
		case "done":
			if st.Result == nil {
				return Result{}, fmt.Errorf("job %s done without result", id)
			}
			return *st.Result, nil
		case "failed":
			msg := st.Error
			if msg == "" {
				msg = "unspecified engine failure"
			}
			return Result{}, fmt.Errorf("job %s failed: %s", id, msg)
		case "queued", "running":
			// Keep polling.
		default:
			return Result{}, fmt.Errorf("job %s in unknown state %q", id, st.State)
		}
	}
}

func (c *Client) fetchStatus(ctx context.Context, id string) (jobStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/jobs/"+id, nil)
	if err != nil {
		return jobStatus{}, fmt.Errorf("build status request: %w", err)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return jobStatus{}, fmt.Errorf("poll job %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return jobStatus{}, fmt.Errorf("poll job %s: status %d: %s", id, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var st jobStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return jobStatus{}, fmt.Errorf("decode job %s status: %w", id, err)
	}
	return st, nil
}
