package httpapi

import (
	"context"
	"net"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/signalsfoundry/antenna-workbench/internal/logging"
	"github.com/signalsfoundry/antenna-workbench/internal/observability"
	"github.com/signalsfoundry/antenna-workbench/internal/solver"
)

// Server is the JSON API over the document editor. It owns the session
// registry and, when a solver URL is configured, the async job pool that
// fronts the remote numeric engine.
type Server struct {
	cfg           Config
	log           logging.Logger
	collector     *observability.EditorCollector
	jobsCollector *observability.SolverJobsCollector

	registry *Registry
	client   *solver.Client
	jobs     *solver.Jobs
	app      *fiber.App
}

// ServerOption customises Server construction.
type ServerOption func(*Server)

// WithCollector attaches the Prometheus collector for request metrics,
// document gauges and editor operation counters.
func WithCollector(c *observability.EditorCollector) ServerOption {
	return func(s *Server) {
		s.collector = c
	}
}

// WithJobsCollector attaches the queue health collector for the solve
// job pool.
func WithJobsCollector(c *observability.SolverJobsCollector) ServerOption {
	return func(s *Server) {
		s.jobsCollector = c
	}
}

// NewServer builds the API server, its session registry and, when
// cfg.SolverURL is set, the solver client and job pool.
func NewServer(cfg Config, log logging.Logger, opts ...ServerOption) *Server {
	if log == nil {
		log = logging.Noop()
	}
	s := &Server{cfg: cfg, log: log}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.registry = NewRegistry(log, s.collector, cfg.SessionTTL, cfg.SweepInterval)

	if cfg.SolverURL != "" {
		var clientOpts []solver.ClientOption
		if s.collector != nil {
			clientOpts = append(clientOpts, solver.WithMetricsRecorder(s.collector))
		}
		s.client = solver.NewClient(cfg.SolverURL, log, clientOpts...)

		jobOpts := []solver.JobsOption{
			solver.WithWorkers(cfg.SolverWorkers),
			solver.WithQueueDepth(cfg.SolverQueue),
		}
		if s.jobsCollector != nil {
			jobOpts = append(jobOpts, solver.WithJobsMetrics(s.jobsCollector))
		}
		s.jobs = solver.NewJobs(s.client.Submit, log, jobOpts...)
	}

	s.app = fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		AppName:      "antenna-workbench editor",
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(recover.New())
	s.app.Use(RequestID(s.log))

	s.app.Get("/health/live", s.handleLive)
	s.app.Get("/health/ready", s.handleReady)

	s.post("/v1/documents", s.handleCreateDocument)
	s.get("/v1/documents/:id", s.handleGetDocument)
	s.del("/v1/documents/:id", s.handleDeleteDocument)
	s.post("/v1/documents/:id/clear", s.handleClearDocument)

	s.post("/v1/documents/:id/wires", s.handleAddWire)
	s.patch("/v1/documents/:id/wires/:tag", s.handleUpdateWire)
	s.post("/v1/documents/:id/wires/:tag/move", s.handleMoveWire)
	s.post("/v1/documents/:id/wires/:tag/split", s.handleSplitWire)
	s.del("/v1/documents/:id/wires", s.handleDeleteWires)
	s.del("/v1/documents/:id/wires/selected", s.handleDeleteSelected)

	s.put("/v1/documents/:id/selection", s.handleSelection)
	s.post("/v1/documents/:id/undo", s.handleUndo)
	s.post("/v1/documents/:id/redo", s.handleRedo)

	s.put("/v1/documents/:id/frequency", s.handleSetFrequency)
	s.put("/v1/documents/:id/excitation", s.handleSetExcitation)
	s.del("/v1/documents/:id/excitation/:wireTag", s.handleRemoveExcitation)
	s.post("/v1/documents/:id/loads", s.handleAddLoad)
	s.del("/v1/documents/:id/loads/:index", s.handleRemoveLoad)
	s.post("/v1/documents/:id/lines", s.handleAddLine)
	s.del("/v1/documents/:id/lines/:index", s.handleRemoveLine)

	s.post("/v1/documents/:id/template", s.handleApplyTemplate)

	s.get("/v1/documents/:id/export/nec", s.handleExportNEC)
	s.post("/v1/documents/:id/import/nec", s.handleImportNEC)
	s.get("/v1/documents/:id/export/project", s.handleExportProject)
	s.post("/v1/documents/:id/import/project", s.handleImportProject)
	s.get("/v1/documents/:id/export/s1p", s.handleExportS1P)

	s.post("/v1/documents/:id/solve", s.handleSolve)
	s.get("/v1/solve", s.handleListJobs)
	s.get("/v1/solve/:jobID", s.handleJobStatus)
	s.del("/v1/solve/:jobID", s.handleCancelJob)
}

// Route registration helpers: every API route gets the metrics and
// tracing middleware labeled with its registered pattern, so path
// parameters never inflate label cardinality.

func (s *Server) get(path string, h fiber.Handler) {
	s.app.Get(path, h, s.instrument(path)...)
}

func (s *Server) post(path string, h fiber.Handler) {
	s.app.Post(path, h, s.instrument(path)...)
}

func (s *Server) put(path string, h fiber.Handler) {
	s.app.Put(path, h, s.instrument(path)...)
}

func (s *Server) patch(path string, h fiber.Handler) {
	s.app.Patch(path, h, s.instrument(path)...)
}

func (s *Server) del(path string, h fiber.Handler) {
	s.app.Delete(path, h, s.instrument(path)...)
}

func (s *Server) instrument(route string) []fiber.Handler {
	return []fiber.Handler{s.collector.HTTPMiddleware(route), Trace(route)}
}

// App exposes the fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Registry exposes the session registry for lifecycle probes.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Listen serves the API on the configured address until Shutdown.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Addr)
}

// Serve accepts connections on ln until Shutdown. Used by mains that
// bind the listener themselves.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown drains in-flight requests, then stops the session janitor and
// the solve workers.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)
	s.registry.Close()
	if s.jobs != nil {
		s.jobs.Close()
	}
	return err
}

func (s *Server) handleLive(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleReady(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":            "ok",
		"open_documents":    s.registry.Len(),
		"solver_configured": s.jobs != nil,
	})
}

// reqLog returns the request-scoped logger the middleware attached, or
// the server logger when called outside a request.
func (s *Server) reqLog(c fiber.Ctx) logging.Logger {
	if l := logging.LoggerFromContext(c.Context()); l != nil {
		return l
	}
	return s.log
}
