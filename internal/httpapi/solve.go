package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/signalsfoundry/antenna-workbench/internal/logging"
	"github.com/signalsfoundry/antenna-workbench/internal/solver"
)

type sweepDTO struct {
	StartMHz float64 `json:"start_mhz"`
	StopMHz  float64 `json:"stop_mhz"`
	Steps    int     `json:"steps"`
}

type solveRequest struct {
	// Sweep is optional; absent means a single point at the document's
	// design frequency.
	Sweep *sweepDTO `json:"sweep"`
}

type jobDTO struct {
	JobID       string         `json:"job_id"`
	State       string         `json:"state"`
	SubmittedAt time.Time      `json:"submitted_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	FinishedAt  *time.Time     `json:"finished_at,omitempty"`
	Error       string         `json:"error,omitempty"`
	Result      *solver.Result `json:"result,omitempty"`
}

func makeJobDTO(job solver.Job) jobDTO {
	out := jobDTO{
		JobID:       job.ID,
		State:       job.State.String(),
		SubmittedAt: job.Submitted,
		Error:       job.Err,
		Result:      job.Result,
	}
	if !job.Started.IsZero() {
		t := job.Started
		out.StartedAt = &t
	}
	if !job.Finished.IsZero() {
		t := job.Finished
		out.FinishedAt = &t
	}
	return out
}

// handleSolve submits the document geometry to the numeric engine as an
// async job and answers 202 with the job id.
func (s *Server) handleSolve(c fiber.Ctx) error {
	if s.jobs == nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"error": "solver not configured"})
	}
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	var req solveRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	geom := sess.Editor.Geometry()
	sweep := solver.PointSweep(geom.FrequencyMHz)
	if req.Sweep != nil {
		sweep = solver.Sweep{
			StartMHz: req.Sweep.StartMHz,
			StopMHz:  req.Sweep.StopMHz,
			Steps:    req.Sweep.Steps,
		}
	}

	solveReq, err := solver.BuildRequest(geom, sweep)
	if err != nil {
		return jsonError(c, err)
	}
	jobID, err := s.jobs.Submit(c.Context(), solveReq)
	if err != nil {
		return jsonError(c, err)
	}

	s.reqLog(c).Info(c.Context(), "solve submitted",
		logging.String("document_id", sess.ID),
		logging.String("job_id", jobID),
		logging.Float64("start_mhz", sweep.StartMHz),
		logging.Float64("stop_mhz", sweep.StopMHz),
		logging.Int("steps", sweep.Steps))
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"job_id": jobID})
}

func (s *Server) handleListJobs(c fiber.Ctx) error {
	if s.jobs == nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"error": "solver not configured"})
	}
	jobs := s.jobs.List()
	out := make([]jobDTO, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, makeJobDTO(job))
	}
	return c.JSON(fiber.Map{"jobs": out})
}

func (s *Server) handleJobStatus(c fiber.Ctx) error {
	if s.jobs == nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"error": "solver not configured"})
	}
	job, ok := s.jobs.Get(c.Params("jobID"))
	if !ok {
		return notFound(c, "job not found")
	}
	return c.JSON(makeJobDTO(job))
}

func (s *Server) handleCancelJob(c fiber.Ctx) error {
	if s.jobs == nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"error": "solver not configured"})
	}
	if !s.jobs.Cancel(c.Params("jobID")) {
		return notFound(c, "job not found or already finished")
	}
	return c.SendStatus(http.StatusNoContent)
}
