package httpapi

import (
	"bytes"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/signalsfoundry/antenna-workbench/doc"
	"github.com/signalsfoundry/antenna-workbench/internal/logging"
	"github.com/signalsfoundry/antenna-workbench/internal/solver"
	"github.com/signalsfoundry/antenna-workbench/necio"
)

const feedImpedanceOhms = 50

func (s *Server) handleExportNEC(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}

	var opts []necio.WriteOption
	if name := c.Query("name"); name != "" {
		opts = append(opts, necio.WithName(name))
	}
	if c.Query("ground") == "true" {
		opts = append(opts, necio.WithGround())
	}

	var buf bytes.Buffer
	if err := necio.Write(&buf, sess.Editor.Snapshot(), opts...); err != nil {
		return jsonError(c, err)
	}
	c.Set("Content-Type", "text/plain; charset=utf-8")
	return c.Send(buf.Bytes())
}

func (s *Server) handleImportNEC(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}

	deck, err := necio.Parse(bytes.NewReader(c.Body()))
	if err != nil {
		return jsonError(c, err)
	}
	if err := deck.Apply(c.Context(), sess.Editor); err != nil {
		return jsonError(c, err)
	}

	s.reqLog(c).Info(c.Context(), "deck imported",
		logging.String("document_id", sess.ID),
		logging.Int("wires", len(deck.Wires)))
	return c.JSON(documentState(sess))
}

func (s *Server) handleExportProject(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}

	p := doc.Project{
		Name:     c.Query("name"),
		Snapshot: sess.Editor.Snapshot(),
	}
	var buf bytes.Buffer
	if err := doc.WriteProject(&buf, p); err != nil {
		return jsonError(c, err)
	}
	c.Set("Content-Type", "application/json")
	return c.Send(buf.Bytes())
}

func (s *Server) handleImportProject(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}

	p, err := doc.ReadProject(bytes.NewReader(c.Body()))
	if err != nil {
		// Anything ReadProject rejects is a malformed upload.
		return badRequest(c, err.Error())
	}
	if err := sess.Editor.LoadSnapshot(c.Context(), p.Snapshot); err != nil {
		return jsonError(c, err)
	}

	s.reqLog(c).Info(c.Context(), "project imported",
		logging.String("document_id", sess.ID),
		logging.String("name", p.Name),
		logging.Int("wires", len(p.Snapshot.Wires)))
	return c.JSON(documentState(sess))
}

// handleExportS1P renders a finished solve job as a Touchstone s1p file.
// The job is addressed by the job query parameter.
func (s *Server) handleExportS1P(c fiber.Ctx) error {
	if s.jobs == nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"error": "solver not configured"})
	}
	if _, ok := s.registry.Get(c.Params("id")); !ok {
		return notFound(c, "document not found")
	}
	jobID := c.Query("job")
	if jobID == "" {
		return badRequest(c, "job query parameter required")
	}

	job, ok := s.jobs.Get(jobID)
	if !ok {
		return notFound(c, "job not found")
	}
	if job.State != solver.JobDone || job.Result == nil {
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": "job not finished"})
	}

	points := make([]necio.S11Point, 0, len(job.Result.Points))
	for _, p := range job.Result.Points {
		points = append(points, necio.S11Point{
			FrequencyMHz: p.FrequencyMHz,
			S11:          solver.ReflectionCoefficient(p.Impedance(), feedImpedanceOhms),
		})
	}

	var buf bytes.Buffer
	if err := necio.WriteTouchstone(&buf, points, feedImpedanceOhms); err != nil {
		return jsonError(c, err)
	}
	c.Set("Content-Type", "text/plain; charset=utf-8")
	return c.Send(buf.Bytes())
}
