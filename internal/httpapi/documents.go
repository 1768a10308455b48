package httpapi

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/signalsfoundry/antenna-workbench/internal/editor"
	"github.com/signalsfoundry/antenna-workbench/internal/logging"
	"github.com/signalsfoundry/antenna-workbench/model"
	"github.com/signalsfoundry/antenna-workbench/templates"
)

// intParam parses an integer path parameter.
func intParam(c fiber.Ctx, name string) (int, bool) {
	v, err := strconv.Atoi(c.Params(name))
	return v, err == nil
}

//
// ---------- Document lifecycle ----------
//

type createDocumentRequest struct {
	FrequencyMHz float64 `json:"frequency_mhz"`
}

func (s *Server) handleCreateDocument(c fiber.Ctx) error {
	var req createDocumentRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	var opts []editor.Option
	if req.FrequencyMHz > 0 {
		opts = append(opts, editor.WithFrequency(req.FrequencyMHz))
	}
	sess := s.registry.Create(opts...)

	s.reqLog(c).Info(c.Context(), "document created",
		logging.String("document_id", sess.ID),
		logging.Float64("frequency_mhz", sess.Editor.FrequencyMHz()))
	return c.Status(http.StatusCreated).JSON(documentState(sess))
}

func (s *Server) handleGetDocument(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	return c.JSON(documentState(sess))
}

func (s *Server) handleDeleteDocument(c fiber.Ctx) error {
	id := c.Params("id")
	if !s.registry.Delete(id) {
		return notFound(c, "document not found")
	}
	s.reqLog(c).Info(c.Context(), "document closed", logging.String("document_id", id))
	return c.SendStatus(http.StatusNoContent)
}

func (s *Server) handleClearDocument(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	sess.Editor.ClearAll(c.Context())
	return c.JSON(documentState(sess))
}

//
// ---------- Wires ----------
//

type addWireRequest struct {
	End1    pointDTO `json:"end1"`
	End2    pointDTO `json:"end2"`
	RadiusM float64  `json:"radius_m"`
}

func (s *Server) handleAddWire(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	var req addWireRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid request body")
	}

	w, err := sess.Editor.AddWire(c.Context(), req.End1.model(), req.End2.model(), req.RadiusM)
	if err != nil {
		return jsonError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(makeWireDTO(w, sess.Editor.IsSelected(w.Tag)))
}

type wireEditDTO struct {
	Op      string    `json:"op"`
	Point   *pointDTO `json:"point,omitempty"`
	RadiusM float64   `json:"radius_m,omitempty"`
}

type updateWireRequest struct {
	Edits []wireEditDTO `json:"edits"`
}

func (s *Server) handleUpdateWire(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	tag, ok := intParam(c, "tag")
	if !ok {
		return badRequest(c, "invalid wire tag")
	}
	var req updateWireRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(req.Edits) == 0 {
		return badRequest(c, "no edits supplied")
	}

	edits := make([]editor.WireEdit, 0, len(req.Edits))
	for _, e := range req.Edits {
		switch e.Op {
		case "set_end1":
			if e.Point == nil {
				return badRequest(c, "set_end1 requires a point")
			}
			edits = append(edits, editor.SetEnd1(e.Point.model()))
		case "set_end2":
			if e.Point == nil {
				return badRequest(c, "set_end2 requires a point")
			}
			edits = append(edits, editor.SetEnd2(e.Point.model()))
		case "set_radius":
			edits = append(edits, editor.SetRadius(e.RadiusM))
		default:
			return badRequest(c, fmt.Sprintf("unknown edit op %q", e.Op))
		}
	}

	// The editor treats unknown tags as a no-op; the API reports them.
	if _, ok := sess.Editor.WireByTag(tag); !ok {
		return notFound(c, "wire not found")
	}
	if err := sess.Editor.UpdateWire(c.Context(), tag, edits...); err != nil {
		return jsonError(c, err)
	}
	w, _ := sess.Editor.WireByTag(tag)
	return c.JSON(makeWireDTO(w, sess.Editor.IsSelected(tag)))
}

type moveWireRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
	DZ float64 `json:"dz"`
}

func (s *Server) handleMoveWire(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	tag, ok := intParam(c, "tag")
	if !ok {
		return badRequest(c, "invalid wire tag")
	}
	var req moveWireRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if _, ok := sess.Editor.WireByTag(tag); !ok {
		return notFound(c, "wire not found")
	}
	if err := sess.Editor.MoveWire(c.Context(), tag, req.DX, req.DY, req.DZ); err != nil {
		return jsonError(c, err)
	}
	w, _ := sess.Editor.WireByTag(tag)
	return c.JSON(makeWireDTO(w, sess.Editor.IsSelected(tag)))
}

func (s *Server) handleSplitWire(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	tag, ok := intParam(c, "tag")
	if !ok {
		return badRequest(c, "invalid wire tag")
	}
	if _, ok := sess.Editor.WireByTag(tag); !ok {
		return notFound(c, "wire not found")
	}

	first, second, ok := sess.Editor.SplitWire(c.Context(), tag)
	if !ok {
		return badRequest(c, "wire cannot be split")
	}
	return c.JSON(fiber.Map{
		"first":    makeWireDTO(first, sess.Editor.IsSelected(first.Tag)),
		"second":   makeWireDTO(second, sess.Editor.IsSelected(second.Tag)),
		"revision": sess.Editor.Revision(),
	})
}

type deleteWiresRequest struct {
	Tags []int `json:"tags"`
}

func (s *Server) handleDeleteWires(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	var req deleteWiresRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(req.Tags) == 0 {
		return badRequest(c, "no tags supplied")
	}

	removed := sess.Editor.DeleteWires(c.Context(), req.Tags...)
	return c.JSON(fiber.Map{
		"removed":  intsOrEmpty(removed),
		"revision": sess.Editor.Revision(),
	})
}

func (s *Server) handleDeleteSelected(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	removed := sess.Editor.DeleteSelected(c.Context())
	return c.JSON(fiber.Map{
		"removed":  intsOrEmpty(removed),
		"revision": sess.Editor.Revision(),
	})
}

//
// ---------- Selection ----------
//

type selectionRequest struct {
	Op       string `json:"op"`
	Tag      int    `json:"tag"`
	Additive bool   `json:"additive"`
}

func (s *Server) handleSelection(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	var req selectionRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid request body")
	}

	switch req.Op {
	case "select":
		if _, ok := sess.Editor.WireByTag(req.Tag); !ok {
			return notFound(c, "wire not found")
		}
		sess.Editor.Select(req.Tag, req.Additive)
	case "toggle":
		if _, ok := sess.Editor.WireByTag(req.Tag); !ok {
			return notFound(c, "wire not found")
		}
		sess.Editor.ToggleSelect(req.Tag)
	case "all":
		sess.Editor.SelectAll()
	case "clear":
		sess.Editor.ClearSelection()
	default:
		return badRequest(c, fmt.Sprintf("unknown selection op %q", req.Op))
	}

	return c.JSON(fiber.Map{"selection": intsOrEmpty(sess.Editor.Selected())})
}

//
// ---------- Undo / redo ----------
//

func (s *Server) handleUndo(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	applied := sess.Editor.Undo(c.Context())
	return c.JSON(fiber.Map{"applied": applied, "revision": sess.Editor.Revision()})
}

func (s *Server) handleRedo(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	applied := sess.Editor.Redo(c.Context())
	return c.JSON(fiber.Map{"applied": applied, "revision": sess.Editor.Revision()})
}

//
// ---------- Frequency, excitation, loads, lines ----------
//

type frequencyRequest struct {
	MHz float64 `json:"mhz"`
}

func (s *Server) handleSetFrequency(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	var req frequencyRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid request body")
	}
	// The editor quietly ignores bad frequencies; the API rejects them.
	if !(req.MHz > 0) || math.IsInf(req.MHz, 0) {
		return badRequest(c, "frequency must be positive and finite")
	}

	if err := sess.Editor.SetFrequencyMHz(c.Context(), req.MHz); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(documentState(sess))
}

func (s *Server) handleSetExcitation(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	var req excitationDTO
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid request body")
	}

	exc := model.Excitation{
		WireTag:   req.WireTag,
		Segment:   req.Segment,
		VoltageRe: req.VoltageRe,
		VoltageIm: req.VoltageIm,
	}
	if err := sess.Editor.SetExcitation(c.Context(), exc); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(fiber.Map{
		"excitations": excitationDTOs(sess.Editor.Excitations()),
		"revision":    sess.Editor.Revision(),
	})
}

func (s *Server) handleRemoveExcitation(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	wireTag, ok := intParam(c, "wireTag")
	if !ok {
		return badRequest(c, "invalid wire tag")
	}
	if !sess.Editor.RemoveExcitation(c.Context(), wireTag) {
		return notFound(c, "excitation not found")
	}
	return c.SendStatus(http.StatusNoContent)
}

func (s *Server) handleAddLoad(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	var req loadDTO
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid request body")
	}

	l := model.LumpedLoad{
		WireTag:        req.WireTag,
		Segment:        req.Segment,
		ResistanceOhms: req.ResistanceOhms,
		InductanceH:    req.InductanceH,
		CapacitanceF:   req.CapacitanceF,
	}
	if err := sess.Editor.AddLoad(c.Context(), l); err != nil {
		return jsonError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"loads":    loadDTOs(sess.Editor.Loads()),
		"revision": sess.Editor.Revision(),
	})
}

func (s *Server) handleRemoveLoad(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	index, ok := intParam(c, "index")
	if !ok {
		return badRequest(c, "invalid load index")
	}
	if !sess.Editor.RemoveLoad(c.Context(), index) {
		return notFound(c, "load not found")
	}
	return c.SendStatus(http.StatusNoContent)
}

func (s *Server) handleAddLine(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	var req lineDTO
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid request body")
	}

	tl := model.TransmissionLine{
		Tag1:           req.Tag1,
		Segment1:       req.Segment1,
		Tag2:           req.Tag2,
		Segment2:       req.Segment2,
		ImpedanceOhms:  req.ImpedanceOhms,
		LengthM:        req.LengthM,
		VelocityFactor: req.VelocityFactor,
	}
	if err := sess.Editor.AddLine(c.Context(), tl); err != nil {
		return jsonError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"transmission_lines": lineDTOs(sess.Editor.Lines()),
		"revision":           sess.Editor.Revision(),
	})
}

func (s *Server) handleRemoveLine(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	index, ok := intParam(c, "index")
	if !ok {
		return badRequest(c, "invalid line index")
	}
	if !sess.Editor.RemoveLine(c.Context(), index) {
		return notFound(c, "transmission line not found")
	}
	return c.SendStatus(http.StatusNoContent)
}

//
// ---------- Templates ----------
//

type templateRequest struct {
	Kind         string  `json:"kind"`
	FrequencyMHz float64 `json:"frequency_mhz"`
	HeightM      float64 `json:"height_m"`
	DroopDeg     float64 `json:"droop_deg"`
	Radials      int     `json:"radials"`
	RadiusM      float64 `json:"radius_m"`
}

func (s *Server) handleApplyTemplate(c fiber.Ctx) error {
	sess, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "document not found")
	}
	var req templateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid request body")
	}

	plan, err := templates.Build(req.Kind, templates.Params{
		FrequencyMHz: req.FrequencyMHz,
		HeightM:      req.HeightM,
		DroopDeg:     req.DroopDeg,
		Radials:      req.Radials,
		RadiusM:      req.RadiusM,
	})
	if err != nil {
		return jsonError(c, err)
	}
	if err := plan.Apply(c.Context(), sess.Editor); err != nil {
		return jsonError(c, err)
	}

	s.reqLog(c).Info(c.Context(), "template applied",
		logging.String("document_id", sess.ID),
		logging.String("kind", plan.Name),
		logging.Int("wires", len(plan.Wires)))
	return c.JSON(documentState(sess))
}
