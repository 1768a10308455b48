package httpapi

import (
	"time"

	"github.com/signalsfoundry/antenna-workbench/core"
	"github.com/signalsfoundry/antenna-workbench/model"
)

// Wire-format shapes for the JSON API, kept apart from the model types so
// the HTTP surface can evolve without touching the document model.

type pointDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func makePointDTO(p model.Point) pointDTO {
	return pointDTO{X: p.X, Y: p.Y, Z: p.Z}
}

func (p pointDTO) model() model.Point {
	return model.Point{X: p.X, Y: p.Y, Z: p.Z}
}

type wireDTO struct {
	Tag      int      `json:"tag"`
	End1     pointDTO `json:"end1"`
	End2     pointDTO `json:"end2"`
	RadiusM  float64  `json:"radius_m"`
	Segments int      `json:"segments"`
	LengthM  float64  `json:"length_m"`
	Selected bool     `json:"selected"`
}

func makeWireDTO(w model.Wire, selected bool) wireDTO {
	return wireDTO{
		Tag:      w.Tag,
		End1:     makePointDTO(w.End1),
		End2:     makePointDTO(w.End2),
		RadiusM:  w.RadiusM,
		Segments: w.Segments,
		LengthM:  core.WireLength(w),
		Selected: selected,
	}
}

type excitationDTO struct {
	WireTag   int     `json:"wire_tag"`
	Segment   int     `json:"segment"`
	VoltageRe float64 `json:"voltage_re"`
	VoltageIm float64 `json:"voltage_im"`
}

func makeExcitationDTO(e model.Excitation) excitationDTO {
	return excitationDTO{
		WireTag:   e.WireTag,
		Segment:   e.Segment,
		VoltageRe: e.VoltageRe,
		VoltageIm: e.VoltageIm,
	}
}

type loadDTO struct {
	WireTag        int     `json:"wire_tag"`
	Segment        int     `json:"segment"`
	ResistanceOhms float64 `json:"resistance_ohms"`
	InductanceH    float64 `json:"inductance_h,omitempty"`
	CapacitanceF   float64 `json:"capacitance_f,omitempty"`
}

func makeLoadDTO(l model.LumpedLoad) loadDTO {
	return loadDTO{
		WireTag:        l.WireTag,
		Segment:        l.Segment,
		ResistanceOhms: l.ResistanceOhms,
		InductanceH:    l.InductanceH,
		CapacitanceF:   l.CapacitanceF,
	}
}

type lineDTO struct {
	Tag1           int     `json:"tag1"`
	Segment1       int     `json:"segment1"`
	Tag2           int     `json:"tag2"`
	Segment2       int     `json:"segment2"`
	ImpedanceOhms  float64 `json:"impedance_ohms"`
	LengthM        float64 `json:"length_m"`
	VelocityFactor float64 `json:"velocity_factor,omitempty"`
}

func makeLineDTO(tl model.TransmissionLine) lineDTO {
	return lineDTO{
		Tag1:           tl.Tag1,
		Segment1:       tl.Segment1,
		Tag2:           tl.Tag2,
		Segment2:       tl.Segment2,
		ImpedanceOhms:  tl.ImpedanceOhms,
		LengthM:        tl.LengthM,
		VelocityFactor: tl.VelocityFactor,
	}
}

func excitationDTOs(in []model.Excitation) []excitationDTO {
	out := make([]excitationDTO, 0, len(in))
	for _, e := range in {
		out = append(out, makeExcitationDTO(e))
	}
	return out
}

func loadDTOs(in []model.LumpedLoad) []loadDTO {
	out := make([]loadDTO, 0, len(in))
	for _, l := range in {
		out = append(out, makeLoadDTO(l))
	}
	return out
}

func lineDTOs(in []model.TransmissionLine) []lineDTO {
	out := make([]lineDTO, 0, len(in))
	for _, tl := range in {
		out = append(out, makeLineDTO(tl))
	}
	return out
}

// documentDTO is the full document state returned by GET and by the
// mutations whose effects span the whole document.
type documentDTO struct {
	DocumentID    string          `json:"document_id"`
	Revision      uint64          `json:"revision"`
	FrequencyMHz  float64         `json:"frequency_mhz"`
	Wires         []wireDTO       `json:"wires"`
	Excitations   []excitationDTO `json:"excitations"`
	Loads         []loadDTO       `json:"loads"`
	Lines         []lineDTO       `json:"transmission_lines"`
	Selection     []int           `json:"selection"`
	TotalSegments int             `json:"total_segments"`
	CanUndo       bool            `json:"can_undo"`
	CanRedo       bool            `json:"can_redo"`
	UndoDepth     int             `json:"undo_depth"`
	CreatedAt     time.Time       `json:"created_at"`
	LastEditedAt  time.Time       `json:"last_edited_at"`
}

// documentState assembles the document DTO from a live session.
func documentState(sess *Session) documentDTO {
	ed := sess.Editor
	geom := ed.Geometry()

	out := documentDTO{
		DocumentID:   sess.ID,
		Revision:     ed.Revision(),
		FrequencyMHz: geom.FrequencyMHz,
		Wires:        make([]wireDTO, 0, len(geom.Wires)),
		Excitations:  make([]excitationDTO, 0, len(geom.Excitations)),
		Loads:        make([]loadDTO, 0, len(geom.Loads)),
		Lines:        make([]lineDTO, 0, len(geom.Lines)),
		Selection:    intsOrEmpty(ed.Selected()),
		CanUndo:      ed.CanUndo(),
		CanRedo:      ed.CanRedo(),
		UndoDepth:    ed.UndoDepth(),
		CreatedAt:    sess.CreatedAt,
		LastEditedAt: sess.LastEdit(),
	}

	selected := make(map[int]struct{}, len(out.Selection))
	for _, tag := range out.Selection {
		selected[tag] = struct{}{}
	}
	for _, w := range geom.Wires {
		_, isSel := selected[w.Tag]
		out.Wires = append(out.Wires, makeWireDTO(w, isSel))
		out.TotalSegments += w.Segments
	}
	for _, e := range geom.Excitations {
		out.Excitations = append(out.Excitations, makeExcitationDTO(e))
	}
	for _, l := range geom.Loads {
		out.Loads = append(out.Loads, makeLoadDTO(l))
	}
	for _, tl := range geom.Lines {
		out.Lines = append(out.Lines, makeLineDTO(tl))
	}
	return out
}

// intsOrEmpty keeps list payloads as [] rather than null.
func intsOrEmpty(in []int) []int {
	if in == nil {
		return []int{}
	}
	return in
}
