// doc/project.go
package doc

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signalsfoundry/antenna-workbench/core"
	"github.com/signalsfoundry/antenna-workbench/model"
)

// projectVersion is written into every saved project and checked on load.
const projectVersion = 1

// Project pairs a document snapshot with its display name for save/load.
type Project struct {
	Name     string
	Snapshot Snapshot
}

// On-disk shapes for the versioned project format. The model types are
// never marshalled directly.
type projectJSON struct {
	Version      int              `json:"version"`
	Name         string           `json:"name,omitempty"`
	FrequencyMHz float64          `json:"frequency_mhz"`
	NextTag      int              `json:"next_tag,omitempty"`
	Wires        []wireJSON       `json:"wires"`
	Excitations  []excitationJSON `json:"excitations,omitempty"`
	Loads        []loadJSON       `json:"loads,omitempty"`
	Lines        []lineJSON       `json:"transmission_lines,omitempty"`
}

type pointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type wireJSON struct {
	Tag     int       `json:"tag"`
	End1    pointJSON `json:"end1"`
	End2    pointJSON `json:"end2"`
	RadiusM float64   `json:"radius_m"`
	// Segments is optional; non-positive values are recomputed from the
	// project frequency on load.
	Segments int `json:"segments,omitempty"`
}

type excitationJSON struct {
	WireTag   int     `json:"wire_tag"`
	Segment   int     `json:"segment"`
	VoltageRe float64 `json:"voltage_re"`
	VoltageIm float64 `json:"voltage_im"`
}

type loadJSON struct {
	WireTag        int     `json:"wire_tag"`
	Segment        int     `json:"segment"`
	ResistanceOhms float64 `json:"resistance_ohms,omitempty"`
	InductanceH    float64 `json:"inductance_h,omitempty"`
	CapacitanceF   float64 `json:"capacitance_f,omitempty"`
}

type lineJSON struct {
	Tag1           int     `json:"tag1"`
	Segment1       int     `json:"segment1"`
	Tag2           int     `json:"tag2"`
	Segment2       int     `json:"segment2"`
	ImpedanceOhms  float64 `json:"impedance_ohms"`
	LengthM        float64 `json:"length_m"`
	VelocityFactor float64 `json:"velocity_factor,omitempty"`
}

// ReadProject decodes a saved project. It fails only on JSON, version or
// structural errors; missing radii default and missing segment counts are
// recomputed, the same tolerances the interactive import path applies.
func ReadProject(r io.Reader) (Project, error) {
	var payload projectJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return Project{}, fmt.Errorf("read project: decode failed: %w", err)
	}
	if payload.Version > projectVersion {
		return Project{}, fmt.Errorf("read project: unsupported version %d", payload.Version)
	}

	freq := payload.FrequencyMHz
	if !(freq > 0) || !finite(freq) {
		freq = model.DefaultFrequencyMHz
	}

	snap := Snapshot{
		NextTag:      payload.NextTag,
		FrequencyMHz: freq,
	}
	for _, jw := range payload.Wires {
		w := model.Wire{
			Tag:      jw.Tag,
			End1:     model.Point{X: jw.End1.X, Y: jw.End1.Y, Z: jw.End1.Z},
			End2:     model.Point{X: jw.End2.X, Y: jw.End2.Y, Z: jw.End2.Z},
			RadiusM:  jw.RadiusM,
			Segments: jw.Segments,
		}
		if w.RadiusM <= 0 {
			w.RadiusM = model.DefaultWireRadiusM
		}
		if w.Segments < 1 {
			w.Segments = core.Segments(core.WireLength(w), freq)
		}
		snap.Wires = append(snap.Wires, w)
	}
	for _, je := range payload.Excitations {
		snap.Excitations = append(snap.Excitations, model.Excitation{
			WireTag:   je.WireTag,
			Segment:   je.Segment,
			VoltageRe: je.VoltageRe,
			VoltageIm: je.VoltageIm,
		})
	}
	for _, jl := range payload.Loads {
		snap.Loads = append(snap.Loads, model.LumpedLoad{
			WireTag:        jl.WireTag,
			Segment:        jl.Segment,
			ResistanceOhms: jl.ResistanceOhms,
			InductanceH:    jl.InductanceH,
			CapacitanceF:   jl.CapacitanceF,
		})
	}
	for _, jt := range payload.Lines {
		snap.Lines = append(snap.Lines, model.TransmissionLine{
			Tag1:           jt.Tag1,
			Segment1:       jt.Segment1,
			Tag2:           jt.Tag2,
			Segment2:       jt.Segment2,
			ImpedanceOhms:  jt.ImpedanceOhms,
			LengthM:        jt.LengthM,
			VelocityFactor: jt.VelocityFactor,
		})
	}

	if err := snap.Validate(); err != nil {
		return Project{}, fmt.Errorf("read project: %w", err)
	}
	return Project{Name: payload.Name, Snapshot: snap}, nil
}

// WriteProject encodes a project as indented JSON.
func WriteProject(w io.Writer, p Project) error {
	payload := projectJSON{
		Version:      projectVersion,
		Name:         p.Name,
		FrequencyMHz: p.Snapshot.FrequencyMHz,
		NextTag:      p.Snapshot.NextTag,
	}
	for _, mw := range p.Snapshot.Wires {
		payload.Wires = append(payload.Wires, wireJSON{
			Tag:      mw.Tag,
			End1:     pointJSON{X: mw.End1.X, Y: mw.End1.Y, Z: mw.End1.Z},
			End2:     pointJSON{X: mw.End2.X, Y: mw.End2.Y, Z: mw.End2.Z},
			RadiusM:  mw.RadiusM,
			Segments: mw.Segments,
		})
	}
	for _, e := range p.Snapshot.Excitations {
		payload.Excitations = append(payload.Excitations, excitationJSON{
			WireTag:   e.WireTag,
			Segment:   e.Segment,
			VoltageRe: e.VoltageRe,
			VoltageIm: e.VoltageIm,
		})
	}
	for _, l := range p.Snapshot.Loads {
		payload.Loads = append(payload.Loads, loadJSON{
			WireTag:        l.WireTag,
			Segment:        l.Segment,
			ResistanceOhms: l.ResistanceOhms,
			InductanceH:    l.InductanceH,
			CapacitanceF:   l.CapacitanceF,
		})
	}
	for _, tl := range p.Snapshot.Lines {
		payload.Lines = append(payload.Lines, lineJSON{
			Tag1:           tl.Tag1,
			Segment1:       tl.Segment1,
			Tag2:           tl.Tag2,
			Segment2:       tl.Segment2,
			ImpedanceOhms:  tl.ImpedanceOhms,
			LengthM:        tl.LengthM,
			VelocityFactor: tl.VelocityFactor,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	return nil
}
