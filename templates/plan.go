// Package templates generates parametric starting geometries: tagged,
// pre-segmented wires with a feed excitation sized for a design
// frequency. A plan installs into a document through the editor's
// snapshot-load path, so applying a template is one undoable step.
package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/signalsfoundry/antenna-workbench/doc"
	"github.com/signalsfoundry/antenna-workbench/model"
)

// ErrFrequency rejects template construction without a usable design
// frequency.
var ErrFrequency = errors.New("templates: frequency must be positive and finite")

// ErrUnknownKind reports a template kind Build does not know.
var ErrUnknownKind = errors.New("templates: unknown template kind")

// Plan is a generated geometry ready to load: wires carry final tags and
// segment counts, the excitation marks the feedpoint.
type Plan struct {
	Name         string
	FrequencyMHz float64
	Wires        []model.Wire
	Excitation   model.Excitation
}

// DocumentLoader is the slice of the editor a plan needs to install
// itself.
type DocumentLoader interface {
	LoadSnapshot(ctx context.Context, snap doc.Snapshot) error
}

// Snapshot renders the plan as a document snapshot.
func (p Plan) Snapshot() doc.Snapshot {
	return doc.Snapshot{
		Wires:        append([]model.Wire(nil), p.Wires...),
		Excitations:  []model.Excitation{p.Excitation},
		FrequencyMHz: p.FrequencyMHz,
	}
}

// Apply replaces the document contents with the plan in one undoable
// step.
func (p Plan) Apply(ctx context.Context, ed DocumentLoader) error {
	return ed.LoadSnapshot(ctx, p.Snapshot())
}

// Params carries the tunable dimensions shared by the template kinds.
// Kinds ignore the fields they have no use for.
type Params struct {
	FrequencyMHz float64
	// HeightM is the mount height: feedpoint height for the dipole and
	// yagi, apex height for the inverted V, bottom-wire height for the
	// quad loop.
	HeightM  float64
	DroopDeg float64
	Radials  int
	RadiusM  float64
}

// Build constructs the named template kind. Kind matching is
// case-insensitive and accepts the common short aliases.
func Build(kind string, p Params) (Plan, error) {
	switch strings.ToLower(kind) {
	case "dipole":
		return Dipole(p.FrequencyMHz, p.HeightM, p.RadiusM)
	case "inverted-v", "invertedv", "vee":
		return InvertedV(p.FrequencyMHz, p.HeightM, p.DroopDeg, p.RadiusM)
	case "quad-loop", "quad":
		return QuadLoop(p.FrequencyMHz, p.HeightM, p.RadiusM)
	case "ground-plane", "vertical":
		return GroundPlaneVertical(p.FrequencyMHz, p.Radials, p.RadiusM)
	case "yagi3", "yagi":
		return Yagi3(p.FrequencyMHz, p.HeightM, p.RadiusM)
	default:
		return Plan{}, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
}

// Kinds lists the canonical template kind names Build accepts.
func Kinds() []string {
	return []string{"dipole", "inverted-v", "quad-loop", "ground-plane", "yagi3"}
}
