// Package necio reads and writes NEC-2 card decks for the subset of the
// format the document model can represent: GW geometry, EX voltage
// sources, LD series RLC loads, TL transmission lines and a linear FR
// sweep. It depends only on the document packages; the editor plugs in
// through the DocumentLoader interface.
package necio

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/signalsfoundry/antenna-workbench/doc"
	"github.com/signalsfoundry/antenna-workbench/model"
)

// DefaultDeckName is the CM header written when no name option is given.
const DefaultDeckName = "antenna-workbench deck"

type sweepSpec struct {
	startMHz float64
	stopMHz  float64
	steps    int
}

type writeConfig struct {
	name   string
	sweep  *sweepSpec
	ground bool
}

// WriteOption customises deck output.
type WriteOption func(*writeConfig)

// WithName replaces the CM header comment.
func WithName(name string) WriteOption {
	return func(cfg *writeConfig) {
		if name != "" {
			cfg.name = name
		}
	}
}

// WithSweep writes an FR card for a linear sweep instead of the single
// point at the document's design frequency. Fewer than one step becomes
// one; a stop below the start collapses to a single point at the start.
func WithSweep(startMHz, stopMHz float64, steps int) WriteOption {
	return func(cfg *writeConfig) {
		if steps < 1 {
			steps = 1
		}
		if stopMHz < startMHz {
			stopMHz = startMHz
		}
		cfg.sweep = &sweepSpec{startMHz: startMHz, stopMHz: stopMHz, steps: steps}
	}
}

// WithGround writes GE 1 so the engine places a ground plane at z=0.
func WithGround() WriteOption {
	return func(cfg *writeConfig) { cfg.ground = true }
}

// deckWriter accumulates the first write error so card emission reads
// straight through.
type deckWriter struct {
	w   io.Writer
	err error
}

func (dw *deckWriter) printf(format string, args ...any) {
	if dw.err != nil {
		return
	}
	_, dw.err = fmt.Fprintf(dw.w, format, args...)
}

// num renders a value in its shortest exact decimal form, so a written
// deck parses back to the same float64s.
func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Write emits the snapshot as a NEC-2 deck: CM/CE header, GW cards in
// tag order, GE, then EX, LD and TL cards in reference order, an FR
// card and EN. The card order and the sort keys make output for a given
// snapshot deterministic.
func Write(w io.Writer, snap doc.Snapshot, opts ...WriteOption) error {
	cfg := writeConfig{name: DefaultDeckName}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	wires := append([]model.Wire(nil), snap.Wires...)
	sort.Slice(wires, func(i, j int) bool { return wires[i].Tag < wires[j].Tag })
	excitations := append([]model.Excitation(nil), snap.Excitations...)
	sort.Slice(excitations, func(i, j int) bool { return excitations[i].WireTag < excitations[j].WireTag })
	loads := append([]model.LumpedLoad(nil), snap.Loads...)
	sort.Slice(loads, func(i, j int) bool {
		if loads[i].WireTag != loads[j].WireTag {
			return loads[i].WireTag < loads[j].WireTag
		}
		return loads[i].Segment < loads[j].Segment
	})
	lines := append([]model.TransmissionLine(nil), snap.Lines...)
	sort.Slice(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.Tag1 != b.Tag1 {
			return a.Tag1 < b.Tag1
		}
		if a.Segment1 != b.Segment1 {
			return a.Segment1 < b.Segment1
		}
		if a.Tag2 != b.Tag2 {
			return a.Tag2 < b.Tag2
		}
		return a.Segment2 < b.Segment2
	})

	dw := &deckWriter{w: w}
	dw.printf("CM %s\n", cfg.name)
	dw.printf("CE\n")

	for _, gw := range wires {
		dw.printf("GW %d %d %s %s %s %s %s %s %s\n",
			gw.Tag, gw.Segments,
			num(gw.End1.X), num(gw.End1.Y), num(gw.End1.Z),
			num(gw.End2.X), num(gw.End2.Y), num(gw.End2.Z),
			num(gw.RadiusM))
	}

	ground := 0
	if cfg.ground {
		ground = 1
	}
	dw.printf("GE %d\n", ground)

	for _, ex := range excitations {
		dw.printf("EX 0 %d %d 0 %s %s\n",
			ex.WireTag, ex.Segment, num(ex.VoltageRe), num(ex.VoltageIm))
	}
	for _, ld := range loads {
		dw.printf("LD 0 %d %d %d %s %s %s\n",
			ld.WireTag, ld.Segment, ld.Segment,
			num(ld.ResistanceOhms), num(ld.InductanceH), num(ld.CapacitanceF))
	}
	for _, tl := range lines {
		// The engine models an ideal line, so the velocity factor folds
		// into the electrical length here.
		vf := tl.VelocityFactor
		if vf <= 0 {
			vf = 1
		}
		dw.printf("TL %d %d %d %d %s %s\n",
			tl.Tag1, tl.Segment1, tl.Tag2, tl.Segment2,
			num(tl.ImpedanceOhms), num(tl.LengthM/vf))
	}

	start := snap.FrequencyMHz
	if !(start > 0) {
		start = model.DefaultFrequencyMHz
	}
	steps := 1
	step := 0.0
	if cfg.sweep != nil {
		start = cfg.sweep.startMHz
		steps = cfg.sweep.steps
		if steps > 1 {
			step = (cfg.sweep.stopMHz - cfg.sweep.startMHz) / float64(steps-1)
		}
	}
	dw.printf("FR 0 %d 0 0 %s %s\n", steps, num(start), num(step))

	dw.printf("EN\n")
	if dw.err != nil {
		return fmt.Errorf("write deck: %w", dw.err)
	}
	return nil
}
