package necio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/signalsfoundry/antenna-workbench/core"
	"github.com/signalsfoundry/antenna-workbench/doc"
	"github.com/signalsfoundry/antenna-workbench/model"
)

// ErrBadDeck reports a structurally invalid card: wrong arity or a field
// that does not parse as a number. The wrapped message names the line.
var ErrBadDeck = errors.New("necio: malformed deck")

// Deck is the raw content of a parsed NEC file before document
// tolerances are applied. Unknown cards and unsupported source or load
// types are dropped during parsing, so only what the document model can
// hold survives.
type Deck struct {
	Comments     []string
	Wires        []model.Wire
	Excitations  []model.Excitation
	Loads        []model.LumpedLoad
	Lines        []model.TransmissionLine
	FrequencyMHz float64
	Ground       bool
}

// DocumentLoader is the slice of the editor the import path needs.
type DocumentLoader interface {
	LoadSnapshot(ctx context.Context, snap doc.Snapshot) error
}

// Parse reads a NEC-2 deck. Cards outside the supported subset are
// skipped; malformed supported cards fail with their line number. Cards
// may be space or comma delimited and card names are case-insensitive.
// Parsing stops at EN.
func Parse(r io.Reader) (Deck, error) {
	var deck Deck

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		card := line
		if i := strings.IndexAny(line, " \t,"); i >= 0 {
			card = line[:i]
		}
		card = strings.ToUpper(card)
		if card == "" {
			continue
		}

		if card == "CM" {
			deck.Comments = append(deck.Comments, strings.TrimSpace(line[2:]))
			continue
		}
		if card == "EN" {
			break
		}

		fields := strings.Fields(strings.ReplaceAll(line, ",", " "))[1:]
		switch card {
		case "CE":
			// End of comments. Nothing to record.
		case "GW":
			w, err := parseGW(lineNo, fields)
			if err != nil {
				return Deck{}, err
			}
			deck.Wires = append(deck.Wires, w)
		case "GE":
			if len(fields) > 0 {
				flag, err := deckInt(lineNo, "GE", "ground flag", fields[0])
				if err != nil {
					return Deck{}, err
				}
				deck.Ground = flag != 0
			}
		case "EX":
			ex, ok, err := parseEX(lineNo, fields)
			if err != nil {
				return Deck{}, err
			}
			if ok {
				deck.Excitations = append(deck.Excitations, ex)
			}
		case "LD":
			ld, ok, err := parseLD(lineNo, fields)
			if err != nil {
				return Deck{}, err
			}
			if ok {
				deck.Loads = append(deck.Loads, ld)
			}
		case "TL":
			tl, err := parseTL(lineNo, fields)
			if err != nil {
				return Deck{}, err
			}
			deck.Lines = append(deck.Lines, tl)
		case "FR":
			if len(fields) >= 5 {
				mhz, err := deckFloat(lineNo, "FR", "frequency", fields[4])
				if err != nil {
					return Deck{}, err
				}
				deck.FrequencyMHz = mhz
			}
		default:
			// GN, RP, NT and friends have no document representation.
		}
	}
	if err := sc.Err(); err != nil {
		return Deck{}, fmt.Errorf("read deck: %w", err)
	}
	return deck, nil
}

// parseGW reads "GW tag segments x1 y1 z1 x2 y2 z2 radius".
func parseGW(lineNo int, fields []string) (model.Wire, error) {
	if len(fields) != 9 {
		return model.Wire{}, fmt.Errorf("%w: line %d: GW wants 9 fields, got %d", ErrBadDeck, lineNo, len(fields))
	}
	tag, err := deckInt(lineNo, "GW", "tag", fields[0])
	if err != nil {
		return model.Wire{}, err
	}
	if tag < 1 {
		return model.Wire{}, fmt.Errorf("%w: line %d: GW tag %d must be positive", ErrBadDeck, lineNo, tag)
	}
	segs, err := deckInt(lineNo, "GW", "segments", fields[1])
	if err != nil {
		return model.Wire{}, err
	}
	var coords [7]float64
	names := [7]string{"x1", "y1", "z1", "x2", "y2", "z2", "radius"}
	for i, f := range fields[2:] {
		v, err := deckFloat(lineNo, "GW", names[i], f)
		if err != nil {
			return model.Wire{}, err
		}
		coords[i] = v
	}
	return model.Wire{
		Tag:      tag,
		End1:     model.Point{X: coords[0], Y: coords[1], Z: coords[2]},
		End2:     model.Point{X: coords[3], Y: coords[4], Z: coords[5]},
		RadiusM:  coords[6],
		Segments: segs,
	}, nil
}

// parseEX reads "EX type tag segment options [vre [vim]]". Only type 0
// voltage sources have a document representation; other source types
// parse but are dropped.
func parseEX(lineNo int, fields []string) (model.Excitation, bool, error) {
	if len(fields) < 3 {
		return model.Excitation{}, false, fmt.Errorf("%w: line %d: EX wants at least 3 fields, got %d", ErrBadDeck, lineNo, len(fields))
	}
	typ, err := deckInt(lineNo, "EX", "type", fields[0])
	if err != nil {
		return model.Excitation{}, false, err
	}
	tag, err := deckInt(lineNo, "EX", "tag", fields[1])
	if err != nil {
		return model.Excitation{}, false, err
	}
	seg, err := deckInt(lineNo, "EX", "segment", fields[2])
	if err != nil {
		return model.Excitation{}, false, err
	}

	ex := model.Excitation{WireTag: tag, Segment: seg, VoltageRe: 1}
	if len(fields) >= 5 {
		if ex.VoltageRe, err = deckFloat(lineNo, "EX", "voltage re", fields[4]); err != nil {
			return model.Excitation{}, false, err
		}
	}
	if len(fields) >= 6 {
		if ex.VoltageIm, err = deckFloat(lineNo, "EX", "voltage im", fields[5]); err != nil {
			return model.Excitation{}, false, err
		}
	}
	return ex, typ == 0, nil
}

// parseLD reads "LD type tag segFrom segTo [R [L [C]]]". Only type 0
// series RLC loads survive.
func parseLD(lineNo int, fields []string) (model.LumpedLoad, bool, error) {
	if len(fields) < 4 {
		return model.LumpedLoad{}, false, fmt.Errorf("%w: line %d: LD wants at least 4 fields, got %d", ErrBadDeck, lineNo, len(fields))
	}
	typ, err := deckInt(lineNo, "LD", "type", fields[0])
	if err != nil {
		return model.LumpedLoad{}, false, err
	}
	tag, err := deckInt(lineNo, "LD", "tag", fields[1])
	if err != nil {
		return model.LumpedLoad{}, false, err
	}
	seg, err := deckInt(lineNo, "LD", "segment", fields[2])
	if err != nil {
		return model.LumpedLoad{}, false, err
	}
	if _, err := deckInt(lineNo, "LD", "end segment", fields[3]); err != nil {
		return model.LumpedLoad{}, false, err
	}

	ld := model.LumpedLoad{WireTag: tag, Segment: seg}
	vals := [3]*float64{&ld.ResistanceOhms, &ld.InductanceH, &ld.CapacitanceF}
	names := [3]string{"resistance", "inductance", "capacitance"}
	for i, f := range fields[4:] {
		if i >= len(vals) {
			break
		}
		if *vals[i], err = deckFloat(lineNo, "LD", names[i], f); err != nil {
			return model.LumpedLoad{}, false, err
		}
	}
	return ld, typ == 0, nil
}

// parseTL reads "TL tag1 seg1 tag2 seg2 impedance [length]". Shunt
// admittance fields past the length are ignored.
func parseTL(lineNo int, fields []string) (model.TransmissionLine, error) {
	if len(fields) < 5 {
		return model.TransmissionLine{}, fmt.Errorf("%w: line %d: TL wants at least 5 fields, got %d", ErrBadDeck, lineNo, len(fields))
	}
	var tl model.TransmissionLine
	ints := [4]*int{&tl.Tag1, &tl.Segment1, &tl.Tag2, &tl.Segment2}
	names := [4]string{"tag 1", "segment 1", "tag 2", "segment 2"}
	for i, f := range fields[:4] {
		v, err := deckInt(lineNo, "TL", names[i], f)
		if err != nil {
			return model.TransmissionLine{}, err
		}
		*ints[i] = v
	}
	var err error
	if tl.ImpedanceOhms, err = deckFloat(lineNo, "TL", "impedance", fields[4]); err != nil {
		return model.TransmissionLine{}, err
	}
	if len(fields) >= 6 {
		if tl.LengthM, err = deckFloat(lineNo, "TL", "length", fields[5]); err != nil {
			return model.TransmissionLine{}, err
		}
	}
	return tl, nil
}

func deckInt(lineNo int, card, name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: %s %s %q is not an integer", ErrBadDeck, lineNo, card, name, s)
	}
	return n, nil
}

func deckFloat(lineNo int, card, name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: line %d: %s %s %q is not a number", ErrBadDeck, lineNo, card, name, s)
	}
	return v, nil
}

// Snapshot applies document tolerances to the raw deck and returns a
// validated snapshot: non-positive radii default, missing segment counts
// are recomputed for the deck frequency, excitations are clamped to
// their wire with later duplicates winning, and loads or lines naming
// absent wires are dropped.
func (d Deck) Snapshot() (doc.Snapshot, error) {
	freq := d.FrequencyMHz
	if !(freq > 0) || math.IsInf(freq, 0) {
		freq = model.DefaultFrequencyMHz
	}

	snap := doc.Snapshot{FrequencyMHz: freq}
	segsByTag := make(map[int]int, len(d.Wires))
	for _, w := range d.Wires {
		if w.RadiusM <= 0 {
			w.RadiusM = model.DefaultWireRadiusM
		}
		if w.Segments < 1 {
			w.Segments = core.Segments(core.WireLength(w), freq)
		}
		snap.Wires = append(snap.Wires, w)
		segsByTag[w.Tag] = w.Segments
	}

	byWire := make(map[int]model.Excitation, len(d.Excitations))
	for _, ex := range d.Excitations {
		segs, ok := segsByTag[ex.WireTag]
		if !ok {
			continue
		}
		ex.Segment = core.ClampSegment(ex.Segment, segs)
		byWire[ex.WireTag] = ex
	}
	for _, ex := range byWire {
		snap.Excitations = append(snap.Excitations, ex)
	}
	sort.Slice(snap.Excitations, func(i, j int) bool {
		return snap.Excitations[i].WireTag < snap.Excitations[j].WireTag
	})

	for _, ld := range d.Loads {
		segs, ok := segsByTag[ld.WireTag]
		if !ok {
			continue
		}
		ld.Segment = core.ClampSegment(ld.Segment, segs)
		snap.Loads = append(snap.Loads, ld)
	}
	for _, tl := range d.Lines {
		segs1, ok1 := segsByTag[tl.Tag1]
		segs2, ok2 := segsByTag[tl.Tag2]
		if !ok1 || !ok2 {
			continue
		}
		tl.Segment1 = core.ClampSegment(tl.Segment1, segs1)
		tl.Segment2 = core.ClampSegment(tl.Segment2, segs2)
		snap.Lines = append(snap.Lines, tl)
	}

	if err := snap.Validate(); err != nil {
		return doc.Snapshot{}, fmt.Errorf("necio: %w", err)
	}
	return snap, nil
}

// Apply loads the deck into a document as one undoable step.
func (d Deck) Apply(ctx context.Context, ed DocumentLoader) error {
	snap, err := d.Snapshot()
	if err != nil {
		return err
	}
	return ed.LoadSnapshot(ctx, snap)
}
