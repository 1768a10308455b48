package necio

import (
	"fmt"
	"io"
	"math"
	"sort"
)

// S11Point is one sweep sample for Touchstone export: the frequency and
// the reflection coefficient seen at the feed.
type S11Point struct {
	FrequencyMHz float64
	S11          complex128
}

// WriteTouchstone emits a one-port s1p file in real/imaginary format,
// one row per sweep point in ascending frequency order. A non-positive
// reference impedance defaults to 50 ohms.
func WriteTouchstone(w io.Writer, points []S11Point, z0 float64) error {
	if !(z0 > 0) || math.IsInf(z0, 0) {
		z0 = 50
	}

	rows := append([]S11Point(nil), points...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].FrequencyMHz < rows[j].FrequencyMHz })

	dw := &deckWriter{w: w}
	dw.printf("! antenna-workbench s-parameter sweep\n")
	dw.printf("# MHz S RI R %s\n", num(z0))
	for _, p := range rows {
		dw.printf("%s %s %s\n", num(p.FrequencyMHz), num(real(p.S11)), num(imag(p.S11)))
	}
	if dw.err != nil {
		return fmt.Errorf("write touchstone: %w", dw.err)
	}
	return nil
}
