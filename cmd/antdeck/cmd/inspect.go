package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/antenna-workbench/core"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Summarise the geometry in a deck or project file",
	Long: `Print a geometry summary: design frequency, per-wire dimensions and
segmentation, and the feed, load and transmission line attachments.

Examples:
  antdeck inspect dipole.nec
  antdeck inspect -v contest-array.json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	src, err := readDocument(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	snap := src.Snapshot

	name := src.Name
	if name == "" {
		name = args[0]
	}
	fmt.Printf("Document: %s\n", name)
	fmt.Printf("Frequency: %g MHz (wavelength %.3f m)\n",
		snap.FrequencyMHz, core.Wavelength(snap.FrequencyMHz))
	if src.Ground {
		fmt.Printf("Ground: plane at z=0\n")
	}
	fmt.Println()

	total := 0
	fmt.Printf("Wires: %d\n", len(snap.Wires))
	for _, w := range snap.Wires {
		total += w.Segments
		fmt.Printf("  %3d: %8.3f m  %3d segments  radius %g m\n",
			w.Tag, core.WireLength(w), w.Segments, w.RadiusM)
		if verbose {
			fmt.Printf("       (%.3f, %.3f, %.3f) -> (%.3f, %.3f, %.3f)\n",
				w.End1.X, w.End1.Y, w.End1.Z, w.End2.X, w.End2.Y, w.End2.Z)
		}
	}
	fmt.Printf("Total segments: %d\n", total)

	if len(snap.Excitations) > 0 {
		fmt.Println()
		fmt.Printf("Feedpoints: %d\n", len(snap.Excitations))
		for _, e := range snap.Excitations {
			fmt.Printf("  wire %d segment %d: %g%+gj V\n",
				e.WireTag, e.Segment, e.VoltageRe, e.VoltageIm)
		}
	}
	if len(snap.Loads) > 0 {
		fmt.Println()
		fmt.Printf("Loads: %d\n", len(snap.Loads))
		for _, l := range snap.Loads {
			fmt.Printf("  wire %d segment %d: R=%g ohm L=%g H C=%g F\n",
				l.WireTag, l.Segment, l.ResistanceOhms, l.InductanceH, l.CapacitanceF)
		}
	}
	if len(snap.Lines) > 0 {
		fmt.Println()
		fmt.Printf("Transmission lines: %d\n", len(snap.Lines))
		for _, tl := range snap.Lines {
			fmt.Printf("  wire %d seg %d <-> wire %d seg %d: %g ohm, %g m\n",
				tl.Tag1, tl.Segment1, tl.Tag2, tl.Segment2, tl.ImpedanceOhms, tl.LengthM)
		}
	}
	return nil
}
