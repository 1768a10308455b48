package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/antenna-workbench/core"
	"github.com/signalsfoundry/antenna-workbench/necio"
	"github.com/signalsfoundry/antenna-workbench/templates"
)

var (
	templateFreq    float64
	templateHeight  float64
	templateDroop   float64
	templateRadials int
	templateRadius  float64
	templateOut     string
	templateGround  bool
)

var templateCmd = &cobra.Command{
	Use:   "template <kind>",
	Short: "Generate a starter antenna as a NEC deck",
	Long: `Generate one of the built-in starter antennas, dimensioned for the
requested design frequency, and write it as a NEC deck.

Kinds: dipole, inverted-v, quad-loop, ground-plane, yagi3.

Examples:
  antdeck template dipole --freq 14.1 --height 10 --out dipole.nec
  antdeck template inverted-v --freq 7.1 --height 12 --droop 40
  antdeck template ground-plane --freq 28.4 --radials 4 --ground`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplate,
}

func init() {
	rootCmd.AddCommand(templateCmd)

	templateCmd.Flags().Float64Var(&templateFreq, "freq", 0, "design frequency in MHz")
	templateCmd.Flags().Float64Var(&templateHeight, "height", 10, "mount height in metres")
	templateCmd.Flags().Float64Var(&templateDroop, "droop", 45, "inverted-v leg droop in degrees")
	templateCmd.Flags().IntVar(&templateRadials, "radials", 4, "ground-plane radial count")
	templateCmd.Flags().Float64Var(&templateRadius, "radius", 0, "conductor radius in metres (0 uses the document default)")
	templateCmd.Flags().StringVar(&templateOut, "out", "", "output file (default stdout)")
	templateCmd.Flags().BoolVar(&templateGround, "ground", false, "write GE 1 for a ground plane at z=0")
	templateCmd.MarkFlagRequired("freq")
}

func runTemplate(cmd *cobra.Command, args []string) error {
	plan, err := templates.Build(args[0], templates.Params{
		FrequencyMHz: templateFreq,
		HeightM:      templateHeight,
		DroopDeg:     templateDroop,
		Radials:      templateRadials,
		RadiusM:      templateRadius,
	})
	if err != nil {
		return fmt.Errorf("%w (kinds: %s)", err, strings.Join(templates.Kinds(), ", "))
	}

	snap := plan.Snapshot()
	if verbose {
		total := 0
		for _, w := range snap.Wires {
			total += w.Segments
		}
		fmt.Printf("Generated %s: %d wire(s), %d segments, wavelength %.3f m\n",
			plan.Name, len(snap.Wires), total, core.Wavelength(templateFreq))
	}

	opts := []necio.WriteOption{necio.WithName(plan.Name)}
	if templateGround {
		opts = append(opts, necio.WithGround())
	}
	return writeOutput(templateOut, func(w io.Writer) error {
		return necio.Write(w, snap, opts...)
	})
}
