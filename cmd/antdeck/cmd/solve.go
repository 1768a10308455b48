package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/antenna-workbench/internal/editor"
	"github.com/signalsfoundry/antenna-workbench/internal/logging"
	"github.com/signalsfoundry/antenna-workbench/internal/solver"
	"github.com/signalsfoundry/antenna-workbench/necio"
)

// feedImpedanceOhms is the reference impedance for SWR and s1p output.
const feedImpedanceOhms = 50

var (
	solveURL     string
	solveStart   float64
	solveStop    float64
	solveSteps   int
	solveGround  bool
	solveS1POut  string
	solveTimeout time.Duration
)

var solveCmd = &cobra.Command{
	Use:   "solve <file>",
	Short: "Run a solver sweep and print the SWR table",
	Long: `Submit the geometry to a solver service and print impedance, SWR and
forward gain per sweep point. Without sweep flags the document's design
frequency is solved as a single point.

Examples:
  antdeck solve dipole.nec --url http://localhost:7836
  antdeck solve dipole.nec --url http://localhost:7836 --start 13.9 --stop 14.5 --steps 13
  antdeck solve dipole.json --url http://localhost:7836 --s1p dipole.s1p`,
	Args: cobra.ExactArgs(1),
	RunE: runSolve,
}

func init() {
	rootCmd.AddCommand(solveCmd)

	solveCmd.Flags().StringVar(&solveURL, "url", "", "solver service base URL")
	solveCmd.Flags().Float64Var(&solveStart, "start", 0, "sweep start in MHz (default design frequency)")
	solveCmd.Flags().Float64Var(&solveStop, "stop", 0, "sweep stop in MHz (default start)")
	solveCmd.Flags().IntVar(&solveSteps, "steps", 1, "sweep point count")
	solveCmd.Flags().BoolVar(&solveGround, "ground", false, "solve over a ground plane at z=0")
	solveCmd.Flags().StringVar(&solveS1POut, "s1p", "", "write the sweep as a Touchstone s1p file")
	solveCmd.Flags().DurationVar(&solveTimeout, "timeout", 2*time.Minute, "overall solve deadline")
	solveCmd.MarkFlagRequired("url")
}

func runSolve(cmd *cobra.Command, args []string) error {
	src, err := readDocument(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	snap := src.Snapshot

	sweep := solver.PointSweep(snap.FrequencyMHz)
	if solveStart > 0 {
		stop := solveStop
		if stop <= 0 {
			stop = solveStart
		}
		sweep = solver.Sweep{StartMHz: solveStart, StopMHz: stop, Steps: solveSteps}
	}

	req, err := solver.BuildRequest(editor.Geometry{
		FrequencyMHz: snap.FrequencyMHz,
		Wires:        snap.Wires,
		Excitations:  snap.Excitations,
		Loads:        snap.Loads,
		Lines:        snap.Lines,
	}, sweep)
	if err != nil {
		return err
	}
	req.Ground = src.Ground || solveGround

	log := logging.Noop()
	if verbose {
		log = logging.New(logging.Config{Level: "debug", Format: "text"})
		fmt.Printf("Submitting %d wire(s), %d sweep point(s) to %s\n",
			len(req.Cards), sweep.Steps, solveURL)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), solveTimeout)
	defer cancel()

	result, err := solver.NewClient(solveURL, log).Submit(ctx, req)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}
	if len(result.Points) == 0 {
		return fmt.Errorf("solve: engine returned no sweep points")
	}

	fmt.Printf("%10s %10s %10s %8s %10s\n", "MHz", "R (ohm)", "X (ohm)", "SWR", "Gain (dBi)")
	for _, p := range result.Points {
		fmt.Printf("%10.4f %10.2f %10.2f %8.2f %10.2f\n",
			p.FrequencyMHz, p.ImpedanceRe, p.ImpedanceIm, p.SWR, p.ForwardGainDBi)
	}

	if solveS1POut == "" {
		return nil
	}
	points := make([]necio.S11Point, 0, len(result.Points))
	for _, p := range result.Points {
		points = append(points, necio.S11Point{
			FrequencyMHz: p.FrequencyMHz,
			S11:          solver.ReflectionCoefficient(p.Impedance(), feedImpedanceOhms),
		})
	}
	if err := writeOutput(solveS1POut, func(w io.Writer) error {
		return necio.WriteTouchstone(w, points, feedImpedanceOhms)
	}); err != nil {
		return fmt.Errorf("write s1p: %w", err)
	}
	return nil
}
