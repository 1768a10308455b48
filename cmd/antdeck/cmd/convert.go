package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/antenna-workbench/doc"
	"github.com/signalsfoundry/antenna-workbench/necio"
)

var (
	convertTo  string
	convertOut string
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert between NEC decks and project files",
	Long: `Convert a geometry between the two on-disk formats. The input format
follows the file extension: .json reads as a saved project, anything
else parses as a NEC deck. The document name survives the round trip.

Examples:
  antdeck convert dipole.nec --to json --out dipole.json
  antdeck convert dipole.json --to nec`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&convertTo, "to", "", "target format: nec or json")
	convertCmd.Flags().StringVar(&convertOut, "out", "", "output file (default stdout)")
	convertCmd.MarkFlagRequired("to")
}

func runConvert(cmd *cobra.Command, args []string) error {
	src, err := readDocument(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	switch strings.ToLower(convertTo) {
	case "nec":
		opts := []necio.WriteOption{necio.WithName(src.Name)}
		if src.Ground {
			opts = append(opts, necio.WithGround())
		}
		return writeOutput(convertOut, func(w io.Writer) error {
			return necio.Write(w, src.Snapshot, opts...)
		})
	case "json":
		return writeOutput(convertOut, func(w io.Writer) error {
			return doc.WriteProject(w, doc.Project{Name: src.Name, Snapshot: src.Snapshot})
		})
	default:
		return fmt.Errorf("unknown target format %q (want nec or json)", convertTo)
	}
}
