package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "antdeck",
	Short: "Wire-frame antenna deck toolbox",
	Long: `Shell companion for the antenna workbench: generate starter antennas
from templates, convert between NEC decks and project files, summarise
geometry, and drive a solver service for SWR sweeps.

Examples:
  antdeck template dipole --freq 14.1 --out dipole.nec   # 20 m dipole deck
  antdeck convert dipole.nec --to json                   # deck to project file
  antdeck inspect dipole.nec                             # geometry summary
  antdeck solve dipole.nec --url http://localhost:7836   # SWR at the design frequency`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
