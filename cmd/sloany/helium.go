package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sloany/internal/helium"
	"github.com/pdiddy/sloany/pkg/types"
)

const defaultThreshold = 1.0

var heliumCmd = &cobra.Command{
	Use:   "helium [flux-tables...]",
	Short: "Scan reduced spectra for helium absorption lines",
	Long: `Helium smooths each flux table, removes the continuum, and searches the
residual for absorption dips at the He I and He II wavelengths. A file is
reported as a detection when at least two helium lines match within 5
angstroms. Detected files are printed one per line; --verbose-lines adds
each matched line with its signal-to-noise ratio.`,
	RunE: runHelium,
}

func init() {
	heliumCmd.Flags().Float64("threshold", 0, "detection threshold in units of the background noise (default 1.0)")
	heliumCmd.Flags().Bool("verbose-lines", false, "print each matched line with its signal-to-noise ratio")
	heliumCmd.Flags().String("report", "", "write a YAML detection report to this file")

	rootCmd.AddCommand(heliumCmd)
}

func runHelium(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more flux table files to scan")
	}

	threshold, _ := cmd.Flags().GetFloat64("threshold")
	if threshold == 0 {
		threshold = defaultThreshold
	}
	verbose, _ := cmd.Flags().GetBool("verbose-lines")

	cfg := types.HeliumConfig{Threshold: threshold, VerboseLines: verbose}
	report := helium.Run(args, cfg, os.Stdout)

	if path, _ := cmd.Flags().GetString("report"); path != "" {
		if err := helium.WriteReport(path, report); err != nil {
			return err
		}
	}

	failed := 0
	for _, f := range report.Files {
		if f.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be scanned", failed)
	}
	return nil
}
