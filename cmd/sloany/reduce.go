package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sloany/internal/reduce"
	"github.com/pdiddy/sloany/internal/skyserver"
	"github.com/pdiddy/sloany/internal/spectra"
	"github.com/pdiddy/sloany/pkg/types"
)

var reduceCmd = &cobra.Command{
	Use:   "reduce [fits-files...]",
	Short: "Convert spectrum FITS files into plain-text flux tables",
	Long: `Reduce reads the coadd table of each spec-lite FITS file and writes a
plain-text flux table named after the object's long SDSS name.

Output names come from the metadata file when one is available. For files
not listed there, the object's position is looked up on the SkyServer by
the plate/mjd/fiberid triple in the file name and the J-name is derived
from it.`,
	RunE: runReduce,
}

func init() {
	reduceCmd.Flags().String("metadata", "", "metadata file naming the reduced outputs (default: METADATA when present)")
	reduceCmd.Flags().String("dest", "", "directory for the reduced flux tables")
	reduceCmd.Flags().Duration("timeout", 0, "HTTP request timeout for name lookups (default 60s)")
	reduceCmd.Flags().Bool("yes", false, "reduce missing files without asking")

	rootCmd.AddCommand(reduceCmd)
}

func runReduce(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more FITS files to reduce")
	}

	tasks, err := reduceTasks(cmd, args)
	if err != nil {
		return err
	}

	dest, _ := cmd.Flags().GetString("dest")
	cfg := types.ReduceConfig{DestDir: dest}

	summary, err := reduce.ReduceBatch(cmd.Context(), tasks, cfg, reduceConfirm(cmd), os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d spectra failed reduction", summary.Failed)
	}
	return nil
}

// reduceTasks names the output file for each FITS argument: from the
// metadata file when the spectrum is listed there, otherwise by looking
// up the object's position and deriving its J-name.
func reduceTasks(cmd *cobra.Command, args []string) ([]reduce.Task, error) {
	metaPath, _ := cmd.Flags().GetString("metadata")
	if metaPath == "" {
		if _, err := os.Stat(spectra.MetadataFile); err == nil {
			metaPath = spectra.MetadataFile
		}
	}

	names := make(map[string]string)
	if metaPath != "" {
		entries, err := spectra.ReadMetadata(metaPath)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			names[e.SpecFile] = e.LongName
		}
	}

	var client *skyserver.Client
	tasks := make([]reduce.Task, 0, len(args))
	for _, path := range args {
		base := filepath.Base(path)
		if long, ok := names[base]; ok {
			tasks = append(tasks, reduce.Task{FITSPath: path, OutName: long})
			continue
		}

		id, err := spectra.ParseFileName(base)
		if err != nil {
			return nil, err
		}
		if client == nil {
			client = newClient(cmd)
		}
		ra, dec, err := client.LookupRaDec(cmd.Context(), id.Plate, id.MJD, id.FiberID)
		if err != nil {
			return nil, fmt.Errorf("naming %s: %w", base, err)
		}
		long, _ := spectra.Name(ra, dec)
		tasks = append(tasks, reduce.Task{FITSPath: path, OutName: long})
	}
	return tasks, nil
}

func reduceConfirm(cmd *cobra.Command) spectra.ConfirmFunc {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return spectra.ConfirmAlways(spectra.FetchMissing)
	}
	return interactiveConfirm("reduce", "reduced spectra", os.Stdin, os.Stdout)
}
