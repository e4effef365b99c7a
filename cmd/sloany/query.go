// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sloany/internal/reduce"
	"github.com/pdiddy/sloany/internal/skyserver"
	"github.com/pdiddy/sloany/internal/spectra"
	"github.com/pdiddy/sloany/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [files...]",
	Short: "Run SQL queries against the SkyServer",
	Long: `Query executes SQL statements against the SkyServer search service and
displays the objects they return. A statement may be given on the command
line with -q or read from files, one statement per file.

Symbolic target flags (WHITEDWARF_NEW, STD_WD, ...) and spectroscopic
class names (STAR, GALAXY, QSO) are substituted with their literal values
before submission, and "--" comments are stripped. For example, the
following retrieves the survey, plate, MJD, fiber number and position of
ten newly observed white dwarfs:

  sloany query -q "select top 10 s.survey,s.plate,s.mjd,s.fiberid,s.ra,s.dec
      from bestdr9..SpecObj as s where s.zWarning = 0 and
      ((s.ancillary_target1 & WHITEDWARF_NEW) > 0) and s.class = STAR"

Each result writes a METADATA file naming every object unless
--no-metadata is given. --fetch then downloads the spectrum file for each
object and --reduce converts the downloaded files into flux tables.`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringP("query", "q", "", "SQL query to execute on the skyserver")
	queryCmd.Flags().String("format", "table", "output format: table, csv, or json")
	queryCmd.Flags().Bool("no-metadata", false, "do not write the METADATA file")
	queryCmd.Flags().String("save", "", "save the query and its results to a YAML file")
	queryCmd.Flags().String("catalog", "", "append the results to a catalog database")
	queryCmd.Flags().String("fetch", "", "fetch the spectrum file for each object into FOLDER")
	queryCmd.Flags().Lookup("fetch").NoOptDefVal = "."
	queryCmd.Flags().String("reduce", "", "reduce the fetched spectra into flux tables in FOLDER")
	queryCmd.Flags().Lookup("reduce").NoOptDefVal = "."
	queryCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	queryCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	queryCmd.Flags().Bool("yes", false, "fetch and reduce missing files without asking")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	var statements []string
	if q, _ := cmd.Flags().GetString("query"); q != "" {
		statements = append(statements, q)
	}
	for _, fname := range args {
		data, err := os.ReadFile(fname)
		if err != nil {
			return fmt.Errorf("reading query file: %w", err)
		}
		statements = append(statements, string(data))
	}
	if len(statements) == 0 {
		return fmt.Errorf("provide a query with -q or one or more query files")
	}

	client := newClient(cmd)
	for _, stmt := range statements {
		if err := runStatement(cmd.Context(), cmd, client, skyserver.Prepare(stmt)); err != nil {
			return err
		}
	}
	return nil
}

// runStatement executes one prepared statement and walks the result
// through the requested stages: display, metadata, save, catalog, fetch,
// reduce.
func runStatement(ctx context.Context, cmd *cobra.Command, client *skyserver.Client, stmt string) error {
	result, err := client.Execute(ctx, stmt)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if err := displayResult(os.Stdout, result, format); err != nil {
		return err
	}
	if result.Len() == 0 {
		return nil
	}

	noMeta, _ := cmd.Flags().GetBool("no-metadata")
	fetchDest, _ := cmd.Flags().GetString("fetch")
	reduceDest, _ := cmd.Flags().GetString("reduce")

	// Reduction names its output files from the metadata entries, so
	// --reduce overrides --no-metadata.
	var entries []spectra.MetadataEntry
	if !noMeta || reduceDest != "" {
		entries, err = spectra.WriteMetadata(ctx, result, client, spectra.MetadataFile, os.Stdout)
		if err != nil {
			return err
		}
	}

	if save, _ := cmd.Flags().GetString("save"); save != "" {
		if err := skyserver.WriteResultFile(save, stmt, client.Endpoint(), result); err != nil {
			return err
		}
		fmt.Printf("Saved results to %s\n", save)
	}

	if db := stringSetting(cmd, "catalog", "catalog", ""); db != "" {
		if err := catalogResult(ctx, db, result); err != nil {
			return err
		}
	}

	if fetchDest != "" {
		summary, err := fetchResult(ctx, cmd, result, fetchDest)
		if err != nil {
			return err
		}
		if summary.HasFailures() {
			return fmt.Errorf("%d spectra failed to fetch", summary.Failed)
		}
	}

	if reduceDest != "" {
		fitsDir := "."
		if fetchDest != "" {
			fitsDir = fetchDest
		}
		tasks := reduce.TasksFromMetadata(entries, fitsDir)
		summary, err := reduce.ReduceBatch(ctx, tasks, types.ReduceConfig{DestDir: reduceDest}, reduceConfirm(cmd), os.Stdout)
		if err != nil {
			return err
		}
		if summary.HasFailures() {
			return fmt.Errorf("%d spectra failed reduction", summary.Failed)
		}
	}
	return nil
}

// newClient builds the SkyServer client from flags and config.
func newClient(cmd *cobra.Command) *skyserver.Client {
	return &skyserver.Client{
		HTTP:      &http.Client{Timeout: durationSetting(cmd, "timeout", "timeout", defaultTimeout)},
		BaseURL:   configString("skyserver_url", ""),
		UserAgent: configString("user_agent", defaultUserAgent),
		Log:       logger(),
	}
}

func displayResult(w io.Writer, result types.Result, format string) error {
	switch format {
	case "", "table":
		displayTable(w, result)
		return nil
	case "csv":
		return displayCSV(w, result)
	case "json":
		return displayJSON(w, result)
	default:
		return fmt.Errorf("unknown format %q (want table, csv, or json)", format)
	}
}

// displayTable prints the result as fixed-width columns with a "=" rule
// under the header.
func displayTable(w io.Writer, result types.Result) {
	if result.Len() == 0 {
		fmt.Fprintln(w, "Query returned no results")
		return
	}

	for _, col := range result.Columns {
		fmt.Fprintf(w, "%-11s", col)
	}
	fmt.Fprintln(w)
	for range result.Columns {
		fmt.Fprintf(w, "%-11s", strings.Repeat("=", 10))
	}
	fmt.Fprintln(w)

	for _, row := range result.Rows {
		for _, cell := range row {
			fmt.Fprintf(w, "%-11s", cell)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Query returned %d objects\n", result.Len())
}

func displayCSV(w io.Writer, result types.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(result.Columns); err != nil {
		return err
	}
	for _, row := range result.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func displayJSON(w io.Writer, result types.Result) error {
	objects := make([]map[string]string, 0, result.Len())
	for i := 0; i < result.Len(); i++ {
		row := result.Row(i)
		obj := make(map[string]string, len(result.Columns))
		for _, col := range result.Columns {
			v, _ := row.Get(col)
			obj[col] = v
		}
		objects = append(objects, obj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(objects)
}
