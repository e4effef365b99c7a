package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sloany/internal/catalog"
	"github.com/pdiddy/sloany/internal/skyserver"
	"github.com/pdiddy/sloany/internal/spectra"
	"github.com/pdiddy/sloany/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "sloany/0.1"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [dest]",
	Short: "Download spectrum files for saved query results",
	Long: `Fetch downloads the spec-lite FITS file for every object in a saved
result file (--load) or a catalog database (--catalog), into DEST or the
current directory. Files already present are skipped unless the
confirmation answer asks for everything; names that could not be
retrieved are appended to Failed_Fetches.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("load", "", "saved results YAML file naming the objects to fetch")
	fetchCmd.Flags().String("catalog", "", "catalog database naming the objects to fetch")
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	fetchCmd.Flags().Bool("yes", false, "fetch missing files without asking")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	dest := "."
	if len(args) > 0 {
		dest = args[0]
	}

	result, err := loadRows(cmd)
	if err != nil {
		return err
	}
	if result.Len() == 0 {
		return fmt.Errorf("no objects to fetch")
	}

	summary, err := fetchResult(cmd.Context(), cmd, result, dest)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d spectra failed to fetch", summary.Failed)
	}
	return nil
}

// loadRows reads the objects to fetch from a saved result file or the
// catalog database.
func loadRows(cmd *cobra.Command) (types.Result, error) {
	if path, _ := cmd.Flags().GetString("load"); path != "" {
		rf, err := skyserver.ReadResultFile(path)
		if err != nil {
			return types.Result{}, err
		}
		return rf.Result, nil
	}

	if db := stringSetting(cmd, "catalog", "catalog", ""); db != "" {
		store, err := catalog.Open(db)
		if err != nil {
			return types.Result{}, err
		}
		defer store.Close()
		return store.Rows(cmd.Context())
	}

	return types.Result{}, fmt.Errorf("provide --load or --catalog to name the objects to fetch")
}

// fetchResult runs the batch fetch for every row of result into dest.
func fetchResult(ctx context.Context, cmd *cobra.Command, result types.Result, dest string) (spectra.BatchResult, error) {
	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   durationSetting(cmd, "timeout", "timeout", defaultTimeout),
			UserAgent: configString("user_agent", defaultUserAgent),
		},
		DestDir: dest,
		Delay:   durationSetting(cmd, "delay", "delay", defaultDelay),
	}

	fetcher := &spectra.Fetcher{
		HTTP:      &http.Client{Timeout: cfg.Timeout},
		UserAgent: cfg.UserAgent,
		Log:       logger(),
	}

	return spectra.FetchBatch(ctx, fetcher, result, cfg, fetchConfirm(cmd), os.Stdout)
}

func fetchConfirm(cmd *cobra.Command) spectra.ConfirmFunc {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return spectra.ConfirmAlways(spectra.FetchMissing)
	}
	return interactiveConfirm("fetch", "spectra", os.Stdin, os.Stdout)
}

// interactiveConfirm renders the confirmation exchange on the terminal.
// With existing output files the astronomer chooses between redoing
// everything [A], filling in only what is missing [Y], or nothing [N];
// otherwise a plain yes/no. Empty input means yes.
func interactiveConfirm(verb, kind string, in io.Reader, out io.Writer) spectra.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(p spectra.Prompt) spectra.Answer {
		if p.HasExisting() {
			fmt.Fprintf(out, "\nSome %s seem to be already present in the destination directory.\n", kind)
			fmt.Fprintf(out, "Do you want to %s all spectra [A], only the missing spectra [Y], or nothing [N].\n", verb)
			listPromptFiles(out, p)
			fmt.Fprint(out, "A/Y/N [Y]:  ")
			switch readAnswer(reader) {
			case "A", "ALL":
				return spectra.FetchAll
			case "", "Y", "YES":
				return spectra.FetchMissing
			default:
				return spectra.FetchNone
			}
		}

		fmt.Fprintf(out, "\nDo you want to %s the following spectra?\n", verb)
		listPromptFiles(out, p)
		fmt.Fprint(out, "Y/N [Y]:  ")
		switch readAnswer(reader) {
		case "", "Y", "YES":
			return spectra.FetchMissing
		default:
			return spectra.FetchNone
		}
	}
}

// listPromptFiles prints each candidate file when the batch is small,
// otherwise just the counts.
func listPromptFiles(out io.Writer, p spectra.Prompt) {
	if len(p.Files) <= 10 {
		for _, name := range p.Files {
			if p.Existing[name] {
				fmt.Fprintf(out, "%s\tExisting\n", name)
			} else {
				fmt.Fprintln(out, name)
			}
		}
		return
	}

	fmt.Fprintf(out, "%d spectra files\n", len(p.Files))
	if len(p.Existing) > 0 {
		fmt.Fprintf(out, "%d existing files\n", len(p.Existing))
	}
}

func readAnswer(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	return strings.ToUpper(strings.TrimSpace(line))
}
