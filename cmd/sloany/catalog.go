package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sloany/internal/catalog"
	"github.com/pdiddy/sloany/pkg/types"
)

const defaultCatalog = "sloany.db"

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the objects stored in the catalog database",
	Long: `Catalog lists every object saved with "query --catalog", in the same
table format query uses. The database defaults to the catalog config
value, then ` + defaultCatalog + ` in the current directory.`,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().String("db", "", "catalog database file")
	catalogCmd.Flags().String("format", "table", "output format: table, csv, or json")

	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	db := stringSetting(cmd, "db", "catalog", defaultCatalog)

	store, err := catalog.Open(db)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := store.Rows(cmd.Context())
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	return displayResult(os.Stdout, result, format)
}

// catalogResult appends the rows of a query result to the catalog
// database at db.
func catalogResult(ctx context.Context, db string, result types.Result) error {
	store, err := catalog.Open(db)
	if err != nil {
		return err
	}
	defer store.Close()

	saved, skipped, err := store.SaveResult(ctx, result)
	if err != nil {
		return err
	}

	fmt.Printf("Cataloged %d objects in %s", saved, db)
	if skipped > 0 {
		fmt.Printf(" (%d rows skipped)", skipped)
	}
	fmt.Println()
	return nil
}
