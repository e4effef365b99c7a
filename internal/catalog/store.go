// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists query results in a local SQLite database so
// later fetch and reduce runs can work without re-querying the archive.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/sloany/internal/spectra"
	"github.com/pdiddy/sloany/pkg/types"
)

// Store manages the catalog SQLite database.
type Store struct {
	db *sql.DB
}

// Object is one catalogued spectrum identity.
type Object struct {
	Survey      string
	Plate       int
	MJD         int
	FiberID     int
	RA          float64
	Dec         float64
	HasPosition bool
	LongName    string
	ShortName   string
	SpecFile    string
	AddedAt     time.Time
}

// Open opens or creates the catalog database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS objects (
			survey TEXT NOT NULL,
			plate INTEGER NOT NULL,
			mjd INTEGER NOT NULL,
			fiberid INTEGER NOT NULL,
			ra REAL,
			dec REAL,
			long_name TEXT,
			short_name TEXT,
			spec_file TEXT NOT NULL,
			added_at TEXT NOT NULL,
			UNIQUE(plate, mjd, fiberid)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_objects_added_at ON objects(added_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveResult upserts every well-formed row of a query result. An object
// already present under the same (plate, mjd, fiberid) is refreshed
// rather than duplicated. Malformed rows are counted and skipped.
func (s *Store) SaveResult(ctx context.Context, result types.Result) (saved, skipped int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO objects (survey, plate, mjd, fiberid, ra, dec, long_name, short_name, spec_file, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(plate, mjd, fiberid) DO UPDATE SET
			survey=excluded.survey, ra=excluded.ra, dec=excluded.dec,
			long_name=excluded.long_name, short_name=excluded.short_name,
			spec_file=excluded.spec_file, added_at=excluded.added_at`)
	if err != nil {
		return 0, 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i := 0; i < result.Len(); i++ {
		row := result.Row(i)
		id, err := spectra.ParseSpecID(row)
		if err != nil {
			skipped++
			continue
		}

		var ra, dec, longName, shortName any
		if raV, decV, ok := rowPosition(row); ok {
			long, short := spectra.Name(raV, decV)
			ra, dec, longName, shortName = raV, decV, long, short
		}

		_, err = stmt.ExecContext(ctx,
			id.Survey, id.Plate, id.MJD, id.FiberID,
			ra, dec, longName, shortName, id.FileName(), now,
		)
		if err != nil {
			return 0, 0, fmt.Errorf("upserting %s: %w", id.FileName(), err)
		}
		saved++
	}

	return saved, skipped, tx.Commit()
}

// rowPosition pulls ra/dec out of a row when both parse.
func rowPosition(row types.Row) (float64, float64, bool) {
	raStr, okRa := row.Get("ra")
	decStr, okDec := row.Get("dec")
	if !okRa || !okDec {
		return 0, 0, false
	}
	ra, err := strconv.ParseFloat(raStr, 64)
	if err != nil {
		return 0, 0, false
	}
	dec, err := strconv.ParseFloat(decStr, 64)
	if err != nil {
		return 0, 0, false
	}
	return ra, dec, true
}

// Objects returns every catalogued object ordered by plate, mjd and
// fiber.
func (s *Store) Objects(ctx context.Context) ([]Object, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT survey, plate, mjd, fiberid, ra, dec, long_name, short_name, spec_file, added_at
		 FROM objects ORDER BY plate, mjd, fiberid`)
	if err != nil {
		return nil, fmt.Errorf("querying objects: %w", err)
	}
	defer rows.Close()

	var objects []Object
	for rows.Next() {
		var (
			o                   Object
			ra, dec             sql.NullFloat64
			longName, shortName sql.NullString
			added               string
		)
		if err := rows.Scan(&o.Survey, &o.Plate, &o.MJD, &o.FiberID,
			&ra, &dec, &longName, &shortName, &o.SpecFile, &added); err != nil {
			return nil, fmt.Errorf("scanning object: %w", err)
		}
		if ra.Valid && dec.Valid {
			o.RA, o.Dec, o.HasPosition = ra.Float64, dec.Float64, true
		}
		o.LongName, o.ShortName = longName.String, shortName.String
		o.AddedAt, _ = time.Parse(time.RFC3339, added)
		objects = append(objects, o)
	}
	return objects, rows.Err()
}

// Rows re-materializes the catalog as a query result, so batch fetching
// and reduction can run from it exactly as from a live query.
func (s *Store) Rows(ctx context.Context) (types.Result, error) {
	objects, err := s.Objects(ctx)
	if err != nil {
		return types.Result{}, err
	}

	result := types.Result{
		Columns: []string{"survey", "plate", "mjd", "fiberid", "ra", "dec"},
	}
	for _, o := range objects {
		ra, dec := "", ""
		if o.HasPosition {
			ra = strconv.FormatFloat(o.RA, 'f', -1, 64)
			dec = strconv.FormatFloat(o.Dec, 'f', -1, 64)
		}
		result.Rows = append(result.Rows, []string{
			o.Survey,
			strconv.Itoa(o.Plate),
			strconv.Itoa(o.MJD),
			strconv.Itoa(o.FiberID),
			ra,
			dec,
		})
	}
	return result, nil
}

// Count returns the number of catalogued objects.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM objects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting objects: %w", err)
	}
	return n, nil
}
