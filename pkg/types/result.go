// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared across sloany stages.
package types

// Result holds a tabular query response exactly as the remote service
// returned it. Column order and row order are preserved; cells are kept
// as text with no client-side coercion.
type Result struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

// Len returns the number of data rows.
func (r Result) Len() int { return len(r.Rows) }

// Row returns the i-th row. The returned Row shares the Columns slice.
func (r Result) Row(i int) Row {
	return Row{Columns: r.Columns, Values: r.Rows[i]}
}

// Row is one record of a query result, keyed by column name.
type Row struct {
	Columns []string
	Values  []string
}

// Get returns the value for the named column and whether the column exists.
func (r Row) Get(name string) (string, bool) {
	for i, c := range r.Columns {
		if c == name && i < len(r.Values) {
			return r.Values[i], true
		}
	}
	return "", false
}

// Artifact is a fetched spectrum file: raw bytes plus the URL they came
// from. Found reports whether any candidate URL produced the file; when
// false the other fields are zero.
type Artifact struct {
	URL   string
	Data  []byte
	Found bool
}
