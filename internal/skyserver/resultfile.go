// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package skyserver

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/sloany/pkg/types"
)

// ResultFile is the on-disk representation of a query and its results.
// The astronomer can save a run to a file and fetch or reduce later
// without re-querying the service.
type ResultFile struct {
	Query   string        `yaml:"query"`
	Result  types.Result  `yaml:"result"`
	Summary ResultSummary `yaml:"summary"`
}

// ResultSummary stores result statistics and a timestamp.
type ResultSummary struct {
	Objects   int       `yaml:"objects"`
	Endpoint  string    `yaml:"endpoint"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteResultFile saves a query and its results to a YAML file.
func WriteResultFile(path, query, endpoint string, result types.Result) error {
	rf := ResultFile{
		Query:  query,
		Result: result,
		Summary: ResultSummary{
			Objects:   result.Len(),
			Endpoint:  endpoint,
			Timestamp: time.Now(),
		},
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultFile loads a previously saved result file from disk.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &rf, nil
}
