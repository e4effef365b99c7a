// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package skyserver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sloany/pkg/types"
)

func TestResultFileRoundTrip(t *testing.T) {
	result := types.Result{
		Columns: []string{"survey", "plate", "mjd", "fiberid"},
		Rows: [][]string{
			{"boss", "4724", "55742", "734"},
			{"boss", "4077", "55361", "709"},
		},
	}

	path := filepath.Join(t.TempDir(), "results.yaml")
	require.NoError(t, WriteResultFile(path, "select top 2 ...", DefaultURL, result))

	rf, err := ReadResultFile(path)
	require.NoError(t, err)

	assert.Equal(t, "select top 2 ...", rf.Query)
	assert.Equal(t, result.Columns, rf.Result.Columns)
	assert.Equal(t, result.Rows, rf.Result.Rows)
	assert.Equal(t, 2, rf.Summary.Objects)
	assert.Equal(t, DefaultURL, rf.Summary.Endpoint)
	assert.False(t, rf.Summary.Timestamp.IsZero())
}

func TestReadResultFile_Missing(t *testing.T) {
	_, err := ReadResultFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestReadResultFile_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t- not yaml"), 0o644))

	_, err := ReadResultFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing result file")
}
