// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sloany/pkg/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = os.Stat(path)
	require.NoError(t, err, "database file should exist after Open")
	return s
}

func sampleResult() types.Result {
	return types.Result{
		Columns: []string{"survey", "plate", "mjd", "fiberid", "ra", "dec"},
		Rows: [][]string{
			{"boss", "4724", "55742", "734", "241.30465", "26.982166"},
			{"boss", "4077", "55361", "709", "319.35173", "4.7338973"},
			{"boss", "4077", "55361", "755", "319.5121", "4.4102067"},
		},
	}
}

func TestSaveResultAndObjects(t *testing.T) {
	s := openStore(t)

	saved, skipped, err := s.SaveResult(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 3, saved)
	assert.Equal(t, 0, skipped)

	objects, err := s.Objects(context.Background())
	require.NoError(t, err)
	require.Len(t, objects, 3)

	// ordered by plate, mjd, fiberid
	assert.Equal(t, 4077, objects[0].Plate)
	assert.Equal(t, 709, objects[0].FiberID)
	assert.Equal(t, 755, objects[1].FiberID)
	assert.Equal(t, 4724, objects[2].Plate)

	last := objects[2]
	assert.Equal(t, "boss", last.Survey)
	assert.True(t, last.HasPosition)
	assert.InDelta(t, 241.30465, last.RA, 1e-9)
	assert.Equal(t, "J160513.11+265855.7", last.LongName)
	assert.Equal(t, "J1605+2658", last.ShortName)
	assert.Equal(t, "spec-4724-55742-0734.fits", last.SpecFile)
	assert.False(t, last.AddedAt.IsZero())
}

func TestSaveResult_Upserts(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, _, err := s.SaveResult(ctx, sampleResult())
	require.NoError(t, err)

	// same identities again, one with a refreshed position
	again := sampleResult()
	again.Rows[0][4] = "241.5"
	saved, skipped, err := s.SaveResult(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, 3, saved)
	assert.Equal(t, 0, skipped)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "duplicate identities must not add rows")

	objects, err := s.Objects(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 241.5, objects[2].RA, 1e-9)
}

func TestSaveResult_SkipsMalformed(t *testing.T) {
	s := openStore(t)

	result := sampleResult()
	result.Rows[1][3] = "x99" // fiberid not an integer

	saved, skipped, err := s.SaveResult(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)
	assert.Equal(t, 1, skipped)
}

func TestSaveResult_WithoutPosition(t *testing.T) {
	s := openStore(t)

	result := types.Result{
		Columns: []string{"survey", "plate", "mjd", "fiberid"},
		Rows:    [][]string{{"sdss", "280", "51612", "5"}},
	}
	saved, skipped, err := s.SaveResult(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 1, saved)
	assert.Equal(t, 0, skipped)

	objects, err := s.Objects(context.Background())
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.False(t, objects[0].HasPosition)
	assert.Empty(t, objects[0].LongName)
	assert.Equal(t, "spec-0280-51612-0005.fits", objects[0].SpecFile)
}

func TestRows_RoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, _, err := s.SaveResult(ctx, sampleResult())
	require.NoError(t, err)

	result, err := s.Rows(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"survey", "plate", "mjd", "fiberid", "ra", "dec"}, result.Columns)
	require.Equal(t, 3, result.Len())

	plate, ok := result.Row(0).Get("plate")
	require.True(t, ok)
	assert.Equal(t, "4077", plate)

	ra, ok := result.Row(2).Get("ra")
	require.True(t, ok)
	assert.Equal(t, "241.30465", ra)
}
