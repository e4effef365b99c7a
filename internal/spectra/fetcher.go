// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package spectra derives spectrum file locations from query rows and
// fetches them one row at a time, falling back between mirror path
// conventions.
package spectra

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/sloany/internal/httputil"
	"github.com/pdiddy/sloany/pkg/types"
)

// sasBase is the science archive server root. Declared as a var so tests
// can substitute an httptest server.
var sasBase = "http://data.sdss3.org"

// URLTemplate renders one candidate download location for a spectrum.
type URLTemplate func(SpecID) string

// DefaultTemplates returns the candidate locations in priority order: the
// DR9 SDSS lite reduction first, then the BOSS v5_4_45 lite reduction.
// Both are tried for every row regardless of its survey value.
func DefaultTemplates() []URLTemplate {
	return []URLTemplate{
		func(id SpecID) string {
			return fmt.Sprintf("%s/sas/dr9/sdss/spectro/redux/lite/%04d/%s",
				sasBase, id.Plate, id.FileName())
		},
		func(id SpecID) string {
			return fmt.Sprintf("%s/sas/dr9/boss/spectro/redux/v5_4_45/spectra/lite/%04d/%s",
				sasBase, id.Plate, id.FileName())
		},
	}
}

// TransportError reports that every candidate URL for one row failed at
// the network level, with no HTTP answer at all.
type TransportError struct {
	File string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetching %s: no candidate reachable: %v", e.File, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Fetcher retrieves spectrum files by walking an ordered candidate list.
// An empty Templates list means DefaultTemplates.
type Fetcher struct {
	HTTP      *http.Client
	Templates []URLTemplate
	UserAgent string
	Log       *zap.SugaredLogger
}

func (f *Fetcher) logger() *zap.SugaredLogger {
	if f.Log != nil {
		return f.Log
	}
	return zap.NewNop().Sugar()
}

func (f *Fetcher) templates() []URLTemplate {
	if len(f.Templates) > 0 {
		return f.Templates
	}
	return DefaultTemplates()
}

// Fetch retrieves the spectrum named by row. Candidates are tried in
// order and the first success wins. When every candidate answered with a
// non-success status the result is Artifact{Found: false} and no error;
// only a row with no HTTP answer at all errors, with *TransportError. A
// row missing a required field fails with *MalformedRowError before any
// network I/O.
func (f *Fetcher) Fetch(ctx context.Context, row types.Row) (types.Artifact, error) {
	id, err := ParseSpecID(row)
	if err != nil {
		return types.Artifact{}, err
	}
	return f.FetchID(ctx, id)
}

// FetchID is Fetch for an already-parsed SpecID.
func (f *Fetcher) FetchID(ctx context.Context, id SpecID) (types.Artifact, error) {
	var (
		answered bool
		lastErr  error
	)
	for _, tmpl := range f.templates() {
		url := tmpl(id)
		f.logger().Debugw("trying candidate", "url", url)

		data, err := httputil.Get(ctx, f.HTTP, url, f.UserAgent)
		if err == nil {
			f.logger().Debugw("candidate hit", "url", url, "bytes", len(data))
			return types.Artifact{URL: url, Data: data, Found: true}, nil
		}

		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) {
			answered = true
			f.logger().Debugw("candidate miss", "url", url, "status", statusErr.Code)
			continue
		}
		lastErr = err
		f.logger().Debugw("candidate unreachable", "url", url, "err", err)
	}

	if answered {
		return types.Artifact{}, nil
	}
	return types.Artifact{}, &TransportError{File: id.FileName(), Err: lastErr}
}
