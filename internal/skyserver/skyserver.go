// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package skyserver submits SQL to the SDSS SkyServer search endpoint and
// returns tabular results exactly as the service orders them.
package skyserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/sloany/internal/httputil"
	"github.com/pdiddy/sloany/pkg/types"
)

// DefaultURL is the public SkyServer SQL search endpoint.
const DefaultURL = "http://skyserver.sdss3.org/public/en/tools/search/x_sql.asp"

// QueryError reports a failed query run: transport trouble, a non-success
// status, or a response the service itself marked as an error. It is fatal
// to the run; nothing here retries.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("skyserver query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Client submits SQL statements to a SkyServer x_sql endpoint. The zero
// BaseURL means DefaultURL. No state is retained between calls.
type Client struct {
	HTTP      *http.Client
	BaseURL   string
	UserAgent string
	Log       *zap.SugaredLogger
}

func (c *Client) logger() *zap.SugaredLogger {
	if c.Log != nil {
		return c.Log
	}
	return zap.NewNop().Sugar()
}

// Endpoint returns the URL queries are submitted to.
func (c *Client) Endpoint() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultURL
}

// Execute submits query exactly as given and returns the parsed tabular
// result. Column order and row order are exactly as the service returned
// them; cells stay text. Any failure surfaces as a *QueryError carrying
// the cause.
func (c *Client) Execute(ctx context.Context, query string) (types.Result, error) {
	params := url.Values{}
	params.Set("cmd", query)
	params.Set("format", "csv")
	reqURL := c.Endpoint() + "?" + params.Encode()

	c.logger().Debugw("submitting query", "endpoint", c.Endpoint(), "statement", query)

	body, err := httputil.Get(ctx, c.HTTP, reqURL, c.UserAgent)
	if err != nil {
		return types.Result{}, &QueryError{Query: query, Err: err}
	}

	result, err := parseResult(string(body))
	if err != nil {
		return types.Result{}, &QueryError{Query: query, Err: err}
	}

	c.logger().Debugw("query returned", "columns", len(result.Columns), "rows", len(result.Rows))
	return result, nil
}

// LookupRaDec fetches the right ascension and declination for one spectrum
// by plate, mjd, and fiberid. Used when a query result lacks ra/dec columns.
func (c *Client) LookupRaDec(ctx context.Context, plate, mjd, fiberid int) (ra, dec float64, err error) {
	query := fmt.Sprintf(
		"select s.ra,s.dec from bestdr9..SpecObj as s where s.plate=%d and s.mjd=%d and s.fiberid=%d",
		plate, mjd, fiberid)

	result, err := c.Execute(ctx, query)
	if err != nil {
		return 0, 0, err
	}
	if result.Len() == 0 {
		return 0, 0, fmt.Errorf("no object for plate=%d mjd=%d fiberid=%d", plate, mjd, fiberid)
	}

	row := result.Row(0)
	raStr, _ := row.Get("ra")
	decStr, _ := row.Get("dec")
	if ra, err = strconv.ParseFloat(raStr, 64); err != nil {
		return 0, 0, fmt.Errorf("parsing ra %q: %w", raStr, err)
	}
	if dec, err = strconv.ParseFloat(decStr, 64); err != nil {
		return 0, 0, fmt.Errorf("parsing dec %q: %w", decStr, err)
	}
	return ra, dec, nil
}

// parseResult splits the service response into a Result. The first line
// carries the comma-separated column names; each further line is one
// object. SkyServer reports SQL errors in-band with a 200 status and an
// "ERROR"-prefixed body, which counts as a failure here.
func parseResult(body string) (types.Result, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return types.Result{}, errors.New("empty response")
	}
	if strings.HasPrefix(trimmed, "ERROR") {
		return types.Result{}, fmt.Errorf("service reported: %s", firstLine(trimmed))
	}

	lines := strings.Split(trimmed, "\n")
	result := types.Result{Columns: splitRow(lines[0])}
	for _, line := range lines[1:] {
		result.Rows = append(result.Rows, splitRow(line))
	}
	return result, nil
}

func splitRow(line string) []string {
	return strings.Split(strings.TrimRight(line, "\r"), ",")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimRight(s[:i], "\r")
	}
	return s
}
