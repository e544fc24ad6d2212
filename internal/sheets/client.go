package sheets

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reisemkt/dashboard-api/internal/utils"
)

// Fetcher is the transport collaborator: given a spreadsheet id, a sheet
// name and a cell range, return the raw table.
type Fetcher interface {
	Fetch(ctx context.Context, spreadsheetID, sheet, cellRange string) (*Table, error)
}

// Doer abstracts *http.Client so tests can substitute transports.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient builds the default transport with a bounded timeout, so a
// hanging spreadsheet endpoint surfaces as a load error instead of blocking
// the whole load cycle.
func NewHTTPClient(timeout time.Duration) Doer {
	return &http.Client{Timeout: timeout}
}

const defaultBaseURL = "https://docs.google.com/spreadsheets/d"

// Client fetches ranges through the Google Visualization query endpoint.
type Client struct {
	httpc Doer
	base  string
	log   *slog.Logger
	retry utils.Backoff
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint (tests).
func WithBaseURL(base string) Option {
	return func(c *Client) { c.base = strings.TrimRight(base, "/") }
}

// WithBackoff overrides the retry policy.
func WithBackoff(b utils.Backoff) Option {
	return func(c *Client) { c.retry = b }
}

func NewClient(httpc Doer, log *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpc: httpc,
		base:  defaultBaseURL,
		log:   log,
		retry: utils.Backoff{Base: 100 * time.Millisecond, MaxRetries: 2},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch downloads one range and decodes whichever shape came back. Transient
// transport failures (network errors, 5xx) are retried with backoff; client
// errors are not.
func (c *Client) Fetch(ctx context.Context, spreadsheetID, sheet, cellRange string) (*Table, error) {
	if spreadsheetID == "" {
		return nil, errors.New("sheets: empty spreadsheet id")
	}
	q := url.Values{}
	q.Set("tqx", "out:json")
	q.Set("sheet", sheet)
	if cellRange != "" {
		q.Set("range", cellRange)
	}
	u := fmt.Sprintf("%s/%s/gviz/tq?%s", c.base, spreadsheetID, q.Encode())

	var body []byte
	err := c.retry.Do(ctx, func(attempt int) error {
		if attempt > 0 {
			c.log.Debug("sheets retry", slog.String("sheet", sheet), slog.Int("attempt", attempt))
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return utils.Permanent(err)
		}
		resp, err := c.httpc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			err := fmt.Errorf("sheets: %s!%s: non-2xx status %d body=%s", sheet, cellRange, resp.StatusCode, strings.TrimSpace(string(b)))
			if resp.StatusCode >= 500 {
				return err
			}
			return utils.Permanent(err)
		}
		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return Decode(body)
}

// Decode sniffs the payload shape and decodes it. The gviz JSON wrapper is
// recognized by its callback/brace framing; anything else is treated as CSV
// with the first row as headers.
func Decode(body []byte) (*Table, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return &Table{}, nil
	}
	if strings.Contains(trimmed, "google.visualization") || strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "/*") {
		return decodeGviz(trimmed)
	}
	return decodeCSV(trimmed)
}

type gvizResponse struct {
	Status string `json:"status"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Table struct {
		Cols []struct {
			Label string `json:"label"`
			ID    string `json:"id"`
		} `json:"cols"`
		Rows []struct {
			C []*gvizCell `json:"c"`
		} `json:"rows"`
	} `json:"table"`
}

type gvizCell struct {
	V any    `json:"v"`
	F string `json:"f"`
}

func decodeGviz(text string) (*Table, error) {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first == -1 || last == -1 || last < first {
		return nil, errors.New("sheets: unexpected gviz response framing")
	}
	var resp gvizResponse
	if err := json.Unmarshal([]byte(text[first:last+1]), &resp); err != nil {
		return nil, fmt.Errorf("sheets: decode gviz response: %w", err)
	}
	if resp.Status == "error" {
		msg := "unknown error"
		if len(resp.Errors) > 0 {
			msg = resp.Errors[0].Message
		}
		return nil, fmt.Errorf("sheets: gviz error: %s", msg)
	}

	t := &Table{}
	for _, col := range resp.Table.Cols {
		t.Headers = append(t.Headers, col.Label)
	}
	for _, r := range resp.Table.Rows {
		row := make([]Cell, len(r.C))
		for i, c := range r.C {
			if c == nil {
				continue
			}
			row[i] = Cell{Value: c.V, Formatted: c.F}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func decodeCSV(text string) (*Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("sheets: decode csv: %w", err)
	}
	t := &Table{}
	for i, rec := range records {
		if i == 0 {
			t.Headers = rec
			continue
		}
		row := make([]Cell, len(rec))
		for j, field := range rec {
			row[j] = Cell{Value: field, Formatted: field}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
