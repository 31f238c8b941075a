package questions

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/playperu/bollyquiz/internal/bollyquiz"
)

// sheetColumns is the positional layout of a data row:
// question, hint, answer, category.
const sheetColumns = 4

const defaultFetchTimeout = 10 * time.Second

var ErrEmptySheet = errors.New("sheet has no valid question rows")

// StatusError is returned when the sheet host answers with a non-2xx status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sheet responded with status %d", e.Code)
}

// Permanent reports whether retrying cannot help.
func (e *StatusError) Permanent() bool {
	return e.Code >= 400 && e.Code < 500 && e.Code != http.StatusTooManyRequests
}

// SkippedRow records a data row that ParseSheet rejected.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ParseReport summarises one parse.
type ParseReport struct {
	Accepted int          `json:"accepted"`
	Skipped  []SkippedRow `json:"skipped"`
}

// ParseSheet reads a comma-delimited sheet export. The first record is a
// header and is discarded. Malformed rows are skipped and listed in the
// report; a sheet without a single valid row fails with ErrEmptySheet.
func ParseSheet(r io.Reader) ([]bollyquiz.Question, ParseReport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var (
		qs     []bollyquiz.Question
		report ParseReport
		header = true
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			header = false
			report.Skipped = append(report.Skipped, SkippedRow{Line: perr.StartLine, Reason: perr.Err.Error()})
			continue
		}
		if err != nil {
			return nil, report, fmt.Errorf("reading sheet: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if header {
			header = false
			continue
		}

		q, err := parseRow(rec)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedRow{Line: line, Reason: err.Error()})
			continue
		}
		qs = append(qs, q)
	}

	report.Accepted = len(qs)
	if len(qs) == 0 {
		return nil, report, ErrEmptySheet
	}
	return qs, report, nil
}

func parseRow(rec []string) (bollyquiz.Question, error) {
	if len(rec) < sheetColumns {
		return bollyquiz.Question{}, fmt.Errorf("expected %d columns, got %d", sheetColumns, len(rec))
	}
	// Exports pad rows to the sheet width; only blank padding is tolerated.
	for _, extra := range rec[sheetColumns:] {
		if strings.TrimSpace(extra) != "" {
			return bollyquiz.Question{}, fmt.Errorf("expected %d columns, got %d", sheetColumns, len(rec))
		}
	}
	return bollyquiz.NewHint(rec[0], rec[1], rec[2], rec[3])
}

// SheetSource fetches a published sheet over plain HTTP GET. Concurrent loads
// share a single request.
type SheetSource struct {
	url     string
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
	group   singleflight.Group
}

type SheetOption func(*SheetSource)

func WithHTTPClient(c *http.Client) SheetOption {
	return func(s *SheetSource) { s.client = c }
}

func WithFetchTimeout(d time.Duration) SheetOption {
	return func(s *SheetSource) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewSheetSource(url string, logger *slog.Logger, opts ...SheetOption) *SheetSource {
	s := &SheetSource{
		url:     url,
		client:  http.DefaultClient,
		timeout: defaultFetchTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SheetSource) Load(ctx context.Context) ([]bollyquiz.Question, error) {
	ch := s.group.DoChan(s.url, func() (any, error) {
		// Detached so one caller giving up does not fail the others.
		return s.fetch(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]bollyquiz.Question)), nil
	}
}

func (s *SheetSource) fetch(ctx context.Context) ([]bollyquiz.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building sheet request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	qs, report, err := ParseSheet(resp.Body)
	for _, row := range report.Skipped {
		s.logger.WarnContext(ctx, "skipping sheet row", "line", row.Line, "reason", row.Reason)
	}
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "sheet loaded", "accepted", report.Accepted, "skipped", len(report.Skipped))
	return qs, nil
}
