package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/prop-calibrator/internal/models"
)

// Columns names the CSV header fields holding each observation attribute.
// Prediction and Outcome are required; the rest are read when present.
type Columns struct {
	Prediction string
	Outcome    string
	Provider   string
	Odds       string
	Stake      string
	Market     string
	Date       string
}

// DefaultColumns returns the conventional column names
func DefaultColumns() Columns {
	return Columns{
		Prediction: "p_hit",
		Outcome:    "outcome",
		Provider:   "provider",
		Odds:       "odds",
		Stake:      "stake",
		Market:     "market",
		Date:       "date",
	}
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// CSVParser turns delimited text into observations. Cells that cannot be
// read as numbers become missing values rather than errors.
type CSVParser struct {
	columns Columns
}

// NewCSVParser creates a parser for the given column layout
func NewCSVParser(columns Columns) *CSVParser {
	return &CSVParser{columns: columns}
}

// Parse reads observations from reader. It fails only when the text is not
// valid CSV or a required column is absent.
func (p *CSVParser) Parse(reader io.Reader) ([]models.Observation, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []models.Observation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	idx := indexHeader(header)
	pred, ok := idx[strings.ToLower(p.columns.Prediction)]
	if !ok {
		return nil, fmt.Errorf("missing prediction column %q: %w", p.columns.Prediction, ErrInvalidData)
	}
	out, ok := idx[strings.ToLower(p.columns.Outcome)]
	if !ok {
		return nil, fmt.Errorf("missing outcome column %q: %w", p.columns.Outcome, ErrInvalidData)
	}
	lookup := func(name string) int {
		if i, ok := idx[strings.ToLower(name)]; ok && name != "" {
			return i
		}
		return -1
	}
	provider, odds, stake := lookup(p.columns.Provider), lookup(p.columns.Odds), lookup(p.columns.Stake)
	market, date := lookup(p.columns.Market), lookup(p.columns.Date)

	observations := []models.Observation{}
	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		obs := models.Observation{
			PredictedProbability: CoerceProbability(cell(record, pred)),
			Outcome:              CoerceOutcome(cell(record, out)),
			Provider:             cell(record, provider),
			Market:               cell(record, market),
			Odds:                 optionalFloat(cell(record, odds)),
			Stake:                optionalFloat(cell(record, stake)),
			Date:                 parseDate(cell(record, date)),
		}
		observations = append(observations, obs)
	}
	return observations, nil
}

func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// CoerceProbability parses a predicted probability. Unreadable or non-finite
// values are missing (NaN); finite values are clipped to [0, 1].
func CoerceProbability(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !models.IsDefined(v) {
		return models.Undefined()
	}
	return math.Max(0, math.Min(1, v))
}

// CoerceOutcome parses a realized outcome into 0 or 1. Any non-zero number
// counts as a hit; common words are accepted too. Anything else is missing.
func CoerceOutcome(raw string) float64 {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "true", "yes", "y", "hit", "over", "win", "won":
		return 1
	case "false", "no", "n", "miss", "under", "loss", "lost":
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !models.IsDefined(v) {
		return models.Undefined()
	}
	if v != 0 {
		return 1
	}
	return 0
}

func optionalFloat(raw string) *float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !models.IsDefined(v) {
		return nil
	}
	return &v
}

func parseDate(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// CSVSource reads observations from a CSV file on disk
type CSVSource struct {
	path   string
	parser *CSVParser
}

// NewCSVSource creates a file-backed source
func NewCSVSource(path string, columns Columns) *CSVSource {
	return &CSVSource{path: path, parser: NewCSVParser(columns)}
}

// Load implements Source
func (s *CSVSource) Load(ctx context.Context) ([]models.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewSourceError(s.Name(), ErrCodeNotFound, s.path, err)
		}
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	observations, err := s.parser.Parse(f)
	if err != nil {
		return nil, NewSourceError(s.Name(), ErrCodeInvalidData, s.path, err)
	}
	return observations, nil
}

// Name implements Source
func (s *CSVSource) Name() string {
	return "csv"
}
