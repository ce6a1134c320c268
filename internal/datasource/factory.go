package datasource

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-calibrator/internal/config"
)

// SourceType represents the type of data source
type SourceType string

const (
	// CSVSourceType reads a local CSV file
	CSVSourceType SourceType = "csv"
	// HTTPSourceType downloads a CSV file
	HTTPSourceType SourceType = "http"
	// SyntheticSourceType generates a demo dataset
	SyntheticSourceType SourceType = "synthetic"
)

// Factory creates Source implementations based on configuration
type Factory struct {
	logger *logrus.Logger
	config config.DataConfig
}

// NewFactory creates a new data source factory
func NewFactory(cfg config.DataConfig, logger *logrus.Logger) *Factory {
	return &Factory{logger: logger, config: cfg}
}

// Create builds the source named by the configuration
func (f *Factory) Create() (Source, error) {
	return f.CreateType(SourceType(f.config.Source))
}

// CreateType builds a source of the given type from the configuration
func (f *Factory) CreateType(sourceType SourceType) (Source, error) {
	switch sourceType {
	case CSVSourceType:
		if f.config.Path == "" {
			return nil, fmt.Errorf("csv source requires a path")
		}
		return NewCSVSource(f.config.Path, f.columns()), nil
	case HTTPSourceType:
		if f.config.URL == "" {
			return nil, fmt.Errorf("http source requires a url")
		}
		return NewHTTPSource(NewRateLimitedHTTPClient(f.httpConfig(), f.logger), f.config.URL, f.columns()), nil
	case SyntheticSourceType:
		s := f.config.Synthetic
		return NewSyntheticSource(s.Rows, s.Seed, s.Market, s.Providers), nil
	default:
		return nil, fmt.Errorf("unknown data source type: %s", sourceType)
	}
}

// columns overlays configured names on the defaults
func (f *Factory) columns() Columns {
	cols := DefaultColumns()
	c := f.config.Columns
	for _, pair := range []struct {
		dst *string
		src string
	}{
		{&cols.Prediction, c.Prediction},
		{&cols.Outcome, c.Outcome},
		{&cols.Provider, c.Provider},
		{&cols.Odds, c.Odds},
		{&cols.Stake, c.Stake},
		{&cols.Market, c.Market},
		{&cols.Date, c.Date},
	} {
		if pair.src != "" {
			*pair.dst = pair.src
		}
	}
	return cols
}

func (f *Factory) httpConfig() HTTPClientConfig {
	cfg := DefaultHTTPClientConfig()
	if f.config.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(f.config.TimeoutSeconds) * time.Second
	}
	cfg.MaxRetries = f.config.MaxRetries
	cfg.RateLimit = f.config.RateLimit
	return cfg
}
