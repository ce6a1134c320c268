package datasource

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yourusername/prop-calibrator/internal/models"
)

// HTTPSource downloads a CSV export of observations from a URL
type HTTPSource struct {
	client *RateLimitedHTTPClient
	url    string
	parser *CSVParser
}

// NewHTTPSource creates a source fetching url through client
func NewHTTPSource(client *RateLimitedHTTPClient, url string, columns Columns) *HTTPSource {
	return &HTTPSource{client: client, url: url, parser: NewCSVParser(columns)}
}

// Load implements Source
func (s *HTTPSource) Load(ctx context.Context) ([]models.Observation, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, NewSourceError(s.Name(), ErrCodeNetworkError, "failed to download dataset", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewSourceError(s.Name(), ErrCodeNotFound, s.url, nil)
	case resp.StatusCode >= 500:
		return nil, NewSourceError(s.Name(), ErrCodeServerError, fmt.Sprintf("unexpected status: %d", resp.StatusCode), ErrServerError)
	case resp.StatusCode != http.StatusOK:
		return nil, NewSourceError(s.Name(), ErrCodeInvalidData, fmt.Sprintf("unexpected status: %d", resp.StatusCode), nil)
	}

	observations, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, NewSourceError(s.Name(), ErrCodeInvalidData, "invalid CSV payload", err)
	}
	return observations, nil
}

// Name implements Source
func (s *HTTPSource) Name() string {
	return "http"
}
