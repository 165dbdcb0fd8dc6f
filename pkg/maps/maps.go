package maps

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"fleetbook/pkg/client"
	"fleetbook/pkg/logger"
)

type DistanceResult struct {
	KM              float64 `json:"km"`
	DurationSeconds int64   `json:"duration_seconds"`
}

// DistanceProvider resolves the driving distance between two places.
// Used by the quote flow only; the booking transaction never calls out here.
type DistanceProvider interface {
	Distance(ctx context.Context, origin, destination string) (*DistanceResult, error)
}

type httpProvider struct {
	http    *client.HttpClient
	apiKey  string
	log     *logger.Logger
	timeout time.Duration
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Log     *logger.Logger
}

func NewHTTPProvider(cfg Config) DistanceProvider {
	return &httpProvider{
		http:    client.NewHttpClient(cfg.BaseURL, cfg.Timeout),
		apiKey:  cfg.APIKey,
		log:     cfg.Log,
		timeout: cfg.Timeout,
	}
}

type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value int64 `json:"value"` // meters
			} `json:"distance"`
			Duration struct {
				Value int64 `json:"value"` // seconds
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

func (p *httpProvider) Distance(ctx context.Context, origin, destination string) (*DistanceResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("origins", origin)
	q.Set("destinations", destination)
	q.Set("key", p.apiKey)

	resp, err := p.http.GET(ctx, "/distancematrix/json?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("distance request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("distance lookup rejected with status %d", resp.StatusCode)
	}

	var payload distanceMatrixResponse
	if err := resp.DecodeJSON(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode distance response: %w", err)
	}

	if payload.Status != "OK" || len(payload.Rows) == 0 || len(payload.Rows[0].Elements) == 0 {
		return nil, fmt.Errorf("no route between %q and %q", origin, destination)
	}

	element := payload.Rows[0].Elements[0]
	if element.Status != "OK" {
		return nil, fmt.Errorf("no route between %q and %q: %s", origin, destination, element.Status)
	}

	return &DistanceResult{
		KM:              float64(element.Distance.Value) / 1000,
		DurationSeconds: element.Duration.Value,
	}, nil
}
