package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"weather-dashboard/models"
)

// Locator resolves the device position once
type Locator interface {
	Locate(ctx context.Context) (models.Coordinates, error)
}

// StaticLocator returns a fixed position, or a fixed failure when Err is set.
// It bridges positions (or refusals) reported by a browser.
type StaticLocator struct {
	Coords models.Coordinates
	Err    error
}

// Denied builds a locator that reports the device refused or could not provide a position
func Denied(reason string) StaticLocator {
	return StaticLocator{Err: fmt.Errorf("%s: %w", reason, models.ErrGeolocation)}
}

// Unsupported builds a locator for a device that has no way to report a position
func Unsupported() StaticLocator {
	return StaticLocator{Err: models.ErrGeolocationUnsupported}
}

func (s StaticLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	if s.Err != nil {
		return models.Coordinates{}, s.Err
	}
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, err
	}
	return s.Coords, nil
}

// IPLocator estimates the position from the public IP via an ip-api.com compatible endpoint
type IPLocator struct {
	url    string
	client *http.Client
}

func NewIPLocator(url string) *IPLocator {
	return &IPLocator{
		url: url,
		client: &http.Client{
			Timeout: 3 * time.Second,
		},
	}
}

func (l *IPLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("failed to create request: %w", models.ErrGeolocation)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return models.Coordinates{}, ctx.Err()
		}
		return models.Coordinates{}, fmt.Errorf("%v: %w", err, models.ErrGeolocation)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Coordinates{}, fmt.Errorf("status %d: %w", resp.StatusCode, models.ErrGeolocation)
	}

	var body struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Coordinates{}, fmt.Errorf("failed to parse response: %v: %w", err, models.ErrGeolocation)
	}
	if body.Status != "success" {
		return models.Coordinates{}, fmt.Errorf("lookup %s (%s): %w", body.Status, body.Message, models.ErrGeolocation)
	}
	return models.Coordinates{Lat: body.Lat, Lon: body.Lon}, nil
}

var (
	_ Locator = StaticLocator{}
	_ Locator = (*IPLocator)(nil)
)
