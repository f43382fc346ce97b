package datasource

import (
	"context"
	"fmt"

	"weather-dashboard/models"

	"golang.org/x/time/rate"
)

// RateLimitedClient wraps a WeatherClient so that every lookup waits for a token
type RateLimitedClient struct {
	client  WeatherClient
	limiter *rate.Limiter
	name    string
}

// NewRateLimitedClient creates a new rate limited weather client
// rps is the maximum requests per second allowed (can be fractional for less than 1 request per second)
// burst is the maximum burst size allowed
func NewRateLimitedClient(client WeatherClient, rps float64, burst int) *RateLimitedClient {
	return &RateLimitedClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    fmt.Sprintf("%s [Rate Limited]", client.Name()),
	}
}

func (r *RateLimitedClient) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return nil
}

// FetchCurrentByName waits for the limiter, then forwards to the wrapped client
func (r *RateLimitedClient) FetchCurrentByName(ctx context.Context, name string) (models.CurrentWeatherPayload, error) {
	if err := r.wait(ctx); err != nil {
		return models.CurrentWeatherPayload{}, err
	}
	return r.client.FetchCurrentByName(ctx, name)
}

// FetchCurrentByCoords waits for the limiter, then forwards to the wrapped client
func (r *RateLimitedClient) FetchCurrentByCoords(ctx context.Context, lat, lon float64) (models.CurrentWeatherPayload, error) {
	if err := r.wait(ctx); err != nil {
		return models.CurrentWeatherPayload{}, err
	}
	return r.client.FetchCurrentByCoords(ctx, lat, lon)
}

// FetchForecast waits for the limiter, then forwards to the wrapped client
func (r *RateLimitedClient) FetchForecast(ctx context.Context, lat, lon float64) (models.ForecastPayload, error) {
	if err := r.wait(ctx); err != nil {
		return models.ForecastPayload{}, err
	}
	return r.client.FetchForecast(ctx, lat, lon)
}

// Name returns the client name
func (r *RateLimitedClient) Name() string {
	return r.name
}

var _ WeatherClient = (*RateLimitedClient)(nil)
