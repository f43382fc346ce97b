package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"weather-dashboard/models"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the OpenWeatherMap 2.5 API root
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	weatherEndpoint  = "weather"
	forecastEndpoint = "forecast"
)

// OpenWeatherMapClient implements WeatherClient against the OpenWeatherMap 2.5 API
type OpenWeatherMapClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOpenWeatherMapClient creates a new OpenWeatherMap client.
// An empty baseURL selects DefaultBaseURL; a zero timeout leaves requests unbounded.
func NewOpenWeatherMapClient(apiKey, baseURL string, timeout time.Duration, logger *zap.Logger) *OpenWeatherMapClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenWeatherMapClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("openweathermap"),
	}
}

// Name returns the provider name
func (c *OpenWeatherMapClient) Name() string {
	return "OpenWeatherMap"
}

// FetchCurrentByName fetches current weather for a place name.
// Any non-success status is reported as models.ErrNotFound.
func (c *OpenWeatherMapClient) FetchCurrentByName(ctx context.Context, name string) (models.CurrentWeatherPayload, error) {
	params := url.Values{}
	params.Add("q", name)

	var payload models.CurrentWeatherPayload
	if err := c.get(ctx, weatherEndpoint, params, &payload); err != nil {
		var fetchErr *models.FetchError
		if errors.As(err, &fetchErr) && fetchErr.StatusCode != 0 {
			return models.CurrentWeatherPayload{}, fmt.Errorf("%q: %w", name, models.ErrNotFound)
		}
		return models.CurrentWeatherPayload{}, err
	}
	return payload, nil
}

// FetchCurrentByCoords fetches current weather for a coordinate pair
func (c *OpenWeatherMapClient) FetchCurrentByCoords(ctx context.Context, lat, lon float64) (models.CurrentWeatherPayload, error) {
	var payload models.CurrentWeatherPayload
	if err := c.get(ctx, weatherEndpoint, coordParams(lat, lon), &payload); err != nil {
		return models.CurrentWeatherPayload{}, err
	}
	return payload, nil
}

// FetchForecast fetches the 5 day / 3 hour forecast for a coordinate pair
func (c *OpenWeatherMapClient) FetchForecast(ctx context.Context, lat, lon float64) (models.ForecastPayload, error) {
	var payload models.ForecastPayload
	if err := c.get(ctx, forecastEndpoint, coordParams(lat, lon), &payload); err != nil {
		return models.ForecastPayload{}, err
	}
	return payload, nil
}

func coordParams(lat, lon float64) url.Values {
	params := url.Values{}
	params.Add("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Add("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return params
}

// get issues a single GET against endpoint and decodes the JSON body into out
func (c *OpenWeatherMapClient) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	fullURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return &models.FetchError{Endpoint: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &models.FetchError{Endpoint: endpoint, Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &models.FetchError{Endpoint: endpoint, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug("request complete",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return &models.FetchError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Err:        errors.New(truncate(body, 256)),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &models.FetchError{Endpoint: endpoint, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return nil
}

func truncate(body []byte, n int) string {
	if len(body) > n {
		return string(body[:n]) + "..."
	}
	return string(body)
}

// Verify that the client implements the required interface
var _ WeatherClient = (*OpenWeatherMapClient)(nil)
