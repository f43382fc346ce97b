package datasource

import (
	"context"

	"weather-dashboard/models"
)

// WeatherClient defines the three lookups the dashboard needs from a weather provider
type WeatherClient interface {
	// FetchCurrentByName fetches current weather for a place name
	FetchCurrentByName(ctx context.Context, name string) (models.CurrentWeatherPayload, error)

	// FetchCurrentByCoords fetches current weather for a coordinate pair
	FetchCurrentByCoords(ctx context.Context, lat, lon float64) (models.CurrentWeatherPayload, error)

	// FetchForecast fetches the 5 day / 3 hour forecast for a coordinate pair
	FetchForecast(ctx context.Context, lat, lon float64) (models.ForecastPayload, error)

	// Name returns the provider's name
	Name() string
}
