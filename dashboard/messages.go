package dashboard

import (
	"errors"

	"weather-dashboard/models"
)

// UserMessage maps a search error to the one line shown to the user
func UserMessage(err error) string {
	var fetchErr *models.FetchError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, models.ErrValidation):
		return "Please enter a city name"
	case errors.Is(err, models.ErrNotFound):
		return "City not found"
	case errors.Is(err, models.ErrGeolocationUnsupported):
		return "Geolocation is not supported by your browser"
	case errors.Is(err, models.ErrGeolocation):
		return "Unable to get your location. Please enable location services."
	case errors.As(err, &fetchErr) && fetchErr.Endpoint == "forecast":
		return "Unable to fetch forecast data"
	case errors.As(err, &fetchErr):
		return "Unable to fetch weather data"
	}
	return "Failed to fetch weather data"
}
