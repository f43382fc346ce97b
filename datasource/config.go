package datasource

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
)

// APIKeyEnv names the environment variable that overrides the configured API key
const APIKeyEnv = "OPENWEATHERMAP_API_KEY"

// Config represents the application configuration
type Config struct {
	OpenWeatherMap struct {
		APIKey  string `json:"apiKey"`
		BaseURL string `json:"baseURL"`
		// Timeout is a Go duration string, e.g. "10s"
		Timeout string `json:"timeout"`
	} `json:"openWeatherMap"`

	RateLimit struct {
		RPS   float64 `json:"rps"`
		Burst int     `json:"burst"`
	} `json:"rateLimit"`

	Geolocation struct {
		URL string `json:"url"`
	} `json:"geolocation"`

	// City shown when the dashboard starts
	DefaultCity string `json:"defaultCity"`
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	config := &Config{}
	config.OpenWeatherMap.BaseURL = DefaultBaseURL
	config.OpenWeatherMap.Timeout = "10s"
	// OpenWeatherMap free tier allows 60 calls/minute
	config.RateLimit.RPS = 1
	config.RateLimit.Burst = 5
	config.Geolocation.URL = "http://ip-api.com/json"
	config.DefaultCity = "London"
	return config
}

// LoadConfig loads configuration from a JSON file on top of DefaultConfig.
// A missing file is not an error. The API key from the environment wins over the file.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.Open(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		defer file.Close()
		decoder := json.NewDecoder(file)
		if err := decoder.Decode(config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}
	}

	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		config.OpenWeatherMap.APIKey = key
	}

	if _, err := config.RequestTimeout(); err != nil {
		return nil, err
	}
	return config, nil
}

// RequestTimeout parses the configured HTTP timeout; empty means no timeout
func (c *Config) RequestTimeout() (time.Duration, error) {
	if c.OpenWeatherMap.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.OpenWeatherMap.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid openWeatherMap.timeout %q: %w", c.OpenWeatherMap.Timeout, err)
	}
	return d, nil
}
