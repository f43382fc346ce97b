package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weather-dashboard/api"
	"weather-dashboard/dashboard"
	"weather-dashboard/datasource"
	"weather-dashboard/geo"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	// Parse command line arguments
	port := flag.Int("port", 8080, "Port to run the server on")
	configFile := flag.String("config", "config.json", "Path to configuration file")
	enableRateLimiting := flag.Bool("rate-limit", false, "Enable API rate limiting")
	development := flag.Bool("dev", false, "Human-readable debug logging")
	flag.Parse()

	logger, err := newLogger(*development)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Load configuration
	config, err := datasource.LoadConfig(*configFile)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	if config.OpenWeatherMap.APIKey == "" {
		logger.Fatal("no OpenWeatherMap API key provided", zap.String("env", datasource.APIKeyEnv))
	}
	timeout, _ := config.RequestTimeout()

	var client datasource.WeatherClient = datasource.NewOpenWeatherMapClient(
		config.OpenWeatherMap.APIKey, config.OpenWeatherMap.BaseURL, timeout, logger)

	if *enableRateLimiting {
		client = datasource.NewRateLimitedClient(client, config.RateLimit.RPS, config.RateLimit.Burst)
		logger.Info("applied rate limiting",
			zap.String("client", client.Name()),
			zap.Float64("rps", config.RateLimit.RPS),
			zap.Int("burst", config.RateLimit.Burst),
		)
	}

	board := api.NewBoard()
	dash := dashboard.New(client, board, dashboard.WithLogger(logger))
	defer dash.Close()

	var locator geo.Locator
	if config.Geolocation.URL != "" {
		locator = geo.NewIPLocator(config.Geolocation.URL)
	}
	server := api.NewServer(board, dash, locator, *port, logger)

	// Set up channels for graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	// Show the default city on startup; a search from the page supersedes it
	if config.DefaultCity != "" {
		go func() {
			if _, err := dash.SearchByName(context.Background(), config.DefaultCity); err != nil {
				logger.Info("initial search did not complete", zap.Error(err))
			}
		}()
	}

	// Start the API server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			shutdownChan <- syscall.SIGTERM
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdownChan
	logger.Info("shutting down", zap.Stringer("signal", sig))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
