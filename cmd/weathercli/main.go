package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"weather-dashboard/dashboard"
	"weather-dashboard/datasource"
	"weather-dashboard/geo"
	"weather-dashboard/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// console prints dashboard output to a terminal
type console struct {
	out io.Writer
}

func (c console) ShowLoading() {
	fmt.Fprintln(c.out, "Loading...")
}

func (c console) ShowError(message string) {
	fmt.Fprintf(c.out, "Error: %s\n", message)
}

func (c console) DismissError() {}

func (c console) ShowResults(results models.Results) {
	cur := results.Current
	fmt.Fprintf(c.out, "\n%s\n%s\n", cur.Title(), cur.Date)
	fmt.Fprintln(c.out, strings.Repeat("=", 40))
	fmt.Fprintf(c.out, "%d°C, %s\n", cur.Temperature, cur.Description)
	fmt.Fprintf(c.out, "Feels like %s | Humidity %s | Wind %s\n", cur.FeelsLike, cur.Humidity, cur.WindSpeed)
	fmt.Fprintf(c.out, "Pressure %s | Visibility %s | UV %s\n", cur.Pressure, cur.Visibility, cur.UVIndex)

	fmt.Fprintln(c.out, "\n5-Day Forecast")
	for _, day := range results.Daily {
		fmt.Fprintf(c.out, "  %-4s %6s  %s\n", day.Day, day.Temperature, day.Description)
	}

	fmt.Fprintln(c.out, "\nHourly Forecast")
	for _, hour := range results.Hourly {
		fmt.Fprintf(c.out, "  %-6s %6s  %s\n", hour.Label, hour.Temperature, hour.Description)
	}
}

func main() {
	godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code so deferred cleanup completes first
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("weathercli", flag.ContinueOnError)
	flags.SetOutput(stderr)
	city := flags.String("city", "", "City to look up")
	lat := flags.Float64("lat", 0, "Latitude (with -lon)")
	lon := flags.Float64("lon", 0, "Longitude (with -lat)")
	locate := flags.Bool("locate", false, "Use the position of this machine's public IP")
	configFile := flags.String("config", "config.json", "Path to configuration file")
	verbose := flags.Bool("v", false, "Debug logging")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	config, err := datasource.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	if config.OpenWeatherMap.APIKey == "" {
		fmt.Fprintf(stderr, "Set %s or openWeatherMap.apiKey in %s\n", datasource.APIKeyEnv, *configFile)
		return 1
	}
	timeout, _ := config.RequestTimeout()

	client := datasource.NewOpenWeatherMapClient(config.OpenWeatherMap.APIKey, config.OpenWeatherMap.BaseURL, timeout, logger)
	dash := dashboard.New(client, console{out: stdout}, dashboard.WithLogger(logger))
	defer dash.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	coordsSet := false
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "lat" || f.Name == "lon" {
			coordsSet = true
		}
	})

	switch {
	case *locate:
		_, err = dash.SearchByGeolocation(ctx, geo.NewIPLocator(config.Geolocation.URL))
	case coordsSet:
		_, err = dash.SearchByCoords(ctx, *lat, *lon)
	default:
		name := *city
		if name == "" {
			name = config.DefaultCity
		}
		_, err = dash.SearchByName(ctx, name)
	}
	if err != nil {
		return 1
	}
	return 0
}
