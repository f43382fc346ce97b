// Package dashboard coordinates one weather search at a time: it fetches the
// current conditions and the forecast for a single location, maps them to
// view-models and hands the outcome to a Presenter.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"weather-dashboard/datasource"
	"weather-dashboard/geo"
	"weather-dashboard/mapper"
	"weather-dashboard/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrorDisplayDuration is how long a failure message stays visible
const ErrorDisplayDuration = 5 * time.Second

// ErrSuperseded is returned by a search whose result was discarded because a newer search started
var ErrSuperseded = errors.New("search superseded")

// State of the dashboard
type State int

const (
	Idle State = iota
	Loading
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Presenter is the display surface the dashboard writes into.
// Calls are serialised; implementations must not call back into the Dashboard.
type Presenter interface {
	// ShowLoading hides the previous content and shows progress
	ShowLoading()
	// ShowError hides the content and shows a single message
	ShowError(message string)
	// DismissError removes the message shown by ShowError
	DismissError()
	// ShowResults displays the outcome of a successful search
	ShowResults(results models.Results)
}

// TimezoneFunc picks the clock used for labels at a location
type TimezoneFunc func(lat, lon float64, offsetSeconds int) *time.Location

// Option configures a Dashboard
type Option func(*Dashboard)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dashboard) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithErrorDisplay overrides ErrorDisplayDuration
func WithErrorDisplay(duration time.Duration) Option {
	return func(d *Dashboard) {
		d.errorDisplay = duration
	}
}

// WithTimezone overrides geo.TimezoneFor
func WithTimezone(fn TimezoneFunc) Option {
	return func(d *Dashboard) {
		d.timezone = fn
	}
}

// Dashboard is the aggregation orchestrator
type Dashboard struct {
	client       datasource.WeatherClient
	presenter    Presenter
	logger       *zap.Logger
	errorDisplay time.Duration
	timezone     TimezoneFunc

	mutex        sync.Mutex
	generation   uint64
	state        State
	cancel       context.CancelFunc
	dismissTimer *time.Timer
}

// New creates a dashboard that fetches through client and renders into presenter
func New(client datasource.WeatherClient, presenter Presenter, opts ...Option) *Dashboard {
	d := &Dashboard{
		client:       client,
		presenter:    presenter,
		logger:       zap.NewNop(),
		errorDisplay: ErrorDisplayDuration,
		timezone:     geo.TimezoneFor,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named("dashboard")
	return d
}

// State returns the current state
func (d *Dashboard) State() State {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.state
}

// SearchByName resolves name to a position, then fetches the forecast for that same position.
// Blank names fail with models.ErrValidation without any network call; they are
// only shown when no other search is loading.
func (d *Dashboard) SearchByName(ctx context.Context, name string) (models.Results, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		err := fmt.Errorf("empty city name: %w", models.ErrValidation)
		d.reject(err)
		return models.Results{}, err
	}

	location := models.NamedLocation(name)
	return d.run(ctx, location, func(ctx context.Context, log *zap.Logger) (models.Results, error) {
		current, err := d.client.FetchCurrentByName(ctx, name)
		if err != nil {
			return models.Results{}, fmt.Errorf("current weather: %w", err)
		}
		return d.aggregate(ctx, log, location, current.Coord, &current)
	})
}

// SearchByCoords fetches current weather and forecast for (lat, lon) concurrently
func (d *Dashboard) SearchByCoords(ctx context.Context, lat, lon float64) (models.Results, error) {
	location := models.CoordLocation(lat, lon)
	return d.run(ctx, location, func(ctx context.Context, log *zap.Logger) (models.Results, error) {
		return d.aggregate(ctx, log, location, *location.Coords, nil)
	})
}

// SearchByGeolocation asks locator for the device position once, then searches there.
// The dashboard is Loading while the locator runs.
func (d *Dashboard) SearchByGeolocation(ctx context.Context, locator geo.Locator) (models.Results, error) {
	return d.run(ctx, models.Location{Name: "device location"}, func(ctx context.Context, log *zap.Logger) (models.Results, error) {
		coords, err := locator.Locate(ctx)
		if err != nil {
			return models.Results{}, err
		}
		log.Debug("device located", zap.Stringer("coords", coords))
		location := models.CoordLocation(coords.Lat, coords.Lon)
		return d.aggregate(ctx, log, location, coords, nil)
	})
}

// Close cancels the in-flight search and any pending error dismissal
func (d *Dashboard) Close() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.generation++
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.stopDismissLocked()
}

type searchFunc func(ctx context.Context, log *zap.Logger) (models.Results, error)

func (d *Dashboard) run(parent context.Context, location models.Location, search searchFunc) (models.Results, error) {
	log := d.logger.With(
		zap.String("search_id", uuid.NewString()),
		zap.Stringer("location", location),
	)
	ctx, generation := d.begin(parent)
	log.Debug("search started", zap.Uint64("generation", generation))

	start := time.Now()
	results, err := search(ctx, log)
	return d.finish(generation, log.With(zap.Duration("elapsed", time.Since(start))), results, err)
}

// begin supersedes any in-flight search and enters Loading
func (d *Dashboard) begin(parent context.Context) (context.Context, uint64) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel
	d.generation++
	d.stopDismissLocked()

	d.state = Loading
	d.presenter.ShowLoading()
	return ctx, d.generation
}

func (d *Dashboard) finish(generation uint64, log *zap.Logger, results models.Results, err error) (models.Results, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if generation != d.generation {
		log.Debug("discarding superseded search", zap.NamedError("outcome", err))
		return models.Results{}, ErrSuperseded
	}
	d.cancel()
	d.cancel = nil

	if err != nil {
		log.Info("search failed", zap.Error(err))
		d.failLocked(err)
		return models.Results{}, err
	}

	d.state = Success
	d.presenter.ShowResults(results)
	log.Info("search complete",
		zap.Int("daily", len(results.Daily)),
		zap.Int("hourly", len(results.Hourly)),
	)
	return results, nil
}

// reject reports an input error without starting a search.
// A search already in flight keeps the presenter and its Loading state.
func (d *Dashboard) reject(err error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.state == Loading {
		d.logger.Debug("search rejected while another is in flight", zap.Error(err))
		return
	}
	d.logger.Debug("search rejected", zap.Error(err))
	d.failLocked(err)
}

func (d *Dashboard) failLocked(err error) {
	d.state = Failed
	d.presenter.ShowError(UserMessage(err))

	d.stopDismissLocked()
	generation := d.generation
	d.dismissTimer = time.AfterFunc(d.errorDisplay, func() {
		d.dismiss(generation)
	})
}

func (d *Dashboard) dismiss(generation uint64) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if generation != d.generation || d.state != Failed {
		return
	}
	d.state = Idle
	d.dismissTimer = nil
	d.presenter.DismissError()
}

func (d *Dashboard) stopDismissLocked() {
	if d.dismissTimer != nil {
		d.dismissTimer.Stop()
		d.dismissTimer = nil
	}
}

// aggregate fetches whatever is still missing for coords and joins it all-or-nothing.
// When current is nil it is fetched by coordinates alongside the forecast.
// One forecast fetch feeds both the daily and the hourly summaries.
func (d *Dashboard) aggregate(ctx context.Context, log *zap.Logger, location models.Location, coords models.Coordinates, current *models.CurrentWeatherPayload) (models.Results, error) {
	g, gctx := errgroup.WithContext(ctx)

	if current == nil {
		current = &models.CurrentWeatherPayload{}
		g.Go(func() error {
			payload, err := d.client.FetchCurrentByCoords(gctx, coords.Lat, coords.Lon)
			if err != nil {
				return fmt.Errorf("current weather: %w", err)
			}
			*current = payload
			return nil
		})
	}

	var forecast models.ForecastPayload
	g.Go(func() error {
		payload, err := d.client.FetchForecast(gctx, coords.Lat, coords.Lon)
		if err != nil {
			if gctx.Err() == nil {
				log.Warn("forecast fetch failed", zap.Error(err))
			}
			return fmt.Errorf("forecast: %w", err)
		}
		forecast = payload
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.Results{}, err
	}

	loc := d.timezone(coords.Lat, coords.Lon, current.Timezone)
	return models.Results{
		Location: location,
		Current:  mapper.ToCurrentConditions(*current, loc),
		Daily:    mapper.ToDailySummaries(forecast.List, loc),
		Hourly:   mapper.ToHourlySummaries(forecast.List, loc),
		Updated:  time.Now(),
	}, nil
}
