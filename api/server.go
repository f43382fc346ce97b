package api

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"weather-dashboard/dashboard"
	"weather-dashboard/geo"
	"weather-dashboard/models"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Searcher runs dashboard searches; *dashboard.Dashboard implements it
type Searcher interface {
	SearchByName(ctx context.Context, name string) (models.Results, error)
	SearchByCoords(ctx context.Context, lat, lon float64) (models.Results, error)
	SearchByGeolocation(ctx context.Context, locator geo.Locator) (models.Results, error)
}

// Server is the HTTP presentation surface of the dashboard
type Server struct {
	board    *Board
	searcher Searcher
	locator  geo.Locator
	server   *http.Server
	logger   *zap.Logger
}

// NewServer creates a new API server.
// locator serves geolocation requests that carry no browser position; it may be nil.
func NewServer(board *Board, searcher Searcher, locator geo.Locator, port int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()

	server := &Server{
		board:    board,
		searcher: searcher,
		locator:  locator,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.Named("api"),
	}

	mux.HandleFunc("GET /{$}", server.handleIndex)

	// Searches
	mux.HandleFunc("POST /api/search", server.handleSearchByName)
	mux.HandleFunc("POST /api/search/coords", server.handleSearchByCoords)
	mux.HandleFunc("POST /api/search/geolocation", server.handleSearchByGeolocation)

	// Current view
	mux.HandleFunc("GET /api/weather", server.handleGetWeather)

	// Health check
	mux.HandleFunc("GET /api/health", server.handleHealthCheck)

	return server
}

// Handler exposes the routes, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins the API server
func (s *Server) Start() error {
	s.logger.Info("starting API server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type searchRequest struct {
	City  string   `mapstructure:"city"`
	Lat   *float64 `mapstructure:"lat"`
	Lon   *float64 `mapstructure:"lon"`
	Error string   `mapstructure:"error"`
}

// decodeRequest accepts a JSON object or form values (query string included)
func decodeRequest(r *http.Request, out *searchRequest) error {
	input := map[string]interface{}{}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("invalid form: %w", err)
		}
		for key, values := range r.Form {
			if len(values) > 0 && values[0] != "" {
				input[key] = values[0]
			}
		}
	}
	if err := mapstructure.WeakDecode(input, out); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

func (r searchRequest) coords() (models.Coordinates, error) {
	if r.Lat == nil || r.Lon == nil {
		return models.Coordinates{}, errors.New("lat and lon are required")
	}
	if *r.Lat < -90 || *r.Lat > 90 || *r.Lon < -180 || *r.Lon > 180 {
		return models.Coordinates{}, errors.New("lat or lon out of range")
	}
	return models.Coordinates{Lat: *r.Lat, Lon: *r.Lon}, nil
}

// handleSearchByName handles POST /api/search with a "city" parameter
func (s *Server) handleSearchByName(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	results, err := s.searcher.SearchByName(r.Context(), req.City)
	s.writeOutcome(w, results, err)
}

// handleSearchByCoords handles POST /api/search/coords with "lat" and "lon"
func (s *Server) handleSearchByCoords(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	coords, err := req.coords()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	results, err := s.searcher.SearchByCoords(r.Context(), coords.Lat, coords.Lon)
	s.writeOutcome(w, results, err)
}

// handleSearchByGeolocation bridges the browser's geolocation callback:
// either a position ("lat", "lon") or a failure ("error"). With neither,
// the server-side locator is used.
func (s *Server) handleSearchByGeolocation(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var locator geo.Locator
	switch {
	case req.Error != "":
		locator = geo.Denied(req.Error)
	case req.Lat != nil || req.Lon != nil:
		coords, err := req.coords()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		locator = geo.StaticLocator{Coords: coords}
	case s.locator != nil:
		locator = s.locator
	default:
		locator = geo.Unsupported()
	}

	results, err := s.searcher.SearchByGeolocation(r.Context(), locator)
	s.writeOutcome(w, results, err)
}

// handleGetWeather returns the board as JSON
func (s *Server) handleGetWeather(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.board.Snapshot())
}

// handleIndex renders the dashboard page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snapshot := s.board.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.ExecuteTemplate(w, "index.html", pageData{
		Snapshot:          snapshot,
		ErrorDismissAfter: dashboard.ErrorDisplayDuration.Milliseconds(),
	}); err != nil {
		s.logger.Error("failed to render page", zap.Error(err))
	}
}

type pageData struct {
	Snapshot
	ErrorDismissAfter int64
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) writeOutcome(w http.ResponseWriter, results models.Results, err error) {
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Warn("search failed", zap.Error(err), zap.Int("status", status))
		}
		writeError(w, status, dashboard.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// statusFor maps a search error to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrGeolocation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dashboard.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
