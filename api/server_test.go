package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"weather-dashboard/dashboard"
	"weather-dashboard/datasource"
	"weather-dashboard/geo"
	"weather-dashboard/models"

	"go.uber.org/zap/zaptest"
)

const londonJSON = `{
	"name": "London",
	"coord": {"lat": 51.5085, "lon": -0.1257},
	"sys": {"country": "GB"},
	"weather": [{"id": 800, "main": "Clear", "description": "clear sky", "icon": "01d"}],
	"main": {"temp": 15.4, "feels_like": 14.9, "humidity": 70, "pressure": 1012},
	"wind": {"speed": 3.1, "deg": 240},
	"visibility": 10000,
	"dt": 1717416000,
	"timezone": 0
}`

// owmStub imitates the two upstream endpoints
type owmStub struct {
	forecastStatus int
}

func (o *owmStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch r.URL.Path {
	case "/weather":
		if q.Get("q") == "Atlantis" {
			http.Error(w, `{"cod":"404","message":"city not found"}`, http.StatusNotFound)
			return
		}
		w.Write([]byte(londonJSON))
	case "/forecast":
		if o.forecastStatus != 0 {
			w.WriteHeader(o.forecastStatus)
			return
		}
		json.NewEncoder(w).Encode(forecastBody(40))
	default:
		http.NotFound(w, r)
	}
}

func forecastBody(n int) models.ForecastPayload {
	var p models.ForecastPayload
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		at := start.Add(time.Duration(i) * 3 * time.Hour)
		p.List = append(p.List, models.ForecastEntry{
			Dt:      at.Unix(),
			DtTxt:   at.Format("2006-01-02 15:04:05"),
			Main:    models.MainReadings{Temp: 12.5},
			Weather: []models.Condition{{Icon: "10d", Description: "light rain"}},
		})
	}
	return p
}

type testEnv struct {
	board   *Board
	server  *Server
	stub    *owmStub
	handler http.Handler
}

func newTestEnv(t *testing.T, locator geo.Locator) *testEnv {
	t.Helper()
	stub := &owmStub{}
	upstream := httptest.NewServer(stub)
	t.Cleanup(upstream.Close)

	logger := zaptest.NewLogger(t)
	client := datasource.NewOpenWeatherMapClient("test-key", upstream.URL, 2*time.Second, logger)
	board := NewBoard()
	dash := dashboard.New(client, board,
		dashboard.WithLogger(logger),
		dashboard.WithErrorDisplay(time.Hour),
		dashboard.WithTimezone(func(lat, lon float64, offset int) *time.Location { return time.UTC }),
	)
	t.Cleanup(dash.Close)

	server := NewServer(board, dash, locator, 0, logger)
	return &testEnv{board: board, server: server, stub: stub, handler: server.Handler()}
}

func (e *testEnv) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeResults(t *testing.T, rec *httptest.ResponseRecorder) models.Results {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var results models.Results
	if err := json.NewDecoder(rec.Body).Decode(&results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	return results
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestSearchByName(t *testing.T) {
	env := newTestEnv(t, nil)

	results := decodeResults(t, env.postForm("/api/search", url.Values{"city": {"London"}}))
	if got := results.Current.Title(); got != "London, GB" {
		t.Errorf("title = %q; want London, GB", got)
	}
	if results.Current.Temperature != 15 {
		t.Errorf("temperature = %d; want 15", results.Current.Temperature)
	}
	if len(results.Daily) != 5 || len(results.Hourly) != 8 {
		t.Errorf("daily/hourly = %d/%d; want 5/8", len(results.Daily), len(results.Hourly))
	}
	if results.Daily[0].Temperature != "13°C" {
		t.Errorf("daily temperature = %q; want 13°C", results.Daily[0].Temperature)
	}

	snapshot := env.board.Snapshot()
	if snapshot.State != "success" || !snapshot.ShowContent || snapshot.Results == nil {
		t.Errorf("snapshot = %+v; want success with content", snapshot)
	}
}

func TestSearchByName_JSON(t *testing.T) {
	env := newTestEnv(t, nil)

	results := decodeResults(t, env.postJSON("/api/search", `{"city": "  London "}`))
	if results.Location.Name != "London" {
		t.Errorf("location = %+v; want trimmed London", results.Location)
	}
}

func TestSearchByName_failures(t *testing.T) {
	tests := []struct {
		name       string
		city       string
		wantStatus int
		wantError  string
	}{
		{"blank", "   ", http.StatusBadRequest, "Please enter a city name"},
		{"missing", "", http.StatusBadRequest, "Please enter a city name"},
		{"unknown", "Atlantis", http.StatusNotFound, "City not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			rec := env.postForm("/api/search", url.Values{"city": {tt.city}})
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d; want %d", rec.Code, tt.wantStatus)
			}
			if got := errorMessage(t, rec); got != tt.wantError {
				t.Errorf("error = %q; want %q", got, tt.wantError)
			}
			snapshot := env.board.Snapshot()
			if snapshot.State != "failed" || snapshot.Error != tt.wantError || snapshot.ShowContent {
				t.Errorf("snapshot = %+v", snapshot)
			}
		})
	}
}

func TestSearch_forecastFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	env.stub.forecastStatus = http.StatusInternalServerError

	rec := env.postForm("/api/search", url.Values{"city": {"London"}})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d; want 502", rec.Code)
	}
	if got := errorMessage(t, rec); got != "Unable to fetch forecast data" {
		t.Errorf("error = %q", got)
	}
	if env.board.Snapshot().ShowContent {
		t.Error("content shown after a failed search")
	}
}

func TestSearchByCoords(t *testing.T) {
	env := newTestEnv(t, nil)

	results := decodeResults(t, env.postForm("/api/search/coords", url.Values{"lat": {"51.5"}, "lon": {"-0.12"}}))
	if !results.Location.IsCoords() {
		t.Fatalf("location = %+v; want coordinates", results.Location)
	}
	if results.Location.Coords.Lat != 51.5 || results.Location.Coords.Lon != -0.12 {
		t.Errorf("coords = %+v; want 51.5,-0.12", *results.Location.Coords)
	}
	if results.Current.Place != "London" {
		t.Errorf("place = %q; want London", results.Current.Place)
	}
}

func TestSearchByCoords_invalid(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, values := range []url.Values{
		{"lat": {"51.5"}},
		{"lat": {"abc"}, "lon": {"1"}},
		{"lat": {"91"}, "lon": {"0"}},
	} {
		rec := env.postForm("/api/search/coords", values)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%v: status = %d; want 400", values, rec.Code)
		}
	}
	if got := env.board.Snapshot().State; got != "idle" {
		t.Errorf("state = %q; rejected requests must not reach the dashboard", got)
	}
}

func TestSearchByGeolocation(t *testing.T) {
	const denied = "Unable to get your location. Please enable location services."
	tests := []struct {
		name       string
		locator    geo.Locator
		body       string
		wantStatus int
		wantError  string
	}{
		{"browser position", nil, `{"lat": 35.68, "lon": 139.69}`, http.StatusOK, ""},
		{"browser denied", nil, `{"error": "User denied Geolocation"}`, http.StatusUnprocessableEntity, denied},
		{"server locator", geo.StaticLocator{Coords: models.Coordinates{Lat: 1, Lon: 2}}, `{}`, http.StatusOK, ""},
		{"no locator", nil, `{}`, http.StatusUnprocessableEntity, "Geolocation is not supported by your browser"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.locator)
			rec := env.postJSON("/api/search/geolocation", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d; want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantError != "" {
				if got := errorMessage(t, rec); got != tt.wantError {
					t.Errorf("error = %q; want %q", got, tt.wantError)
				}
			}
		})
	}
}

func TestGetWeather(t *testing.T) {
	env := newTestEnv(t, nil)
	env.postForm("/api/search", url.Values{"city": {"London"}})

	rec := env.get("/api/weather")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	var snapshot Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snapshot); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snapshot.State != "success" || snapshot.Results == nil || snapshot.Results.Current.Place != "London" {
		t.Errorf("snapshot = %+v", snapshot)
	}
}

func TestGetWeather_failureDropsResults(t *testing.T) {
	env := newTestEnv(t, nil)
	env.postForm("/api/search", url.Values{"city": {"London"}})
	env.postForm("/api/search", url.Values{"city": {"Atlantis"}})

	rec := env.get("/api/weather")
	if strings.Contains(rec.Body.String(), `"daily"`) {
		t.Errorf("body still carries summaries after a failed search: %s", rec.Body.String())
	}
	var snapshot Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snapshot); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snapshot.State != "failed" || snapshot.Error != "City not found" || snapshot.Results != nil {
		t.Errorf("snapshot = %+v", snapshot)
	}
}

func TestIndex(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.get("/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "5-Day Forecast") {
		t.Error("empty board rendered forecast sections")
	}

	env.postForm("/api/search", url.Values{"city": {"London"}})
	body := env.get("/").Body.String()
	for _, want := range []string{"London, GB", "15°C", "UV index: N/A", "https://openweathermap.org/img/wn/01d@4x.png"} {
		if !strings.Contains(body, want) {
			t.Errorf("page is missing %q", want)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.get("/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, nil)

	if rec := env.get("/api/search"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/search status = %d; want 405", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", models.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("x: %w", models.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", models.ErrGeolocation), http.StatusUnprocessableEntity},
		{dashboard.ErrSuperseded, http.StatusConflict},
		{context.Canceled, http.StatusServiceUnavailable},
		{&models.FetchError{Endpoint: "forecast", StatusCode: 500}, http.StatusBadGateway},
		{errors.New("other"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d; want %d", tt.err, got, tt.want)
		}
	}
}
