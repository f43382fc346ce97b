// Package mapper turns raw OpenWeatherMap payloads into display view-models.
// Every function is pure: the same payload always yields the same view-model.
package mapper

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"weather-dashboard/models"
)

const (
	// NotAvailable marks values the current weather endpoint does not provide
	NotAvailable = "N/A"

	// NoonMarker selects one forecast entry per day
	NoonMarker = "12:00:00"

	MaxDailySummaries  = 5
	MaxHourlySummaries = 8 // 8 x 3 hours

	iconBaseURL = "https://openweathermap.org/img/wn"
)

// IconURL maps an icon identifier to the provider's hosted image at the given scale (2 or 4)
func IconURL(icon string, scale int) string {
	if icon == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s@%dx.png", iconBaseURL, icon, scale)
}

// ToCurrentConditions maps a current weather payload. loc only affects the date labels; nil means UTC.
func ToCurrentConditions(p models.CurrentWeatherPayload, loc *time.Location) models.CurrentConditions {
	loc = orUTC(loc)
	cond := p.PrimaryCondition()
	observed := time.Unix(p.Dt, 0).In(loc)

	return models.CurrentConditions{
		Place:       p.Name,
		Country:     p.Sys.Country,
		ObservedAt:  observed,
		Date:        observed.Format("Monday, January 2, 2006"),
		Description: cond.Description,
		Icon:        cond.Icon,
		IconURL:     IconURL(cond.Icon, 4),
		Temperature: Round(p.Main.Temp),
		FeelsLike:   Celsius(p.Main.FeelsLike),
		Humidity:    fmt.Sprintf("%d%%", p.Main.Humidity),
		WindSpeed:   strconv.FormatFloat(p.Wind.Speed, 'f', -1, 64) + " m/s",
		Pressure:    fmt.Sprintf("%d hPa", p.Main.Pressure),
		Visibility:  fmt.Sprintf("%.1f km", float64(p.Visibility)/1000),
		UVIndex:     NotAvailable,
	}
}

// ToDailySummaries keeps the entries whose dt_txt carries the noon marker,
// at most MaxDailySummaries of them, in list order.
func ToDailySummaries(list []models.ForecastEntry, loc *time.Location) []models.DailySummary {
	loc = orUTC(loc)
	days := make([]models.DailySummary, 0, MaxDailySummaries)
	for _, entry := range list {
		if len(days) == MaxDailySummaries {
			break
		}
		if !strings.Contains(entry.DtTxt, NoonMarker) {
			continue
		}
		cond := entry.PrimaryCondition()
		date := time.Unix(entry.Dt, 0).In(loc)
		days = append(days, models.DailySummary{
			Date:        date,
			Day:         date.Format("Mon"),
			Icon:        cond.Icon,
			IconURL:     IconURL(cond.Icon, 2),
			Description: cond.Description,
			Temperature: Celsius(entry.Main.Temp),
		})
	}
	return days
}

// ToHourlySummaries takes the first MaxHourlySummaries entries unfiltered
func ToHourlySummaries(list []models.ForecastEntry, loc *time.Location) []models.HourlySummary {
	loc = orUTC(loc)
	n := min(len(list), MaxHourlySummaries)
	hours := make([]models.HourlySummary, 0, n)
	for _, entry := range list[:n] {
		cond := entry.PrimaryCondition()
		at := time.Unix(entry.Dt, 0).In(loc)
		hours = append(hours, models.HourlySummary{
			Time:        at,
			Label:       at.Format("3 PM"),
			Icon:        cond.Icon,
			IconURL:     IconURL(cond.Icon, 2),
			Description: cond.Description,
			Temperature: Celsius(entry.Main.Temp),
		})
	}
	return hours
}

// Round rounds half-up, so -2.5 becomes -2 and 2.5 becomes 3
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Celsius renders a temperature as a rounded "15°C" label
func Celsius(v float64) string {
	return fmt.Sprintf("%d°C", Round(v))
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
