package models

import (
	"strconv"
	"time"
)

// ForecastEntry is one 3-hour step of the forecast payload
type ForecastEntry struct {
	Dt      int64        `json:"dt"`
	DtTxt   string       `json:"dt_txt"`
	Main    MainReadings `json:"main"`
	Weather []Condition  `json:"weather"`
	Wind    Wind         `json:"wind"`
}

// PrimaryCondition returns the first weather condition, or a zero value if there is none
func (e ForecastEntry) PrimaryCondition() Condition {
	if len(e.Weather) > 0 {
		return e.Weather[0]
	}
	return Condition{}
}

// ForecastPayload is the decoded body of the 5 day / 3 hour forecast endpoint
type ForecastPayload struct {
	City struct {
		Name     string      `json:"name"`
		Country  string      `json:"country"`
		Coord    Coordinates `json:"coord"`
		Timezone int         `json:"timezone"`
	} `json:"city"`
	List []ForecastEntry `json:"list"`
}

// DailySummary is one card of the multi-day forecast
type DailySummary struct {
	Date        time.Time `json:"date"`
	Day         string    `json:"day"`
	Icon        string    `json:"icon"`
	IconURL     string    `json:"iconUrl"`
	Description string    `json:"description"`
	Temperature string    `json:"temperature"`
}

// HourlySummary is one card of the hourly forecast
type HourlySummary struct {
	Time        time.Time `json:"time"`
	Label       string    `json:"label"`
	Icon        string    `json:"icon"`
	IconURL     string    `json:"iconUrl"`
	Description string    `json:"description"`
	Temperature string    `json:"temperature"`
}

// Results is everything one successful search produces
type Results struct {
	Location Location          `json:"location"`
	Current  CurrentConditions `json:"current"`
	Daily    []DailySummary    `json:"daily"`
	Hourly   []HourlySummary   `json:"hourly"`
	Updated  time.Time         `json:"updated"`
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
