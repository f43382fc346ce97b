package models

import (
	"time"
)

// Coordinates is a latitude/longitude pair in decimal degrees
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location identifies where weather is requested: either a place name or a coordinate pair
type Location struct {
	Name   string       `json:"name,omitempty"`
	Coords *Coordinates `json:"coords,omitempty"`
}

// NamedLocation builds a Location from a free-text place name
func NamedLocation(name string) Location {
	return Location{Name: name}
}

// CoordLocation builds a Location from a coordinate pair
func CoordLocation(lat, lon float64) Location {
	return Location{Coords: &Coordinates{Lat: lat, Lon: lon}}
}

// IsCoords reports whether the location is a coordinate pair
func (l Location) IsCoords() bool {
	return l.Coords != nil
}

// String renders the location for logs
func (l Location) String() string {
	if l.Coords != nil {
		return l.Coords.String()
	}
	return l.Name
}

func (c Coordinates) String() string {
	return formatCoord(c.Lat) + "," + formatCoord(c.Lon)
}

// Condition is one entry of the payload's "weather" array
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// MainReadings is the payload's "main" block
type MainReadings struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  int     `json:"humidity"`
	Pressure  int     `json:"pressure"`
}

// Wind is the payload's "wind" block
type Wind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
}

// CurrentWeatherPayload is the decoded body of the current weather endpoint
type CurrentWeatherPayload struct {
	Name  string      `json:"name"`
	Coord Coordinates `json:"coord"`
	Sys   struct {
		Country string `json:"country"`
	} `json:"sys"`
	Weather    []Condition  `json:"weather"`
	Main       MainReadings `json:"main"`
	Wind       Wind         `json:"wind"`
	Visibility int          `json:"visibility"`
	Dt         int64        `json:"dt"`
	Timezone   int          `json:"timezone"` // shift in seconds from UTC
}

// PrimaryCondition returns the first weather condition, or a zero value if there is none
func (p CurrentWeatherPayload) PrimaryCondition() Condition {
	if len(p.Weather) > 0 {
		return p.Weather[0]
	}
	return Condition{}
}

// CurrentConditions is the display view-model for the current weather panel
type CurrentConditions struct {
	Place       string    `json:"place"`
	Country     string    `json:"country"`
	ObservedAt  time.Time `json:"observedAt"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	IconURL     string    `json:"iconUrl"`
	Temperature int       `json:"temperature"` // °C, rounded
	FeelsLike   string    `json:"feelsLike"`
	Humidity    string    `json:"humidity"`
	WindSpeed   string    `json:"windSpeed"`
	Pressure    string    `json:"pressure"`
	Visibility  string    `json:"visibility"`
	UVIndex     string    `json:"uvIndex"`
}

// Title is the "Place, CC" heading
func (c CurrentConditions) Title() string {
	if c.Country == "" {
		return c.Place
	}
	return c.Place + ", " + c.Country
}
