// Package geo resolves where the user is and which clock to show them.
package geo

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/zsefvlol/timezonemapper"
)

// TimezoneFor returns the IANA zone containing (lat, lon). When the point maps
// to no loadable zone, a fixed zone built from offsetSeconds is used instead.
func TimezoneFor(lat, lon float64, offsetSeconds int) *time.Location {
	if name := timezonemapper.LatLngToTimezoneString(lat, lon); name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if offsetSeconds == 0 {
		return time.UTC
	}
	return time.FixedZone(offsetName(offsetSeconds), offsetSeconds)
}

func offsetName(seconds int) string {
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}
