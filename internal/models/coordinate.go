package models

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Coordinate is a latitude/longitude pair. Raw keeps the strings the user
// submitted so pages can echo them back unchanged.
type Coordinate struct {
	Lat    float64 `json:"-"`
	Lon    float64 `json:"-"`
	RawLat string  `json:"lat"`
	RawLon string  `json:"lon"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// ParseCoordinate parses one latitude/longitude pair and checks its range.
func ParseCoordinate(lat, lon string) (Coordinate, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("parse latitude %q: %w", lat, err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("parse longitude %q: %w", lon, err)
	}
	// Written as negated in-range checks so NaN is rejected.
	if !(la >= MinLatitude && la <= MaxLatitude) {
		return Coordinate{}, fmt.Errorf("latitude %v out of range", la)
	}
	if !(lo >= MinLongitude && lo <= MaxLongitude) {
		return Coordinate{}, fmt.Errorf("longitude %v out of range", lo)
	}
	return Coordinate{Lat: la, Lon: lo, RawLat: lat, RawLon: lon}, nil
}

// ValidateCoordinates reports whether both points parse as numbers within
// [-90, 90] latitude and [-180, 180] longitude.
func ValidateCoordinates(startLat, startLon, endLat, endLon string) bool {
	if _, err := ParseCoordinate(startLat, startLon); err != nil {
		return false
	}
	if _, err := ParseCoordinate(endLat, endLon); err != nil {
		return false
	}
	return true
}
