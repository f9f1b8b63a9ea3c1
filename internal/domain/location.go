package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidLocation = errors.New("invalid location")

// Immutable geographic position in decimal degrees.
type Location struct {
	Lat float64
	Lng float64
}

// Validate reports coordinates that are non-finite or outside the WGS84 ranges.
func (l Location) Validate() error {
	if math.IsNaN(l.Lat) || math.IsInf(l.Lat, 0) || math.IsNaN(l.Lng) || math.IsInf(l.Lng, 0) {
		return fmt.Errorf("%w: non-finite coordinate (%v, %v)", ErrInvalidLocation, l.Lat, l.Lng)
	}
	if l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidLocation, l.Lat)
	}
	if l.Lng < -180 || l.Lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidLocation, l.Lng)
	}
	return nil
}

// String renders the location as "lat,lng".
func (l Location) String() string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lng, 'f', -1, 64)
}

// ParseLocation parses a "lat,lng" pair.
func ParseLocation(s string) (Location, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Location{}, fmt.Errorf("%w: expected \"lat,lng\", got %q", ErrInvalidLocation, s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Location{}, fmt.Errorf("%w: latitude %q: %v", ErrInvalidLocation, parts[0], err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Location{}, fmt.Errorf("%w: longitude %q: %v", ErrInvalidLocation, parts[1], err)
	}

	loc := Location{Lat: lat, Lng: lng}
	if err := loc.Validate(); err != nil {
		return Location{}, err
	}
	return loc, nil
}

// LocationFromPair builds a Location from a [lat, lng] slice as sent by clients.
func LocationFromPair(pair []float64) (Location, error) {
	if len(pair) != 2 {
		return Location{}, fmt.Errorf("%w: expected [lat, lng], got %d values", ErrInvalidLocation, len(pair))
	}
	loc := Location{Lat: pair[0], Lng: pair[1]}
	if err := loc.Validate(); err != nil {
		return Location{}, err
	}
	return loc, nil
}

// Pair returns the location as [lat, lng].
func (l Location) Pair() []float64 { return []float64{l.Lat, l.Lng} }

// A stop to visit. Detail is opaque to the engine and passed through untouched.
type Destination struct {
	ID       string
	Location Location
	Detail   any
}
