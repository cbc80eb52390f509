// Package weather provides current conditions, forecasts and geocoding for
// the farmer-facing weather screens.
package weather

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the city or location is unknown upstream.
var ErrNotFound = errors.New("location not found")

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Current is the present weather at one place.
type Current struct {
	City        string      `json:"city"`
	Country     string      `json:"country"`
	Temperature int         `json:"temperature"` // °C, rounded
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Humidity    int         `json:"humidity"`  // %
	Pressure    int         `json:"pressure"`  // hPa
	WindSpeed   float64     `json:"windSpeed"` // m/s
	Cloudiness  int         `json:"cloudiness"`
	Visibility  int         `json:"visibility"` // metres
	Sunrise     int64       `json:"sunrise"`    // unix seconds
	Sunset      int64       `json:"sunset"`
	Coordinates Coordinates `json:"coordinates"`
}

// ForecastEntry is one forecast step.
type ForecastEntry struct {
	Datetime    int64   `json:"datetime"`
	Temperature int     `json:"temperature"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Cloudiness  int     `json:"cloudiness"`
}

// Forecast is the multi-day outlook for a city.
type Forecast struct {
	City     string          `json:"city"`
	Country  string          `json:"country"`
	Forecast []ForecastEntry `json:"forecast"`
}

// Place is a geocoding match.
type Place struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Reverser names the place at a pair of coordinates.
type Reverser interface {
	Reverse(ctx context.Context, lat, lon float64) (*Place, error)
}

// Provider is a source of weather data.
type Provider interface {
	// Name returns the provider identifier (e.g., "openweathermap", "demo").
	Name() string

	// Current returns the weather in city.
	Current(ctx context.Context, city string) (*Current, error)

	// CurrentAt returns the weather at the given coordinates.
	CurrentAt(ctx context.Context, lat, lon float64) (*Current, error)

	// Forecast returns the outlook for city.
	Forecast(ctx context.Context, city string) (*Forecast, error)

	// Search returns up to five places matching query.
	Search(ctx context.Context, query string) ([]Place, error)

	// Reverse names the place at the given coordinates.
	Reverse(ctx context.Context, lat, lon float64) (*Place, error)
}
