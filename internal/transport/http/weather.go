package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nadzzz/krishivoice/internal/weather"
)

// handleCurrent processes a GET /api/weather/current/{city} request.
//
// @Summary     Current weather in a city
// @Tags        weather
// @Produce     json
// @Param       city  path      string  true  "City name"
// @Success     200   {object}  weather.Current
// @Failure     404   {object}  ErrorResponse  "City not found"
// @Failure     500   {object}  ErrorResponse  "Upstream failure"
// @Router      /api/weather/current/{city} [get]
func (t *Transport) handleCurrent(w http.ResponseWriter, r *http.Request) {
	cur, err := t.deps.Weather.Current(r.Context(), r.PathValue("city"))
	respond(w, cur, err, "City not found", "Failed to fetch weather data")
}

// handleForecast processes a GET /api/weather/forecast/{city} request.
//
// @Summary     Five-day forecast for a city
// @Tags        weather
// @Produce     json
// @Param       city  path      string  true  "City name"
// @Success     200   {object}  weather.Forecast
// @Failure     404   {object}  ErrorResponse  "City not found"
// @Failure     500   {object}  ErrorResponse  "Upstream failure"
// @Router      /api/weather/forecast/{city} [get]
func (t *Transport) handleForecast(w http.ResponseWriter, r *http.Request) {
	fc, err := t.deps.Weather.Forecast(r.Context(), r.PathValue("city"))
	respond(w, fc, err, "City not found", "Failed to fetch forecast data")
}

// handleSearch processes a GET /api/weather/search/{query} request.
//
// @Summary     City suggestions
// @Tags        weather
// @Produce     json
// @Param       query  path     string  true  "City name prefix"
// @Success     200    {array}  weather.Place
// @Failure     500    {object} ErrorResponse  "Upstream failure"
// @Router      /api/weather/search/{query} [get]
func (t *Transport) handleSearch(w http.ResponseWriter, r *http.Request) {
	places, err := t.deps.Weather.Search(r.Context(), r.PathValue("query"))
	if places == nil {
		places = []weather.Place{}
	}
	respond(w, places, err, "No cities found", "Failed to search cities")
}

// handleCoordinates processes a GET /api/weather/coordinates/{lat}/{lon} request.
//
// @Summary     Current weather at coordinates
// @Tags        weather
// @Produce     json
// @Param       lat  path      number  true  "Latitude"
// @Param       lon  path      number  true  "Longitude"
// @Success     200  {object}  weather.Current
// @Failure     400  {object}  ErrorResponse  "Invalid coordinates"
// @Failure     500  {object}  ErrorResponse  "Upstream failure"
// @Router      /api/weather/coordinates/{lat}/{lon} [get]
func (t *Transport) handleCoordinates(w http.ResponseWriter, r *http.Request) {
	t.atCoordinates(w, r, t.deps.Weather.CurrentAt)
}

// handleReverse processes a GET /api/weather/reverse-geocode/{lat}/{lon} request.
//
// @Summary     Name the place at coordinates
// @Tags        weather
// @Produce     json
// @Param       lat  path      number  true  "Latitude"
// @Param       lon  path      number  true  "Longitude"
// @Success     200  {object}  weather.Place
// @Failure     400  {object}  ErrorResponse  "Invalid coordinates"
// @Failure     404  {object}  ErrorResponse  "Location not found"
// @Failure     500  {object}  ErrorResponse  "Upstream failure"
// @Router      /api/weather/reverse-geocode/{lat}/{lon} [get]
func (t *Transport) handleReverse(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := coordinates(w, r)
	if !ok {
		return
	}
	place, err := t.deps.Weather.Reverse(r.Context(), lat, lon)
	respond(w, place, err, "Location not found", "Failed to get location details")
}

// handleDemoCurrent processes a GET /api/weather/demo/{city} request.
//
// @Summary     Demo weather in a city
// @Description Made-up weather for screens running without an API key.
// @Tags        weather
// @Produce     json
// @Param       city  path      string  true  "City name"
// @Success     200   {object}  weather.Current
// @Router      /api/weather/demo/{city} [get]
func (t *Transport) handleDemoCurrent(w http.ResponseWriter, r *http.Request) {
	cur, err := t.deps.Demo.Current(r.Context(), r.PathValue("city"))
	respond(w, cur, err, "City not found", "Failed to fetch weather data")
}

// handleDemoCoordinates processes a GET /api/weather/demo/coordinates/{lat}/{lon} request.
//
// @Summary     Demo weather at coordinates
// @Description Made-up weather; the place is named by reverse geocoding when available.
// @Tags        weather
// @Produce     json
// @Param       lat  path      number  true  "Latitude"
// @Param       lon  path      number  true  "Longitude"
// @Success     200  {object}  weather.Current
// @Failure     400  {object}  ErrorResponse  "Invalid coordinates"
// @Router      /api/weather/demo/coordinates/{lat}/{lon} [get]
func (t *Transport) handleDemoCoordinates(w http.ResponseWriter, r *http.Request) {
	t.atCoordinates(w, r, t.deps.Demo.CurrentAt)
}

func (t *Transport) atCoordinates(w http.ResponseWriter, r *http.Request,
	fetch func(ctx context.Context, lat, lon float64) (*weather.Current, error)) {
	lat, lon, ok := coordinates(w, r)
	if !ok {
		return
	}
	cur, err := fetch(r.Context(), lat, lon)
	respond(w, cur, err, "Location not found", "Failed to fetch weather data for location")
}

func coordinates(w http.ResponseWriter, r *http.Request) (lat, lon float64, ok bool) {
	lat, errLat := strconv.ParseFloat(r.PathValue("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.PathValue("lon"), 64)
	if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		writeError(w, http.StatusBadRequest, "Invalid coordinates")
		return 0, 0, false
	}
	return lat, lon, true
}

func respond(w http.ResponseWriter, v any, err error, notFound, failed string) {
	switch {
	case errors.Is(err, weather.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case err != nil:
		slog.Error("weather request failed", "error", err)
		writeError(w, http.StatusInternalServerError, failed)
	default:
		writeJSON(w, http.StatusOK, v)
	}
}
