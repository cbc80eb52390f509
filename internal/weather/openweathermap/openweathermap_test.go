package openweathermap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/krishivoice/internal/config"
	"github.com/nadzzz/krishivoice/internal/weather"
)

const currentJSON = `{
  "coord": {"lon": 80.27, "lat": 13.08},
  "weather": [{"description": "light rain", "icon": "10d"}],
  "main": {"temp": 29.6, "pressure": 1006, "humidity": 74},
  "visibility": 8000,
  "wind": {"speed": 4.6},
  "clouds": {"all": 75},
  "sys": {"country": "IN", "sunrise": 1700000000, "sunset": 1700043000},
  "name": "Chennai"
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(config.WeatherConfig{
		APIKey:  "owm-key",
		BaseURL: srv.URL + "/data/2.5",
		GeoURL:  srv.URL + "/geo/1.0",
		Timeout: time.Second,
	})
}

func TestCurrent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "Chennai", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "owm-key", r.URL.Query().Get("appid"))
		_, _ = w.Write([]byte(currentJSON))
	})

	got, err := c.Current(context.Background(), "Chennai")
	require.NoError(t, err)
	assert.Equal(t, &weather.Current{
		City:        "Chennai",
		Country:     "IN",
		Temperature: 30,
		Description: "light rain",
		Icon:        "10d",
		Humidity:    74,
		Pressure:    1006,
		WindSpeed:   4.6,
		Cloudiness:  75,
		Visibility:  8000,
		Sunrise:     1700000000,
		Sunset:      1700043000,
		Coordinates: weather.Coordinates{Lat: 13.08, Lon: 80.27},
	}, got)
}

func TestCurrentAt(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "13.08", r.URL.Query().Get("lat"))
		assert.Equal(t, "80.27", r.URL.Query().Get("lon"))
		_, _ = w.Write([]byte(currentJSON))
	})

	got, err := c.CurrentAt(context.Background(), 13.08, 80.27)
	require.NoError(t, err)
	assert.Equal(t, "Chennai", got.City)
}

func TestForecast(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/forecast", r.URL.Path)
		_, _ = w.Write([]byte(`{
		  "city": {"name": "Pune", "country": "IN"},
		  "list": [
		    {"dt": 1, "main": {"temp": 24.4, "humidity": 60}, "weather": [{"description": "clear sky", "icon": "01d"}], "wind": {"speed": 2}, "clouds": {"all": 0}},
		    {"dt": 2, "main": {"temp": 25.5, "humidity": 58}, "weather": [], "wind": {"speed": 3}, "clouds": {"all": 10}}
		  ]
		}`))
	})

	got, err := c.Forecast(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, "Pune", got.City)
	require.Len(t, got.Forecast, 2)
	assert.Equal(t, weather.ForecastEntry{Datetime: 1, Temperature: 24, Description: "clear sky", Icon: "01d", Humidity: 60, WindSpeed: 2}, got.Forecast[0])
	assert.Equal(t, 26, got.Forecast[1].Temperature)
	assert.Empty(t, got.Forecast[1].Description)
}

func TestSearchAndReverse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/geo/1.0/direct":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`[{"name":"Madurai","country":"IN","state":"Tamil Nadu","lat":9.92,"lon":78.12,"local_names":{"ta":"மதுரை"}}]`))
		case "/geo/1.0/reverse":
			if r.URL.Query().Get("lat") == "0" {
				_, _ = w.Write([]byte(`[]`))
				return
			}
			_, _ = w.Write([]byte(`[{"name":"Madurai","country":"IN","lat":9.92,"lon":78.12}]`))
		default:
			http.NotFound(w, r)
		}
	})

	places, err := c.Search(context.Background(), "madu")
	require.NoError(t, err)
	assert.Equal(t, []weather.Place{{Name: "Madurai", Country: "IN", State: "Tamil Nadu", Lat: 9.92, Lon: 78.12}}, places)

	p, err := c.Reverse(context.Background(), 9.92, 78.12)
	require.NoError(t, err)
	assert.Equal(t, "Madurai", p.Name)

	_, err = c.Reverse(context.Background(), 0, 0)
	assert.ErrorIs(t, err, weather.ErrNotFound)
}

func TestErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "Atlantis" {
			http.Error(w, `{"cod":"404","message":"city not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"cod":401}`, http.StatusUnauthorized)
	})

	_, err := c.Current(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, weather.ErrNotFound)

	_, err = c.Forecast(context.Background(), "Pune")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.NotContains(t, err.Error(), "owm-key")
}
