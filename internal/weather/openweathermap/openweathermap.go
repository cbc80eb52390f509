// Package openweathermap implements weather.Provider over the
// OpenWeatherMap 2.5 data API and the 1.0 geocoding API, in metric units.
package openweathermap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nadzzz/krishivoice/internal/config"
	"github.com/nadzzz/krishivoice/internal/weather"
)

const (
	defaultBaseURL = "http://api.openweathermap.org/data/2.5"
	defaultGeoURL  = "http://api.openweathermap.org/geo/1.0"
)

// Client talks to OpenWeatherMap.
type Client struct {
	apiKey  string
	baseURL string
	geoURL  string
	client  *http.Client
}

// New creates a client from config.
func New(cfg config.WeatherConfig) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	geo := strings.TrimRight(cfg.GeoURL, "/")
	if geo == "" {
		geo = defaultGeoURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: base,
		geoURL:  geo,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string { return "openweathermap" }

// Current returns the weather in city.
func (c *Client) Current(ctx context.Context, city string) (*weather.Current, error) {
	var raw currentResponse
	if err := c.get(ctx, c.baseURL+"/weather", url.Values{"q": {city}, "units": {"metric"}}, &raw); err != nil {
		return nil, err
	}
	return raw.toCurrent(), nil
}

// CurrentAt returns the weather at the given coordinates.
func (c *Client) CurrentAt(ctx context.Context, lat, lon float64) (*weather.Current, error) {
	var raw currentResponse
	q := coords(lat, lon)
	q.Set("units", "metric")
	if err := c.get(ctx, c.baseURL+"/weather", q, &raw); err != nil {
		return nil, err
	}
	return raw.toCurrent(), nil
}

// Forecast returns the five-day, three-hourly outlook for city.
func (c *Client) Forecast(ctx context.Context, city string) (*weather.Forecast, error) {
	var raw forecastResponse
	if err := c.get(ctx, c.baseURL+"/forecast", url.Values{"q": {city}, "units": {"metric"}}, &raw); err != nil {
		return nil, err
	}

	out := &weather.Forecast{
		City:     raw.City.Name,
		Country:  raw.City.Country,
		Forecast: make([]weather.ForecastEntry, 0, len(raw.List)),
	}
	for _, item := range raw.List {
		desc, icon := item.Weather.first()
		out.Forecast = append(out.Forecast, weather.ForecastEntry{
			Datetime:    item.Dt,
			Temperature: int(math.Round(item.Main.Temp)),
			Description: desc,
			Icon:        icon,
			Humidity:    item.Main.Humidity,
			WindSpeed:   item.Wind.Speed,
			Cloudiness:  item.Clouds.All,
		})
	}
	return out, nil
}

// Search returns up to five places matching query.
func (c *Client) Search(ctx context.Context, query string) ([]weather.Place, error) {
	var raw []weather.Place
	if err := c.get(ctx, c.geoURL+"/direct", url.Values{"q": {query}, "limit": {"5"}}, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Reverse names the place at the given coordinates.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*weather.Place, error) {
	var raw []weather.Place
	q := coords(lat, lon)
	q.Set("limit", "1")
	if err := c.get(ctx, c.geoURL+"/reverse", q, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, weather.ErrNotFound
	}
	return &raw[0], nil
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values, out any) error {
	q.Set("appid", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Strip the URL, which carries the API key.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return fmt.Errorf("openweathermap request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return weather.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Debug("openweathermap error body", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("openweathermap failed (status %d)", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding openweathermap response: %w", err)
	}
	return nil
}

func coords(lat, lon float64) url.Values {
	return url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
}

type conditions []struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func (w conditions) first() (desc, icon string) {
	if len(w) == 0 {
		return "", ""
	}
	return w[0].Description, w[0].Icon
}

type currentResponse struct {
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
		Pressure int     `json:"pressure"`
	} `json:"main"`
	Weather conditions `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Visibility int `json:"visibility"`
}

func (r currentResponse) toCurrent() *weather.Current {
	desc, icon := r.Weather.first()
	return &weather.Current{
		City:        r.Name,
		Country:     r.Sys.Country,
		Temperature: int(math.Round(r.Main.Temp)),
		Description: desc,
		Icon:        icon,
		Humidity:    r.Main.Humidity,
		Pressure:    r.Main.Pressure,
		WindSpeed:   r.Wind.Speed,
		Cloudiness:  r.Clouds.All,
		Visibility:  r.Visibility,
		Sunrise:     r.Sys.Sunrise,
		Sunset:      r.Sys.Sunset,
		Coordinates: weather.Coordinates{Lat: r.Coord.Lat, Lon: r.Coord.Lon},
	}
}

type forecastResponse struct {
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Weather conditions `json:"weather"`
		Wind    struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Clouds struct {
			All int `json:"all"`
		} `json:"clouds"`
	} `json:"list"`
}
