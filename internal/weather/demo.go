package weather

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"
)

// Demo cities are scattered around Delhi.
var delhi = Coordinates{Lat: 28.6139, Lon: 77.2090}

// Demo serves plausible made-up weather so the screens work without an
// API key. Place names for coordinates come from Geocoder when set,
// otherwise from a coarse region table.
type Demo struct {
	// Geocoder, when set, names coordinates via a real reverse lookup.
	Geocoder Reverser

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewDemo creates a demo provider. seed fixes the generated values.
func NewDemo(seed uint64) *Demo {
	return &Demo{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

// Name returns the provider identifier.
func (d *Demo) Name() string { return "demo" }

// Current returns demo weather for city somewhere around Delhi.
func (d *Demo) Current(_ context.Context, city string) (*Current, error) {
	if strings.TrimSpace(city) == "" {
		return nil, ErrNotFound
	}
	c := d.sample()
	c.City = capitalize(city)
	c.Country = "IN"
	c.Coordinates = Coordinates{
		Lat: delhi.Lat + (d.float()-0.5)*10,
		Lon: delhi.Lon + (d.float()-0.5)*10,
	}
	return c, nil
}

// CurrentAt returns demo weather for the given coordinates.
func (d *Demo) CurrentAt(ctx context.Context, lat, lon float64) (*Current, error) {
	c := d.sample()
	c.Coordinates = Coordinates{Lat: lat, Lon: lon}
	c.City, c.Country = "Current Location", "Unknown"

	if d.Geocoder != nil {
		if p, err := d.Geocoder.Reverse(ctx, lat, lon); err == nil {
			c.City, c.Country = p.Name, p.Country
		}
		return c, nil
	}
	c.City, c.Country = Region(lat, lon)
	return c, nil
}

// Forecast returns five days of three-hourly demo steps.
func (d *Demo) Forecast(_ context.Context, city string) (*Forecast, error) {
	if strings.TrimSpace(city) == "" {
		return nil, ErrNotFound
	}
	start := d.now().Truncate(3 * time.Hour)
	entries := make([]ForecastEntry, 40)
	for i := range entries {
		c := d.sample()
		entries[i] = ForecastEntry{
			Datetime:    start.Add(time.Duration(i) * 3 * time.Hour).Unix(),
			Temperature: c.Temperature,
			Description: c.Description,
			Icon:        c.Icon,
			Humidity:    c.Humidity,
			WindSpeed:   c.WindSpeed,
			Cloudiness:  c.Cloudiness,
		}
	}
	return &Forecast{City: capitalize(city), Country: "IN", Forecast: entries}, nil
}

// Search matches query against a small list of Indian farming hubs.
func (d *Demo) Search(_ context.Context, query string) ([]Place, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Place
	for _, p := range demoPlaces {
		if q != "" && strings.HasPrefix(strings.ToLower(p.Name), q) {
			out = append(out, p)
			if len(out) == 5 {
				break
			}
		}
	}
	return out, nil
}

// Reverse names coordinates using Geocoder or the region table.
func (d *Demo) Reverse(ctx context.Context, lat, lon float64) (*Place, error) {
	if d.Geocoder != nil {
		return d.Geocoder.Reverse(ctx, lat, lon)
	}
	name, country := Region(lat, lon)
	return &Place{Name: name, Country: country, Lat: lat, Lon: lon}, nil
}

// Region gives a coarse place name for coordinates: a major Indian metro
// region, India, or a continent-sized area.
func Region(lat, lon float64) (name, country string) {
	switch {
	case lat >= 8 && lat <= 37 && lon >= 68 && lon <= 97:
		switch {
		case lat >= 28 && lat <= 29 && lon >= 76 && lon <= 78:
			return "Delhi Region", "IN"
		case lat >= 18 && lat <= 20 && lon >= 72 && lon <= 73:
			return "Mumbai Region", "IN"
		case lat >= 12 && lat <= 14 && lon >= 77 && lon <= 78:
			return "Bangalore Region", "IN"
		case lat >= 17 && lat <= 18 && lon >= 78 && lon <= 79:
			return "Hyderabad Region", "IN"
		case lat >= 22 && lat <= 23 && lon >= 88 && lon <= 89:
			return "Kolkata Region", "IN"
		default:
			return "India", "IN"
		}
	case lat >= 25 && lat <= 49 && lon >= -125 && lon <= -66:
		return "United States", "US"
	case lat >= 49 && lat <= 60 && lon >= -141 && lon <= -52:
		return "Canada", "CA"
	case lat >= 36 && lat <= 71 && lon >= -9 && lon <= 40:
		return "Europe", "EU"
	default:
		return fmt.Sprintf("Location (%.2f, %.2f)", lat, lon), "Unknown"
	}
}

// sample draws values in the same ranges as a warm Indian day.
func (d *Demo) sample() *Current {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now().Unix()
	return &Current{
		Temperature: 20 + d.rng.IntN(20),
		Description: "partly cloudy",
		Icon:        "02d",
		Humidity:    40 + d.rng.IntN(40),
		Pressure:    1000 + d.rng.IntN(50),
		WindSpeed:   float64(5 + d.rng.IntN(10)),
		Cloudiness:  20 + d.rng.IntN(50),
		Visibility:  10000,
		Sunrise:     now - 6*3600,
		Sunset:      now + 6*3600,
	}
}

func (d *Demo) float() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Float64()
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

var demoPlaces = []Place{
	{Name: "Agra", Country: "IN", State: "Uttar Pradesh", Lat: 27.1767, Lon: 78.0081},
	{Name: "Ahmedabad", Country: "IN", State: "Gujarat", Lat: 23.0225, Lon: 72.5714},
	{Name: "Amritsar", Country: "IN", State: "Punjab", Lat: 31.6340, Lon: 74.8723},
	{Name: "Bengaluru", Country: "IN", State: "Karnataka", Lat: 12.9716, Lon: 77.5946},
	{Name: "Bhubaneswar", Country: "IN", State: "Odisha", Lat: 20.2961, Lon: 85.8245},
	{Name: "Chennai", Country: "IN", State: "Tamil Nadu", Lat: 13.0827, Lon: 80.2707},
	{Name: "Coimbatore", Country: "IN", State: "Tamil Nadu", Lat: 11.0168, Lon: 76.9558},
	{Name: "Guwahati", Country: "IN", State: "Assam", Lat: 26.1445, Lon: 91.7362},
	{Name: "Hyderabad", Country: "IN", State: "Telangana", Lat: 17.3850, Lon: 78.4867},
	{Name: "Kochi", Country: "IN", State: "Kerala", Lat: 9.9312, Lon: 76.2673},
	{Name: "Kolkata", Country: "IN", State: "West Bengal", Lat: 22.5726, Lon: 88.3639},
	{Name: "Ludhiana", Country: "IN", State: "Punjab", Lat: 30.9010, Lon: 75.8573},
	{Name: "Madurai", Country: "IN", State: "Tamil Nadu", Lat: 9.9252, Lon: 78.1198},
	{Name: "Mumbai", Country: "IN", State: "Maharashtra", Lat: 19.0760, Lon: 72.8777},
	{Name: "Nagpur", Country: "IN", State: "Maharashtra", Lat: 21.1458, Lon: 79.0882},
	{Name: "Nashik", Country: "IN", State: "Maharashtra", Lat: 19.9975, Lon: 73.7898},
	{Name: "New Delhi", Country: "IN", State: "Delhi", Lat: 28.6139, Lon: 77.2090},
	{Name: "Patna", Country: "IN", State: "Bihar", Lat: 25.5941, Lon: 85.1376},
	{Name: "Pune", Country: "IN", State: "Maharashtra", Lat: 18.5204, Lon: 73.8567},
	{Name: "Vijayawada", Country: "IN", State: "Andhra Pradesh", Lat: 16.5062, Lon: 80.6480},
}
