package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"jarvis/internal/domain"
)

// DefaultBaseURL is the OpenWeatherMap API root
const DefaultBaseURL = "https://api.openweathermap.org"

// statusCode is the "cod" field, which the API sends as a number or a string
type statusCode int

func (c *statusCode) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(data, `"`))
	if raw == "" || raw == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("parse cod %q: %w", raw, err)
	}
	*c = statusCode(n)
	return nil
}

type currentResponse struct {
	Cod     statusCode `json:"cod"`
	Message string     `json:"message"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Client fetches current weather from OpenWeatherMap
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a weather client. An empty apiKey makes every call fail.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Current returns the current weather for a city in metric units
func (c *Client) Current(ctx context.Context, city string) (domain.WeatherReport, error) {
	if c.apiKey == "" {
		return domain.WeatherReport{}, fmt.Errorf("weather api key is not set: %w", domain.ErrAdapterUnavailable)
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	params.Set("lang", "ru")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/data/2.5/weather?"+params.Encode(), nil)
	if err != nil {
		return domain.WeatherReport{}, fmt.Errorf("build weather request: %v: %w", err, domain.ErrAdapterUnavailable)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.WeatherReport{}, fmt.Errorf("weather request: %v: %w", err, domain.ErrAdapterUnavailable)
	}
	defer resp.Body.Close()

	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.WeatherReport{}, fmt.Errorf("decode weather response (status %d): %v: %w", resp.StatusCode, err, domain.ErrAdapterUnavailable)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || body.Cod != http.StatusOK {
		return domain.WeatherReport{}, fmt.Errorf("weather rejected (status %d, cod %d, %s): %w",
			resp.StatusCode, body.Cod, body.Message, domain.ErrAdapterUnavailable)
	}
	if len(body.Weather) == 0 {
		return domain.WeatherReport{}, fmt.Errorf("weather response has no conditions: %w", domain.ErrAdapterUnavailable)
	}

	return domain.WeatherReport{
		City:        city,
		Description: capitalize(body.Weather[0].Description),
		TempC:       body.Main.Temp,
		FeelsLikeC:  body.Main.FeelsLike,
		HumidityPct: int(math.Round(body.Main.Humidity)),
		WindSpeed:   body.Wind.Speed,
	}, nil
}

// capitalize upper-cases the first letter and lower-cases the rest
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
