package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WeatherClient queries a wttr.in compatible service.
type WeatherClient struct {
	base string
	http *http.Client
}

func NewWeatherClient(baseURL string, timeout time.Duration) *WeatherClient {
	if baseURL == "" {
		baseURL = "https://wttr.in"
	}
	return &WeatherClient{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// Current returns the one-line condition and temperature for city.
func (c *WeatherClient) Current(ctx context.Context, city string) (string, error) {
	// The format string is sent verbatim; wttr.in expects the literal %C+%t.
	u := c.base + "/" + url.PathEscape(city) + "?format=%C+%t"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather service returned %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

func getWeather(ctx context.Context, env *Env, input json.RawMessage) Result {
	if env.Weather == nil {
		return errorf("Error: weather client is not configured")
	}
	city, ok := stringArg(input, "city", "location")
	if !ok || strings.TrimSpace(city) == "" {
		return errorf("Error: get_weather_data requires a city name")
	}

	text, err := env.Weather.Current(ctx, city)
	if err != nil {
		return errorf("Something went wrong: %v", err)
	}
	return Result{Output: fmt.Sprintf("The weather in %s is %s.", city, text)}
}
