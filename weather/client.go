package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/gilby125/travel-index-api/pkg/upstream"
)

// forecastEntries is how many 3-hour forecast slots make up the 3-day
// aggregation window (72h / 3h).
const forecastEntries = 24

// firstDayEntries covers the first 24 hours, used for the dominant condition.
const firstDayEntries = 8

// Client fetches forecasts from an OpenWeatherMap-compatible provider.
type Client struct {
	baseURL string
	apiKey  string
	client  *retryablehttp.Client
}

// NewClient creates a forecast client.
func NewClient(baseURL, apiKey string, cfg upstream.Config) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  upstream.NewClient(cfg),
	}
}

// forecastResponse mirrors the provider's 5-day/3-hour forecast payload.
type forecastResponse struct {
	List []struct {
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	} `json:"list"`
}

// Fetch retrieves the forecast for a coordinate pair and aggregates it into
// a 3-day Record (ObservedAt/ExpiresAt are stamped by the store on write).
func (c *Client) Fetch(ctx context.Context, cityID string, lat, lon float64) (Record, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Record{}, fmt.Errorf("build forecast request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Record{}, upstream.WrapTransportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Record{}, fmt.Errorf("forecast for %s: status %d: %s", cityID, resp.StatusCode, body)
	}

	var forecast forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return Record{}, fmt.Errorf("decode forecast for %s: %w", cityID, err)
	}

	rec, ok := aggregate(forecast)
	if !ok {
		return Record{}, fmt.Errorf("forecast for %s: empty forecast list", cityID)
	}
	rec.CityID = cityID
	return rec, nil
}

// aggregate reduces the 3-hour forecast slots to 3-day averages plus the
// most common condition over the first day.
func aggregate(forecast forecastResponse) (Record, bool) {
	entries := forecast.List
	if len(entries) == 0 {
		return Record{}, false
	}
	if len(entries) > forecastEntries {
		entries = entries[:forecastEntries]
	}

	var rec Record
	rec.MinTemperature = entries[0].Main.Temp
	rec.MaxTemperature = entries[0].Main.Temp

	var tempSum, humiditySum, windSum float64
	for _, e := range entries {
		tempSum += e.Main.Temp
		humiditySum += e.Main.Humidity
		windSum += e.Wind.Speed
		if e.Main.Temp < rec.MinTemperature {
			rec.MinTemperature = e.Main.Temp
		}
		if e.Main.Temp > rec.MaxTemperature {
			rec.MaxTemperature = e.Main.Temp
		}
	}

	n := float64(len(entries))
	rec.AvgTemperature = tempSum / n
	rec.AvgHumidity = humiditySum / n
	rec.AvgWindSpeed = windSum / n

	counts := map[string]int{}
	firstDay := entries
	if len(firstDay) > firstDayEntries {
		firstDay = firstDay[:firstDayEntries]
	}
	for _, e := range firstDay {
		if len(e.Weather) > 0 {
			counts[e.Weather[0].Main]++
		}
	}
	best := 0
	for desc, count := range counts {
		if count > best || (count == best && desc < rec.Condition) {
			best = count
			rec.Condition = desc
		}
	}

	return rec, true
}
