package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Place is one forward-geocoding result, as the location form consumes it.
type Place struct {
	DisplayName string  `json:"display_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type Client interface {
	Search(ctx context.Context, query string) ([]Place, error)
}

// NominatimClient queries a Nominatim-compatible endpoint. The default
// public instance is rate-limited; point NOMINATIM_URL at a self-hosted
// one for production use.
type NominatimClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewNominatimClient() *NominatimClient {
	baseURL := os.Getenv("NOMINATIM_URL")
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}

	return &NominatimClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func (c *NominatimClient) Search(ctx context.Context, query string) ([]Place, error) {
	endpoint := fmt.Sprintf("%s/search?format=json&limit=5&q=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "schedule-service/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding request failed with status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(results))
	for _, result := range results {
		lat, err := strconv.ParseFloat(result.Lat, 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(result.Lon, 64)
		if err != nil {
			continue
		}
		places = append(places, Place{
			DisplayName: result.DisplayName,
			Latitude:    lat,
			Longitude:   lon,
		})
	}

	return places, nil
}
