package geocoding_adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"
)

// NominatimClient - геокодер поверх Nominatim (OpenStreetMap).
// Реализует port.GeocoderPort.
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewNominatimClient(baseURL, userAgent string, timeout time.Duration) *NominatimClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if userAgent == "" {
		userAgent = "homiio-backend"
	}
	return &NominatimClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *NominatimClient) Geocode(ctx context.Context, address string) (*domain.Location, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	clientLogger := logger.WithFields(port.Fields{
		"component": "NominatimClient",
		"method":    "Geocode",
	})

	address = strings.TrimSpace(address)
	if address == "" {
		return nil, domain.NewValidation("address is empty", nil)
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocoding request: %w", err)
	}
	// Nominatim требует идентифицирующий User-Agent.
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		clientLogger.Error("Failed to reach geocoder", err, nil)
		return nil, domain.NewUpstreamError("geocoder", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("geocoder returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
		clientLogger.Error("Received non-OK response from geocoder", err, port.Fields{"status_code": resp.StatusCode})
		return nil, domain.NewUpstreamError("geocoder", err)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, domain.NewUpstreamError("geocoder", fmt.Errorf("failed to decode geocoder response: %w", err))
	}
	if len(results) == 0 {
		clientLogger.Info("Address not found by geocoder.", nil)
		return nil, domain.NewNotFound("address")
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return nil, domain.NewUpstreamError("geocoder", fmt.Errorf("invalid coordinates %q, %q", results[0].Lat, results[0].Lon))
	}

	loc := &domain.Location{Latitude: lat, Longitude: lon}
	if !loc.Valid() {
		return nil, domain.NewUpstreamError("geocoder", fmt.Errorf("coordinates out of range: %v, %v", lat, lon))
	}
	clientLogger.Debug("Address geocoded.", port.Fields{"lat": lat, "lon": lon})
	return loc, nil
}
