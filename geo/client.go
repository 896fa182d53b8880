package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const metersPerMile = 1609.344

// DefaultTimeout bounds each upstream call.
const DefaultTimeout = 5 * time.Second

// Client geocodes with a Nominatim-compatible search API and measures driving
// distance with an OSRM-compatible route API. When no router URL is set the
// straight-line distance is used instead.
type Client struct {
	geocoderURL string
	routerURL   string
	timeout     time.Duration
	http        *http.Client
	logger      *zap.Logger
}

func NewClient(geocoderURL, routerURL string, timeout time.Duration, httpClient *http.Client, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		geocoderURL: geocoderURL,
		routerURL:   routerURL,
		timeout:     timeout,
		http:        httpClient,
		logger:      logger,
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *Client) Geocode(ctx context.Context, query string) (*Coordinate, error) {
	if c.geocoderURL == "" {
		return nil, fmt.Errorf("geocoder not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "gb")

	var results []searchResult
	if err := c.getJSON(ctx, c.geocoderURL+"/search?"+params.Encode(), &results); err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}
	if len(results) == 0 {
		c.logger.Debug("geocoder returned no results", zap.String("query", query))
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: bad latitude: %w", query, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: bad longitude: %w", query, err)
	}
	return &Coordinate{Lat: lat, Lng: lng}, nil
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"` // meters
	} `json:"routes"`
}

func (c *Client) DrivingDistanceMiles(ctx context.Context, origin, destination Coordinate) (*float64, error) {
	if c.routerURL == "" {
		miles := Haversine(origin.Lat, origin.Lng, destination.Lat, destination.Lng)
		return &miles, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// OSRM takes lon,lat pairs.
	endpoint := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		c.routerURL, origin.Lng, origin.Lat, destination.Lng, destination.Lat)

	var resp routeResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}
	if resp.Code != "" && resp.Code != "Ok" {
		return nil, fmt.Errorf("route: upstream code %s", resp.Code)
	}
	if len(resp.Routes) == 0 {
		return nil, nil
	}

	miles := resp.Routes[0].Distance / metersPerMile
	return &miles, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "takeaway-backend")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
