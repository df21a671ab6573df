package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
)

const defaultOSRMBaseURL = "https://router.project-osrm.org"

// OSRMClient queries an OSRM instance. OSRM reports distance, a plain
// driving duration and the full route geometry; it knows nothing about
// live traffic.
type OSRMClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewOSRMClient constructs an OSRM provider. A nil httpClient falls back to
// a client with a 10 second timeout; an empty baseURL falls back to the
// public demo server.
func NewOSRMClient(httpClient *http.Client, baseURL string) *OSRMClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultOSRMBaseURL
	}
	return &OSRMClient{httpClient: httpClient, baseURL: baseURL}
}

// Name identifies this provider.
func (c *OSRMClient) Name() string { return "osrm" }

type osrmRouteResponse struct {
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
	Code string `json:"code"`
}

// Route resolves a driving route through the OSRM route service.
func (c *OSRMClient) Route(ctx context.Context, from, to quoteDomain.GeoPoint) (Route, error) {
	u, err := url.Parse(c.baseURL + "/route/v1/driving/")
	if err != nil {
		return Route{}, fmt.Errorf("bad osrm base url: %w", err)
	}

	// OSRM expects lon,lat order.
	u.Path += fmt.Sprintf("%f,%f;%f,%f", from.Longitude, from.Latitude, to.Longitude, to.Latitude)
	q := u.Query()
	q.Set("overview", "full")
	q.Set("geometries", "geojson")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Route{}, fmt.Errorf("build osrm request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Route{}, fmt.Errorf("osrm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Route{}, fmt.Errorf("osrm status: %s", resp.Status)
	}

	var data osrmRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Route{}, fmt.Errorf("decode osrm: %w", err)
	}

	if data.Code != "" && data.Code != "Ok" {
		return Route{}, fmt.Errorf("osrm code: %s", data.Code)
	}
	if len(data.Routes) == 0 {
		return Route{}, fmt.Errorf("osrm: no routes")
	}

	best := data.Routes[0]
	route := Route{
		DistanceMeters: best.Distance,
		TravelDuration: durationPtr(best.Duration),
	}
	for _, coord := range best.Geometry.Coordinates {
		if len(coord) < 2 {
			continue
		}
		// geojson coordinates are [lon, lat]
		route.Geometry = append(route.Geometry, quoteDomain.GeoPoint{
			Latitude:  coord[1],
			Longitude: coord[0],
		})
	}
	return route, nil
}
