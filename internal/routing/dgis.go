package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
)

const defaultDGISBaseURL = "https://routing.api.2gis.com"

// DGISClient queries the 2GIS distance matrix with type=jam, so the
// duration it reports accounts for live traffic. The matrix endpoint
// returns no geometry.
type DGISClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewDGISClient constructs a 2GIS provider.
func NewDGISClient(httpClient *http.Client, apiKey string) *DGISClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &DGISClient{httpClient: httpClient, apiKey: apiKey, baseURL: defaultDGISBaseURL}
}

// Name identifies this provider.
func (c *DGISClient) Name() string { return "2gis" }

type dgisPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type dgisMatrixRequest struct {
	Points    []dgisPoint `json:"points"`
	Sources   []int       `json:"sources"`
	Targets   []int       `json:"targets"`
	Transport string      `json:"transport,omitempty"`
	Type      string      `json:"type,omitempty"`
}

type dgisMatrixResponse struct {
	Routes []struct {
		Status   string `json:"status"`
		Distance int    `json:"distance"`
		Duration int    `json:"duration"`
	} `json:"routes"`
}

// Route resolves distance and jam-aware duration through get_dist_matrix.
func (c *DGISClient) Route(ctx context.Context, from, to quoteDomain.GeoPoint) (Route, error) {
	payload := dgisMatrixRequest{
		Points: []dgisPoint{
			{Lat: from.Latitude, Lon: from.Longitude},
			{Lat: to.Latitude, Lon: to.Longitude},
		},
		Sources:   []int{0},
		Targets:   []int{1},
		Transport: "driving",
		Type:      "jam",
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("version", "2.0")
	q.Set("response_format", "json")
	endpoint := fmt.Sprintf("%s/get_dist_matrix?%s", c.baseURL, q.Encode())

	body, err := json.Marshal(&payload)
	if err != nil {
		return Route{}, err
	}

	// The matrix API answers with a redirect to a result URL; follow it by
	// hand so the POST body is not replayed.
	client := *c.httpClient
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	const maxRedirects = 3
	currentURL := endpoint

	for redirects := 0; redirects <= maxRedirects; redirects++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, currentURL, bytes.NewReader(body))
		if err != nil {
			return Route{}, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return Route{}, err
		}

		if resp.StatusCode == http.StatusNoContent {
			resp.Body.Close()
			return Route{}, errors.New("2gis: route not found (204)")
		}

		if resp.StatusCode >= 300 && resp.StatusCode < 400 {
			location, err := resp.Location()
			resp.Body.Close()
			if err != nil {
				return Route{}, fmt.Errorf("2gis: redirect: %w", err)
			}
			currentURL = location.String()
			continue
		}

		if resp.StatusCode >= 300 {
			data, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return Route{}, fmt.Errorf("2gis: %s: %s", resp.Status, strings.TrimSpace(string(data)))
		}

		var out dgisMatrixResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			resp.Body.Close()
			return Route{}, err
		}
		resp.Body.Close()

		if len(out.Routes) == 0 {
			return Route{}, errors.New("2gis: empty routes")
		}
		best := out.Routes[0]
		if strings.ToUpper(best.Status) != "OK" {
			return Route{}, fmt.Errorf("2gis: status=%s", best.Status)
		}
		return Route{
			DistanceMeters: float64(best.Distance),
			JamDuration:    durationPtr(float64(best.Duration)),
		}, nil
	}

	return Route{}, errors.New("2gis: too many redirects")
}
