package routing

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
)

// GoogleClient queries the Google Directions API. With DepartureTime set it
// reports both a generic duration and a traffic-aware one.
type GoogleClient struct {
	client *maps.Client
}

// NewGoogleClient constructs a Google Maps provider with the given API key.
func NewGoogleClient(apiKey string) (*GoogleClient, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleClient{client: client}, nil
}

// Name identifies this provider.
func (c *GoogleClient) Name() string { return "google" }

// Route resolves a driving route through the Directions API.
func (c *GoogleClient) Route(ctx context.Context, from, to quoteDomain.GeoPoint) (Route, error) {
	r := &maps.DirectionsRequest{
		Origin:        fmt.Sprintf("%f,%f", from.Latitude, from.Longitude),
		Destination:   fmt.Sprintf("%f,%f", to.Latitude, to.Longitude),
		Mode:          maps.TravelModeDriving,
		DepartureTime: "now",
	}

	routes, _, err := c.client.Directions(ctx, r)
	if err != nil {
		return Route{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Route{}, fmt.Errorf("no route found")
	}

	leg := routes[0].Legs[0]
	route := Route{DistanceMeters: float64(leg.Distance.Meters)}

	generic := leg.Duration
	route.Duration = &generic
	if leg.DurationInTraffic > 0 {
		jam := leg.DurationInTraffic
		route.JamDuration = &jam
	}

	if points, err := routes[0].OverviewPolyline.Decode(); err == nil {
		for _, p := range points {
			route.Geometry = append(route.Geometry, quoteDomain.GeoPoint{
				Latitude:  p.Lat,
				Longitude: p.Lng,
			})
		}
	}
	return route, nil
}
