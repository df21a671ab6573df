package routing

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
)

func TestOSRMClientRoute(t *testing.T) {
	from := quoteDomain.GeoPoint{Latitude: 41.7151, Longitude: 44.8271}
	to := quoteDomain.GeoPoint{Latitude: 41.6938, Longitude: 44.8015}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		// OSRM takes lon,lat pairs in the path.
		assert.Equal(t, "/route/v1/driving/44.827100,41.715100;44.801500,41.693800", r.URL.Path)
		assert.Equal(t, "full", r.URL.Query().Get("overview"))
		assert.Equal(t, "geojson", r.URL.Query().Get("geometries"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"code": "Ok",
			"routes": [{
				"distance": 12345.6,
				"duration": 1500.5,
				"geometry": {"coordinates": [[44.8271, 41.7151], [44.81, 41.70], [44.8015, 41.6938]]}
			}]
		}`)
	}))
	defer server.Close()

	client := NewOSRMClient(server.Client(), server.URL)
	route, err := client.Route(context.Background(), from, to)
	require.NoError(t, err)

	assert.Equal(t, 12345.6, route.DistanceMeters)
	require.NotNil(t, route.TravelDuration)
	assert.Equal(t, time.Duration(1500.5*float64(time.Second)), *route.TravelDuration)
	assert.Nil(t, route.JamDuration)
	assert.Nil(t, route.Duration)

	require.Len(t, route.Geometry, 3)
	assert.Equal(t, 41.7151, route.Geometry[0].Latitude)
	assert.Equal(t, 44.8271, route.Geometry[0].Longitude)
}

func TestOSRMClientRouteErrors(t *testing.T) {
	cases := []struct {
		name        string
		handler     http.HandlerFunc
		errContains string
	}{
		{
			"non-ok code",
			func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"code": "NoRoute", "routes": []}`)
			},
			"osrm code: NoRoute",
		},
		{
			"empty routes",
			func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"code": "Ok", "routes": []}`)
			},
			"no routes",
		},
		{
			"server error",
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			"osrm status",
		},
		{
			"garbage body",
			func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `not json`)
			},
			"decode osrm",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			client := NewOSRMClient(server.Client(), server.URL)
			_, err := client.Route(context.Background(),
				quoteDomain.GeoPoint{Latitude: 1, Longitude: 1},
				quoteDomain.GeoPoint{Latitude: 2, Longitude: 2},
			)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errContains)
		})
	}
}

func TestOSRMClientRouteContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewOSRMClient(server.Client(), server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Route(ctx,
		quoteDomain.GeoPoint{Latitude: 1, Longitude: 1},
		quoteDomain.GeoPoint{Latitude: 2, Longitude: 2},
	)
	require.Error(t, err)
}
