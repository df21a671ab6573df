package routing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func dptr(d time.Duration) *time.Duration { return &d }

func TestEffectiveDuration(t *testing.T) {
	cases := []struct {
		name  string
		route Route
		want  time.Duration
	}{
		{
			"jam wins over everything",
			Route{
				DistanceMeters: 10000,
				JamDuration:    dptr(25 * time.Minute),
				TravelDuration: dptr(20 * time.Minute),
				Duration:       dptr(15 * time.Minute),
			},
			25 * time.Minute,
		},
		{
			"travel when no jam",
			Route{
				DistanceMeters: 10000,
				TravelDuration: dptr(20 * time.Minute),
				Duration:       dptr(15 * time.Minute),
			},
			20 * time.Minute,
		},
		{
			"generic as last reported value",
			Route{DistanceMeters: 10000, Duration: dptr(15 * time.Minute)},
			15 * time.Minute,
		},
		{
			"synthesized from distance at 40 km/h",
			Route{DistanceMeters: 20000},
			30 * time.Minute,
		},
		{
			"synthesized zero distance",
			Route{},
			0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.route.EffectiveDuration())
		})
	}
}

func TestEffectiveDurationSynthesisScales(t *testing.T) {
	// 40 km at 40 km/h is exactly one hour.
	route := Route{DistanceMeters: 40000}
	assert.Equal(t, time.Hour, route.EffectiveDuration())
}
