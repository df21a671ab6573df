// Package routing talks to external route services. Each provider resolves
// an origin/destination pair into a driving route; which duration fields it
// can fill depends on the service behind it.
package routing

import (
	"context"
	"time"

	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
)

// fallbackSpeedKmh is the assumed average speed when a provider reports no
// duration at all.
const fallbackSpeedKmh = 40

// Provider resolves a driving route between two points.
type Provider interface {
	// Name identifies the provider in route records and cache keys.
	Name() string

	// Route computes a driving route from one point to another. The returned
	// error is the provider's own; callers decide how to surface it.
	Route(ctx context.Context, from, to quoteDomain.GeoPoint) (Route, error)
}

// Route is a provider-neutral route result. Duration fields are optional:
// a provider fills the most precise field it supports and leaves the rest
// nil. JamDuration accounts for live traffic, TravelDuration is a plain
// driving estimate, Duration is a generic estimate of unknown quality.
type Route struct {
	DistanceMeters float64
	JamDuration    *time.Duration
	TravelDuration *time.Duration
	Duration       *time.Duration
	Geometry       []quoteDomain.GeoPoint
}

// EffectiveDuration picks the best available duration: traffic-aware first,
// then the plain driving estimate, then the generic one. When none is set
// it synthesizes an estimate from the distance at fallbackSpeedKmh.
func (r Route) EffectiveDuration() time.Duration {
	if r.JamDuration != nil {
		return *r.JamDuration
	}
	if r.TravelDuration != nil {
		return *r.TravelDuration
	}
	if r.Duration != nil {
		return *r.Duration
	}
	hours := (r.DistanceMeters / 1000) / fallbackSpeedKmh
	return time.Duration(hours * float64(time.Hour))
}

// durationPtr converts whole seconds into an optional duration.
func durationPtr(seconds float64) *time.Duration {
	d := time.Duration(seconds * float64(time.Second))
	return &d
}
