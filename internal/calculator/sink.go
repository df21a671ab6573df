package calculator

import (
	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
)

// MarkerRole distinguishes the two placemarks a session manages.
type MarkerRole string

const (
	MarkerStart  MarkerRole = "start"
	MarkerFinish MarkerRole = "finish"
)

// IsValid reports whether the role is one of the two known markers.
func (r MarkerRole) IsValid() bool {
	return r == MarkerStart || r == MarkerFinish
}

// RouteStyle describes how the route polyline is drawn.
type RouteStyle struct {
	StrokeWidth   int     `json:"stroke_width"`
	StrokeColor   string  `json:"stroke_color"`
	StrokeOpacity float64 `json:"stroke_opacity"`
}

// PanelUpdate carries new values for the info panel. Nil fields leave the
// corresponding slot untouched.
type PanelUpdate struct {
	Distance *string `json:"distance,omitempty"`
	Time     *string `json:"time,omitempty"`
	Cost     *string `json:"cost,omitempty"`
}

// MapSink is the session's one-way channel to the map widget. Implementations
// deliver drawing commands to whatever renders the map; delivery errors are
// reported back but the session treats them as non-fatal.
type MapSink interface {
	// PlaceMarker adds or moves the marker with the given role.
	PlaceMarker(role MarkerRole, point quoteDomain.GeoPoint, hint string) error

	// DrawRoute replaces the current route polyline.
	DrawRoute(points []quoteDomain.GeoPoint, style RouteStyle) error

	// FitBounds pans and zooms the viewport to cover the given points.
	FitBounds(points []quoteDomain.GeoPoint) error

	// OpenBalloon opens a balloon with the given text on a marker.
	OpenBalloon(role MarkerRole, text string, autoPan bool) error

	// UpdatePanel pushes new values into the info panel.
	UpdatePanel(update PanelUpdate) error
}
