// Package ws carries the calculator protocol over a websocket: map events
// flow in from the browser widget, drawing commands flow back out.
package ws

import (
	"github.com/Dartline-Delivery/service-pricing/internal/calculator"
	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
)

// Client event types.
const (
	EventClick = "click"
	EventDrag  = "drag"
	EventReset = "reset"
)

// Server command types.
const (
	CommandPlaceMarker = "place_marker"
	CommandDrawRoute   = "draw_route"
	CommandFitBounds   = "fit_bounds"
	CommandOpenBalloon = "open_balloon"
	CommandUpdatePanel = "update_panel"
	CommandError       = "error"
)

// ClientEvent is a single widget event. Click and drag carry coordinates;
// drag also names the marker being moved.
type ClientEvent struct {
	Type string  `json:"type"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Role string  `json:"role,omitempty"`
}

// PlaceMarkerCommand adds or moves a marker on the map.
type PlaceMarkerCommand struct {
	Type  string               `json:"type"`
	Role  string               `json:"role"`
	Point quoteDomain.GeoPoint `json:"point"`
	Hint  string               `json:"hint,omitempty"`
}

// DrawRouteCommand replaces the route polyline.
type DrawRouteCommand struct {
	Type   string                 `json:"type"`
	Points []quoteDomain.GeoPoint `json:"points"`
	Style  calculator.RouteStyle  `json:"style"`
}

// FitBoundsCommand pans and zooms the viewport to the given points.
type FitBoundsCommand struct {
	Type   string                 `json:"type"`
	Points []quoteDomain.GeoPoint `json:"points"`
}

// OpenBalloonCommand opens a balloon on a marker.
type OpenBalloonCommand struct {
	Type    string `json:"type"`
	Role    string `json:"role"`
	Text    string `json:"text"`
	AutoPan bool   `json:"auto_pan"`
}

// UpdatePanelCommand pushes new values into the info panel.
type UpdatePanelCommand struct {
	Type  string                 `json:"type"`
	Panel calculator.PanelUpdate `json:"panel"`
}

// ErrorCommand reports a rejected or malformed event back to the widget.
type ErrorCommand struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
