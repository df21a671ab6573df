package quote

// RouteSpec is a value object describing the driving route a quote was
// priced against. Duration is the effective travel time, which may have been
// synthesized by the routing layer when the provider reported none.
type RouteSpec struct {
	DistanceMeters  float64    `json:"distance_meters"`
	DurationSeconds float64    `json:"duration_seconds"`
	RoundedKm       float64    `json:"rounded_km"`
	Provider        string     `json:"provider"`
	Geometry        []GeoPoint `json:"geometry,omitempty"`
}
