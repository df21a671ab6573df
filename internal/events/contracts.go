package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics published and consumed by this service.
const (
	TopicQuoteEvents  = "pricing.quote.events"
	TopicTariffEvents = "pricing.tariff.events"
)

// Event types carried in the CloudEvent envelope.
const (
	QuoteComputed = "pricing.quote.computed"
	QuoteFailed   = "pricing.quote.failed"
	TariffUpdated = "pricing.tariff.updated"
)

// QuoteComputedEvent is published when a quote resolves with a route and price.
type QuoteComputedEvent struct {
	QuoteID         uuid.UUID `json:"quote_id"`
	QuoteNumber     string    `json:"quote_number"`
	VehicleClass    string    `json:"vehicle_class"`
	OriginLat       float64   `json:"origin_lat"`
	OriginLng       float64   `json:"origin_lng"`
	DestinationLat  float64   `json:"destination_lat"`
	DestinationLng  float64   `json:"destination_lng"`
	DistanceMeters  float64   `json:"distance_meters"`
	RoundedKm       float64   `json:"rounded_km"`
	DurationSeconds float64   `json:"duration_seconds"`
	Provider        string    `json:"provider"`
	Price           float64   `json:"price"`
	Currency        string    `json:"currency"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// QuoteFailedEvent is published when the routing provider cannot build a route.
type QuoteFailedEvent struct {
	QuoteID     uuid.UUID `json:"quote_id"`
	QuoteNumber string    `json:"quote_number"`
	Reason      string    `json:"reason"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// TariffEntry carries the pricing parameters for one vehicle class.
type TariffEntry struct {
	RatePerKm    float64 `json:"rate_per_km"`
	MinimumPrice float64 `json:"minimum_price"`
	Currency     string  `json:"currency"`
}

// TariffUpdatedEvent is published when the tariff plan changes, and consumed
// by replicas to hot-swap their in-memory plan.
type TariffUpdatedEvent struct {
	Plan       map[string]TariffEntry `json:"plan"`
	OccurredAt time.Time              `json:"occurred_at"`
}
