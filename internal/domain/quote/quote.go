package quote

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/Dartline-Delivery/service-pricing/internal/platform/domain"
)

const quoteNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Quote is the aggregate root for the pricing domain. It records one
// origin/destination pair, the route the provider computed for it, and the
// price derived from that route.
type Quote struct {
	id           uuid.UUID
	quoteNumber  string
	origin       GeoPoint
	destination  GeoPoint
	vehicleClass VehicleClass
	packageSpec  PackageSpec
	status       QuoteStatus
	routeSpec    *RouteSpec

	priceUnits *float64
	currency   string
	failReason string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateQuoteNumber creates a quote number in the format "QT-XXXXXX".
func generateQuoteNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(quoteNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate quote number: %w", err)
		}
		result[i] = quoteNumberChars[n.Int64()]
	}
	return "QT-" + string(result), nil
}

// NewQuote creates a new Quote aggregate with status=pending.
func NewQuote(origin, destination GeoPoint, vehicleClass VehicleClass, packageSpec PackageSpec, currency string) (*Quote, error) {
	if !origin.Valid() || origin.IsZero() {
		return nil, domain.NewValidationError("origin point is required")
	}
	if !destination.Valid() || destination.IsZero() {
		return nil, domain.NewValidationError("destination point is required")
	}
	if !vehicleClass.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid vehicle class: %s", vehicleClass))
	}
	if packageSpec.WeightKg < 0 {
		return nil, domain.NewValidationError("package weight cannot be negative")
	}
	if currency == "" {
		return nil, domain.NewValidationError("currency is required")
	}

	quoteNumber, err := generateQuoteNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Quote{
		id:           uuid.New(),
		quoteNumber:  quoteNumber,
		origin:       origin,
		destination:  destination,
		vehicleClass: vehicleClass,
		packageSpec:  packageSpec,
		status:       StatusPending,
		currency:     currency,
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructQuote rebuilds a Quote from persistence data (no validation).
func ReconstructQuote(
	id uuid.UUID,
	quoteNumber string,
	origin, destination GeoPoint,
	vehicleClass VehicleClass,
	packageSpec PackageSpec,
	status QuoteStatus,
	routeSpec *RouteSpec,
	priceUnits *float64,
	currency string,
	failReason string,
	version int64,
	createdAt, updatedAt time.Time,
) *Quote {
	return &Quote{
		id:           id,
		quoteNumber:  quoteNumber,
		origin:       origin,
		destination:  destination,
		vehicleClass: vehicleClass,
		packageSpec:  packageSpec,
		status:       status,
		routeSpec:    routeSpec,
		priceUnits:   priceUnits,
		currency:     currency,
		failReason:   failReason,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// --- Getters ---

// ID returns the quote's unique identifier.
func (q *Quote) ID() uuid.UUID { return q.id }

// QuoteNumber returns the human-readable quote number.
func (q *Quote) QuoteNumber() string { return q.quoteNumber }

// Origin returns the pickup point.
func (q *Quote) Origin() GeoPoint { return q.origin }

// Destination returns the dropoff point.
func (q *Quote) Destination() GeoPoint { return q.destination }

// VehicleClass returns the vehicle class the quote was priced for.
func (q *Quote) VehicleClass() VehicleClass { return q.vehicleClass }

// PackageSpec returns the parcel description.
func (q *Quote) PackageSpec() PackageSpec { return q.packageSpec }

// Status returns the current quote status.
func (q *Quote) Status() QuoteStatus { return q.status }

// RouteSpec returns the computed route, or nil if the quote never resolved.
func (q *Quote) RouteSpec() *RouteSpec { return q.routeSpec }

// PriceUnits returns the computed price, or nil if the quote never priced.
func (q *Quote) PriceUnits() *float64 { return q.priceUnits }

// Currency returns the currency code.
func (q *Quote) Currency() string { return q.currency }

// FailReason returns the provider failure description, if any.
func (q *Quote) FailReason() string { return q.failReason }

// Version returns the entity version for optimistic locking.
func (q *Quote) Version() int64 { return q.version }

// CreatedAt returns the creation timestamp.
func (q *Quote) CreatedAt() time.Time { return q.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (q *Quote) UpdatedAt() time.Time { return q.updatedAt }

// --- Behavior ---

// MarkPriced transitions the quote from pending to priced with the computed
// route and price.
func (q *Quote) MarkPriced(route RouteSpec, priceUnits float64) error {
	if !q.status.CanTransitionTo(StatusPriced) {
		return domain.NewInvalidStateError(string(q.status), string(StatusPriced))
	}
	if priceUnits < 0 {
		return domain.NewValidationError("price cannot be negative")
	}
	q.routeSpec = &route
	q.priceUnits = &priceUnits
	q.status = StatusPriced
	q.updatedAt = time.Now().UTC()
	return nil
}

// MarkFailed transitions the quote from pending to failed, recording why the
// routing provider could not produce a route.
func (q *Quote) MarkFailed(reason string) error {
	if !q.status.CanTransitionTo(StatusFailed) {
		return domain.NewInvalidStateError(string(q.status), string(StatusFailed))
	}
	q.failReason = reason
	q.status = StatusFailed
	q.updatedAt = time.Now().UTC()
	return nil
}

// MarkSuperseded transitions the quote from pending to superseded. A
// superseded quote's late results are discarded by the caller.
func (q *Quote) MarkSuperseded() error {
	if !q.status.CanTransitionTo(StatusSuperseded) {
		return domain.NewInvalidStateError(string(q.status), string(StatusSuperseded))
	}
	q.status = StatusSuperseded
	q.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (q *Quote) IncrementVersion() {
	q.version++
	q.updatedAt = time.Now().UTC()
}
