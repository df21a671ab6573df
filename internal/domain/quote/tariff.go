package quote

import (
	"errors"
	"math"
)

var (
	errInvalidRate    = errors.New("tariff rate per km must be a positive finite number")
	errInvalidMinimum = errors.New("tariff minimum price must be a non-negative finite number")
	errUnknownClass   = errors.New("unknown vehicle class in tariff plan")
)

// Tariff holds the pricing parameters for one vehicle class.
type Tariff struct {
	RatePerKm    float64 `json:"rate_per_km"`
	MinimumPrice float64 `json:"minimum_price"`
	Currency     string  `json:"currency"`
}

// Price returns the delivery price for the given distance in kilometers:
// the linear per-km charge, floored at the minimum price. Callers must pass
// a non-negative finite distance; see RoundKilometers.
func (t Tariff) Price(distanceKm float64) float64 {
	price := distanceKm * t.RatePerKm
	if price < t.MinimumPrice {
		return t.MinimumPrice
	}
	return price
}

// Validate reports whether the tariff parameters are usable.
func (t Tariff) Validate() error {
	if t.RatePerKm <= 0 || math.IsNaN(t.RatePerKm) || math.IsInf(t.RatePerKm, 0) {
		return errInvalidRate
	}
	if t.MinimumPrice < 0 || math.IsNaN(t.MinimumPrice) || math.IsInf(t.MinimumPrice, 0) {
		return errInvalidMinimum
	}
	return nil
}

// RoundKilometers converts a route length in meters to whole kilometers,
// rounding half away from zero. Negative input clamps to zero so the pricing
// rule only ever sees non-negative distances.
func RoundKilometers(meters float64) float64 {
	if meters < 0 || math.IsNaN(meters) {
		return 0
	}
	return math.Round(meters / 1000)
}

// TariffPlan maps each vehicle class to its tariff.
type TariffPlan map[VehicleClass]Tariff

// Validate checks every tariff in the plan.
func (p TariffPlan) Validate() error {
	for class, t := range p {
		if !class.IsValid() {
			return errUnknownClass
		}
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an independent copy of the plan.
func (p TariffPlan) Clone() TariffPlan {
	out := make(TariffPlan, len(p))
	for class, t := range p {
		out[class] = t
	}
	return out
}
