package quote

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTariffPrice(t *testing.T) {
	tariff := Tariff{RatePerKm: 0.8, MinimumPrice: 4.0, Currency: "GEL"}

	cases := []struct {
		name       string
		distanceKm float64
		want       float64
	}{
		{"zero distance floors at minimum", 0, 4.0},
		{"short hop floors at minimum", 2, 4.0},
		{"break-even distance", 5, 4.0},
		{"linear above break-even", 12, 9.6},
		{"long haul", 100, 80.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, tariff.Price(tc.distanceKm), 1e-9)
		})
	}
}

func TestTariffPriceNeverBelowMinimum(t *testing.T) {
	tariff := Tariff{RatePerKm: 1.2, MinimumPrice: 6.0, Currency: "GEL"}
	for km := 0.0; km <= 20; km += 0.5 {
		assert.GreaterOrEqual(t, tariff.Price(km), tariff.MinimumPrice)
	}
}

func TestRoundKilometers(t *testing.T) {
	cases := []struct {
		name   string
		meters float64
		want   float64
	}{
		{"twelve and a bit km rounds down", 12345, 12},
		{"half km rounds up", 12500, 13},
		{"just under half rounds down", 1499, 1},
		{"zero", 0, 0},
		{"negative clamps to zero", -500, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RoundKilometers(tc.meters))
		})
	}

	assert.Equal(t, 0.0, RoundKilometers(math.NaN()))
}

func TestTariffForRoundedDistance(t *testing.T) {
	// A 12345 m route rounds to 12 km and prices linearly at 0.8/km.
	tariff := Tariff{RatePerKm: 0.8, MinimumPrice: 4.0, Currency: "GEL"}
	km := RoundKilometers(12345)
	require.Equal(t, 12.0, km)
	assert.InDelta(t, 9.6, tariff.Price(km), 1e-9)
}

func TestTariffValidate(t *testing.T) {
	cases := []struct {
		name    string
		tariff  Tariff
		wantErr bool
	}{
		{"valid", Tariff{RatePerKm: 0.8, MinimumPrice: 4.0, Currency: "GEL"}, false},
		{"zero rate", Tariff{RatePerKm: 0, MinimumPrice: 4.0, Currency: "GEL"}, true},
		{"negative rate", Tariff{RatePerKm: -1, MinimumPrice: 4.0, Currency: "GEL"}, true},
		{"negative minimum", Tariff{RatePerKm: 0.8, MinimumPrice: -1, Currency: "GEL"}, true},
		{"zero minimum is allowed", Tariff{RatePerKm: 0.8, MinimumPrice: 0, Currency: "GEL"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.tariff.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTariffPlanValidate(t *testing.T) {
	plan := TariffPlan{
		VehicleClassBike: {RatePerKm: 0.6, MinimumPrice: 3.0, Currency: "GEL"},
		VehicleClassCar:  {RatePerKm: 0.8, MinimumPrice: 4.0, Currency: "GEL"},
	}
	require.NoError(t, plan.Validate())

	plan[VehicleClassCar] = Tariff{RatePerKm: -0.8, MinimumPrice: 4.0, Currency: "GEL"}
	assert.Error(t, plan.Validate())

	bad := TariffPlan{VehicleClass("truck"): {RatePerKm: 1, MinimumPrice: 1, Currency: "GEL"}}
	assert.Error(t, bad.Validate())
}

func TestTariffPlanClone(t *testing.T) {
	plan := TariffPlan{
		VehicleClassCar: {RatePerKm: 0.8, MinimumPrice: 4.0, Currency: "GEL"},
	}
	clone := plan.Clone()
	clone[VehicleClassCar] = Tariff{RatePerKm: 9, MinimumPrice: 9, Currency: "GEL"}

	assert.Equal(t, 0.8, plan[VehicleClassCar].RatePerKm)
}
