package quote

// VehicleClass represents the class of vehicle a delivery is priced for.
type VehicleClass string

const (
	VehicleClassBike VehicleClass = "bike"
	VehicleClassCar  VehicleClass = "car"
	VehicleClassVan  VehicleClass = "van"
)

// IsValid returns true if the vehicle class is recognized.
func (v VehicleClass) IsValid() bool {
	switch v {
	case VehicleClassBike, VehicleClassCar, VehicleClassVan:
		return true
	}
	return false
}

// String returns the string representation of the class.
func (v VehicleClass) String() string {
	return string(v)
}

// PackageSpec is an immutable value object describing the parcel to be
// delivered. The zero value means "unspecified", which is what the map
// widget sends.
type PackageSpec struct {
	WeightKg float64 `json:"weight_kg"`
	Fragile  bool    `json:"fragile"`
	Note     string  `json:"note,omitempty"`
}

// DetermineVehicleClass picks the smallest vehicle class that can carry the
// package. Fragile parcels never ride on a bike.
func DetermineVehicleClass(spec PackageSpec) VehicleClass {
	var class VehicleClass
	switch {
	case spec.WeightKg <= 5:
		class = VehicleClassBike
	case spec.WeightKg <= 20:
		class = VehicleClassCar
	default:
		class = VehicleClassVan
	}

	if spec.Fragile && class == VehicleClassBike {
		class = VehicleClassCar
	}
	return class
}
