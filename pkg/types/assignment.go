package types

type VehicleType string

const (
	VehicleBicycle    VehicleType = "bicycle"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleCar        VehicleType = "car"
	VehicleVan        VehicleType = "van"
	VehicleOnFoot     VehicleType = "on_foot"
)

// SpeedKmh is the average urban speed assumed for the vehicle. Zero means
// the caller should use the global default.
func (v VehicleType) SpeedKmh() float64 {
	switch v {
	case VehicleOnFoot:
		return 5
	case VehicleBicycle:
		return 15
	case VehicleMotorcycle:
		return 30
	case VehicleCar, VehicleVan:
		return 25
	default:
		return 0
	}
}

type AssignedVolunteer struct {
	ID                    string      `json:"id"`
	Name                  string      `json:"name"`
	Phone                 string      `json:"phone"`
	VehicleType           VehicleType `json:"vehicleType"`
	DistanceToPickupKm    float64     `json:"distanceToPickupKm"`
	EstimatedPickupTime   string      `json:"estimatedPickupTime"`
	EstimatedDeliveryTime string      `json:"estimatedDeliveryTime"`
}

type RouteStop struct {
	Address string `json:"address"`
	ETA     string `json:"eta"`
}

type SimpleRoute struct {
	Pickup          RouteStop `json:"pickup"`
	Delivery        RouteStop `json:"delivery"`
	TotalDistanceKm float64   `json:"totalDistanceKm"`
	TotalTime       string    `json:"totalTime"`
}

type AssignmentStatus string

const (
	AssignmentAssigned AssignmentStatus = "assigned"
	AssignmentPending  AssignmentStatus = "pending"
)

// VolunteerAssignment is created once per match and never mutated after it
// is returned; re-assignment builds a new value.
type VolunteerAssignment struct {
	AssignedVolunteer AssignedVolunteer `json:"assignedVolunteer"`
	SimpleRoute       SimpleRoute       `json:"simpleRoute"`
	Status            AssignmentStatus  `json:"status"`
	MatchID           string            `json:"matchId"`
}

type Waypoint struct {
	Address  string  `json:"address"`
	Location *LatLng `json:"location,omitempty"`
}

type AssignmentRequest struct {
	MatchID  string      `json:"matchId"`
	Pickup   Waypoint    `json:"pickup"`
	Delivery Waypoint    `json:"delivery"`
	Vehicle  VehicleType `json:"vehicle,omitempty"`
}
