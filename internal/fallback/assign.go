package fallback

import (
	"relieflink/internal/geo"
	"relieflink/internal/utils"
	"relieflink/pkg/types"
)

// Route legs with unknown coordinates use these fixed distances.
const (
	DefaultPickupDistanceKm = 3.0
	DefaultRouteDistanceKm  = 5.0
)

// DefaultVolunteer is assigned when the reference pool has no volunteers.
var DefaultVolunteer = types.Volunteer{
	ID:          "relief-coordinator",
	Name:        "Relief Coordinator",
	Phone:       "+8801700000000",
	VehicleType: types.VehicleMotorcycle,
	IsAvailable: true,
}

// AssignVolunteer picks the nearest available volunteer to the pickup and
// builds a two-stop route. With no pickup coordinates the first available
// volunteer in the pool is used.
func (e *Engine) AssignVolunteer(req types.AssignmentRequest) types.VolunteerAssignment {
	vol, toPickup, located := e.pickVolunteer(req)
	if !located {
		toPickup = DefaultPickupDistanceKm
	}

	leg := DefaultRouteDistanceKm
	if req.Pickup.Location != nil && req.Delivery.Location != nil {
		leg = geo.DistanceKm(*req.Pickup.Location, *req.Delivery.Location)
	}

	speed := vol.VehicleType.SpeedKmh()
	if speed <= 0 {
		speed = e.speedKmh
	}

	pickupTime := geo.TravelTime(toPickup, speed)
	deliveryTime := pickupTime + geo.TravelTime(leg, speed)

	matchID := req.MatchID
	if matchID == "" {
		matchID = utils.NanoID()
	}

	return types.VolunteerAssignment{
		AssignedVolunteer: types.AssignedVolunteer{
			ID:                    vol.ID,
			Name:                  vol.Name,
			Phone:                 vol.Phone,
			VehicleType:           vol.VehicleType,
			DistanceToPickupKm:    utils.RoundFloat64(toPickup, 2),
			EstimatedPickupTime:   geo.HumanDuration(pickupTime),
			EstimatedDeliveryTime: geo.HumanDuration(deliveryTime),
		},
		SimpleRoute: types.SimpleRoute{
			Pickup:          types.RouteStop{Address: req.Pickup.Address, ETA: geo.HumanDuration(pickupTime)},
			Delivery:        types.RouteStop{Address: req.Delivery.Address, ETA: geo.HumanDuration(deliveryTime)},
			TotalDistanceKm: utils.RoundFloat64(toPickup+leg, 2),
			TotalTime:       geo.HumanDuration(deliveryTime),
		},
		Status:  types.AssignmentAssigned,
		MatchID: matchID,
	}
}

func (e *Engine) pickVolunteer(req types.AssignmentRequest) (types.Volunteer, float64, bool) {
	pool := make([]types.Volunteer, 0, len(e.ref.Volunteers))
	for _, v := range e.ref.Volunteers {
		if v.IsAvailable {
			pool = append(pool, v)
		}
	}
	if len(pool) == 0 {
		pool = e.ref.Volunteers
	}
	if len(pool) == 0 {
		return DefaultVolunteer, 0, false
	}

	if req.Vehicle != "" {
		var preferred []types.Volunteer
		for _, v := range pool {
			if v.VehicleType == req.Vehicle {
				preferred = append(preferred, v)
			}
		}
		if len(preferred) > 0 {
			pool = preferred
		}
	}

	if req.Pickup.Location == nil {
		return pool[0], 0, false
	}

	best := pool[0]
	bestDist := geo.DistanceKm(*req.Pickup.Location, best.LatLng())
	for _, v := range pool[1:] {
		d := geo.DistanceKm(*req.Pickup.Location, v.LatLng())
		if d < bestDist || (d == bestDist && v.ID < best.ID) {
			best, bestDist = v, d
		}
	}

	return best, bestDist, true
}
