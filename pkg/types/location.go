package types

import "time"

type LatLng struct {
	Lat float64 `json:"lat" db:"lat"`
	Lng float64 `json:"lng" db:"lng"`
}

// TrackedPosition is a single fix held by a tracker while tracking is active.
type TrackedPosition struct {
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	TimestampUTC   time.Time `json:"timestampUtc"`
	AccuracyMeters *float64  `json:"accuracyMeters,omitempty"`
}

func (p TrackedPosition) LatLng() LatLng {
	return LatLng{Lat: p.Lat, Lng: p.Lng}
}

type DeliveryStatus string

const (
	DeliveryAssigned        DeliveryStatus = "assigned"
	DeliveryEnRoutePickup   DeliveryStatus = "en_route_pickup"
	DeliveryAtPickup        DeliveryStatus = "at_pickup"
	DeliveryPickedUp        DeliveryStatus = "picked_up"
	DeliveryEnRouteDelivery DeliveryStatus = "en_route_delivery"
	DeliveryAtDelivery      DeliveryStatus = "at_delivery"
	DeliveryDelivered       DeliveryStatus = "delivered"
	DeliveryCompleted       DeliveryStatus = "completed"
)

var deliveryProgression = []DeliveryStatus{
	DeliveryAssigned,
	DeliveryEnRoutePickup,
	DeliveryAtPickup,
	DeliveryPickedUp,
	DeliveryEnRouteDelivery,
	DeliveryAtDelivery,
	DeliveryDelivered,
	DeliveryCompleted,
}

// Rank is the position of s in the delivery progression, or -1 if unknown.
// Progression is advisory; nothing in the core rejects a backwards step.
func (s DeliveryStatus) Rank() int {
	for i, v := range deliveryProgression {
		if v == s {
			return i
		}
	}
	return -1
}

type DeliveryStatusUpdate struct {
	TaskID           string           `json:"taskId"`
	Status           DeliveryStatus   `json:"status"`
	Location         *TrackedPosition `json:"location,omitempty"`
	EstimatedArrival *time.Time       `json:"estimatedArrival,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
}
