package types

import "time"

// ReferenceCandidate is an open donation or request the fallback matcher
// may pair with an incoming item.
type ReferenceCandidate struct {
	ID        string         `db:"id" json:"id"`
	Kind      SubmissionKind `db:"kind" json:"kind"`
	Name      string         `db:"name" json:"name"`
	Category  ItemCategory   `db:"category" json:"category"`
	Quantity  int            `db:"quantity" json:"quantity"`
	Urgency   Urgency        `db:"urgency" json:"urgency"`
	Address   string         `db:"address" json:"address"`
	Lat       float64        `db:"lat" json:"lat"`
	Lng       float64        `db:"lng" json:"lng"`
	IsOpen    bool           `db:"is_open" json:"isOpen"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}

func (c ReferenceCandidate) LatLng() LatLng {
	return LatLng{Lat: c.Lat, Lng: c.Lng}
}

type Volunteer struct {
	ID          string      `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	Phone       string      `db:"phone" json:"phone"`
	VehicleType VehicleType `db:"vehicle_type" json:"vehicleType"`
	Lat         float64     `db:"lat" json:"lat"`
	Lng         float64     `db:"lng" json:"lng"`
	IsAvailable bool        `db:"is_available" json:"isAvailable"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updatedAt"`
}

func (v Volunteer) LatLng() LatLng {
	return LatLng{Lat: v.Lat, Lng: v.Lng}
}

// ReferenceData is the static pool the fallback engine scores against.
type ReferenceData struct {
	Candidates []ReferenceCandidate `json:"candidates"`
	Volunteers []Volunteer          `json:"volunteers"`
}
