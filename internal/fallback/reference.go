package fallback

import (
	"time"

	"relieflink/pkg/types"
)

var referenceCreatedAt = time.Date(2024, time.August, 20, 6, 0, 0, 0, time.UTC)

// DefaultReferenceData is a small Dhaka-area pool used when no database or
// snapshot is configured. The seed command writes the same rows.
func DefaultReferenceData() types.ReferenceData {
	candidates := []types.ReferenceCandidate{
		{ID: "fj6Kpu9541pzWiPM3exyn", Kind: types.SubmissionDonation, Name: "Rice (25 kg bags)", Category: types.CategoryFood, Quantity: 40, Urgency: types.UrgencyMedium, Address: "Road 27, Dhanmondi, Dhaka", Lat: 23.7461, Lng: 90.3742},
		{ID: "hNbQ6gdYX1RFPgPhcajiE", Kind: types.SubmissionDonation, Name: "Bottled water (1.5 L)", Category: types.CategoryWater, Quantity: 300, Urgency: types.UrgencyHigh, Address: "Section 10, Mirpur, Dhaka", Lat: 23.8069, Lng: 90.3687},
		{ID: "TKZSSUn5SClGowfbfuh5Y", Kind: types.SubmissionDonation, Name: "Oral saline and paracetamol", Category: types.CategoryMedicine, Quantity: 120, Urgency: types.UrgencyHigh, Address: "Sector 7, Uttara, Dhaka", Lat: 23.8759, Lng: 90.3795},
		{ID: "XQTYzRj0WiAJUjSMwcqrC", Kind: types.SubmissionDonation, Name: "Winter blankets", Category: types.CategoryClothing, Quantity: 60, Urgency: types.UrgencyLow, Address: "Gulshan 2, Dhaka", Lat: 23.7925, Lng: 90.4078},
		{ID: "irsaejgQP252tEhxyFuIl", Kind: types.SubmissionDonation, Name: "Tarpaulin sheets", Category: types.CategoryShelter, Quantity: 35, Urgency: types.UrgencyMedium, Address: "Tejgaon Industrial Area, Dhaka", Lat: 23.7639, Lng: 90.3989},
		{ID: "9Hc4qWcEEshbmrLBkEzcV", Kind: types.SubmissionDonation, Name: "Baby formula", Category: types.CategoryBaby, Quantity: 50, Urgency: types.UrgencyMedium, Address: "Savar Bazar, Savar", Lat: 23.8583, Lng: 90.2667},
		{ID: "k6R3JehMBDTf7lXbit12m", Kind: types.SubmissionRequest, Name: "Dry food for 30 families", Category: types.CategoryFood, Quantity: 30, Urgency: types.UrgencyCritical, Address: "Jatrabari, Dhaka", Lat: 23.7104, Lng: 90.4348},
		{ID: "I5VZZiLHZk1kikZ9NFqTY", Kind: types.SubmissionRequest, Name: "Drinking water", Category: types.CategoryWater, Quantity: 200, Urgency: types.UrgencyCritical, Address: "Lalbagh, Old Dhaka", Lat: 23.7190, Lng: 90.3882},
		{ID: "TDHQ4iDcVsi8goCZalA0n", Kind: types.SubmissionRequest, Name: "First aid supplies", Category: types.CategoryMedicine, Quantity: 40, Urgency: types.UrgencyHigh, Address: "Mohammadpur, Dhaka", Lat: 23.7662, Lng: 90.3589},
		{ID: "2tanOPniA6sdrWd7333La", Kind: types.SubmissionRequest, Name: "Sanitary kits", Category: types.CategoryHygiene, Quantity: 80, Urgency: types.UrgencyMedium, Address: "Narayanganj Sadar", Lat: 23.6238, Lng: 90.5000},
		{ID: "CH9C2yvBfk27RxiNqFcuc", Kind: types.SubmissionRequest, Name: "Clothes for children", Category: types.CategoryClothing, Quantity: 50, Urgency: types.UrgencyLow, Address: "Badda, Dhaka", Lat: 23.7806, Lng: 90.4261},
	}

	volunteers := []types.Volunteer{
		{ID: "fsqv2eqsfFUrRdvc22ggf", Name: "Rahim Uddin", Phone: "+8801711000001", VehicleType: types.VehicleMotorcycle, Lat: 23.7509, Lng: 90.3935, IsAvailable: true},
		{ID: "xdNeqTg9k3VXkA7ApZVFF", Name: "Nusrat Jahan", Phone: "+8801711000002", VehicleType: types.VehicleBicycle, Lat: 23.8103, Lng: 90.4125, IsAvailable: true},
		{ID: "TOJL2vo5rdXTAVYXaliGu", Name: "Karim Hossain", Phone: "+8801711000003", VehicleType: types.VehicleVan, Lat: 23.7000, Lng: 90.4200, IsAvailable: true},
		{ID: "Q8wNf3mTz0LbYc5rVpKxD", Name: "Sadia Akter", Phone: "+8801711000004", VehicleType: types.VehicleCar, Lat: 23.8700, Lng: 90.3900, IsAvailable: false},
	}

	for i := range candidates {
		candidates[i].IsOpen = true
		candidates[i].CreatedAt = referenceCreatedAt
	}
	for i := range volunteers {
		volunteers[i].CreatedAt = referenceCreatedAt
		volunteers[i].UpdatedAt = referenceCreatedAt
	}

	return types.ReferenceData{Candidates: candidates, Volunteers: volunteers}
}
