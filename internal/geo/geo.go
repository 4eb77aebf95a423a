package geo

import (
	"fmt"
	"math"
	"time"

	"relieflink/pkg/types"
)

const (
	EarthRadiusKm          = 6371.0
	DefaultAverageSpeedKmh = 25.0

	// An ETA is never reported closer than this.
	MinTravelTime = time.Minute
)

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceKm returns the great-circle distance between a and b.
func DistanceKm(a, b types.LatLng) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	// rounding can push h a hair past 1 for antipodal points
	h = math.Min(1, math.Max(0, h))

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// TravelTime converts a distance into a duration at the given speed. A
// non-positive speed falls back to DefaultAverageSpeedKmh.
func TravelTime(distanceKm, speedKmh float64) time.Duration {
	if speedKmh <= 0 || math.IsNaN(speedKmh) {
		speedKmh = DefaultAverageSpeedKmh
	}
	if distanceKm <= 0 || math.IsNaN(distanceKm) {
		return 0
	}

	hours := distanceKm / speedKmh
	return time.Duration(hours * float64(time.Hour))
}

// EstimateArrival returns now + travel time from -> to. The second return
// is false when there is no current position yet, which is a normal state.
func EstimateArrival(from *types.LatLng, to types.LatLng, speedKmh float64) (time.Time, bool) {
	return estimateArrivalAt(time.Now(), from, to, speedKmh)
}

func estimateArrivalAt(now time.Time, from *types.LatLng, to types.LatLng, speedKmh float64) (time.Time, bool) {
	if from == nil {
		return time.Time{}, false
	}

	travel := TravelTime(DistanceKm(*from, to), speedKmh)
	if travel < MinTravelTime {
		travel = MinTravelTime
	}

	return now.Add(travel), true
}

// HumanDuration renders d the way route summaries show it: "12 mins",
// "1 hr", "2 hrs 5 mins". Anything under a minute reads as "1 min".
func HumanDuration(d time.Duration) string {
	mins := int(math.Ceil(d.Minutes()))
	if mins < 1 {
		mins = 1
	}

	hours, mins := mins/60, mins%60

	var out string
	switch {
	case hours == 1:
		out = "1 hr"
	case hours > 1:
		out = fmt.Sprintf("%d hrs", hours)
	}

	if mins == 0 && hours > 0 {
		return out
	}

	unit := "mins"
	if mins == 1 {
		unit = "min"
	}

	if out != "" {
		return fmt.Sprintf("%s %d %s", out, mins, unit)
	}

	return fmt.Sprintf("%d %s", mins, unit)
}
