package geo

import (
	"math/rand"
	"testing"
	"time"

	"relieflink/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	dhaka      = types.LatLng{Lat: 23.8103, Lng: 90.4125}
	chittagong = types.LatLng{Lat: 22.3569, Lng: 91.7832}
	sylhet     = types.LatLng{Lat: 24.8949, Lng: 91.8687}
)

func randomPoint(rng *rand.Rand) types.LatLng {
	return types.LatLng{
		Lat: rng.Float64()*180 - 90,
		Lng: rng.Float64()*360 - 180,
	}
}

func TestDistanceKm_SamePointIsZero(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		p := randomPoint(rng)
		assert.InDelta(t, 0, DistanceKm(p, p), 1e-9)
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		a, b := randomPoint(rng), randomPoint(rng)
		assert.InDelta(t, DistanceKm(a, b), DistanceKm(b, a), 1e-9)
	}
}

func TestDistanceKm_TriangleInequality(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	for i := 0; i < 200; i++ {
		a, b, c := randomPoint(rng), randomPoint(rng), randomPoint(rng)
		assert.LessOrEqual(t, DistanceKm(a, c), DistanceKm(a, b)+DistanceKm(b, c)+1e-6)
	}
}

func TestDistanceKm_KnownPairs(t *testing.T) {
	tests := []struct {
		name string
		a, b types.LatLng
		want float64
	}{
		{name: "dhaka to chittagong", a: dhaka, b: chittagong, want: 213},
		{name: "dhaka to sylhet", a: dhaka, b: sylhet, want: 190.5},
		{name: "quarter meridian", a: types.LatLng{Lat: 0, Lng: 0}, b: types.LatLng{Lat: 90, Lng: 0}, want: 10007.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.a, tt.b)
			assert.InEpsilon(t, tt.want, got, 0.05)
		})
	}
}

func TestDistanceKm_Antipodal(t *testing.T) {
	got := DistanceKm(types.LatLng{Lat: 0, Lng: 0}, types.LatLng{Lat: 0, Lng: 180})
	assert.InDelta(t, EarthRadiusKm*3.141592653589793, got, 1e-6)
}

func TestTravelTime(t *testing.T) {
	assert.Equal(t, time.Hour, TravelTime(25, 25))
	assert.Equal(t, 30*time.Minute, TravelTime(15, 30))
	assert.Equal(t, time.Hour, TravelTime(25, 0), "zero speed uses the default")
	assert.Equal(t, time.Hour, TravelTime(25, -4), "negative speed uses the default")
	assert.Equal(t, time.Duration(0), TravelTime(0, 25))
	assert.Equal(t, time.Duration(0), TravelTime(-1, 25))
}

func TestEstimateArrival_NoPosition(t *testing.T) {
	_, ok := EstimateArrival(nil, dhaka, 25)
	assert.False(t, ok)
}

func TestEstimateArrival_StrictlyInFuture(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	for i := 0; i < 50; i++ {
		from := randomPoint(rng)
		speed := rng.Float64()*100 + 0.1

		before := time.Now()
		eta, ok := EstimateArrival(&from, from, speed)
		require.True(t, ok)
		assert.True(t, eta.After(before), "identical points still arrive in the future")

		to := randomPoint(rng)
		eta, ok = EstimateArrival(&from, to, speed)
		require.True(t, ok)
		assert.True(t, eta.After(before))
	}
}

func TestEstimateArrivalAt(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	from := types.LatLng{Lat: 0, Lng: 0}
	to := types.LatLng{Lat: 0, Lng: 0.2248} // ~25 km along the equator

	eta, ok := estimateArrivalAt(now, &from, to, 25)
	require.True(t, ok)
	assert.WithinDuration(t, now.Add(time.Hour), eta, 30*time.Second)
}

func TestHumanDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "1 min"},
		{20 * time.Second, "1 min"},
		{time.Minute, "1 min"},
		{12 * time.Minute, "12 mins"},
		{12*time.Minute + 10*time.Second, "13 mins"},
		{time.Hour, "1 hr"},
		{time.Hour + time.Minute, "1 hr 1 min"},
		{2*time.Hour + 5*time.Minute, "2 hrs 5 mins"},
		{3 * time.Hour, "3 hrs"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, HumanDuration(tt.in))
		})
	}
}
