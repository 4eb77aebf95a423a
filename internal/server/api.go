package server

import (
	"net/http"
	"time"

	"relieflink/internal/geo"
	"relieflink/internal/utils"
	"relieflink/pkg/types"
)

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleValidate(w http.ResponseWriter, r *http.Request) {
	var content types.SubmissionContent
	if !s.decodeBody(w, r, &content) {
		return
	}

	s.writeJSON(w, http.StatusOK, s.decisions.Validate(r.Context(), content))
}

func (s *Service) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req types.MatchRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	s.writeJSON(w, http.StatusOK, s.decisions.Match(r.Context(), req))
}

func (s *Service) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req types.AssignmentRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	s.writeJSON(w, http.StatusOK, s.decisions.AssignVolunteer(r.Context(), req))
}

func (s *Service) handleConverse(w http.ResponseWriter, r *http.Request) {
	var req types.ConversationRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	s.writeJSON(w, http.StatusOK, s.decisions.Converse(r.Context(), req))
}

type etaQuery struct {
	FromLat  *float64 `form:"fromLat"`
	FromLng  *float64 `form:"fromLng"`
	ToLat    *float64 `form:"toLat"`
	ToLng    *float64 `form:"toLng"`
	SpeedKmh float64  `form:"speedKmh"`
}

type etaResponse struct {
	Available        bool       `json:"available"`
	DistanceKm       *float64   `json:"distanceKm,omitempty"`
	TravelTime       string     `json:"travelTime,omitempty"`
	EstimatedArrival *time.Time `json:"estimatedArrival,omitempty"`
}

// handleETA answers distance and arrival estimates between two points. A
// missing origin is a normal state and reports available=false.
func (s *Service) handleETA(w http.ResponseWriter, r *http.Request) {
	var q etaQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}

	if q.ToLat == nil || q.ToLng == nil {
		s.writeError(w, http.StatusBadRequest, "toLat and toLng are required")
		return
	}

	to := types.LatLng{Lat: *q.ToLat, Lng: *q.ToLng}

	var from *types.LatLng
	if q.FromLat != nil && q.FromLng != nil {
		from = &types.LatLng{Lat: *q.FromLat, Lng: *q.FromLng}
	}

	speed := q.SpeedKmh
	if speed <= 0 {
		speed = s.config.AverageSpeedKmh
	}

	arrival, ok := geo.EstimateArrival(from, to, speed)
	if !ok {
		s.writeJSON(w, http.StatusOK, etaResponse{Available: false})
		return
	}

	distance := geo.DistanceKm(*from, to)

	s.writeJSON(w, http.StatusOK, etaResponse{
		Available:        true,
		DistanceKm:       utils.Float64Ptr(utils.RoundFloat64(distance, 2)),
		TravelTime:       geo.HumanDuration(geo.TravelTime(distance, speed)),
		EstimatedArrival: utils.TimePtr(arrival.UTC()),
	})
}
