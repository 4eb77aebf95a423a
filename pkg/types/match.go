package types

import (
	"math"
	"sort"
)

type MatchCandidate struct {
	ID                    string       `json:"id"`
	Name                  string       `json:"name,omitempty"`
	Category              ItemCategory `json:"category,omitempty"`
	Score                 float64      `json:"score"`
	DistanceKm            float64      `json:"distanceKm"`
	Compatibility         float64      `json:"compatibility"`
	UrgencyMatch          float64      `json:"urgencyMatch"`
	QuantityMatch         *float64     `json:"quantityMatch,omitempty"`
	EstimatedDeliveryTime string       `json:"estimatedDeliveryTime"`
	Reason                string       `json:"reason"`
}

type MatchSet struct {
	Matches      []MatchCandidate `json:"matches"`
	TotalMatches int              `json:"totalMatches"`
}

// Sort orders matches by score descending, then distance ascending. ID is
// the final key so equal candidates keep a stable, reproducible order.
func (s *MatchSet) Sort() {
	sort.SliceStable(s.Matches, func(i, j int) bool {
		a, b := s.Matches[i], s.Matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		return a.ID < b.ID
	})
}

// Normalize clamps every sub-score into range, sorts, and makes sure
// TotalMatches is never smaller than the number of matches carried.
func (s *MatchSet) Normalize() {
	if s.Matches == nil {
		s.Matches = []MatchCandidate{}
	}

	for i := range s.Matches {
		m := &s.Matches[i]
		m.Score = Clamp01(m.Score)
		m.Compatibility = Clamp01(m.Compatibility)
		m.UrgencyMatch = Clamp01(m.UrgencyMatch)
		if m.QuantityMatch != nil {
			q := Clamp01(*m.QuantityMatch)
			m.QuantityMatch = &q
		}
		if m.DistanceKm < 0 || math.IsNaN(m.DistanceKm) {
			m.DistanceKm = 0
		}
	}

	s.Sort()

	if s.TotalMatches < len(s.Matches) {
		s.TotalMatches = len(s.Matches)
	}
}

// MatchItem is the donation or request being matched.
type MatchItem struct {
	ID       string         `json:"id"`
	Kind     SubmissionKind `json:"kind"`
	ItemName string         `json:"itemName"`
	Category ItemCategory   `json:"category"`
	Quantity int            `json:"quantity"`
	Urgency  Urgency        `json:"urgency"`
	Address  string         `json:"address,omitempty"`
	Location *LatLng        `json:"location,omitempty"`
}

type MatchConstraints struct {
	MaxDistanceKm float64 `json:"maxDistanceKm,omitempty"`
	MaxResults    int     `json:"maxResults,omitempty"`
}

type MatchRequest struct {
	PrimaryItem MatchItem        `json:"primaryItem"`
	Constraints MatchConstraints `json:"constraints"`
}
