package fallback

import (
	"fmt"
	"strings"

	"relieflink/internal/geo"
	"relieflink/internal/utils"
	"relieflink/pkg/types"
)

// Sub-score weights; they sum to 1.
const (
	weightCompatibility = 0.4
	weightDistance      = 0.3
	weightUrgency       = 0.2
	weightQuantity      = 0.1

	// Used when the primary item carries no coordinates.
	UnknownDistanceKm = 5.0

	neutralQuantityScore = 0.5
)

type scored struct {
	candidate types.MatchCandidate
	inRange   bool
}

// Match ranks open reference candidates of the opposite kind against the
// primary item. Candidates past the distance limit are dropped unless that
// leaves nothing, in which case the closest ones are returned anyway.
func (e *Engine) Match(req types.MatchRequest) types.MatchSet {
	item := req.PrimaryItem

	maxDistance := req.Constraints.MaxDistanceKm
	if maxDistance <= 0 {
		maxDistance = e.maxDistanceKm
	}
	maxResults := req.Constraints.MaxResults
	if maxResults <= 0 {
		maxResults = e.maxResults
	}

	want := oppositeKind(item.Kind)

	all := make([]scored, 0, len(e.ref.Candidates))
	for _, c := range e.ref.Candidates {
		if !c.IsOpen || c.ID == item.ID {
			continue
		}
		if want != "" && c.Kind != want {
			continue
		}
		all = append(all, e.score(item, c, maxDistance))
	}

	matches := make([]types.MatchCandidate, 0, len(all))
	for _, s := range all {
		if s.inRange {
			matches = append(matches, s.candidate)
		}
	}
	if len(matches) == 0 {
		for _, s := range all {
			s.candidate.Reason += "; outside preferred radius"
			matches = append(matches, s.candidate)
		}
	}

	set := types.MatchSet{Matches: matches, TotalMatches: len(matches)}
	set.Normalize()

	if len(set.Matches) > maxResults {
		set.Matches = set.Matches[:maxResults]
	}

	return set
}

func oppositeKind(k types.SubmissionKind) types.SubmissionKind {
	switch k {
	case types.SubmissionDonation:
		return types.SubmissionRequest
	case types.SubmissionRequest:
		return types.SubmissionDonation
	default:
		return ""
	}
}

func (e *Engine) score(item types.MatchItem, c types.ReferenceCandidate, maxDistance float64) scored {
	distance := UnknownDistanceKm
	if item.Location != nil {
		distance = geo.DistanceKm(*item.Location, c.LatLng())
	}
	distance = utils.RoundFloat64(distance, 2)

	compatibility := types.Compatibility(item.Category, c.Category)
	distanceScore := types.Clamp01(1 - distance/maxDistance)

	// the request side carries the urgency that matters
	urgency := item.Urgency
	if item.Kind == types.SubmissionDonation {
		urgency = c.Urgency
	}
	urgencyScore := urgency.Weight()

	var quantity *float64
	quantityScore := neutralQuantityScore
	if item.Quantity > 0 && c.Quantity > 0 {
		q := float64(min(item.Quantity, c.Quantity)) / float64(max(item.Quantity, c.Quantity))
		q = utils.RoundFloat64(q, 3)
		quantity = &q
		quantityScore = q
	}

	total := weightCompatibility*compatibility +
		weightDistance*distanceScore +
		weightUrgency*urgencyScore +
		weightQuantity*quantityScore

	return scored{
		inRange: distance <= maxDistance,
		candidate: types.MatchCandidate{
			ID:                    c.ID,
			Name:                  c.Name,
			Category:              c.Category,
			Score:                 utils.RoundFloat64(total, 3),
			DistanceKm:            distance,
			Compatibility:         compatibility,
			UrgencyMatch:          urgencyScore,
			QuantityMatch:         quantity,
			EstimatedDeliveryTime: geo.HumanDuration(geo.TravelTime(distance, e.speedKmh)),
			Reason:                matchReason(item, c, compatibility, distance, urgency),
		},
	}
}

func matchReason(item types.MatchItem, c types.ReferenceCandidate, compatibility, distance float64, urgency types.Urgency) string {
	var parts []string

	switch {
	case compatibility >= types.CompatibilitySame:
		parts = append(parts, fmt.Sprintf("same category (%s)", c.Category))
	case compatibility >= types.CompatibilityRelated:
		parts = append(parts, fmt.Sprintf("related category (%s)", c.Category))
	default:
		parts = append(parts, fmt.Sprintf("different category (%s)", c.Category))
	}

	if item.Location != nil {
		parts = append(parts, fmt.Sprintf("%.1f km away", distance))
	} else {
		parts = append(parts, "distance estimated")
	}

	if urgency == types.UrgencyHigh || urgency == types.UrgencyCritical {
		parts = append(parts, fmt.Sprintf("%s urgency", urgency))
	}

	reason := strings.Join(parts, ", ")
	return strings.ToUpper(reason[:1]) + reason[1:]
}
