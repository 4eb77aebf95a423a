package fallback

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relieflink/internal/utils"
	"relieflink/pkg/types"
)

var (
	dhanmondi = types.LatLng{Lat: 23.7461, Lng: 90.3742}
	jatrabari = types.LatLng{Lat: 23.7104, Lng: 90.4348}
	sylhet    = types.LatLng{Lat: 24.8949, Lng: 91.8687}
)

type fixedRand int

func (f fixedRand) IntN(n int) int {
	return min(int(f), n-1)
}

func TestValidate(t *testing.T) {
	e := New(DefaultReferenceData())

	tests := []struct {
		name        string
		content     types.SubmissionContent
		wantIssues  []string
		wantValid   bool
		wantConf    float64
		wantRisk    types.RiskLevel
		wantApprove bool
	}{
		{
			name:       "short name",
			content:    types.SubmissionContent{ItemName: "Ri", Quantity: 5, Location: "Dhanmondi 5"},
			wantIssues: []string{IssueNameTooShort},
			wantConf:   0.6,
			wantRisk:   types.RiskLow,
		},
		{
			name:       "quantity and location",
			content:    types.SubmissionContent{ItemName: "Rice", Quantity: 0, Location: "x"},
			wantIssues: []string{IssueInvalidQuantity, IssueInsufficientLocation},
			wantConf:   0.4,
			wantRisk:   types.RiskMedium,
		},
		{
			name:       "everything wrong",
			content:    types.SubmissionContent{ItemName: "", Quantity: -3, Location: "  "},
			wantIssues: []string{IssueNameTooShort, IssueInvalidQuantity, IssueInsufficientLocation},
			wantConf:   0.3,
			wantRisk:   types.RiskHigh,
		},
		{
			name:        "valid",
			content:     types.SubmissionContent{ItemName: "Rice", Quantity: 10, Location: "House 12, Road 5, Dhanmondi"},
			wantIssues:  []string{},
			wantValid:   true,
			wantConf:    0.85,
			wantRisk:    types.RiskLow,
			wantApprove: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.Validate(tt.content)

			assert.Equal(t, tt.wantIssues, out.Issues)
			assert.Equal(t, tt.wantValid, out.IsValid)
			assert.InDelta(t, tt.wantConf, out.Confidence, 1e-9)
			assert.Equal(t, tt.wantRisk, out.RiskLevel)
			assert.Equal(t, tt.wantApprove, out.AutoApprove)
			assert.NotNil(t, out.Suggestions)
			if !tt.wantValid {
				assert.Len(t, out.Suggestions, len(tt.wantIssues))
			}
		})
	}
}

func TestValidate_DescriptionSuggestion(t *testing.T) {
	e := New(DefaultReferenceData())
	content := types.SubmissionContent{ItemName: "Rice", Quantity: 10, Location: "Road 5, Dhanmondi"}

	assert.Len(t, e.Validate(content).Suggestions, 1)

	content.Description = utils.StringPtr("Two bags of rice")
	assert.Empty(t, e.Validate(content).Suggestions)
}

func assertSorted(t *testing.T, matches []types.MatchCandidate) {
	t.Helper()
	for i := 1; i < len(matches); i++ {
		prev, cur := matches[i-1], matches[i]
		require.GreaterOrEqual(t, prev.Score, cur.Score, "position %d", i)
		if prev.Score == cur.Score {
			require.LessOrEqual(t, prev.DistanceKm, cur.DistanceKm, "position %d", i)
		}
	}
}

func TestMatch_DonationFindsRequests(t *testing.T) {
	e := New(DefaultReferenceData())

	set := e.Match(types.MatchRequest{
		PrimaryItem: types.MatchItem{
			ID:       "donation-1",
			Kind:     types.SubmissionDonation,
			ItemName: "Rice",
			Category: types.CategoryFood,
			Quantity: 30,
			Location: &dhanmondi,
		},
	})

	require.NotEmpty(t, set.Matches)
	assert.Equal(t, "k6R3JehMBDTf7lXbit12m", set.Matches[0].ID)
	assert.GreaterOrEqual(t, set.TotalMatches, len(set.Matches))
	assertSorted(t, set.Matches)

	top := set.Matches[0]
	assert.Equal(t, types.CompatibilitySame, top.Compatibility)
	require.NotNil(t, top.QuantityMatch)
	assert.Equal(t, 1.0, *top.QuantityMatch)
	assert.Contains(t, top.Reason, "Same category")
	assert.NotEmpty(t, top.EstimatedDeliveryTime)

	kinds := map[types.SubmissionKind]bool{}
	for _, m := range set.Matches {
		assert.LessOrEqual(t, m.DistanceKm, DefaultMaxDistanceKm)
		for _, c := range e.ReferenceData().Candidates {
			if c.ID == m.ID {
				kinds[c.Kind] = true
			}
		}
	}
	assert.Equal(t, map[types.SubmissionKind]bool{types.SubmissionRequest: true}, kinds)
}

func TestMatch_Deterministic(t *testing.T) {
	e := New(DefaultReferenceData())
	req := types.MatchRequest{
		PrimaryItem: types.MatchItem{Kind: types.SubmissionRequest, Category: types.CategoryWater, Quantity: 100, Urgency: types.UrgencyHigh, Location: &jatrabari},
	}

	assert.Equal(t, e.Match(req), e.Match(req))
}

func TestMatch_Constraints(t *testing.T) {
	e := New(DefaultReferenceData())

	set := e.Match(types.MatchRequest{
		PrimaryItem: types.MatchItem{Kind: types.SubmissionRequest, Category: types.CategoryFood, Location: &dhanmondi},
		Constraints: types.MatchConstraints{MaxResults: 2},
	})

	assert.Len(t, set.Matches, 2)
	assert.Equal(t, 6, set.TotalMatches)
}

func TestMatch_NoReferenceData(t *testing.T) {
	e := New(types.ReferenceData{})

	set := e.Match(types.MatchRequest{PrimaryItem: types.MatchItem{Kind: types.SubmissionDonation, Category: types.CategoryFood}})

	assert.NotNil(t, set.Matches)
	assert.Empty(t, set.Matches)
	assert.Equal(t, 0, set.TotalMatches)
}

func TestMatch_OutsideRadiusStillAnswers(t *testing.T) {
	e := New(DefaultReferenceData())

	set := e.Match(types.MatchRequest{
		PrimaryItem: types.MatchItem{Kind: types.SubmissionDonation, Category: types.CategoryFood, Location: &sylhet},
	})

	require.NotEmpty(t, set.Matches)
	for _, m := range set.Matches {
		assert.Greater(t, m.DistanceKm, DefaultMaxDistanceKm)
		assert.Contains(t, m.Reason, "outside preferred radius")
	}
}

func TestMatch_UnknownLocation(t *testing.T) {
	e := New(DefaultReferenceData())

	set := e.Match(types.MatchRequest{
		PrimaryItem: types.MatchItem{Kind: types.SubmissionDonation, Category: types.CategoryMedicine, Quantity: 40},
	})

	require.NotEmpty(t, set.Matches)
	assert.Equal(t, "TDHQ4iDcVsi8goCZalA0n", set.Matches[0].ID)
	for _, m := range set.Matches {
		assert.Equal(t, UnknownDistanceKm, m.DistanceKm)
		assert.Contains(t, m.Reason, "distance estimated")
	}
}

func TestMatch_SortedForRandomPools(t *testing.T) {
	categories := []types.ItemCategory{
		types.CategoryFood, types.CategoryWater, types.CategoryMedicine, types.CategoryClothing,
		types.CategoryShelter, types.CategoryHygiene, types.CategoryBaby, types.CategoryOther,
	}
	urgencies := []types.Urgency{types.UrgencyLow, types.UrgencyMedium, types.UrgencyHigh, types.UrgencyCritical}

	for seed := uint64(1); seed <= 25; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, seed*7))

			var ref types.ReferenceData
			n := 1 + rng.IntN(40)
			for i := 0; i < n; i++ {
				ref.Candidates = append(ref.Candidates, types.ReferenceCandidate{
					ID:       fmt.Sprintf("c%03d", i),
					Kind:     types.SubmissionRequest,
					Category: categories[rng.IntN(len(categories))],
					Quantity: rng.IntN(100),
					Urgency:  urgencies[rng.IntN(len(urgencies))],
					Lat:      23.6 + rng.Float64()*0.4,
					Lng:      90.2 + rng.Float64()*0.4,
					IsOpen:   true,
				})
			}

			e := New(ref)
			set := e.Match(types.MatchRequest{
				PrimaryItem: types.MatchItem{
					Kind:     types.SubmissionDonation,
					Category: categories[rng.IntN(len(categories))],
					Quantity: 1 + rng.IntN(100),
					Location: &dhanmondi,
				},
				Constraints: types.MatchConstraints{MaxResults: n},
			})

			assert.Len(t, set.Matches, n)
			assertSorted(t, set.Matches)
			for _, m := range set.Matches {
				assert.True(t, m.Score >= 0 && m.Score <= 1)
				assert.GreaterOrEqual(t, m.DistanceKm, 0.0)
			}
		})
	}
}

func TestAssignVolunteer_Nearest(t *testing.T) {
	e := New(DefaultReferenceData())

	out := e.AssignVolunteer(types.AssignmentRequest{
		MatchID:  "match-1",
		Pickup:   types.Waypoint{Address: "Road 27, Dhanmondi", Location: &dhanmondi},
		Delivery: types.Waypoint{Address: "Jatrabari", Location: &jatrabari},
	})

	assert.Equal(t, "fsqv2eqsfFUrRdvc22ggf", out.AssignedVolunteer.ID)
	assert.Equal(t, types.VehicleMotorcycle, out.AssignedVolunteer.VehicleType)
	assert.Equal(t, types.AssignmentAssigned, out.Status)
	assert.Equal(t, "match-1", out.MatchID)
	assert.Equal(t, "Road 27, Dhanmondi", out.SimpleRoute.Pickup.Address)
	assert.Equal(t, "Jatrabari", out.SimpleRoute.Delivery.Address)
	assert.Greater(t, out.SimpleRoute.TotalDistanceKm, out.AssignedVolunteer.DistanceToPickupKm)
	assert.Equal(t, out.AssignedVolunteer.EstimatedDeliveryTime, out.SimpleRoute.TotalTime)
	assert.Equal(t, out.AssignedVolunteer.EstimatedPickupTime, out.SimpleRoute.Pickup.ETA)
}

func TestAssignVolunteer_SkipsUnavailable(t *testing.T) {
	e := New(DefaultReferenceData())
	sadia := types.LatLng{Lat: 23.8700, Lng: 90.3900}

	out := e.AssignVolunteer(types.AssignmentRequest{Pickup: types.Waypoint{Location: &sadia}})

	assert.Equal(t, "xdNeqTg9k3VXkA7ApZVFF", out.AssignedVolunteer.ID)
}

func TestAssignVolunteer_VehiclePreference(t *testing.T) {
	e := New(DefaultReferenceData())

	out := e.AssignVolunteer(types.AssignmentRequest{
		Pickup:  types.Waypoint{Location: &dhanmondi},
		Vehicle: types.VehicleVan,
	})

	assert.Equal(t, "TOJL2vo5rdXTAVYXaliGu", out.AssignedVolunteer.ID)
}

func TestAssignVolunteer_UnknownCoordinates(t *testing.T) {
	e := New(DefaultReferenceData())

	out := e.AssignVolunteer(types.AssignmentRequest{
		Pickup:   types.Waypoint{Address: "Mirpur"},
		Delivery: types.Waypoint{Address: "Badda"},
	})

	assert.Equal(t, "fsqv2eqsfFUrRdvc22ggf", out.AssignedVolunteer.ID)
	assert.Equal(t, DefaultPickupDistanceKm, out.AssignedVolunteer.DistanceToPickupKm)
	assert.Equal(t, DefaultPickupDistanceKm+DefaultRouteDistanceKm, out.SimpleRoute.TotalDistanceKm)
	// 8 km by motorcycle at 30 km/h
	assert.Equal(t, "16 mins", out.SimpleRoute.TotalTime)
	assert.Len(t, out.MatchID, utils.NanoidSize)
}

func TestAssignVolunteer_EmptyPool(t *testing.T) {
	e := New(types.ReferenceData{})

	out := e.AssignVolunteer(types.AssignmentRequest{MatchID: "m"})

	assert.Equal(t, DefaultVolunteer.ID, out.AssignedVolunteer.ID)
	assert.Equal(t, types.AssignmentAssigned, out.Status)
}

func TestConverse_Intents(t *testing.T) {
	e := New(DefaultReferenceData(), WithRand(fixedRand(0)))

	tests := []struct {
		message string
		lang    types.Language
		want    types.Intent
	}{
		{message: "Hello there", want: types.IntentGreeting},
		{message: "this is a test", want: types.IntentHelp},
		{message: "URGENT: we are trapped on the roof", want: types.IntentEmergency},
		{message: "I need food, it's urgent", want: types.IntentEmergency},
		{message: "I want to donate rice", want: types.IntentDonate},
		{message: "We need drinking water", want: types.IntentRequest},
		{message: "Can you track my package?", want: types.IntentTrack},
		{message: "I'd like to volunteer", want: types.IntentVolunteer},
		{message: "thanks!", want: types.IntentThanks},
		{message: "আমি খাবার দান করতে চাই", want: types.IntentDonate},
		{message: "আমাদের পানি দরকার", want: types.IntentRequest},
		{message: "বন্যায় আটকে আছি", want: types.IntentEmergency},
		{message: "ধন্যবাদ", lang: types.LanguageBengali, want: types.IntentThanks},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			reply := e.Converse(types.ConversationRequest{Message: tt.message, Language: tt.lang})
			assert.Equal(t, tt.want, reply.Intent)
			assert.NotEmpty(t, reply.Response)
		})
	}
}

func TestConverse_DetectsBengali(t *testing.T) {
	e := New(DefaultReferenceData(), WithRand(fixedRand(0)))

	reply := e.Converse(types.ConversationRequest{Message: "হ্যালো"})

	assert.Equal(t, types.IntentGreeting, reply.Intent)
	assert.Equal(t, vocabularies[types.LanguageBengali].templates[types.IntentGreeting][0], reply.Response)
}

func TestConverse_RandomOnlyWithinIntent(t *testing.T) {
	for _, pick := range []fixedRand{0, 1, 5} {
		e := New(DefaultReferenceData(), WithRand(pick))
		reply := e.Converse(types.ConversationRequest{Message: "hello", Language: types.LanguageEnglish})

		assert.Contains(t, vocabularies[types.LanguageEnglish].templates[types.IntentGreeting], reply.Response)
	}

	a := New(DefaultReferenceData(), WithRand(rand.New(rand.NewPCG(3, 9))))
	b := New(DefaultReferenceData(), WithRand(rand.New(rand.NewPCG(3, 9))))
	for i := 0; i < 10; i++ {
		req := types.ConversationRequest{Message: "I want to donate"}
		assert.Equal(t, a.Converse(req), b.Converse(req))
	}
}

func TestConverse_EveryIntentHasTemplatesAndSuggestions(t *testing.T) {
	intents := append([]types.Intent{types.IntentHelp}, intentPriority...)

	for lang, vocab := range vocabularies {
		for _, intent := range intents {
			assert.NotEmpty(t, vocab.templates[intent], "%s/%s templates", lang, intent)
			n := len(vocab.suggests[intent])
			assert.True(t, n >= 2 && n <= 3, "%s/%s has %d suggestions", lang, intent, n)
		}
	}
}

func TestConverse_UnknownLanguageUsesEnglish(t *testing.T) {
	e := New(DefaultReferenceData(), WithRand(fixedRand(0)))

	reply := e.Converse(types.ConversationRequest{Message: "hello", Language: "fr"})

	assert.Equal(t, types.IntentGreeting, reply.Intent)
	assert.Equal(t, types.IntentDonate, Classify(types.LanguageEnglish, "donation drive"))
}

func TestResolveLanguage(t *testing.T) {
	assert.Equal(t, types.LanguageEnglish, ResolveLanguage(types.LanguageEnglish, "আমাদের পানি দরকার", types.LanguageBengali))
	assert.Equal(t, types.LanguageBengali, ResolveLanguage("", "আমাদের পানি দরকার", types.LanguageEnglish))
	assert.Equal(t, types.LanguageEnglish, ResolveLanguage("", "we need water", types.LanguageEnglish))
	assert.Equal(t, types.LanguageBengali, ResolveLanguage("", "need water", types.LanguageBengali))
}

func TestHelpReply(t *testing.T) {
	reply := HelpReply(types.LanguageBengali)
	assert.Equal(t, types.IntentHelp, reply.Intent)
	assert.Equal(t, vocabularies[types.LanguageBengali].templates[types.IntentHelp][0], reply.Response)
	assert.NotEmpty(t, reply.Suggestions)

	assert.Equal(t, HelpReply(types.LanguageEnglish), HelpReply("fr"))
}
