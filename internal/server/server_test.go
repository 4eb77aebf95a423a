package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relieflink/internal/decision"
	"relieflink/internal/fallback"
	"relieflink/pkg/types"
)

func newTestService(t *testing.T) (*Service, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()

	// no agent configured, so every decision comes from the fallback engine
	decisions := decision.New(nil, fallback.New(fallback.DefaultReferenceData()), decision.WithLogger(logger))

	cfg := &types.Config{ServerPort: 0, AverageSpeedKmh: 25}
	return New(cfg, logger, decisions), hook
}

func do(t *testing.T, s *Service, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, hook := newTestService(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "http request", hook.LastEntry().Message)
}

func TestValidateEndpoint(t *testing.T) {
	s, _ := newTestService(t)

	rec := do(t, s, http.MethodPost, "/v1/validate", `{"itemName":"Ri","quantity":5,"location":"Dhanmondi 5"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out decision.Outcome[types.ValidationOutcome]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.True(t, out.Degraded)
	assert.Equal(t, decision.SourceFallback, out.Source)
	assert.Len(t, out.Data.Issues, 1)
	assert.Equal(t, types.RiskLow, out.Data.RiskLevel)
}

func TestMatchEndpoint(t *testing.T) {
	s, _ := newTestService(t)

	body := `{"primaryItem":{"kind":"donation","category":"water","quantity":100,"location":{"lat":23.7461,"lng":90.3742}},"constraints":{"maxResults":3}}`
	rec := do(t, s, http.MethodPost, "/v1/match", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var out decision.Outcome[types.MatchSet]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.LessOrEqual(t, len(out.Data.Matches), 3)
	assert.NotEmpty(t, out.Data.Matches)
}

func TestAssignEndpoint(t *testing.T) {
	s, _ := newTestService(t)

	body := `{"matchId":"m-9","pickup":{"address":"Dhanmondi","location":{"lat":23.7461,"lng":90.3742}},"delivery":{"address":"Jatrabari"}}`
	rec := do(t, s, http.MethodPost, "/v1/assign", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var out decision.Outcome[types.VolunteerAssignment]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "m-9", out.Data.MatchID)
	assert.Equal(t, types.AssignmentAssigned, out.Data.Status)
	assert.NotEmpty(t, out.Data.AssignedVolunteer.ID)
}

func TestConverseEndpoint(t *testing.T) {
	s, _ := newTestService(t)

	rec := do(t, s, http.MethodPost, "/v1/converse", `{"message":"I want to donate blankets"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out decision.Outcome[types.ConversationReply]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, types.IntentDonate, out.Data.Intent)
	assert.NotEmpty(t, out.Data.Suggestions)
}

func TestBadRequests(t *testing.T) {
	s, _ := newTestService(t)

	rec := do(t, s, http.MethodPost, "/v1/validate", `{"itemName":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid JSON body"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/v1/match", strings.NewReader(`itemName=rice`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)

	rec = do(t, s, http.MethodGet, "/v1/validate", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTrailingSlashRedirect(t *testing.T) {
	s, _ := newTestService(t)

	rec := do(t, s, http.MethodGet, "/healthz/", "")

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/healthz", rec.Header().Get("Location"))
}

func TestETAEndpoint(t *testing.T) {
	s, _ := newTestService(t)

	t.Run("known origin", func(t *testing.T) {
		before := time.Now()
		rec := do(t, s, http.MethodGet, "/v1/eta?fromLat=23.8103&fromLng=90.4125&toLat=22.3569&toLng=91.7832", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var out etaResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.True(t, out.Available)
		require.NotNil(t, out.DistanceKm)
		assert.InEpsilon(t, 213.0, *out.DistanceKm, 0.05)
		require.NotNil(t, out.EstimatedArrival)
		assert.True(t, out.EstimatedArrival.After(before.Add(8*time.Hour)))
		assert.Equal(t, "8 hrs 34 mins", out.TravelTime)
	})

	t.Run("unknown origin", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/v1/eta?toLat=22.3569&toLng=91.7832", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"available":false}`, rec.Body.String())
	})

	t.Run("missing destination", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/v1/eta?fromLat=23.8", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed number", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/v1/eta?toLat=north&toLng=1", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRecoverer(t *testing.T) {
	s, hook := newTestService(t)

	h := s.Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "handler panicked", hook.LastEntry().Message)
}
