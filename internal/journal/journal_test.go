package journal

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"relieflink/internal/agent"
	"relieflink/internal/decision"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestQueries(t *testing.T) {
	query, args, err := recentQuery("match", 0)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, collection, capability, source, degraded, degraded_reason, payload, decided_at FROM decisions WHERE capability = ? ORDER BY decided_at DESC, id LIMIT 1", query)
	assert.Equal(t, []any{"match"}, args)

	query, args, err = recentQuery("", 20)
	require.NoError(t, err)
	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "LIMIT 20")
	assert.Empty(t, args)

	query, _, err = tallyQuery()
	require.NoError(t, err)
	assert.Equal(t, "SELECT capability, source, degraded, COUNT(*) AS count FROM decisions GROUP BY capability, source, degraded ORDER BY capability, source, degraded", query)

	query, args, err = insertQuery(Entry{ID: "x", Collection: "matches", Payload: "{}"})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO decisions (capability,collection,decided_at,degraded,degraded_reason,id,payload,source) VALUES (?,?,?,?,?,?,?,?)", query)
	assert.Len(t, args, 8)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestRecordAndRecent(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	decided := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, j.Record(ctx, "matches", decision.Record{
		ID:             "rec-1",
		Capability:     agent.CapabilityMatch,
		Source:         decision.SourceFallback,
		Degraded:       true,
		DegradedReason: "agent timed out",
		DecidedAt:      decided,
	}))
	require.NoError(t, j.Record(ctx, "validations", decision.Record{
		ID:         "rec-2",
		Capability: agent.CapabilityValidate,
		Source:     decision.SourceAgent,
		DecidedAt:  decided.Add(time.Minute),
	}))
	require.NoError(t, j.Record(ctx, "notes", map[string]string{"text": "free-form"}))

	all, err := j.Recent(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "notes", all[0].Collection)
	assert.Equal(t, "rec-2", all[1].ID)
	assert.Equal(t, "rec-1", all[2].ID)

	matches, err := j.Recent(ctx, string(agent.CapabilityMatch), 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	got := matches[0]
	assert.True(t, got.Degraded)
	assert.Equal(t, "agent timed out", got.DegradedReason)
	assert.Equal(t, string(decision.SourceFallback), got.Source)
	assert.True(t, decided.Equal(got.DecidedAt))

	var payload decision.Record
	require.NoError(t, json.Unmarshal([]byte(got.Payload), &payload))
	assert.Equal(t, "rec-1", payload.ID)
}

func TestTallies(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	for i, src := range []decision.Source{decision.SourceFallback, decision.SourceFallback, decision.SourceAgent} {
		require.NoError(t, j.Record(ctx, "matches", decision.Record{
			ID:         string(rune('a' + i)),
			Capability: agent.CapabilityMatch,
			Source:     src,
			Degraded:   src == decision.SourceFallback,
		}))
	}

	tallies, err := j.Tallies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Tally{
		{Capability: "match", Source: "agent", Degraded: false, Count: 1},
		{Capability: "match", Source: "fallback", Degraded: true, Count: 2},
	}, tallies)
}

func TestJournalAsRecorder(t *testing.T) {
	var _ decision.Recorder = (*Journal)(nil)
}
