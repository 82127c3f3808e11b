package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freezeToday(t *testing.T, at time.Time) {
	t.Helper()
	SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { SetClock(nil) })
}

func TestMatchInput_Validate(t *testing.T) {
	freezeToday(t, time.Date(2025, time.October, 1, 9, 30, 0, 0, time.UTC))
	ref := testReference(t)

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, genkMatch().Validate(ref))
	})

	t.Run("rankings are optional", func(t *testing.T) {
		in := genkMatch()
		in.HomeRanking, in.AwayRanking = nil, nil
		require.NoError(t, in.Validate(ref))
	})

	t.Run("last matchday of the season", func(t *testing.T) {
		in := genkMatch()
		in.Matchday = 30
		require.NoError(t, in.Validate(ref))
	})

	t.Run("match today is allowed", func(t *testing.T) {
		in := genkMatch()
		in.Date = time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, in.Validate(ref))
	})

	tests := []struct {
		name   string
		mutate func(*MatchInput)
		field  string
		reason string
	}{
		{"same teams", func(m *MatchInput) { m.AwayTeam = m.HomeTeam }, "away_team", "must differ from home_team"},
		{"missing home", func(m *MatchInput) { m.HomeTeam = "" }, "home_team", "is required"},
		{"matchday too low", func(m *MatchInput) { m.Matchday = 0 }, "matchday", "must be at least 1"},
		{"matchday too high", func(m *MatchInput) { m.Matchday = 37 }, "matchday", "must be at most 36"},
		{"matchday beyond league season", func(m *MatchInput) { m.Matchday = 31 }, "matchday", "must be at most 30 in the Pro League"},
		{"hour too high", func(m *MatchInput) { m.Hour = 24 }, "hour", "must be at most 23"},
		{"ranking too high", func(m *MatchInput) { m.HomeRanking = intPtr(21) }, "home_ranking", "must be at most 20"},
		{"goals negative", func(m *MatchInput) { m.GoalsScoredLast5 = -1 }, "goals_scored_last5", "must be at least 0"},
		{"conceded too high", func(m *MatchInput) { m.GoalsConcededLast5 = 51 }, "goals_conceded_last5", "must be at most 50"},
		{"wins too high", func(m *MatchInput) { m.WinsLast5 = 6 }, "wins_last5", "must be at most 5"},
		{"missing date", func(m *MatchInput) { m.Date = time.Time{} }, "date", "is required"},
		{"past date", func(m *MatchInput) { m.Date = time.Date(2025, time.September, 30, 0, 0, 0, 0, time.UTC) }, "date", "must not be in the past"},
		{"unknown home", func(m *MatchInput) { m.HomeTeam = "Ajax" }, "home_team", "not in any league roster"},
		{"away from other league", func(m *MatchInput) { m.AwayTeam = teamBasel }, "away_team", "not in the Pro League roster"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := genkMatch()
			tt.mutate(&in)

			err := in.Validate(ref)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.reason, verr.Fields[tt.field])
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestMatchInput_ValidateCollectsAllFields(t *testing.T) {
	freezeToday(t, time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC))

	in := genkMatch()
	in.Matchday = 0
	in.Hour = 30
	in.WinsLast5 = 9

	err := in.Validate(testReference(t))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
	assert.Equal(t, "invalid match input: hour: must be at most 23; matchday: must be at least 1; wins_last5: must be at most 5", err.Error())
}

func TestParseRank(t *testing.T) {
	tests := []struct {
		in       string
		expected *int
	}{
		{"7", intPtr(7)},
		{" 12 ", intPtr(12)},
		{"3.0", intPtr(3)},
		{"", nil},
		{"n/a", nil},
		{"2.5", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseRank(tt.in), "input %q", tt.in)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-10-18")
	require.NoError(t, err)
	assert.Equal(t, saturday, d)

	_, err = ParseDate("18/10/2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse match date")
}

func TestCalendarDate(t *testing.T) {
	zurich := time.FixedZone("CEST", 2*60*60)
	local := time.Date(2025, time.October, 18, 23, 45, 0, 0, zurich)
	assert.Equal(t, saturday, CalendarDate(local))
}
