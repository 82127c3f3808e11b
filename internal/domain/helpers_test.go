package domain

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	teamGenk        = "Genk"
	teamSintTruiden = "Sint-Truiden"
	teamClubBrugge  = "Club Brugge"
	teamCercle      = "Cercle Brugge"
	teamBasel       = "FC Basel"
	teamNoStadium   = "Dender"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func genkProfile() StadiumProfile {
	return StadiumProfile{
		Team:      teamGenk,
		Stadium:   "Cegeka Arena",
		Latitude:  50.9660,
		Longitude: 5.4878,
		Capacity:  23500,
		P30:       14907.0,
		P70:       18352.6,
	}
}

func testReference(t *testing.T) *ReferenceData {
	t.Helper()
	ref, err := NewReferenceData(1,
		[]League{
			{Slug: "pro-league", Name: "Pro League", Matchdays: 30, Teams: []string{teamGenk, teamSintTruiden, teamClubBrugge, teamCercle, teamNoStadium}},
			{Slug: "super-league", Name: "Super League", Matchdays: 36, Teams: []string{teamBasel}},
		},
		[]StadiumProfile{
			genkProfile(),
			{Team: teamSintTruiden, Latitude: 50.8142, Longitude: 5.1661, Capacity: 14600, P30: 6300, P70: 9200},
			{Team: teamClubBrugge, Latitude: 51.1931, Longitude: 3.1806, Capacity: 29062, P30: 20800, P70: 25400},
			{Team: teamCercle, Latitude: 51.1931, Longitude: 3.1806, Capacity: 29062, P30: 4300, P70: 6900, FullRoof: true},
			{Team: teamBasel, Latitude: 47.5415, Longitude: 7.6203, Capacity: 38512, P30: 21500, P70: 26800},
		},
		[]DerbyPair{{teamGenk, teamSintTruiden}, {teamClubBrugge, teamCercle}},
	)
	require.NoError(t, err)
	return ref
}

func intPtr(v int) *int { return &v }

// saturday is 2025-10-18, a Saturday.
var saturday = time.Date(2025, time.October, 18, 0, 0, 0, 0, time.UTC)

func genkMatch() MatchInput {
	return MatchInput{
		HomeTeam:           teamGenk,
		AwayTeam:           teamClubBrugge,
		Matchday:           10,
		Date:               saturday,
		Hour:               18,
		HomeRanking:        intPtr(3),
		AwayRanking:        intPtr(6),
		GoalsScoredLast5:   9,
		GoalsConcededLast5: 4,
		WinsLast5:          3,
	}
}
