package leaderboard

import (
	"testing"

	"spelling-service/internal/constants"
	"spelling-service/internal/models"
)

func TestRankOrdering(t *testing.T) {
	results := []models.Result{
		{ParticipantID: "slow", Score: 8, Total: 10, TimeTakenSecs: 40},
		{ParticipantID: "fast", Score: 8, Total: 10, TimeTakenSecs: 30},
		{ParticipantID: "top", Score: 9, Total: 10, TimeTakenSecs: 999},
	}

	ranked := Rank(results)
	want := []string{"top", "fast", "slow"}
	for i, id := range want {
		if ranked[i].ParticipantID != id {
			t.Errorf("rank %d = %s, want %s", i+1, ranked[i].ParticipantID, id)
		}
		if ranked[i].Rank != i+1 {
			t.Errorf("entry %d has rank %d, want %d", i, ranked[i].Rank, i+1)
		}
	}
}

func TestRankMissingTimeSortsLast(t *testing.T) {
	results := []models.Result{
		{ParticipantID: "untimed", Score: 5, Total: 10},
		{ParticipantID: "timed", Score: 5, Total: 10, TimeTakenSecs: 120},
	}

	ranked := Rank(results)
	if ranked[0].ParticipantID != "timed" {
		t.Errorf("timed result should outrank untimed on equal score, got %s first", ranked[0].ParticipantID)
	}
}

func TestRankStableForEqualPairs(t *testing.T) {
	results := []models.Result{
		{ParticipantID: "first", Score: 7, Total: 10, TimeTakenSecs: 30},
		{ParticipantID: "second", Score: 7, Total: 10, TimeTakenSecs: 30},
	}

	ranked := Rank(results)
	if ranked[0].ParticipantID != "first" || ranked[1].ParticipantID != "second" {
		t.Errorf("equal (score, time) pairs must keep input order, got %s then %s",
			ranked[0].ParticipantID, ranked[1].ParticipantID)
	}
}

func TestTier(t *testing.T) {
	tests := []struct {
		name  string
		score int
		total int
		want  string
	}{
		{"perfect", 10, 10, constants.TierGrandmaster},
		{"ninety", 9, 10, constants.TierWordWizard},
		{"exactly seventy five", 15, 20, constants.TierSpellingBee},
		{"below seventy five", 7, 10, constants.TierRookie},
		{"zero", 0, 10, constants.TierRookie},
		{"zero total", 0, 0, constants.TierRookie},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tier(tt.score, tt.total); got != tt.want {
				t.Errorf("Tier(%d, %d) = %s, want %s", tt.score, tt.total, got, tt.want)
			}
		})
	}
}

func TestScopeFilters(t *testing.T) {
	results := []models.Result{
		{ParticipantID: "a", ClassID: "c1", SchoolID: "s1", Score: 1, Total: 5},
		{ParticipantID: "b", ClassID: "c2", SchoolID: "s1", Score: 2, Total: 5},
		{ParticipantID: "c", ClassID: "c1", SchoolID: "s2", Score: 3, Total: 5},
	}

	byClass := ByClass(results, "c1")
	if len(byClass) != 2 {
		t.Errorf("ByClass(c1) = %d results, want 2", len(byClass))
	}

	bySchool := BySchool(results, "s1")
	if len(bySchool) != 2 {
		t.Errorf("BySchool(s1) = %d results, want 2", len(bySchool))
	}
}
