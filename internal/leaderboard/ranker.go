package leaderboard

import (
	"sort"

	"spelling-service/internal/constants"
	"spelling-service/internal/models"
)

// Rank turns recorded results into a ranked, tie-broken, tiered listing.
//
// Primary key is raw score descending, not percentage: results with
// different totals shown in the same listing still compare by raw score.
// Ties break by ascending time taken; a result with no recorded time sorts
// last among its score ties. Equal (score, time) pairs keep input order.
func Rank(results []models.Result) []models.RankedEntry {
	sorted := make([]models.Result, len(results))
	copy(sorted, results)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return lessTime(sorted[i], sorted[j])
	})

	entries := make([]models.RankedEntry, len(sorted))
	for i, r := range sorted {
		entries[i] = models.RankedEntry{
			Rank:          i + 1,
			ParticipantID: r.ParticipantID,
			Score:         r.Score,
			Total:         r.Total,
			Mode:          r.Mode,
			TimeTakenSecs: r.TimeTakenSecs,
			Tier:          Tier(r.Score, r.Total),
		}
	}
	return entries
}

func lessTime(a, b models.Result) bool {
	switch {
	case a.HasTimeTaken() && b.HasTimeTaken():
		return a.TimeTakenSecs < b.TimeTakenSecs
	case a.HasTimeTaken():
		return true
	default:
		return false
	}
}

// Tier classifies a result by percentage score. Boundaries are inclusive of
// the lower bound, evaluated top-down.
func Tier(score, total int) string {
	if total <= 0 {
		return constants.TierRookie
	}
	pct := float64(score) / float64(total) * 100

	switch {
	case pct == 100:
		return constants.TierGrandmaster
	case pct >= 90:
		return constants.TierWordWizard
	case pct >= 75:
		return constants.TierSpellingBee
	default:
		return constants.TierRookie
	}
}

// ByClass filters results down to one class before ranking.
func ByClass(results []models.Result, classID string) []models.Result {
	var out []models.Result
	for _, r := range results {
		if r.ClassID == classID {
			out = append(out, r)
		}
	}
	return out
}

// BySchool filters results down to one school before ranking.
func BySchool(results []models.Result, schoolID string) []models.Result {
	var out []models.Result
	for _, r := range results {
		if r.SchoolID == schoolID {
			out = append(out, r)
		}
	}
	return out
}
