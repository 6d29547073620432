package service

import (
	"time"

	"backend/internal/model"
)

// Priority weights. The final score is a clamped weighted sum in [0,100]:
// urgency (0-40) + affected people (10-30) + category (8-20) + freshness (0-10).
var urgencyWeights = map[string]int{
	model.UrgencyHigh:   40,
	model.UrgencyMedium: 25,
	model.UrgencyLow:    10,
}

var categoryWeights = map[string]int{
	CategoryMedical:  20,
	CategoryMedicine: 18,
	CategoryWater:    18,
	CategoryFood:     15,
	CategoryShelter:  12,
	CategoryClothing: 10,
}

const defaultCategoryWeight = 8

// PriorityScore computes the urgency ranking of a request. Pure and
// deterministic: the same inputs always produce the same score.
func PriorityScore(urgency string, peopleCount int, category string, submittedAt, now time.Time) int {
	score := 10
	if w, ok := urgencyWeights[urgency]; ok {
		score = w
	}

	switch {
	case peopleCount >= 100:
		score += 30
	case peopleCount >= 50:
		score += 25
	case peopleCount >= 20:
		score += 20
	case peopleCount >= 10:
		score += 15
	default:
		score += 10
	}

	if w, ok := categoryWeights[NormalizeCategory(category)]; ok {
		score += w
	} else {
		score += defaultCategoryWeight
	}

	score += freshnessBonus(submittedAt, now)

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// freshnessBonus favors recent submissions: 10 points when fresh, dropping one
// point every two hours down to 0. Monotonically non-increasing with age.
func freshnessBonus(submittedAt, now time.Time) int {
	age := now.Sub(submittedAt)
	if age < 0 {
		age = 0
	}
	bonus := 10 - int(age.Hours())/2
	if bonus < 0 {
		return 0
	}
	return bonus
}
