package service

import (
	"testing"
	"time"

	"backend/internal/model"
)

func TestPriorityScoreBounds(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name     string
		urgency  string
		people   int
		category string
		age      time.Duration
	}{
		{"minimal", model.UrgencyLow, 1, "unknown", 100 * time.Hour},
		{"maximal", model.UrgencyHigh, 500, CategoryMedical, 0},
		{"unknown urgency", "panic", 5, CategoryFood, time.Hour},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score := PriorityScore(tc.urgency, tc.people, tc.category, now.Add(-tc.age), now)
			if score < 0 || score > 100 {
				t.Errorf("score = %d, want within [0, 100]", score)
			}
		})
	}
}

func TestPriorityScoreHighUrgencyMassCasualty(t *testing.T) {
	now := time.Now()
	// high urgency (40) + 120 people (30) + medical (20) + fresh (10) = 100
	score := PriorityScore(model.UrgencyHigh, 120, CategoryMedical, now, now)
	if score != 100 {
		t.Errorf("score = %d, want 100", score)
	}

	// Same request a day old keeps everything but the freshness bonus.
	stale := PriorityScore(model.UrgencyHigh, 120, CategoryMedical, now.Add(-24*time.Hour), now)
	if stale != 90 {
		t.Errorf("stale score = %d, want 90", stale)
	}
}

func TestPriorityScoreDeterministic(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	submitted := now.Add(-3 * time.Hour)

	first := PriorityScore(model.UrgencyMedium, 25, CategoryWater, submitted, now)
	for i := 0; i < 5; i++ {
		if got := PriorityScore(model.UrgencyMedium, 25, CategoryWater, submitted, now); got != first {
			t.Fatalf("score changed between runs: %d vs %d", got, first)
		}
	}
}

func TestPriorityScoreUrgencyOrdering(t *testing.T) {
	now := time.Now()
	low := PriorityScore(model.UrgencyLow, 10, CategoryFood, now, now)
	medium := PriorityScore(model.UrgencyMedium, 10, CategoryFood, now, now)
	high := PriorityScore(model.UrgencyHigh, 10, CategoryFood, now, now)

	if !(low < medium && medium < high) {
		t.Errorf("urgency ordering broken: low=%d medium=%d high=%d", low, medium, high)
	}
}

func TestPriorityScorePeopleBrackets(t *testing.T) {
	now := time.Now()
	prev := -1
	for _, people := range []int{1, 10, 20, 50, 100} {
		score := PriorityScore(model.UrgencyLow, people, CategoryFood, now, now)
		if score < prev {
			t.Errorf("score for %d people = %d, less than smaller bracket %d", people, score, prev)
		}
		prev = score
	}
}

func TestFreshnessBonusNonIncreasing(t *testing.T) {
	now := time.Now()
	prev := 11
	for hours := 0; hours <= 30; hours++ {
		bonus := freshnessBonus(now.Add(-time.Duration(hours)*time.Hour), now)
		if bonus > prev {
			t.Fatalf("freshness bonus increased with age: %d hours old -> %d, previous %d", hours, bonus, prev)
		}
		if bonus < 0 || bonus > 10 {
			t.Fatalf("freshness bonus %d out of [0, 10]", bonus)
		}
		prev = bonus
	}

	if bonus := freshnessBonus(now.Add(-100*time.Hour), now); bonus != 0 {
		t.Errorf("ancient request bonus = %d, want 0", bonus)
	}
}

func TestFreshnessBonusFutureTimestamp(t *testing.T) {
	now := time.Now()
	// A clock-skewed future submission is treated as brand new, never >10.
	if bonus := freshnessBonus(now.Add(time.Hour), now); bonus != 10 {
		t.Errorf("future-dated bonus = %d, want 10", bonus)
	}
}
