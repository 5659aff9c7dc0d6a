package app_test

import (
	"math"
	"testing"

	"trivia-service/internal/app"
)

func TestScoreBounds(t *testing.T) {
	cases := []struct {
		correct bool
		elapsed float64
		want    int
	}{
		{true, 0, 1500},
		{true, 5, 1375},
		{true, 0.5, 1488},
		{true, 20, 1000},
		{true, 30, 1000},
		{true, -3, 1500},
		{true, math.Inf(1), 1000},
		{true, math.NaN(), 1000},
		{false, 0, 0},
		{false, 25, 0},
	}
	for _, tc := range cases {
		if got := app.Score(tc.correct, tc.elapsed); got != tc.want {
			t.Fatalf("Score(%v, %v) = %d, want %d", tc.correct, tc.elapsed, got, tc.want)
		}
	}
}

func TestScoreNonIncreasing(t *testing.T) {
	prev := app.Score(true, 0)
	for elapsed := 0.0; elapsed <= 40; elapsed += 0.1 {
		got := app.Score(true, elapsed)
		if got > prev {
			t.Fatalf("score rose from %d to %d at %.1fs", prev, got, elapsed)
		}
		if got < 1000 {
			t.Fatalf("score %d below floor at %.1fs", got, elapsed)
		}
		prev = got
	}
}
