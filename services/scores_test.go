package services

import (
	"testing"

	"podium/models"
)

func TestScoreClamping(t *testing.T) {
	room := &models.Room{ScorePro: 50, ScoreCon: 50}

	if got := ApplyScore(room, models.SidePro, 1000, "extreme bonus"); got != 100 {
		t.Errorf("Expected clamp to 100, got %d", got)
	}
	if got := ApplyScore(room, models.SidePro, -1000, "extreme penalty"); got != 0 {
		t.Errorf("Expected clamp to 0, got %d", got)
	}
	if got := ApplyScore(room, models.SideCon, 7, "good point"); got != 57 {
		t.Errorf("Expected 57, got %d", got)
	}
	if got := ApplyScore(room, models.SideCon, -10, "fallacy"); got != 47 {
		t.Errorf("Expected 47, got %d", got)
	}
}

func TestScoreBoundsHoldForAnySequence(t *testing.T) {
	room := &models.Room{ScorePro: 50, ScoreCon: 50}
	deltas := []int{3, -8, 200, -200, 0, 99, -1, 5, -1000, 1000}
	for _, d := range deltas {
		ApplyScore(room, models.SidePro, d, "step")
		ApplyScore(room, models.SideCon, -d, "step")
		for _, side := range []models.Side{models.SidePro, models.SideCon} {
			if s := room.Score(side); s < 0 || s > 100 {
				t.Fatalf("Score %s out of bounds: %d", side, s)
			}
		}
	}
}

func TestScoreHistoryAppended(t *testing.T) {
	room := &models.Room{ScorePro: 50, ScoreCon: 50}
	ApplyScore(room, models.SidePro, 4, "strong evidence")
	ApplyScore(room, models.SideCon, -3, "ad hominem")

	if len(room.ScoreHistory) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(room.ScoreHistory))
	}
	first := room.ScoreHistory[0]
	if first.Side != models.SidePro || first.Delta != 4 || first.Result != 54 || first.Reason != "strong evidence" {
		t.Errorf("Unexpected first entry: %+v", first)
	}
	second := room.ScoreHistory[1]
	if second.Side != models.SideCon || second.Delta != -3 || second.Result != 47 {
		t.Errorf("Unexpected second entry: %+v", second)
	}
}
