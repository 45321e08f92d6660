package services

import (
	"time"

	"podium/models"
)

const (
	minScore = 0
	maxScore = 100
)

// ApplyScore applies a delta to one side's score, clamped to [0,100], and
// appends an entry to the room's score history. Out-of-range deltas are
// clamped, not rejected. Returns the resulting score.
func ApplyScore(room *models.Room, side models.Side, delta int, reason string) int {
	next := clampScore(room.Score(side) + delta)
	if side == models.SidePro {
		room.ScorePro = next
	} else {
		room.ScoreCon = next
	}
	room.ScoreHistory = append(room.ScoreHistory, models.ScoreEntry{
		At:     time.Now(),
		Side:   side,
		Delta:  delta,
		Result: next,
		Reason: reason,
	})
	return next
}

func clampScore(v int) int {
	if v < minScore {
		return minScore
	}
	if v > maxScore {
		return maxScore
	}
	return v
}
