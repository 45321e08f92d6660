package services

import (
	"time"

	"podium/models"
)

// StageElapsed returns how long the room has been in its current stage.
func StageElapsed(room *models.Room, now time.Time) time.Duration {
	if room.StageStartedAt.IsZero() {
		return 0
	}
	return now.Sub(room.StageStartedAt)
}

// StageRemaining returns how much time is left in the current stage, zero for
// untimed stages or once the stage has run out.
func StageRemaining(room *models.Room, now time.Time) time.Duration {
	spec, ok := StageSpecFor(room.Stage)
	if !ok || spec.Duration == 0 {
		return 0
	}
	rem := StageDuration(room, spec) - StageElapsed(room, now)
	if rem < 0 {
		return 0
	}
	return rem
}

// DueForAutoAdvance reports whether a timed stage has run out of time.
// Untimed stages (waiting, verdict_pending, ended) never auto-advance.
func DueForAutoAdvance(room *models.Room, now time.Time) bool {
	spec, ok := StageSpecFor(room.Stage)
	if !ok || spec.Duration == 0 {
		return false
	}
	return StageElapsed(room, now) >= StageDuration(room, spec)
}
