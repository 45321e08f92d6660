package services

import (
	"testing"
	"time"

	"podium/models"
)

func TestStageElapsedAndRemaining(t *testing.T) {
	now := time.Now()
	room := &models.Room{
		Stage:          models.StageOpeningPro,
		StageStartedAt: now.Add(-30 * time.Second),
	}

	if got := StageElapsed(room, now); got != 30*time.Second {
		t.Errorf("Elapsed = %v, want 30s", got)
	}

	spec, _ := StageSpecFor(models.StageOpeningPro)
	want := spec.Duration - 30*time.Second
	if got := StageRemaining(room, now); got != want {
		t.Errorf("Remaining = %v, want %v", got, want)
	}
}

func TestDueForAutoAdvance(t *testing.T) {
	now := time.Now()
	room := &models.Room{
		Stage:          models.StageOpeningPro,
		StageStartedAt: now,
	}
	if DueForAutoAdvance(room, now) {
		t.Error("Fresh stage must not be due")
	}

	spec, _ := StageSpecFor(models.StageOpeningPro)
	room.StageStartedAt = now.Add(-spec.Duration)
	if !DueForAutoAdvance(room, now) {
		t.Error("Expired stage must be due")
	}
}

func TestUntimedStagesNeverDue(t *testing.T) {
	now := time.Now()
	for _, stage := range []models.Stage{models.StageWaiting, models.StageVerdictPending, models.StageEnded} {
		room := &models.Room{Stage: stage, StageStartedAt: now.Add(-time.Hour)}
		if DueForAutoAdvance(room, now) {
			t.Errorf("Stage %s must never auto-advance", stage)
		}
		if StageRemaining(room, now) != 0 {
			t.Errorf("Stage %s must report zero remaining", stage)
		}
	}
}

func TestDueHonorsOverride(t *testing.T) {
	now := time.Now()
	room := &models.Room{
		Stage:          models.StageOpeningPro,
		StageStartedAt: now.Add(-2 * time.Second),
		Settings:       models.RoomSettings{StageSeconds: map[string]int{string(models.StageOpeningPro): 1}},
	}
	if !DueForAutoAdvance(room, now) {
		t.Error("Override duration not honored")
	}
}
