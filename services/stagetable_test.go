package services

import (
	"testing"
	"time"

	"podium/models"
)

func TestStageTableShape(t *testing.T) {
	stages := Stages()
	if len(stages) != 13 {
		t.Fatalf("Expected 13 stages, got %d", len(stages))
	}

	// Every stage except ended has a successor.
	for _, spec := range stages {
		if spec.ID == models.StageEnded {
			if spec.Next != "" {
				t.Errorf("ended must be terminal, has successor %s", spec.Next)
			}
			continue
		}
		next, ok := NextStage(spec.ID)
		if !ok {
			t.Errorf("Stage %s has no successor", spec.ID)
		}
		if _, found := StageSpecFor(next); !found {
			t.Errorf("Stage %s points at unknown successor %s", spec.ID, next)
		}
	}
}

func TestStageChainReachesEnded(t *testing.T) {
	seen := map[models.Stage]bool{}
	stage := models.StageWaiting
	for i := 0; i < 20; i++ {
		if seen[stage] {
			t.Fatalf("Stage chain revisits %s", stage)
		}
		seen[stage] = true
		if stage == models.StageEnded {
			break
		}
		next, ok := NextStage(stage)
		if !ok {
			t.Fatalf("Chain broken at %s", stage)
		}
		stage = next
	}
	if stage != models.StageEnded {
		t.Errorf("Chain did not terminate at ended, stopped at %s", stage)
	}
	if len(seen) != 13 {
		t.Errorf("Chain visited %d stages, expected all 13", len(seen))
	}
}

func TestUntimedStages(t *testing.T) {
	untimed := map[models.Stage]bool{
		models.StageWaiting:        true,
		models.StageVerdictPending: true,
		models.StageEnded:          true,
	}
	for _, spec := range Stages() {
		if untimed[spec.ID] {
			if spec.Duration != 0 {
				t.Errorf("Stage %s should have no duration, has %v", spec.ID, spec.Duration)
			}
			if spec.TurnOwner != models.RoleNone {
				t.Errorf("Stage %s should have no turn owner, has %s", spec.ID, spec.TurnOwner)
			}
			continue
		}
		if spec.Duration <= 0 {
			t.Errorf("Stage %s must have a positive duration", spec.ID)
		}
		if spec.TurnOwner != models.RoleHost && spec.TurnOwner != models.RoleOpponent {
			t.Errorf("Stage %s must be owned by host or opponent, got %q", spec.ID, spec.TurnOwner)
		}
	}
}

func TestTurnOwnerOrder(t *testing.T) {
	want := []struct {
		stage models.Stage
		owner models.Role
	}{
		{models.StageOpeningPro, models.RoleHost},
		{models.StageOpeningCon, models.RoleOpponent},
		{models.StageCrossConAsk, models.RoleOpponent},
		{models.StageCrossProAnswer, models.RoleHost},
		{models.StageCrossProAsk, models.RoleHost},
		{models.StageCrossConAnswer, models.RoleOpponent},
		{models.StageRebuttalCon, models.RoleOpponent},
		{models.StageRebuttalPro, models.RoleHost},
		{models.StageClosingCon, models.RoleOpponent},
		{models.StageClosingPro, models.RoleHost},
	}
	for _, w := range want {
		spec, ok := StageSpecFor(w.stage)
		if !ok {
			t.Fatalf("Missing stage %s", w.stage)
		}
		if spec.TurnOwner != w.owner {
			t.Errorf("Stage %s owner = %s, want %s", w.stage, spec.TurnOwner, w.owner)
		}
	}
}

func TestCrossExamFlags(t *testing.T) {
	for _, spec := range Stages() {
		cross := spec.ID == models.StageCrossConAsk || spec.ID == models.StageCrossProAnswer ||
			spec.ID == models.StageCrossProAsk || spec.ID == models.StageCrossConAnswer
		if spec.CrossExam != cross {
			t.Errorf("Stage %s CrossExam = %v, want %v", spec.ID, spec.CrossExam, cross)
		}
	}
}

func TestStageDurationOverride(t *testing.T) {
	room := &models.Room{
		Settings: models.RoomSettings{StageSeconds: map[string]int{
			string(models.StageOpeningPro): 30,
			string(models.StageWaiting):    99,
		}},
	}

	spec, _ := StageSpecFor(models.StageOpeningPro)
	if got := StageDuration(room, spec); got != 30*time.Second {
		t.Errorf("Override not applied, got %v", got)
	}

	// A zero-duration stage ignores overrides.
	waiting, _ := StageSpecFor(models.StageWaiting)
	if got := StageDuration(room, waiting); got != 0 {
		t.Errorf("waiting must stay untimed, got %v", got)
	}

	// No override falls back to the table value.
	con, _ := StageSpecFor(models.StageOpeningCon)
	if got := StageDuration(room, con); got != con.Duration {
		t.Errorf("Default duration changed, got %v", got)
	}
}
