package services

import (
	"testing"

	"podium/models"
)

func TestObserverNeverSpeaks(t *testing.T) {
	for _, spec := range Stages() {
		if CanSpeak(models.RoleObserver, spec.ID, spec.TurnOwner) {
			t.Errorf("Observer allowed to speak in stage %s", spec.ID)
		}
	}
}

func TestNoSpeechInInertStages(t *testing.T) {
	for _, stage := range []models.Stage{models.StageWaiting, models.StageVerdictPending, models.StageEnded} {
		for _, role := range []models.Role{models.RoleHost, models.RoleOpponent} {
			if CanSpeak(role, stage, role) {
				t.Errorf("%s allowed to speak in stage %s", role, stage)
			}
		}
	}
}

func TestOnlyTurnOwnerSpeaks(t *testing.T) {
	for _, spec := range Stages() {
		if spec.Duration == 0 {
			continue
		}
		if !CanSpeak(spec.TurnOwner, spec.ID, spec.TurnOwner) {
			t.Errorf("Turn owner %s rejected in stage %s", spec.TurnOwner, spec.ID)
		}
		other := models.RoleHost
		if spec.TurnOwner == models.RoleHost {
			other = models.RoleOpponent
		}
		if CanSpeak(other, spec.ID, spec.TurnOwner) {
			t.Errorf("Non-owner %s allowed to speak in stage %s", other, spec.ID)
		}
	}
}
