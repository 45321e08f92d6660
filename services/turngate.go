package services

import "podium/models"

// CanSpeak decides whether a participant may submit a debate message right
// now. It must be evaluated against the authoritative room state, never a
// client's cached copy.
func CanSpeak(role models.Role, stage models.Stage, turnOwner models.Role) bool {
	if role == models.RoleObserver {
		return false
	}
	switch stage {
	case models.StageWaiting, models.StageVerdictPending, models.StageEnded:
		return false
	}
	return role == turnOwner && turnOwner != models.RoleNone
}
