package services

import (
	"testing"
	"time"

	"podium/models"
)

func newWaitingRoom() *models.Room {
	return &models.Room{
		ID:             "room1",
		Stage:          models.StageWaiting,
		StageStartedAt: time.Now(),
	}
}

func TestRoleAssignmentOrder(t *testing.T) {
	room := newWaitingRoom()

	p1, isNew := JoinParticipant(room, "s1", "Alice", models.StanceAgree)
	if !isNew || p1.Role != models.RoleHost {
		t.Errorf("First join should be host, got %s (new=%v)", p1.Role, isNew)
	}
	p2, _ := JoinParticipant(room, "s2", "Bob", models.StanceDisagree)
	if p2.Role != models.RoleOpponent {
		t.Errorf("Second join should be opponent, got %s", p2.Role)
	}
	p3, _ := JoinParticipant(room, "s3", "Carol", "")
	if p3.Role != models.RoleObserver {
		t.Errorf("Third join should be observer, got %s", p3.Role)
	}
	if p3.Stance != models.StanceNeutral {
		t.Errorf("Empty stance should default to neutral, got %s", p3.Stance)
	}
}

func TestRejoinIsIdempotent(t *testing.T) {
	room := newWaitingRoom()
	JoinParticipant(room, "s1", "Alice", models.StanceAgree)
	JoinParticipant(room, "s2", "Bob", models.StanceDisagree)

	p, isNew := JoinParticipant(room, "s1", "Alice again", models.StanceDisagree)
	if isNew {
		t.Error("Rejoin must not count as new")
	}
	if p.Role != models.RoleHost {
		t.Errorf("Rejoin changed role to %s", p.Role)
	}
	if p.Stance != models.StanceAgree {
		t.Errorf("Rejoin changed stance to %s", p.Stance)
	}
	if len(room.Participants) != 2 {
		t.Errorf("Rejoin duplicated participant, count=%d", len(room.Participants))
	}
}

func TestHeartbeatTouch(t *testing.T) {
	room := newWaitingRoom()
	JoinParticipant(room, "s1", "Alice", models.StanceAgree)

	if !TouchParticipant(room, "s1") {
		t.Error("Heartbeat for known session failed")
	}
	if TouchParticipant(room, "ghost") {
		t.Error("Heartbeat for unknown session succeeded")
	}
}

func TestRemoveAndCount(t *testing.T) {
	room := newWaitingRoom()
	JoinParticipant(room, "s1", "Alice", models.StanceAgree)
	JoinParticipant(room, "s2", "Bob", models.StanceDisagree)
	JoinParticipant(room, "s3", "Carol", models.StanceNeutral)

	if DebaterCount(room) != 2 {
		t.Errorf("DebaterCount = %d, want 2", DebaterCount(room))
	}
	if !RemoveParticipant(room, "s2") {
		t.Error("Remove of known session failed")
	}
	if RemoveParticipant(room, "s2") {
		t.Error("Second remove should report absence")
	}
	if DebaterCount(room) != 1 {
		t.Errorf("DebaterCount after remove = %d, want 1", DebaterCount(room))
	}
	if HasBothDebaters(room) {
		t.Error("Room should be missing a debater")
	}
}

func TestStalenessWindow(t *testing.T) {
	now := time.Now()
	fresh := &models.Participant{LastSeenAt: now.Add(-5 * time.Second)}
	stale := &models.Participant{LastSeenAt: now.Add(-16 * time.Second)}

	if !Online(fresh, now, 0) {
		t.Error("Participant seen 5s ago should be online")
	}
	if Online(stale, now, 0) {
		t.Error("Participant silent for 16s should be offline")
	}
	// Staleness is display-only; the roster entry survives.
	room := newWaitingRoom()
	JoinParticipant(room, "s1", "Alice", models.StanceAgree)
	room.Participants[0].LastSeenAt = now.Add(-time.Hour)
	if FindParticipant(room, "s1") == nil {
		t.Error("Stale participant must not be removed implicitly")
	}
}
