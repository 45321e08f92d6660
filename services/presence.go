package services

import (
	"time"

	"podium/models"
)

// DefaultHeartbeatWindow is how long a participant may go silent before being
// shown as offline. Three missed 5-second heartbeats. Staleness only affects
// the presence display; participants are removed through an explicit leave.
const DefaultHeartbeatWindow = 15 * time.Second

// FindParticipant returns the roster entry for a session id, or nil.
func FindParticipant(room *models.Room, sessionID string) *models.Participant {
	for i := range room.Participants {
		if room.Participants[i].SessionID == sessionID {
			return &room.Participants[i]
		}
	}
	return nil
}

// JoinParticipant registers a session in the room's roster. Rejoining with a
// known session id returns the existing entry unchanged (page refresh); a new
// session gets host if the seat is free, else opponent, else observer.
func JoinParticipant(room *models.Room, sessionID, displayName string, stance models.Stance) (*models.Participant, bool) {
	if p := FindParticipant(room, sessionID); p != nil {
		p.LastSeenAt = time.Now()
		return p, false
	}

	role := models.RoleObserver
	if room.Debater(models.RoleHost) == nil {
		role = models.RoleHost
	} else if room.Debater(models.RoleOpponent) == nil {
		role = models.RoleOpponent
	}
	if stance == "" {
		stance = models.StanceNeutral
	}

	now := time.Now()
	room.Participants = append(room.Participants, models.Participant{
		SessionID:   sessionID,
		DisplayName: displayName,
		Role:        role,
		Stance:      stance,
		JoinedAt:    now,
		LastSeenAt:  now,
	})
	return &room.Participants[len(room.Participants)-1], true
}

// TouchParticipant records a heartbeat. Returns false for unknown sessions,
// in which case the caller should re-join.
func TouchParticipant(room *models.Room, sessionID string) bool {
	p := FindParticipant(room, sessionID)
	if p == nil {
		return false
	}
	p.LastSeenAt = time.Now()
	return true
}

// RemoveParticipant drops a session from the roster. Returns false if the
// session was not present.
func RemoveParticipant(room *models.Room, sessionID string) bool {
	for i := range room.Participants {
		if room.Participants[i].SessionID == sessionID {
			room.Participants = append(room.Participants[:i], room.Participants[i+1:]...)
			return true
		}
	}
	return false
}

// HasBothDebaters reports whether the host and opponent seats are both taken.
func HasBothDebaters(room *models.Room) bool {
	return room.Debater(models.RoleHost) != nil && room.Debater(models.RoleOpponent) != nil
}

// DebaterCount counts non-observer participants.
func DebaterCount(room *models.Room) int {
	n := 0
	for i := range room.Participants {
		if room.Participants[i].Role != models.RoleObserver {
			n++
		}
	}
	return n
}

// Online reports whether a participant has been heard from within the window.
func Online(p *models.Participant, now time.Time, window time.Duration) bool {
	if window <= 0 {
		window = DefaultHeartbeatWindow
	}
	return now.Sub(p.LastSeenAt) <= window
}
