package services

import (
	"time"

	"podium/models"

	"github.com/google/uuid"
)

// Winner decides the archived outcome from the final scores.
func Winner(scorePro, scoreCon int) string {
	switch {
	case scorePro > scoreCon:
		return models.WinnerPro
	case scoreCon > scorePro:
		return models.WinnerCon
	default:
		return models.WinnerDraw
	}
}

// BuildRecord snapshots a terminated room into its immutable archive.
func BuildRecord(room *models.Room) *models.DebateRecord {
	now := time.Now()
	participants := make([]models.RecordParticipant, 0, len(room.Participants))
	for _, p := range room.Participants {
		participants = append(participants, models.RecordParticipant{
			SessionID:   p.SessionID,
			DisplayName: p.DisplayName,
			Role:        p.Role,
			Stance:      p.Stance,
		})
	}
	return &models.DebateRecord{
		ID:           uuid.NewString(),
		RoomID:       room.ID,
		Topic:        room.Topic,
		Winner:       Winner(room.ScorePro, room.ScoreCon),
		ScorePro:     room.ScorePro,
		ScoreCon:     room.ScoreCon,
		Verdict:      lastVerdictText(room),
		Participants: participants,
		Messages:     append([]models.Message(nil), room.Messages...),
		ScoreHistory: append([]models.ScoreEntry(nil), room.ScoreHistory...),
		StartedAt:    room.CreatedAt,
		ArchivedAt:   now,
		DurationSecs: int(now.Sub(room.CreatedAt) / time.Second),
	}
}

func lastVerdictText(room *models.Room) string {
	for i := len(room.Messages) - 1; i >= 0; i-- {
		if room.Messages[i].Type == models.MessageVerdict {
			return room.Messages[i].Content
		}
	}
	return ""
}
