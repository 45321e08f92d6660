package models

import "time"

// Winner values for an archived debate.
const (
	WinnerPro  = "pro"
	WinnerCon  = "con"
	WinnerDraw = "draw"
)

// RecordParticipant is a participant identity frozen into an archive.
type RecordParticipant struct {
	SessionID   string `bson:"sessionId" json:"sessionId"`
	DisplayName string `bson:"displayName" json:"displayName"`
	Role        Role   `bson:"role" json:"role"`
	Stance      Stance `bson:"stance" json:"stance"`
}

// DebateRecord is the immutable archive produced exactly once when a room
// reaches the ended stage. RoomID carries a unique index so concurrent
// archive attempts cannot produce duplicates.
type DebateRecord struct {
	ID           string              `bson:"_id" json:"id"`
	RoomID       string              `bson:"roomId" json:"roomId"`
	Topic        string              `bson:"topic" json:"topic"`
	Winner       string              `bson:"winner" json:"winner"`
	ScorePro     int                 `bson:"scorePro" json:"scorePro"`
	ScoreCon     int                 `bson:"scoreCon" json:"scoreCon"`
	Verdict      string              `bson:"verdict" json:"verdict"`
	Participants []RecordParticipant `bson:"participants" json:"participants"`
	Messages     []Message           `bson:"messages" json:"messages"`
	ScoreHistory []ScoreEntry        `bson:"scoreHistory" json:"scoreHistory"`
	StartedAt    time.Time           `bson:"startedAt" json:"startedAt"`
	ArchivedAt   time.Time           `bson:"archivedAt" json:"archivedAt"`
	DurationSecs int                 `bson:"durationSeconds" json:"durationSeconds"`
}

// Clone returns a deep copy of the record.
func (r *DebateRecord) Clone() *DebateRecord {
	cp := *r
	cp.Participants = append([]RecordParticipant(nil), r.Participants...)
	cp.Messages = append([]Message(nil), r.Messages...)
	cp.ScoreHistory = append([]ScoreEntry(nil), r.ScoreHistory...)
	return &cp
}
