package models

import (
	"time"
)

// Stage identifies one of the 13 ordered phases of a debate.
type Stage string

const (
	StageWaiting        Stage = "waiting"
	StageOpeningPro     Stage = "opening_pro"
	StageOpeningCon     Stage = "opening_con"
	StageCrossConAsk    Stage = "cross_exam_con_ask"
	StageCrossProAnswer Stage = "cross_exam_pro_answer"
	StageCrossProAsk    Stage = "cross_exam_pro_ask"
	StageCrossConAnswer Stage = "cross_exam_con_answer"
	StageRebuttalCon    Stage = "rebuttal_con"
	StageRebuttalPro    Stage = "rebuttal_pro"
	StageClosingCon     Stage = "closing_con"
	StageClosingPro     Stage = "closing_pro"
	StageVerdictPending Stage = "verdict_pending"
	StageEnded          Stage = "ended"
)

// Role is the part a participant plays in a room. The host argues the pro
// side, the opponent the con side; everyone else watches.
type Role string

const (
	RoleHost     Role = "host"
	RoleOpponent Role = "opponent"
	RoleObserver Role = "observer"
	// RoleNone marks stages where nobody holds the floor.
	RoleNone Role = ""
)

// Stance is the position a participant picked when joining.
type Stance string

const (
	StanceAgree    Stance = "agree"
	StanceDisagree Stance = "disagree"
	StanceNeutral  Stance = "neutral"
)

// Side identifies which score a delta applies to.
type Side string

const (
	SidePro Side = "pro"
	SideCon Side = "con"
)

// RoomSettings carries per-room overrides of the stage table.
type RoomSettings struct {
	// StageSeconds overrides a stage's duration, keyed by stage id.
	StageSeconds map[string]int `bson:"stageSeconds,omitempty" json:"stageSeconds,omitempty"`
}

// Room is one debate. Participants, messages and the score history are
// embedded so that every state transition is a single document write.
type Room struct {
	ID             string        `bson:"_id" json:"id"`
	Topic          string        `bson:"topic" json:"topic"`
	Stage          Stage         `bson:"stage" json:"stage"`
	StageStartedAt time.Time     `bson:"stageStartedAt" json:"stageStartedAt"`
	TurnOwner      Role          `bson:"turnOwner" json:"turnOwner"`
	TurnCount      int           `bson:"turnCount" json:"turnCount"`
	ScorePro       int           `bson:"scorePro" json:"scorePro"`
	ScoreCon       int           `bson:"scoreCon" json:"scoreCon"`
	Settings       RoomSettings  `bson:"settings" json:"settings"`
	Participants   []Participant `bson:"participants" json:"participants"`
	Messages       []Message     `bson:"messages" json:"messages"`
	ScoreHistory   []ScoreEntry  `bson:"scoreHistory" json:"scoreHistory"`
	CreatedAt      time.Time     `bson:"createdAt" json:"createdAt"`
}

// Participant is one (room, logical session) pair. SessionID is an opaque
// client-generated identifier stable across reconnects from the same tab.
type Participant struct {
	SessionID   string    `bson:"sessionId" json:"sessionId"`
	DisplayName string    `bson:"displayName" json:"displayName"`
	Role        Role      `bson:"role" json:"role"`
	Stance      Stance    `bson:"stance" json:"stance"`
	JoinedAt    time.Time `bson:"joinedAt" json:"joinedAt"`
	LastSeenAt  time.Time `bson:"lastSeenAt" json:"lastSeenAt"`
}

// ScoreEntry records one score mutation, kept to explain the verdict later.
type ScoreEntry struct {
	At     time.Time `bson:"at" json:"at"`
	Side   Side      `bson:"side" json:"side"`
	Delta  int       `bson:"delta" json:"delta"`
	Result int       `bson:"result" json:"result"`
	Reason string    `bson:"reason" json:"reason"`
}

// Debater returns the participant currently holding the given role, or nil.
func (r *Room) Debater(role Role) *Participant {
	for i := range r.Participants {
		if r.Participants[i].Role == role {
			return &r.Participants[i]
		}
	}
	return nil
}

// Score returns the current score for a side.
func (r *Room) Score(side Side) int {
	if side == SidePro {
		return r.ScorePro
	}
	return r.ScoreCon
}

// Clone returns a deep copy of the room, safe to hand outside the owning
// goroutine.
func (r *Room) Clone() *Room {
	cp := *r
	cp.Participants = append([]Participant(nil), r.Participants...)
	cp.Messages = append([]Message(nil), r.Messages...)
	cp.ScoreHistory = append([]ScoreEntry(nil), r.ScoreHistory...)
	if r.Settings.StageSeconds != nil {
		cp.Settings.StageSeconds = make(map[string]int, len(r.Settings.StageSeconds))
		for k, v := range r.Settings.StageSeconds {
			cp.Settings.StageSeconds[k] = v
		}
	}
	return &cp
}
