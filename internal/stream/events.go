package stream

import (
	"encoding/json"
	"time"
)

// Event types published for a room.
const (
	EventStageChange = "stageChange"
	EventMessage     = "message"
	EventScore       = "score"
	EventPresence    = "presence"
	EventVerdict     = "verdict"
	EventRoomDeleted = "roomDeleted"
)

// Event represents a room event fanned out to spectators, either directly or
// through a Redis Stream when running multiple instances.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

// StageChangePayload announces a stage transition.
type StageChangePayload struct {
	Stage        string `json:"stage"`
	TurnOwner    string `json:"turnOwner"`
	Announcement string `json:"announcement"`
}

// MessagePayload carries one transcript entry.
type MessagePayload struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
	Stage   string `json:"stage"`
}

// ScorePayload announces a score mutation.
type ScorePayload struct {
	Side     string `json:"side"`
	Delta    int    `json:"delta"`
	ScorePro int    `json:"scorePro"`
	ScoreCon int    `json:"scoreCon"`
	Reason   string `json:"reason"`
}

// PresencePayload announces roster changes.
type PresencePayload struct {
	SessionID   string `json:"sessionId"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	Joined      bool   `json:"joined"`
	Count       int    `json:"count"`
}

// VerdictPayload carries the final verdict.
type VerdictPayload struct {
	Winner   string `json:"winner"`
	ScorePro int    `json:"scorePro"`
	ScoreCon int    `json:"scoreCon"`
	Verdict  string `json:"verdict"`
}

// NewEvent creates a new event with timestamp
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		Type:      eventType,
		Payload:   payloadBytes,
		Timestamp: time.Now().Unix(),
	}, nil
}

// MarshalEvent marshals an event to JSON string for Redis Stream
func MarshalEvent(event *Event) (string, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalEvent unmarshals a JSON string to an Event
func UnmarshalEvent(data string) (*Event, error) {
	var event Event
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return nil, err
	}
	return &event, nil
}
