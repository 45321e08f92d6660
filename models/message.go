package models

import "time"

// MessageType tags what kind of entry a message is.
type MessageType string

const (
	MessageText         MessageType = "text"
	MessageStageChange  MessageType = "stage-change"
	MessageFactCheck    MessageType = "fact-check"
	MessageFallacyAlert MessageType = "fallacy-alert"
	MessageVerdict      MessageType = "verdict"
)

// SenderModerator and SenderSystem attribute messages that do not come from
// a debater. Debater messages carry RoleHost or RoleOpponent.
const (
	SenderModerator Role = "moderator"
	SenderSystem    Role = "system"
)

// Message is an append-only transcript entry. Never mutated after insertion.
type Message struct {
	ID              string      `bson:"id" json:"id"`
	Type            MessageType `bson:"type" json:"type"`
	Sender          Role        `bson:"sender" json:"sender"`
	SenderSessionID string      `bson:"senderSessionId,omitempty" json:"senderSessionId,omitempty"`
	Content         string      `bson:"content" json:"content"`
	Stage           Stage       `bson:"stage" json:"stage"`
	CreatedAt       time.Time   `bson:"createdAt" json:"createdAt"`
}
