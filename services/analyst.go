package services

import (
	"context"
	"encoding/json"
	"fmt"

	"podium/models"
)

// Finding is the analyst's judgment of a single debate message. A nil finding
// means the message needs no moderator intervention.
type Finding struct {
	Kind  models.MessageType `json:"kind"` // fact-check or fallacy-alert
	Delta int                `json:"delta"`
	Note  string             `json:"note"`
}

// Analyst reviews accepted debate messages and may award or deduct points.
// Review is called off the room's goroutine; failures are dropped silently.
type Analyst interface {
	Review(ctx context.Context, topic string, msg models.Message) (*Finding, error)
}

// GeminiAnalyst reviews messages with the shared Gemini client.
type GeminiAnalyst struct{}

type analystVerdict struct {
	Kind  string `json:"kind"`
	Delta int    `json:"delta"`
	Note  string `json:"note"`
}

// Review asks the model whether a statement deserves a fact-check or a
// fallacy alert, with a score delta between -5 and 5.
func (GeminiAnalyst) Review(ctx context.Context, topic string, msg models.Message) (*Finding, error) {
	prompt := fmt.Sprintf(
		`You are the moderator of a debate on: "%s".
A debater on the %s side just said:

"%s"

If the statement contains a verifiable factual claim worth checking, or a
logical fallacy worth flagging, respond in STRICT JSON:
{"kind": "fact-check" | "fallacy-alert" | "none", "delta": <integer -5..5>, "note": "<one sentence shown to the room>"}
Use a positive delta for a well-supported claim, a negative delta for a false
claim or a fallacy, and kind "none" with delta 0 when no intervention is
needed. Provide ONLY the JSON output without any additional text.`,
		topic, msg.Sender, msg.Content)

	text, err := generateModelText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var v analystVerdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("failed to parse analyst output: %w", err)
	}
	if v.Kind != string(models.MessageFactCheck) && v.Kind != string(models.MessageFallacyAlert) {
		return nil, nil
	}
	if v.Delta < -5 {
		v.Delta = -5
	}
	if v.Delta > 5 {
		v.Delta = 5
	}
	return &Finding{Kind: models.MessageType(v.Kind), Delta: v.Delta, Note: v.Note}, nil
}
