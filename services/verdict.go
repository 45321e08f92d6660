package services

import (
	"context"
	"fmt"
	"strings"

	"podium/models"
)

// VerdictGenerator produces the moderator's final verdict text. It may be
// slow and may fail; callers must fall back to a neutral verdict rather than
// block the room forever.
type VerdictGenerator interface {
	GenerateVerdict(ctx context.Context, topic, transcript string, scorePro, scoreCon int) (string, error)
}

// GeminiVerdict generates verdicts with the shared Gemini client.
type GeminiVerdict struct{}

// GenerateVerdict asks the model to act as a debate judge over the full
// transcript and the running scores.
func (GeminiVerdict) GenerateVerdict(ctx context.Context, topic, transcript string, scorePro, scoreCon int) (string, error) {
	prompt := fmt.Sprintf(
		`Act as a professional debate judge. The motion was: "%s".

The moderator's running scores are pro (host) %d and con (opponent) %d out of 100.
Analyze the transcript below and deliver a final verdict in plain prose:
name the stronger side, summarize the decisive arguments of each side, and
point out the single best and weakest moment of the debate. Keep it under
200 words and address both debaters directly.

Transcript:
%s

Provide ONLY the verdict text without any additional formatting.`,
		topic, scorePro, scoreCon, transcript)

	text, err := generateModelText(ctx, prompt)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("empty verdict from model")
	}
	return text, nil
}

// FallbackVerdict is the neutral verdict used when generation fails or times
// out. The debate still terminates; it never hangs on the judge.
func FallbackVerdict(scorePro, scoreCon int) string {
	switch {
	case scorePro > scoreCon:
		return fmt.Sprintf("The moderator could not produce a detailed verdict. On points, the pro side wins %d to %d.", scorePro, scoreCon)
	case scoreCon > scorePro:
		return fmt.Sprintf("The moderator could not produce a detailed verdict. On points, the con side wins %d to %d.", scoreCon, scorePro)
	default:
		return fmt.Sprintf("The moderator could not produce a detailed verdict. With both sides at %d points, the debate is a draw.", scorePro)
	}
}

// FormatTranscript converts the room's messages into a judge-readable
// transcript, skipping moderator housekeeping entries.
func FormatTranscript(messages []models.Message) string {
	var sb strings.Builder
	for _, msg := range messages {
		switch msg.Type {
		case models.MessageText, models.MessageFactCheck, models.MessageFallacyAlert:
			sb.WriteString(fmt.Sprintf("%s (%s): %s\n", msg.Sender, msg.Stage, msg.Content))
		}
	}
	return sb.String()
}
