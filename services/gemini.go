package services

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

var geminiClient *genai.Client
var geminiModel = defaultGeminiModel

// InitGemini initializes the shared Gemini client used by the verdict
// generator and the message analyst.
func InitGemini(apiKey, model string) error {
	config := &genai.ClientConfig{}
	if apiKey != "" {
		config.APIKey = apiKey
	}
	client, err := genai.NewClient(context.Background(), config)
	if err != nil {
		return err
	}
	geminiClient = client
	if model != "" {
		geminiModel = model
	}
	return nil
}

func generateModelText(ctx context.Context, prompt string) (string, error) {
	if geminiClient == nil {
		return "", errors.New("gemini client not initialized")
	}
	resp, err := geminiClient.Models.GenerateContent(ctx, geminiModel, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return cleanModelOutput(resp.Text()), nil
}

func cleanModelOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
