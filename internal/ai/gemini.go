package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Generator produces an AI answer for a question.
type Generator interface {
	GenerateAnswer(ctx context.Context, title, description string) (string, error)
}

// GeminiClient implements Generator on the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed generator.
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Model returns the configured model name.
func (g *GeminiClient) Model() string {
	return g.model
}

// GenerateAnswer asks the model for an HTML-formatted answer to the
// question. The response is stored verbatim as answer content; the
// renderer sanitizes it on display.
func (g *GeminiClient) GenerateAnswer(ctx context.Context, title, description string) (string, error) {
	prompt := fmt.Sprintf(`You are a helpful programming assistant. Please provide a detailed, accurate answer to the following question:

Question: %s

Description: %s

Please provide:
1. A clear explanation
2. Code examples if applicable
3. Best practices
4. Any relevant warnings or considerations

Format your response in HTML with proper tags for better readability.`, title, description)

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	text := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("gemini returned empty answer")
	}
	return text, nil
}
