package coach

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-2.0-flash"

// ModelInvoker abstracts the generative model behind the coach.
type ModelInvoker interface {
	Generate(ctx context.Context, prompt string, maxOutputTokens int32) (string, error)
}

// GeminiInvoker implements ModelInvoker on the Gemini API.
type GeminiInvoker struct {
	apiKey string
	model  string
}

func NewGeminiInvoker(apiKey string) *GeminiInvoker {
	return &GeminiInvoker{apiKey: apiKey, model: geminiModel}
}

func (g *GeminiInvoker) Generate(ctx context.Context, prompt string, maxOutputTokens int32) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.SetMaxOutputTokens(maxOutputTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	output := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			output += string(text)
		}
	}
	if output == "" {
		return "", fmt.Errorf("model returned no text parts")
	}
	return output, nil
}
