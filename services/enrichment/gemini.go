package enrichment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// TextGenerator is the subset of a language model client used by GeminiRecommender.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	m := client.GenerativeModel(model)
	m.SetTemperature(0.2)
	return &GeminiClient{client: client, model: m}, nil
}

func (g *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// GeminiRecommender generates recommendations with a language model instead of the REST service.
type GeminiRecommender struct {
	gen TextGenerator
}

func NewGeminiRecommender(gen TextGenerator) *GeminiRecommender {
	return &GeminiRecommender{gen: gen}
}

func (r *GeminiRecommender) Recommend(ctx context.Context, key RecommendationKey) (string, error) {
	if key.BreedName == "" && key.BreedID <= 0 {
		return "", ErrEmptyInput
	}
	text, err := r.gen.GenerateContent(ctx, recommendationPrompt(key))
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoResults
	}
	return text, nil
}

func recommendationPrompt(key RecommendationKey) string {
	breed := key.BreedName
	if breed == "" {
		breed = fmt.Sprintf("breed #%d", key.BreedID)
	}
	return fmt.Sprintf(
		"You are assisting a veterinary clinic. In at most two sentences, give a care and "+
			"vaccination recommendation for a %d year old %s. Reply with the recommendation only.",
		key.Age, breed)
}
