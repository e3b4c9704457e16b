package enrichment

import (
	"context"
	"strings"
)

// NoRecommendation is stored when a recommendation cannot be produced.
const NoRecommendation = "No recommendation available"

// RecommendationKey identifies the inputs a recommendation is derived from.
type RecommendationKey struct {
	Age       int
	BreedID   int
	BreedName string
}

// Recommender produces care recommendation text for a pet.
type Recommender interface {
	Recommend(ctx context.Context, key RecommendationKey) (string, error)
}

// RecommendationSource is the remote endpoint that serves recommendations.
type RecommendationSource interface {
	GetRecommendation(ctx context.Context, age, breedID int) (string, error)
}

// APIRecommender asks the REST service.
type APIRecommender struct {
	source RecommendationSource
}

func NewAPIRecommender(source RecommendationSource) *APIRecommender {
	return &APIRecommender{source: source}
}

func (r *APIRecommender) Recommend(ctx context.Context, key RecommendationKey) (string, error) {
	if key.BreedID <= 0 {
		return "", ErrEmptyInput
	}
	text, err := r.source.GetRecommendation(ctx, key.Age, key.BreedID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoResults
	}
	return text, nil
}
