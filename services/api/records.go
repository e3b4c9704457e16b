package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"vetclinic/models"
)

func (c *Client) ListVaccines(ctx context.Context) ([]models.Vaccine, error) {
	var out []models.Vaccine
	err := c.do(ctx, http.MethodGet, "/vaccines/", nil, nil, &out)
	return out, err
}

func (c *Client) ListVaccinations(ctx context.Context) ([]models.Vaccination, error) {
	var out []models.Vaccination
	err := c.do(ctx, http.MethodGet, "/vaccinations/", nil, nil, &out)
	return out, err
}

func (c *Client) CreateVaccination(ctx context.Context, in models.VaccinationInput) (models.Vaccination, error) {
	var out models.Vaccination
	err := c.do(ctx, http.MethodPost, "/vaccinations/", nil, in, &out)
	return out, err
}

func (c *Client) DeleteVaccination(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, itemPath("/vaccinations/", id), nil, nil, nil)
}

func (c *Client) ListAnalysisTypes(ctx context.Context) ([]models.AnalysisType, error) {
	var out []models.AnalysisType
	err := c.do(ctx, http.MethodGet, "/analysis-types/", nil, nil, &out)
	return out, err
}

func (c *Client) ListAnalyses(ctx context.Context) ([]models.Analysis, error) {
	var out []models.Analysis
	err := c.do(ctx, http.MethodGet, "/analyses/", nil, nil, &out)
	return out, err
}

func (c *Client) CreateAnalysis(ctx context.Context, in models.AnalysisInput) (models.Analysis, error) {
	var out models.Analysis
	err := c.do(ctx, http.MethodPost, "/analyses/", nil, in, &out)
	return out, err
}

func (c *Client) DeleteAnalysis(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, itemPath("/analyses/", id), nil, nil, nil)
}

// GetRecommendation asks the backend for care recommendations for a pet of the given age and breed.
func (c *Client) GetRecommendation(ctx context.Context, age, breedID int) (string, error) {
	q := url.Values{
		"age":      {strconv.Itoa(age)},
		"breed_id": {strconv.Itoa(breedID)},
	}
	var out struct {
		Recommendations string `json:"recommendations"`
	}
	if err := c.do(ctx, http.MethodGet, "/recommendations/", q, nil, &out); err != nil {
		return "", err
	}
	return out.Recommendations, nil
}
