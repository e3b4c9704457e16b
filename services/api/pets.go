package api

import (
	"context"
	"net/http"
	"net/url"

	"vetclinic/models"
)

// ListPets returns the caller's pets, or every pet when all is set (staff view).
func (c *Client) ListPets(ctx context.Context, all bool) ([]models.Pet, error) {
	var q url.Values
	if all {
		q = url.Values{"all": {"true"}}
	}
	var out []models.Pet
	err := c.do(ctx, http.MethodGet, "/pets/", q, nil, &out)
	return out, err
}

func (c *Client) CreatePet(ctx context.Context, in models.PetInput) (models.Pet, error) {
	var out models.Pet
	err := c.do(ctx, http.MethodPost, "/pets/", nil, in, &out)
	return out, err
}

func (c *Client) UpdatePet(ctx context.Context, id int, in models.PetInput) (models.Pet, error) {
	var out models.Pet
	err := c.do(ctx, http.MethodPut, itemPath("/pets/", id), nil, in, &out)
	return out, err
}

func (c *Client) DeletePet(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, itemPath("/pets/", id), nil, nil, nil)
}

func (c *Client) ListBreeds(ctx context.Context) ([]models.Breed, error) {
	var out []models.Breed
	err := c.do(ctx, http.MethodGet, "/breeds/", nil, nil, &out)
	return out, err
}

func (c *Client) ListClinics(ctx context.Context) ([]models.Clinic, error) {
	var out []models.Clinic
	err := c.do(ctx, http.MethodGet, "/clinics/", nil, nil, &out)
	return out, err
}
