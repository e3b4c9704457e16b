package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"vetclinic/models"
)

func (c *Client) ListEntries(ctx context.Context, kind models.CatalogKind) ([]models.CatalogItem, error) {
	var out []models.CatalogItem
	err := c.do(ctx, http.MethodGet, kind.Path(), nil, nil, &out)
	return out, err
}

func (c *Client) CreateEntry(ctx context.Context, e models.CatalogEntry) (models.CatalogItem, error) {
	var out models.CatalogItem
	err := c.do(ctx, http.MethodPost, e.Kind().Path(), nil, e, &out)
	return out, err
}

func (c *Client) UpdateEntry(ctx context.Context, id int, e models.CatalogEntry) (models.CatalogItem, error) {
	var out models.CatalogItem
	err := c.do(ctx, http.MethodPut, itemPath(e.Kind().Path(), id), nil, e, &out)
	return out, err
}

func (c *Client) DeleteEntry(ctx context.Context, kind models.CatalogKind, id int) error {
	return c.do(ctx, http.MethodDelete, itemPath(kind.Path(), id), nil, nil, nil)
}

// FindEntryID resolves a catalog entry by exact (case-insensitive) name.
func (c *Client) FindEntryID(ctx context.Context, kind models.CatalogKind, name string) (int, error) {
	items, err := c.ListEntries(ctx, kind)
	if err != nil {
		return 0, err
	}
	for _, it := range items {
		if strings.EqualFold(strings.TrimSpace(it.Name), strings.TrimSpace(name)) {
			return it.ID, nil
		}
	}
	return 0, fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
}

// DeleteEntryByName removes the entry whose name matches.
func (c *Client) DeleteEntryByName(ctx context.Context, kind models.CatalogKind, name string) (int, error) {
	id, err := c.FindEntryID(ctx, kind, name)
	if err != nil {
		return 0, err
	}
	return id, c.DeleteEntry(ctx, kind, id)
}

func (c *Client) ListMedicines(ctx context.Context) ([]models.Medicine, error) {
	var out []models.Medicine
	err := c.do(ctx, http.MethodGet, models.KindMedicine.Path(), nil, nil, &out)
	return out, err
}

func (c *Client) CreateMedicine(ctx context.Context, m models.MedicineEntry) (models.Medicine, error) {
	var out models.Medicine
	err := c.do(ctx, http.MethodPost, models.KindMedicine.Path(), nil, m, &out)
	return out, err
}
