package dto

import "reviewhub/internal/microservices/http-api/models"

// CreateTaxonRequest is the body for creating a category or a genre.
type CreateTaxonRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,slug"`
}

// TaxonResponse is the shared representation of categories and genres.
type TaxonResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func FromCategory(c *models.Category) TaxonResponse {
	return TaxonResponse{Name: c.Name, Slug: c.Slug}
}

func FromGenre(g *models.Genre) TaxonResponse {
	return TaxonResponse{Name: g.Name, Slug: g.Slug}
}
