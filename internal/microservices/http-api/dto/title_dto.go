package dto

import "reviewhub/internal/microservices/http-api/models"

// CreateTitleRequest references the category and genres by slug.
type CreateTitleRequest struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description string   `json:"description"`
	Category    *string  `json:"category" binding:"omitempty,slug"`
	Genre       []string `json:"genre" binding:"omitempty,dive,slug"`
}

// UpdateTitleRequest is a partial update; absent fields are left alone.
type UpdateTitleRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=256"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre" binding:"omitempty,dive,slug"`
}

// TitleQuery holds the list filters.
type TitleQuery struct {
	PageQuery
	Genre    string `form:"genre" binding:"omitempty,slug"`
	Category string `form:"category" binding:"omitempty,slug"`
	Name     string `form:"name" binding:"omitempty,max=256"`
	Year     *int   `form:"year"`
}

// TitleResponse always carries rating; it is null while the title has no reviews.
type TitleResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Year        int             `json:"year"`
	Rating      *float64        `json:"rating"`
	Description string          `json:"description"`
	Genre       []TaxonResponse `json:"genre"`
	Category    *TaxonResponse  `json:"category"`
}

func FromTitle(t *models.Title) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       MapSlice(t.Genres, FromGenre),
	}
	if t.Category != nil {
		c := FromCategory(t.Category)
		resp.Category = &c
	}
	return resp
}
