package dto

import (
	"time"

	"reviewhub/internal/microservices/http-api/models"
)

// CreateReviewRequest; range checks on score happen in the service so the
// error is the same whichever door the request came through.
type CreateReviewRequest struct {
	Text  string `json:"text" binding:"required"`
	Score *int   `json:"score" binding:"required"`
}

type UpdateReviewRequest struct {
	Text  *string `json:"text" binding:"omitempty,min=1"`
	Score *int    `json:"score"`
}

// ReviewResponse names the author by username.
type ReviewResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func FromReview(r *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Author:  r.Author.Username,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}
