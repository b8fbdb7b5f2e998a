package dto

import (
	"time"

	"reviewhub/internal/microservices/http-api/models"
)

// CommentRequest is used for both create and update
type CommentRequest struct {
	Text string `json:"text" binding:"required,min=1,max=5000"`
}

type CommentResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

func FromComment(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:      c.ID,
		Text:    c.Text,
		Author:  c.Author.Username,
		PubDate: c.PubDate,
	}
}
