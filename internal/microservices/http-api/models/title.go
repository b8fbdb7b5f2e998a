package models

type Title struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"size:256;not null"`
	Year        int    `json:"year" gorm:"not null;index"`
	Description string `json:"description" gorm:"type:text"`

	// Rating is derived from the review set and only written by the rating
	// aggregator inside a review transaction. NULL means no reviews.
	Rating *float64 `json:"rating" gorm:"type:double precision"`

	// association
	CategoryID *int64    `json:"-" gorm:"index"`
	Category   *Category `json:"category" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres     []Genre   `json:"genre" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}
