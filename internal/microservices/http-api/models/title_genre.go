package models

// explicit join model for titles <-> genres, registered with SetupJoinTable
// so genre links can be replaced without upserting the genres themselves
type TitleGenre struct {
	TitleID int64 `json:"title_id" gorm:"primaryKey"`
	GenreID int64 `json:"genre_id" gorm:"primaryKey;index"`
}

func (TitleGenre) TableName() string {
	return "title_genres"
}
