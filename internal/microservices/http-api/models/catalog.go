package models

import "regexp"

const (
	NameMaxLength = 256
	SlugMaxLength = 50
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// ValidSlug reports whether s can be used as a category or genre slug.
func ValidSlug(s string) bool {
	return len(s) > 0 && len(s) <= SlugMaxLength && slugPattern.MatchString(s)
}

type Category struct {
	ID   int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:256;not null"`
	Slug string `json:"slug" gorm:"size:50;uniqueIndex;not null"`
}

func (Category) TableName() string {
	return "categories"
}

type Genre struct {
	ID   int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:256;not null"`
	Slug string `json:"slug" gorm:"size:50;uniqueIndex;not null"`
}

func (Genre) TableName() string {
	return "genres"
}
