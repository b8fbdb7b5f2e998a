package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrDuplicateReview         = errors.New("you have already reviewed this title")
	ErrInvalidScore            = errors.New("score must be between 1 and 10")
	ErrForbidden               = errors.New("you do not have permission to perform this action")
	ErrNotFound                = errors.New("not found")
	ErrFutureYear              = errors.New("year cannot be in the future")
	ErrSlugTaken               = errors.New("slug already in use")
	ErrUsernameTaken           = errors.New("username already in use")
	ErrEmailTaken              = errors.New("email already in use")
	ErrInvalidConfirmationCode = errors.New("invalid confirmation code")
	ErrInvalidRole             = errors.New("invalid role")
	ErrInvalidToken            = errors.New("invalid token")
	ErrInvalidInput            = errors.New("invalid input")
)

// notFound converts gorm's record-not-found into ErrNotFound naming the
// missing entity, and passes other errors through.
func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %w", entity, ErrNotFound)
	}
	return err
}
