package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateKey is returned when a write violates a unique constraint.
var ErrDuplicateKey = errors.New("duplicate key")

// postgres SQLSTATE unique_violation
const uniqueViolation = "23505"

// translateError maps driver-level unique violations onto ErrDuplicateKey and
// leaves everything else untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errors.Join(ErrDuplicateKey, err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Join(ErrDuplicateKey, err)
	}
	return err
}

// paginate converts 1-based page numbers into an offset.
func paginate(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return pageSize, (page - 1) * pageSize
}
