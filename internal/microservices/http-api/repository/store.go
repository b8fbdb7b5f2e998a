package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories so a service can run several of them inside
// one transaction. Repositories obtained from the store passed to the
// Transaction callback share that transaction.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	Users() UserRepository
	Categories() CategoryRepository
	Genres() GenreRepository
	Titles() TitleRepository
	Reviews() ReviewRepository
	Comments() CommentRepository
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) Users() UserRepository          { return NewUserRepository(s.db) }
func (s *gormStore) Categories() CategoryRepository { return NewCategoryRepository(s.db) }
func (s *gormStore) Genres() GenreRepository        { return NewGenreRepository(s.db) }
func (s *gormStore) Titles() TitleRepository        { return NewTitleRepository(s.db) }
func (s *gormStore) Reviews() ReviewRepository      { return NewReviewRepository(s.db) }
func (s *gormStore) Comments() CommentRepository    { return NewCommentRepository(s.db) }
