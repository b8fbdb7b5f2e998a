package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

// CatalogService manages the category and genre taxonomies. Reads are
// public, writes are admin-only.
type CatalogService interface {
	ListCategories(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error)
	CreateCategory(ctx context.Context, actor *models.User, name, slug string) (*models.Category, error)
	DeleteCategory(ctx context.Context, actor *models.User, slug string) error

	ListGenres(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error)
	CreateGenre(ctx context.Context, actor *models.User, name, slug string) (*models.Genre, error)
	DeleteGenre(ctx context.Context, actor *models.User, slug string) error
}

type catalogService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewCatalogService(store repository.Store, logger *slog.Logger) CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &catalogService{store: store, logger: logger}
}

func validateTaxon(name, slug string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if !models.ValidSlug(slug) {
		return fmt.Errorf("%w: slug must match [-a-zA-Z0-9_] and be at most %d characters", ErrInvalidInput, models.SlugMaxLength)
	}
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error) {
	return s.store.Categories().List(ctx, strings.TrimSpace(search), page, pageSize)
}

func (s *catalogService) CreateCategory(ctx context.Context, actor *models.User, name, slug string) (*models.Category, error) {
	if !policy.Can(actor, policy.Create, policy.Resource{Kind: policy.Category}) {
		return nil, ErrForbidden
	}
	if err := validateTaxon(name, slug); err != nil {
		return nil, err
	}

	if _, err := s.store.Categories().FindBySlug(ctx, slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := &models.Category{Name: strings.TrimSpace(name), Slug: slug}
	if err := s.store.Categories().Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	s.logger.Info("category_created", "slug", slug, "actor_id", actor.ID)
	return category, nil
}

// DeleteCategory leaves the titles in place with their category cleared.
func (s *catalogService) DeleteCategory(ctx context.Context, actor *models.User, slug string) error {
	if !policy.Can(actor, policy.Delete, policy.Resource{Kind: policy.Category}) {
		return ErrForbidden
	}
	if err := s.store.Categories().DeleteBySlug(ctx, slug); err != nil {
		return notFound(err, "category")
	}
	s.logger.Info("category_deleted", "slug", slug, "actor_id", actor.ID)
	return nil
}

func (s *catalogService) ListGenres(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error) {
	return s.store.Genres().List(ctx, strings.TrimSpace(search), page, pageSize)
}

func (s *catalogService) CreateGenre(ctx context.Context, actor *models.User, name, slug string) (*models.Genre, error) {
	if !policy.Can(actor, policy.Create, policy.Resource{Kind: policy.Genre}) {
		return nil, ErrForbidden
	}
	if err := validateTaxon(name, slug); err != nil {
		return nil, err
	}

	if _, err := s.store.Genres().FindBySlug(ctx, slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	genre := &models.Genre{Name: strings.TrimSpace(name), Slug: slug}
	if err := s.store.Genres().Create(ctx, genre); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	s.logger.Info("genre_created", "slug", slug, "actor_id", actor.ID)
	return genre, nil
}

// DeleteGenre drops the genre and its title associations.
func (s *catalogService) DeleteGenre(ctx context.Context, actor *models.User, slug string) error {
	if !policy.Can(actor, policy.Delete, policy.Resource{Kind: policy.Genre}) {
		return ErrForbidden
	}
	if err := s.store.Genres().DeleteBySlug(ctx, slug); err != nil {
		return notFound(err, "genre")
	}
	s.logger.Info("genre_deleted", "slug", slug, "actor_id", actor.ID)
	return nil
}
