package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/repository"
)

// TitleInput is the full payload for creating a title.
type TitleInput struct {
	Name        string
	Year        int
	Description string
	Category    *string
	Genres      []string
}

// TitlePatch carries the optional fields of a partial title update.
type TitlePatch struct {
	Name        *string
	Year        *int
	Description *string
	Category    *string
	Genres      *[]string
}

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	Get(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, actor *models.User, in TitleInput) (*models.Title, error)
	Update(ctx context.Context, actor *models.User, id int64, patch TitlePatch) (*models.Title, error)
	Delete(ctx context.Context, actor *models.User, id int64) error
}

type titleService struct {
	store   repository.Store
	ratings *RatingAggregator
	logger  *slog.Logger
	now     func() time.Time
}

func NewTitleService(store repository.Store, ratings *RatingAggregator, logger *slog.Logger) TitleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &titleService{store: store, ratings: ratings, logger: logger, now: time.Now}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	titles, total, err := s.store.Titles().List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	refs := make([]*models.Title, len(titles))
	for i := range titles {
		refs[i] = &titles[i]
	}
	if err := s.ratings.Annotate(ctx, refs...); err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

// Get returns the title with the aggregator's current rating.
func (s *titleService) Get(ctx context.Context, id int64) (*models.Title, error) {
	title, err := s.store.Titles().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "title")
	}
	if err := s.ratings.Annotate(ctx, title); err != nil {
		return nil, err
	}
	return title, nil
}

func (s *titleService) validateYear(year int) error {
	if current := s.now().Year(); year > current {
		return fmt.Errorf("%w: %d is after %d", ErrFutureYear, year, current)
	}
	return nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > models.NameMaxLength {
		return fmt.Errorf("%w: name must be 1..%d characters", ErrInvalidInput, models.NameMaxLength)
	}
	return nil
}

// Create is admin-only. Authorization is decided before the payload is looked at.
func (s *titleService) Create(ctx context.Context, actor *models.User, in TitleInput) (*models.Title, error) {
	if !policy.Can(actor, policy.Create, policy.Resource{Kind: policy.Title}) {
		return nil, ErrForbidden
	}
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if err := s.validateYear(in.Year); err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        strings.TrimSpace(in.Name),
		Year:        in.Year,
		Description: in.Description,
	}

	var id int64
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := s.applyCategory(ctx, tx, title, in.Category); err != nil {
			return err
		}
		genreIDs, err := resolveGenres(ctx, tx, in.Genres)
		if err != nil {
			return err
		}
		if err := tx.Titles().Create(ctx, title); err != nil {
			return err
		}
		id = title.ID
		return tx.Titles().ReplaceGenres(ctx, id, genreIDs)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("title_created", "title_id", id, "actor_id", actor.ID)
	return s.Get(ctx, id)
}

// Update applies a partial update. The row is locked so the save cannot
// interleave with a rating recomputation.
func (s *titleService) Update(ctx context.Context, actor *models.User, id int64, patch TitlePatch) (*models.Title, error) {
	if !policy.Can(actor, policy.Update, policy.Resource{Kind: policy.Title}) {
		return nil, ErrForbidden
	}
	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Year != nil {
		if err := s.validateYear(*patch.Year); err != nil {
			return nil, err
		}
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		title, err := tx.Titles().LockByID(ctx, id)
		if err != nil {
			return notFound(err, "title")
		}

		if patch.Name != nil {
			title.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Year != nil {
			title.Year = *patch.Year
		}
		if patch.Description != nil {
			title.Description = *patch.Description
		}
		if patch.Category != nil {
			if err := s.applyCategory(ctx, tx, title, patch.Category); err != nil {
				return err
			}
		}
		if err := tx.Titles().Update(ctx, title); err != nil {
			return err
		}

		if patch.Genres != nil {
			genreIDs, err := resolveGenres(ctx, tx, *patch.Genres)
			if err != nil {
				return err
			}
			return tx.Titles().ReplaceGenres(ctx, id, genreIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("title_updated", "title_id", id, "actor_id", actor.ID)
	return s.Get(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if !policy.Can(actor, policy.Delete, policy.Resource{Kind: policy.Title}) {
		return ErrForbidden
	}
	if err := s.store.Titles().Delete(ctx, id); err != nil {
		return notFound(err, "title")
	}
	s.logger.Info("title_deleted", "title_id", id, "actor_id", actor.ID)
	return nil
}

// applyCategory sets the title's category from a slug. An empty slug clears it.
func (s *titleService) applyCategory(ctx context.Context, tx repository.Store, title *models.Title, slug *string) error {
	if slug == nil || *slug == "" {
		title.CategoryID = nil
		title.Category = nil
		return nil
	}
	category, err := tx.Categories().FindBySlug(ctx, *slug)
	if err != nil {
		return notFound(err, "category")
	}
	title.CategoryID = &category.ID
	title.Category = category
	return nil
}

func resolveGenres(ctx context.Context, tx repository.Store, slugs []string) ([]int64, error) {
	slugs = dedupe(slugs)
	genres, err := tx.Genres().FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(slugs) {
		found := make(map[string]bool, len(genres))
		for _, g := range genres {
			found[g.Slug] = true
		}
		var missing []string
		for _, slug := range slugs {
			if !found[slug] {
				missing = append(missing, slug)
			}
		}
		return nil, fmt.Errorf("genre %s %w", strings.Join(missing, ", "), ErrNotFound)
	}

	ids := make([]int64, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}
	return ids, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
