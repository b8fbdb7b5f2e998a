package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

// ReviewPatch carries the optional fields of a review edit.
type ReviewPatch struct {
	Text  *string
	Score *int
}

type ReviewService interface {
	Submit(ctx context.Context, actor *models.User, titleID int64, text string, score int) (*models.Review, error)
	Amend(ctx context.Context, actor *models.User, titleID, reviewID int64, patch ReviewPatch) (*models.Review, error)
	Withdraw(ctx context.Context, actor *models.User, titleID, reviewID int64) error
	Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	List(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
}

type reviewService struct {
	store   repository.Store
	ratings *RatingAggregator
	logger  *slog.Logger
	now     func() time.Time
}

func NewReviewService(store repository.Store, ratings *RatingAggregator, logger *slog.Logger) ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &reviewService{
		store:   store,
		ratings: ratings,
		logger:  logger,
		now:     time.Now,
	}
}

func validateScore(score int) error {
	if score < models.MinScore || score > models.MaxScore {
		return fmt.Errorf("%w: got %d", ErrInvalidScore, score)
	}
	return nil
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	return nil
}

// Submit creates the actor's review of a title. The duplicate check, the
// insert and the rating recomputation share one transaction that holds the
// title row lock; the unique index on (author_id, title_id) backs up the
// check if two submits race anyway.
func (s *reviewService) Submit(ctx context.Context, actor *models.User, titleID int64, text string, score int) (*models.Review, error) {
	if !policy.Can(actor, policy.Create, policy.Resource{Kind: policy.Review}) {
		return nil, ErrForbidden
	}
	if err := validateScore(score); err != nil {
		return nil, err
	}
	if err := validateText(text); err != nil {
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Text:     text,
		Score:    score,
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Titles().LockByID(ctx, titleID); err != nil {
			return notFound(err, "title")
		}

		_, err := tx.Reviews().FindByAuthorAndTitle(ctx, actor.ID, titleID)
		if err == nil {
			return ErrDuplicateReview
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		review.PubDate = s.now().UTC()
		if err := tx.Reviews().Create(ctx, review); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrDuplicateReview
			}
			return err
		}

		_, err = s.ratings.Recompute(ctx, tx, titleID)
		return err
	})
	if err != nil {
		return nil, err
	}

	review.Author = *actor
	s.logger.Info("review_submitted", "review_id", review.ID, "title_id", titleID, "author_id", actor.ID, "score", score)
	return review, nil
}

// Amend edits text and/or score. Authorship and pub_date never change.
func (s *reviewService) Amend(ctx context.Context, actor *models.User, titleID, reviewID int64, patch ReviewPatch) (*models.Review, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	if patch.Score != nil {
		if err := validateScore(*patch.Score); err != nil {
			return nil, err
		}
	}
	if patch.Text != nil {
		if err := validateText(*patch.Text); err != nil {
			return nil, err
		}
	}

	var review *models.Review
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		review, err = s.lockedReview(ctx, tx, actor, titleID, reviewID, policy.Update)
		if err != nil {
			return err
		}

		if patch.Text != nil {
			review.Text = *patch.Text
		}
		if patch.Score != nil {
			review.Score = *patch.Score
		}
		if err := tx.Reviews().Update(ctx, review); err != nil {
			return err
		}

		_, err = s.ratings.Recompute(ctx, tx, titleID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review_amended", "review_id", reviewID, "title_id", titleID, "actor_id", actor.ID)
	return review, nil
}

// Withdraw deletes a review together with its comments.
func (s *reviewService) Withdraw(ctx context.Context, actor *models.User, titleID, reviewID int64) error {
	if actor == nil {
		return ErrForbidden
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := s.lockedReview(ctx, tx, actor, titleID, reviewID, policy.Delete); err != nil {
			return err
		}
		if err := tx.Reviews().Delete(ctx, reviewID); err != nil {
			return notFound(err, "review")
		}

		_, err := s.ratings.Recompute(ctx, tx, titleID)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("review_withdrawn", "review_id", reviewID, "title_id", titleID, "actor_id", actor.ID)
	return nil
}

// lockedReview locks the title, loads the review and checks the actor may
// perform action on it.
func (s *reviewService) lockedReview(ctx context.Context, tx repository.Store, actor *models.User, titleID, reviewID int64, action policy.Action) (*models.Review, error) {
	if _, err := tx.Titles().LockByID(ctx, titleID); err != nil {
		return nil, notFound(err, "title")
	}

	review, err := tx.Reviews().FindByID(ctx, reviewID)
	if err != nil {
		return nil, notFound(err, "review")
	}
	if review.TitleID != titleID {
		return nil, fmt.Errorf("review %w", ErrNotFound)
	}

	if !policy.Can(actor, action, policy.Resource{Kind: policy.Review, OwnerID: review.AuthorID}) {
		return nil, ErrForbidden
	}
	return review, nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.store.Reviews().FindByID(ctx, reviewID)
	if err != nil {
		return nil, notFound(err, "review")
	}
	if review.TitleID != titleID {
		return nil, fmt.Errorf("review %w", ErrNotFound)
	}
	return review, nil
}

func (s *reviewService) List(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	if _, err := s.store.Titles().FindByID(ctx, titleID); err != nil {
		return nil, 0, notFound(err, "title")
	}
	return s.store.Reviews().ListByTitle(ctx, titleID, page, pageSize)
}
