package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/repository"
)

type CommentService interface {
	Post(ctx context.Context, actor *models.User, titleID, reviewID int64, text string) (*models.Comment, error)
	Edit(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64, text string) (*models.Comment, error)
	Delete(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64) error
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error)
	List(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error)
}

type commentService struct {
	store  repository.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewCommentService(store repository.Store, logger *slog.Logger) CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &commentService{store: store, logger: logger, now: time.Now}
}

// Post attaches a comment to a review. The author is always the acting
// user, whatever the request body says.
func (s *commentService) Post(ctx context.Context, actor *models.User, titleID, reviewID int64, text string) (*models.Comment, error) {
	if !policy.Can(actor, policy.Create, policy.Resource{Kind: policy.Comment}) {
		return nil, ErrForbidden
	}
	if err := validateText(text); err != nil {
		return nil, err
	}
	if _, err := reviewOfTitle(ctx, s.store, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: actor.ID,
		Text:     text,
		PubDate:  s.now().UTC(),
	}
	if err := s.store.Comments().Create(ctx, comment); err != nil {
		return nil, err
	}

	comment.Author = *actor
	s.logger.Info("comment_posted", "comment_id", comment.ID, "review_id", reviewID, "author_id", actor.ID)
	return comment, nil
}

func (s *commentService) Edit(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64, text string) (*models.Comment, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	if err := validateText(text); err != nil {
		return nil, err
	}

	var comment *models.Comment
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		comment, err = s.authorizedComment(ctx, tx, actor, titleID, reviewID, commentID, policy.Update)
		if err != nil {
			return err
		}
		comment.Text = text
		return notFound(tx.Comments().Update(ctx, comment), "comment")
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("comment_edited", "comment_id", commentID, "actor_id", actor.ID)
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64) error {
	if actor == nil {
		return ErrForbidden
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := s.authorizedComment(ctx, tx, actor, titleID, reviewID, commentID, policy.Delete); err != nil {
			return err
		}
		return notFound(tx.Comments().Delete(ctx, commentID), "comment")
	})
	if err != nil {
		return err
	}

	s.logger.Info("comment_deleted", "comment_id", commentID, "actor_id", actor.ID)
	return nil
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if _, err := reviewOfTitle(ctx, s.store, titleID, reviewID); err != nil {
		return nil, err
	}
	return commentOfReview(ctx, s.store, reviewID, commentID)
}

func (s *commentService) List(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	if _, err := reviewOfTitle(ctx, s.store, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return s.store.Comments().ListByReview(ctx, reviewID, page, pageSize)
}

func (s *commentService) authorizedComment(ctx context.Context, tx repository.Store, actor *models.User, titleID, reviewID, commentID int64, action policy.Action) (*models.Comment, error) {
	if _, err := reviewOfTitle(ctx, tx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := commentOfReview(ctx, tx, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(actor, action, policy.Resource{Kind: policy.Comment, OwnerID: comment.AuthorID}) {
		return nil, ErrForbidden
	}
	return comment, nil
}

// reviewOfTitle loads a review and makes sure it hangs off the given title.
func reviewOfTitle(ctx context.Context, store repository.Store, titleID, reviewID int64) (*models.Review, error) {
	review, err := store.Reviews().FindByID(ctx, reviewID)
	if err != nil {
		return nil, notFound(err, "review")
	}
	if review.TitleID != titleID {
		return nil, fmt.Errorf("review %w", ErrNotFound)
	}
	return review, nil
}

func commentOfReview(ctx context.Context, store repository.Store, reviewID, commentID int64) (*models.Comment, error) {
	comment, err := store.Comments().FindByID(ctx, commentID)
	if err != nil {
		return nil, notFound(err, "comment")
	}
	if comment.ReviewID != reviewID {
		return nil, fmt.Errorf("comment %w", ErrNotFound)
	}
	return comment, nil
}
