package repository

import (
	"context"

	"reviewhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.Review, error)
	FindByAuthorAndTitle(ctx context.Context, authorID string, titleID int64) (*models.Review, error)
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	AverageScore(ctx context.Context, titleID int64) (*float64, error)
	TitleIDsByAuthor(ctx context.Context, authorID string) ([]int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts a review. A second review for the same (author, title)
// fails on idx_reviews_author_title and comes back as ErrDuplicateKey.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error)
}

// Update writes text and score only; author, title and pub_date are fixed at creation.
func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).
		Model(review).
		Select("text", "score").
		Updates(review).Error
}

// Delete a review; its comments are removed by ON DELETE CASCADE
func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Review{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Preload("Author").
		First(&review, id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByAuthorAndTitle(ctx context.Context, authorID string, titleID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND title_id = ?", authorID, titleID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByTitle retrieves the reviews of a title, newest first
func (r *reviewRepository) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := paginate(page, pageSize)
	err := r.db.WithContext(ctx).
		Where("title_id = ?", titleID).
		Preload("Author").
		Order("pub_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// AverageScore is the full-precision mean of the title's scores, nil when
// the title has no reviews.
func (r *reviewRepository) AverageScore(ctx context.Context, titleID int64) (*float64, error) {
	var avg struct {
		Average *float64
	}

	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("AVG(score)::double precision AS average").
		Where("title_id = ?", titleID).
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}

	return avg.Average, nil
}

// TitleIDsByAuthor lists the titles the user has reviewed, in id order so
// callers lock them in a stable sequence.
func (r *reviewRepository) TitleIDsByAuthor(ctx context.Context, authorID string) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("author_id = ?", authorID).
		Order("title_id").
		Pluck("title_id", &ids).Error
	return ids, err
}
