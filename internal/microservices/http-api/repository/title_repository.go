package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TitleFilter narrows title listings; zero values are ignored.
type TitleFilter struct {
	Genre    string
	Category string
	Name     string
	Year     *int
}

type TitleRepository interface {
	List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	FindByID(ctx context.Context, id int64) (*models.Title, error)
	LockByID(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, t *models.Title) error
	Update(ctx context.Context, t *models.Title) error
	ReplaceGenres(ctx context.Context, titleID int64, genreIDs []int64) error
	Delete(ctx context.Context, id int64) error
	SetRating(ctx context.Context, id int64, rating *float64) error
	Ratings(ctx context.Context, ids []int64) (map[int64]*float64, error)
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	db := r.db.WithContext(ctx)
	query := db.Model(&models.Title{})
	if filter.Genre != "" {
		sub := db.Table("title_genres").
			Select("title_genres.title_id").
			Joins("JOIN genres ON genres.id = title_genres.genre_id").
			Where("genres.slug = ?", filter.Genre)
		query = query.Where("titles.id IN (?)", sub)
	}
	if filter.Category != "" {
		sub := db.Model(&models.Category{}).Select("id").Where("slug = ?", filter.Category)
		query = query.Where("titles.category_id IN (?)", sub)
	}
	if filter.Name != "" {
		query = query.Where("titles.name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Year != nil {
		query = query.Where("titles.year = ?", *filter.Year)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	limit, offset := paginate(page, pageSize)
	if err := query.
		Preload("Category").
		Preload("Genres").
		Order("titles.id asc").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	return list, total, nil
}

func (r *titleRepository) FindByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.db.WithContext(ctx).Preload("Category").Preload("Genres").First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// LockByID reads the title row with SELECT ... FOR UPDATE. Only meaningful
// inside a transaction; it serializes every review mutation on that title.
func (r *titleRepository) LockByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *titleRepository) Create(ctx context.Context, t *models.Title) error {
	// rating is never written here, a new title has no reviews
	t.Rating = nil
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error; err != nil {
		return fmt.Errorf("create title: %w", err)
	}
	return nil
}

// Update saves the plain columns. Rating is left to SetRating so a stale
// copy of the title can never overwrite the aggregated value.
func (r *titleRepository) Update(ctx context.Context, t *models.Title) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations, "Rating").Save(t).Error; err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	return nil
}

func (r *titleRepository) ReplaceGenres(ctx context.Context, titleID int64, genreIDs []int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("title_id = ?", titleID).Delete(&models.TitleGenre{}).Error; err != nil {
		return fmt.Errorf("clear genres: %w", err)
	}
	if len(genreIDs) == 0 {
		return nil
	}
	links := make([]models.TitleGenre, 0, len(genreIDs))
	for _, id := range genreIDs {
		links = append(links, models.TitleGenre{TitleID: titleID, GenreID: id})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
		return fmt.Errorf("link genres: %w", err)
	}
	return nil
}

// Delete removes the title; reviews and their comments go with it through
// ON DELETE CASCADE.
func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete title: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *titleRepository) SetRating(ctx context.Context, id int64, rating *float64) error {
	result := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Update("rating", rating)
	if result.Error != nil {
		return fmt.Errorf("set rating: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Ratings reads only the stored rating column for the given titles. Titles
// that do not exist are missing from the map.
func (r *titleRepository) Ratings(ctx context.Context, ids []int64) (map[int64]*float64, error) {
	var rows []struct {
		ID     int64
		Rating *float64
	}
	if len(ids) == 0 {
		return map[int64]*float64{}, nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.Title{}).
		Select("id", "rating").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("read ratings: %w", err)
	}

	out := make(map[int64]*float64, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Rating
	}
	return out, nil
}
