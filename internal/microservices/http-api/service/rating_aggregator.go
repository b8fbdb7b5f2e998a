package service

import (
	"context"
	"fmt"
	"log/slog"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
)

// RatingAggregator owns the derived titles.rating column. The stored value
// is only ever written by Recompute, and Recompute only runs inside the
// transaction of a review mutation that holds the title row lock.
type RatingAggregator struct {
	store  repository.Store
	logger *slog.Logger
}

func NewRatingAggregator(store repository.Store, logger *slog.Logger) *RatingAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &RatingAggregator{store: store, logger: logger}
}

// Rating returns the current mean score of the title, or nil if it has no reviews.
func (a *RatingAggregator) Rating(ctx context.Context, titleID int64) (*float64, error) {
	ratings, err := a.store.Titles().Ratings(ctx, []int64{titleID})
	if err != nil {
		return nil, err
	}
	rating, ok := ratings[titleID]
	if !ok {
		return nil, fmt.Errorf("title %w", ErrNotFound)
	}
	return rating, nil
}

// Annotate replaces the rating on each loaded title with the aggregator's
// current value. A title deleted since it was loaded keeps a nil rating.
func (a *RatingAggregator) Annotate(ctx context.Context, titles ...*models.Title) error {
	if len(titles) == 0 {
		return nil
	}
	ids := make([]int64, len(titles))
	for i, t := range titles {
		ids[i] = t.ID
	}
	ratings, err := a.store.Titles().Ratings(ctx, ids)
	if err != nil {
		return err
	}
	for _, t := range titles {
		t.Rating = ratings[t.ID]
	}
	return nil
}

// Recompute derives the rating from the review set visible to tx and stores
// it. Running it twice without a mutation in between yields the same value.
func (a *RatingAggregator) Recompute(ctx context.Context, tx repository.Store, titleID int64) (*float64, error) {
	avg, err := tx.Reviews().AverageScore(ctx, titleID)
	if err != nil {
		return nil, err
	}
	if err := tx.Titles().SetRating(ctx, titleID, avg); err != nil {
		return nil, notFound(err, "title")
	}

	a.logger.Debug("rating_recomputed", "title_id", titleID, "rating", avg)
	return avg, nil
}
