package service

import (
	"context"

	"circulation-service/internal/models"
	"circulation-service/internal/util"

	"go.uber.org/zap"
)

// Recommender suggests titles to members. Strategies are pluggable; the
// default ranks by recent issue counts.
type Recommender interface {
	Recommend(ctx context.Context, limit int) ([]models.Book, error)
}

// PopularRecommender recommends the most issued books
type PopularRecommender struct {
	books      BookStore
	popularity PopularityTracker
	logger     *zap.Logger
}

// NewPopularRecommender creates the default recommender
func NewPopularRecommender(books BookStore, popularity PopularityTracker) *PopularRecommender {
	return &PopularRecommender{
		books:      books,
		popularity: popularity,
		logger:     util.GetLogger(),
	}
}

// Recommend returns up to limit books ordered by issue count
func (r *PopularRecommender) Recommend(ctx context.Context, limit int) ([]models.Book, error) {
	if limit <= 0 {
		limit = 10
	}

	ids, err := r.popularity.TopBooks(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Book{}, nil
	}

	books, err := r.books.GetBooksByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// preserve popularity order; the store returns rows in arbitrary order
	byID := make(map[int64]models.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	ranked := make([]models.Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			ranked = append(ranked, b)
		}
	}
	return ranked, nil
}
