package service

import (
	"context"
	"testing"

	"circulation-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommend_KeepsPopularityOrder(t *testing.T) {
	pop := &mockPopularity{
		topFn: func(ctx context.Context, limit int) ([]int64, error) {
			return []int64{3, 1, 2}, nil
		},
	}
	books := &mockBookStore{
		getBooksFn: func(ctx context.Context, ids []int64) ([]models.Book, error) {
			// rows come back in id order, not popularity order
			return []models.Book{
				{ID: 1, Title: "Dune"},
				{ID: 2, Title: "Hyperion"},
				{ID: 3, Title: "Foundation"},
			}, nil
		},
	}
	rec := NewPopularRecommender(books, pop)

	got, err := rec.Recommend(context.Background(), 3)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Foundation", got[0].Title)
	assert.Equal(t, "Dune", got[1].Title)
	assert.Equal(t, "Hyperion", got[2].Title)
}

func TestRecommend_SkipsMissingBooks(t *testing.T) {
	pop := &mockPopularity{
		topFn: func(ctx context.Context, limit int) ([]int64, error) {
			return []int64{3, 9, 1}, nil
		},
	}
	books := &mockBookStore{
		getBooksFn: func(ctx context.Context, ids []int64) ([]models.Book, error) {
			// book 9 was deleted from the catalog after it was issued
			return []models.Book{{ID: 1}, {ID: 3}}, nil
		},
	}
	rec := NewPopularRecommender(books, pop)

	got, err := rec.Recommend(context.Background(), 3)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
}

func TestRecommend_EmptyPopularitySet(t *testing.T) {
	rec := NewPopularRecommender(&mockBookStore{}, &mockPopularity{})

	got, err := rec.Recommend(context.Background(), 10)

	require.NoError(t, err)
	assert.Empty(t, got)
}
