package bolt

import (
	"context"

	"github.com/pabu-app/focusd/internal/storage"
	"go.etcd.io/bbolt"
)

type recommendationStore struct {
	db *bbolt.DB
}

func (s *recommendationStore) Get(ctx context.Context, projectID string) (*storage.RecommendationCacheEntry, error) {
	return getBucketValue[storage.RecommendationCacheEntry](ctx, s.db, bucketRecommendations, projectID)
}

func (s *recommendationStore) Put(ctx context.Context, projectID string, entry storage.RecommendationCacheEntry) error {
	return putBucketValue(ctx, s.db, bucketRecommendations, projectID, entry)
}

func (s *recommendationStore) Delete(ctx context.Context, projectID string) error {
	return deleteBucketValue(ctx, s.db, bucketRecommendations, projectID)
}
