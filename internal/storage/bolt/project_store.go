package bolt

import (
	"context"

	"github.com/pabu-app/focusd/internal/storage"
	"go.etcd.io/bbolt"
)

type projectStore struct {
	db *bbolt.DB
}

func (s *projectStore) List(ctx context.Context) ([]storage.Project, error) {
	projects, err := getBucketValue[[]storage.Project](ctx, s.db, bucketProjects, keyProjects)
	if err != nil {
		return nil, err
	}
	return *projects, nil
}

func (s *projectStore) Replace(ctx context.Context, projects []storage.Project) error {
	return putBucketValue(ctx, s.db, bucketProjects, keyProjects, projects)
}
