package bolt

import (
	"context"

	"github.com/pabu-app/focusd/internal/storage"
	"go.etcd.io/bbolt"
)

type settingsStore struct {
	db *bbolt.DB
}

func (s *settingsStore) Get(ctx context.Context) (*storage.Settings, error) {
	var settings *storage.Settings
	err := s.db.View(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucketSettings))
		if b == nil {
			return storage.ErrNotFound
		}
		value := b.Get([]byte(keyAppSettings))
		if value == nil {
			return storage.ErrNotFound
		}
		// Overlay the stored JSON on the defaults so keys missing from
		// older snapshots keep their default values.
		merged := storage.DefaultSettings()
		if err := unmarshal(value, &merged); err != nil {
			return err
		}
		settings = &merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *settingsStore) Put(ctx context.Context, settings storage.Settings) error {
	return putBucketValue(ctx, s.db, bucketSettings, keyAppSettings, settings)
}
