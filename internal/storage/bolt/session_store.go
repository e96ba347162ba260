package bolt

import (
	"context"
	"errors"

	"github.com/pabu-app/focusd/internal/storage"
	"go.etcd.io/bbolt"
)

type sessionStore struct {
	db *bbolt.DB
}

func (s *sessionStore) GetActive(ctx context.Context) (*storage.Session, error) {
	return getBucketValue[storage.Session](ctx, s.db, bucketSessions, keyActiveSession)
}

func (s *sessionStore) PutActive(ctx context.Context, session storage.Session) error {
	return putBucketValue(ctx, s.db, bucketSessions, keyActiveSession, session)
}

func (s *sessionStore) ClearActive(ctx context.Context) error {
	err := deleteBucketValue(ctx, s.db, bucketSessions, keyActiveSession)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

func (s *sessionStore) History(ctx context.Context) ([]storage.SessionHistoryEntry, error) {
	history, err := getBucketValue[[]storage.SessionHistoryEntry](ctx, s.db, bucketSessions, keySessionHistory)
	if errors.Is(err, storage.ErrNotFound) {
		return []storage.SessionHistoryEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	return *history, nil
}

func (s *sessionStore) AppendHistory(ctx context.Context, entry storage.SessionHistoryEntry) error {
	// The whole collection is rewritten on each append, newest first.
	return s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucketSessions))
		if b == nil {
			return storage.ErrNotFound
		}
		history := []storage.SessionHistoryEntry{}
		if existing := b.Get([]byte(keySessionHistory)); existing != nil {
			if err := unmarshal(existing, &history); err != nil {
				return err
			}
		}
		updated := append([]storage.SessionHistoryEntry{entry}, history...)
		data, err := marshal(updated)
		if err != nil {
			return err
		}
		return b.Put([]byte(keySessionHistory), data)
	})
}
