package db

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/kv"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVStore persists collection payloads in the collection_entries table.
type KVStore struct {
	db  *gorm.DB
	now func() time.Time
}

var (
	_ kv.ExpiringStore = (*KVStore)(nil)
	_ kv.Sweeper       = (*KVStore)(nil)
)

// NewKVStore binds a kv.Store to the provided gorm connection.
func NewKVStore(conn *gorm.DB) *KVStore {
	return &KVStore{db: conn, now: time.Now}
}

// Get returns the stored value; an expired entry is deleted and reported absent.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.db == nil {
		return "", false, kv.ErrUnavailable
	}
	var entry models.CollectionEntry
	err := s.db.WithContext(ctx).
		Where("collection_key = ?", key).
		Take(&entry).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if entry.ExpiresAt != nil && !s.now().UTC().Before(*entry.ExpiresAt) {
		if err := s.deleteExpired(s.db.WithContext(ctx).Where("collection_key = ?", key)); err != nil {
			return "", false, err
		}
		return "", false, nil
	}
	return entry.Value, true, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	return s.upsert(ctx, key, value, 0)
}

func (s *KVStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.upsert(ctx, key, value, ttl)
}

// SetIfAbsent inserts the entry unless a live one holds the key. An expired
// holder is removed first so the key can be claimed again.
func (s *KVStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if s.db == nil {
		return false, kv.ErrUnavailable
	}
	claimed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.deleteExpired(tx.Where("collection_key = ?", key)); err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(s.entry(key, value, ttl))
		if res.Error != nil {
			return res.Error
		}
		claimed = res.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return claimed, nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if s.db == nil {
		return kv.ErrUnavailable
	}
	return s.db.WithContext(ctx).
		Where("collection_key = ?", key).
		Delete(&models.CollectionEntry{}).
		Error
}

// DeleteExpired sweeps every entry whose expiry has passed.
func (s *KVStore) DeleteExpired(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, kv.ErrUnavailable
	}
	res := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now().UTC()).
		Delete(&models.CollectionEntry{})
	return res.RowsAffected, res.Error
}

func (s *KVStore) upsert(ctx context.Context, key, value string, ttl time.Duration) error {
	if s.db == nil {
		return kv.ErrUnavailable
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at", "expires_at"}),
		}).
		Create(s.entry(key, value, ttl)).
		Error
}

func (s *KVStore) entry(key, value string, ttl time.Duration) *models.CollectionEntry {
	now := s.now().UTC()
	entry := &models.CollectionEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: now,
	}
	if ttl > 0 {
		expiresAt := now.Add(ttl)
		entry.ExpiresAt = &expiresAt
	}
	return entry
}

func (s *KVStore) deleteExpired(scoped *gorm.DB) error {
	return scoped.
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now().UTC()).
		Delete(&models.CollectionEntry{}).
		Error
}
