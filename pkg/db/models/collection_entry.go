package models

import "time"

// CollectionEntry is one persisted collection payload, keyed like a local storage item.
// Entries without ExpiresAt never expire.
type CollectionEntry struct {
	Key       string     `gorm:"column:collection_key;type:varchar(255);primaryKey"`
	Value     string     `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index:idx_collection_entries_expires_at"`
}

func (CollectionEntry) TableName() string {
	return "collection_entries"
}
