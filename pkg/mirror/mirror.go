// Package mirror is the durable client-side shadow copy of every entity
// collection. It is written through on every state change and read first
// at startup; when no remote channel is configured it is the sole source
// of truth. Values are msgpack-encoded collections in a sqlite key-value
// table.
package mirror

import (
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/driftwave/client/pkg/logger"
)

type kvEntry struct {
	K string `gorm:"primaryKey;column:k"`
	V []byte `gorm:"column:v"`
}

func (kvEntry) TableName() string { return "mirror_kv" }

type Mirror struct {
	db *gorm.DB
}

// Open opens (and migrates) the mirror database at path. Use ":memory:"
// for an ephemeral mirror.
func Open(path string) (*Mirror, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, err
	}
	return &Mirror{db: db}, nil
}

// Save stores value (any msgpack-encodable collection) under key,
// replacing whatever was there.
func (m *Mirror) Save(key string, value any) error {
	blob, err := msgpack.Marshal(value)
	if err != nil {
		return err
	}
	return m.db.Save(&kvEntry{K: key, V: blob}).Error
}

// Load decodes the stored value for key into out. A missing or corrupt
// value leaves out untouched and returns false; it is never an error,
// the caller proceeds with an empty collection.
func (m *Mirror) Load(key string, out any) bool {
	var entry kvEntry
	if err := m.db.First(&entry, "k = ?", key).Error; err != nil {
		return false
	}
	if err := msgpack.Unmarshal(entry.V, out); err != nil {
		logger.Warn("mirror: discarding corrupt value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Delete removes the stored value for key.
func (m *Mirror) Delete(key string) error {
	return m.db.Delete(&kvEntry{}, "k = ?", key).Error
}
