package storage

import (
	"encoding/binary"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	DATABASE_FILE = "beautycontest.db"

	CONFIG_BUCKET    = "config"
	ENDPOINTS_BUCKET = "endpoints"
)

// Storage keeps UI-saved settings. It never holds identities, nonces or
// commitments.
type Storage struct {
	db *bolt.DB
}

func InitStorage(dataDir string) (*Storage, error) {

	dbFile := filepath.Join(dataDir, DATABASE_FILE)

	db, err := bolt.Open(dbFile, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open database %s", dbFile)
	}

	// Ensure buckets exist
	err = db.Update(func(tx *bolt.Tx) error {

		cb, err := tx.CreateBucketIfNotExists([]byte(CONFIG_BUCKET))
		if err != nil {
			return errors.Wrap(err, "Cannot create config bucket")
		}

		if _, err := cb.CreateBucketIfNotExists([]byte(ENDPOINTS_BUCKET)); err != nil {
			return errors.Wrap(err, "Cannot create endpoints bucket")
		}

		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	log.WithField("File", dbFile).Debug("Database opened")

	return &Storage{
		db: db,
	}, nil
}

func (s *Storage) Close() {

	if err := s.db.Close(); err != nil {
		log.WithError(err).Error("Unable to close database")
		return
	}

	log.Info("Database closed")
}

// itob returns an 8-byte big endian representation of v.
func itob(v int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

// btoi is the inverse of itob.
func btoi(b []byte) int {
	return int(binary.BigEndian.Uint64(b))
}
