package storage

import (
	"github.com/pkg/errors"

	bolt "go.etcd.io/bbolt"

	"beautycontest/contestclient"
)

const (
	ENDPOINTS_REVISION = "revision"
)

var ErrUnknownEndpointKey = errors.New("Unknown endpoint key")

func validEndpointKey(key string) bool {
	return key == contestclient.COMMIT_URL_KEY || key == contestclient.REVEAL_URL_KEY
}

func endpointsBucket(tx *bolt.Tx) (*bolt.Bucket, error) {

	b := tx.Bucket([]byte(CONFIG_BUCKET)).Bucket([]byte(ENDPOINTS_BUCKET))
	if b == nil {
		return nil, errors.New("Unable to locate endpoints bucket")
	}

	return b, nil
}

// SetEndpoint saves an override for COMMIT_URL or REVEAL_URL. An empty url
// clears it.
func (s *Storage) SetEndpoint(key, url string) error {
	return s.SetEndpoints(map[string]string{key: url})
}

// SetEndpoints saves several overrides in one transaction. Every key is
// checked first; an unknown key rejects the whole set and nothing is written.
// Empty urls clear their override.
func (s *Storage) SetEndpoints(endpoints map[string]string) error {

	for key := range endpoints {
		if !validEndpointKey(key) {
			return errors.Wrap(ErrUnknownEndpointKey, key)
		}
	}

	if len(endpoints) == 0 {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := endpointsBucket(tx)
		if err != nil {
			return err
		}

		for key, url := range endpoints {
			if url == "" {
				err = b.Delete([]byte(key))
			} else {
				err = b.Put([]byte(key), []byte(url))
			}
			if err != nil {
				return errors.Wrapf(err, "Unable to save %s", key)
			}
		}

		return bumpRevision(tx)
	})
}

func (s *Storage) GetEndpoint(key string) (string, error) {

	var url string

	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := endpointsBucket(tx)
		if err != nil {
			return err
		}

		url = string(b.Get([]byte(key)))

		return nil
	})

	return url, err
}

func (s *Storage) DeleteEndpoint(key string) error {
	return s.SetEndpoints(map[string]string{key: ""})
}

// GetEndpoints returns all saved overrides keyed by COMMIT_URL / REVEAL_URL.
func (s *Storage) GetEndpoints() (map[string]string, error) {

	endpoints := make(map[string]string, 2)

	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := endpointsBucket(tx)
		if err != nil {
			return err
		}

		return b.ForEach(func(k, v []byte) error {
			if validEndpointKey(string(k)) {
				endpoints[string(k)] = string(v)
			}

			return nil
		})
	})

	return endpoints, err
}

// GetEndpointsRevision counts saved changes; 0 means never overridden.
func (s *Storage) GetEndpointsRevision() (int, error) {

	var revision int

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(CONFIG_BUCKET))
		if v := b.Get([]byte(ENDPOINTS_REVISION)); v != nil {
			revision = btoi(v)
		}

		return nil
	})

	return revision, err
}

func bumpRevision(tx *bolt.Tx) error {

	b := tx.Bucket([]byte(CONFIG_BUCKET))

	revision := 0
	if v := b.Get([]byte(ENDPOINTS_REVISION)); v != nil {
		revision = btoi(v)
	}

	return b.Put([]byte(ENDPOINTS_REVISION), itob(revision+1))
}
