package store

import (
	bolt "go.etcd.io/bbolt"

	"github.com/tpresley/todomvc-cycle/pkg/store/storedefs"
)

var bucketKV = []byte("kv")

// Get returns the value stored under the given key.
func (s *dbStore) Get(key string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketKV)
		v := b.Get([]byte(key))
		if v == nil {
			return storedefs.ErrNoKey
		}
		value = string(v)
		return nil
	})
	return value, err
}

// Set stores the value under the given key.
func (s *dbStore) Set(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketKV)
		return b.Put([]byte(key), []byte(value))
	})
}
