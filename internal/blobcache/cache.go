// Package blobcache is a BadgerDB-backed local cache of downloaded blobs,
// keyed by their textual blob id. Walrus blobs are content-addressed and
// immutable, so cached bytes never go stale.
package blobcache

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "blob/"

// Cache stores blob bytes on disk.
type Cache struct {
	db *badger.DB
}

// Open creates or opens a cache at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open blob cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// OpenInMemory opens a cache that lives only for the process lifetime.
func OpenInMemory() (*Cache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory blob cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Get returns the cached bytes for a blob id, with ok reporting presence.
func (c *Cache) Get(blobID string) (data []byte, ok bool, err error) {
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + blobID))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", blobID, err)
	}
	return data, true, nil
}

// Put stores blob bytes under their id.
func (c *Cache) Put(blobID string, data []byte) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+blobID), data)
	})
	if err != nil {
		return fmt.Errorf("cache put %s: %w", blobID, err)
	}
	return nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
