package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	articleBucket  = "articles"
	pageValueBytes = 4
)

var errBucketMissing = errors.New("article bucket missing")

// boltStore implements a Store backed by a BoltDB file that is deleted on Close.
type boltStore struct {
	mu   sync.Mutex
	db   *bolt.DB
	path string
}

// openBolt creates a fresh session database in dir.
func openBolt(dir string) (Store, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	f, err := os.CreateTemp(dir, "market-pulse-session-*.db")
	if err != nil {
		return nil, fmt.Errorf("create session file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("create session file: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(articleBucket))
		return err
	}); err != nil {
		db.Close()
		os.Remove(path)
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{db: db, path: path}, nil
}

// Close closes the database and removes its file.
func (b *boltStore) Close() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	if rmErr := os.Remove(b.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		err = errors.Join(err, fmt.Errorf("remove session file: %w", rmErr))
	}
	return err
}

// SeenArticle checks if an article with the given ID has been recorded.
func (b *boltStore) SeenArticle(id string) (bool, error) {
	db := b.handle()
	if db == nil {
		return false, nil
	}

	var exists bool
	err := db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(articleBucket))
		if bucket == nil {
			return errBucketMissing
		}
		exists = bucket.Get([]byte(id)) != nil
		return nil
	})
	return exists, err
}

// MarkArticle records the article ID with the page it first arrived on.
func (b *boltStore) MarkArticle(id string, page int) error {
	db := b.handle()
	if db == nil {
		return nil
	}

	return db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(articleBucket))
		if bucket == nil {
			return errBucketMissing
		}
		buf := make([]byte, pageValueBytes)
		binary.BigEndian.PutUint32(buf, uint32(max(page, 0)))
		return bucket.Put([]byte(id), buf)
	})
}

// ArticlePage returns the page an article was first recorded on.
func (b *boltStore) ArticlePage(id string) (int, bool, error) {
	db := b.handle()
	if db == nil {
		return 0, false, nil
	}

	var (
		page  int
		found bool
	)
	err := db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(articleBucket))
		if bucket == nil {
			return errBucketMissing
		}
		page, found = decodePage(bucket.Get([]byte(id)))
		return nil
	})
	return page, found, err
}

// Reset drops and recreates the article bucket.
func (b *boltStore) Reset() error {
	db := b.handle()
	if db == nil {
		return nil
	}

	return db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(articleBucket)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket([]byte(articleBucket))
		return err
	})
}

// Count returns the number of recorded articles.
func (b *boltStore) Count() (int, error) {
	db := b.handle()
	if db == nil {
		return 0, nil
	}

	var n int
	err := db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(articleBucket))
		if bucket == nil {
			return errBucketMissing
		}
		n = bucket.Stats().KeyN
		return nil
	})
	return n, err
}

func (b *boltStore) handle() *bolt.DB {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.db
}

// decodePage decodes the page number from the stored byte slice.
func decodePage(value []byte) (int, bool) {
	if len(value) != pageValueBytes {
		return 0, false
	}
	return int(binary.BigEndian.Uint32(value)), true
}
