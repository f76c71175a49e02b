package storage

import (
	"fmt"
	"strings"
)

// Package storage keeps session-scoped bookkeeping. Nothing outlives the session.

// Store tracks which article IDs were already delivered for the current query.
type Store interface {
	Close() error
	SeenArticle(id string) (bool, error)
	MarkArticle(id string, page int) error
	// Reset forgets every article, used when a fresh query starts.
	Reset() error
	Count() (int, error)
}

// NewStore creates the configured storage backend. For bbolt, dir is where the
// session file is created; empty means the OS temp directory.
func NewStore(typ, dir string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		return openBolt(strings.TrimSpace(dir))
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

type noopStore struct{}

func (noopStore) Close() error                     { return nil }
func (noopStore) SeenArticle(string) (bool, error) { return false, nil }
func (noopStore) MarkArticle(string, int) error    { return nil }
func (noopStore) Reset() error                     { return nil }
func (noopStore) Count() (int, error)              { return 0, nil }
